// Package interactive provides interactive prompts for update confirmation.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Response represents the user's response to a prompt.
type Response int

const (
	ResponseYes  Response = iota // apply this update
	ResponseNo                   // skip this update
	ResponseAll                  // approve all remaining updates
	ResponseQuit                 // skip everything from here on
)

// Prompter asks for confirmation before each module replacement.
type Prompter struct {
	in         io.Reader
	out        io.Writer
	scanner    *bufio.Scanner
	approveAll bool
	declineAll bool
}

// NewPrompter creates a prompter with stdin/stdout.
func NewPrompter() *Prompter {
	return NewPrompterWithIO(os.Stdin, os.Stdout)
}

// NewPrompterWithIO creates a prompter with custom input/output (for testing).
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:      in,
		out:     out,
		scanner: bufio.NewScanner(in),
	}
}

// IsTerminal checks if stdin is a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ConfirmUpdate asks whether to replace module id with the newer remote
// version. Suitable as the workflow's confirmation hook.
func (p *Prompter) ConfirmUpdate(id string, local, remote int64) bool {
	if p.approveAll {
		return true
	}
	if p.declineAll {
		return false
	}

	_, _ = fmt.Fprintf(p.out, "  update %s from %d to %d? [y/n/a/q] ", id, local, remote)

	if !p.scanner.Scan() {
		p.declineAll = true
		return false
	}

	switch strings.ToLower(strings.TrimSpace(p.scanner.Text())) {
	case "y", "yes":
		return true
	case "a", "all":
		p.approveAll = true
		return true
	case "q", "quit":
		p.declineAll = true
		return false
	case "n", "no":
		return false
	default:
		_, _ = fmt.Fprintln(p.out, "  invalid response, skipping")
		return false
	}
}
