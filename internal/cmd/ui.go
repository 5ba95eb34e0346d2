package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/modtools/modup/internal/config"
	"github.com/modtools/modup/internal/discover"
	"github.com/modtools/modup/internal/progress"
	"github.com/modtools/modup/internal/tui"
	"github.com/modtools/modup/internal/update"
)

func newUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Interactive terminal interface",
		Long: `Launch the interactive interface: pick a directory, toggle scan
options, and watch update progress live. The chosen directory and options
are remembered for the next session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI()
		},
	}
}

func runUI() error {
	prefs, prefsPath, err := loadPreferences()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		prefs = config.Defaults()
	}

	runner := func(dir string, recursive, backup bool, sink progress.Sink) {
		if prefsPath != "" {
			saved := config.Preferences{LastDirectory: dir, Recursive: recursive, Backup: backup}
			if err := config.Save(prefsPath, saved); err != nil {
				log.Debug("could not save config", "path", prefsPath, "err", err)
			}
		}

		paths, err := discover.Collect(dir, recursive)
		if err != nil {
			sink.Line(fmt.Sprintf("error: %v", err))
			return
		}
		sink.Line(fmt.Sprintf("found %d module zip(s)", len(paths)))

		workflow := update.NewWorkflow(sink, update.WithLogger(log.Default()))
		workflow.Run(context.Background(), paths, update.Options{Backup: backup})
	}

	program := tea.NewProgram(tui.New(prefs, runner), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
