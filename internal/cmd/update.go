package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/modtools/modup/internal/config"
	"github.com/modtools/modup/internal/discover"
	"github.com/modtools/modup/internal/interactive"
	"github.com/modtools/modup/internal/output"
	"github.com/modtools/modup/internal/progress"
	"github.com/modtools/modup/internal/update"
)

func newUpdateCmd() *cobra.Command {
	var (
		noRecursive     bool
		noBackup        bool
		checkOnly       bool
		interactiveMode bool
	)

	cmd := &cobra.Command{
		Use:   "update [directory]",
		Short: "Scan a directory and update outdated module zips",
		Long: `Update scans the given directory for module zips, fetches each module's
update descriptor, and replaces zips whose remote version is newer.

By default the previous zip is kept next to the new one as <name>.zip.bak.
Use --no-backup to replace in place. With no directory argument the last
scanned directory from the config file is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) == 1 {
				dir = args[0]
			}
			return runUpdate(dir, !noRecursive, !noBackup, checkOnly, interactiveMode)
		},
	}

	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "Only scan the top-level directory")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Replace zips without keeping a .bak copy")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Report available updates without downloading")
	cmd.Flags().BoolVarP(&interactiveMode, "interactive", "i", false, "Prompt for confirmation of each update")

	return cmd
}

// loadPreferences reads the config file named by --config, falling back to
// the default location. A missing file yields defaults, not an error.
func loadPreferences() (config.Preferences, string, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Defaults(), "", err
		}
	}
	prefs, err := config.Load(path)
	return prefs, path, err
}

// runUpdate executes one scan-and-update batch.
func runUpdate(dir string, recursive, doBackup, checkOnly, interactiveMode bool) error {
	prefs, prefsPath, err := loadPreferences()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		prefs = config.Defaults()
	}

	if dir == "" {
		dir = prefs.LastDirectory
	}
	if dir == "" {
		return fmt.Errorf("no directory given and no previous directory in config")
	}

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	paths, err := discover.Collect(dir, recursive)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Found %d module zip(s) under %s\n", len(paths), dir)
	}

	// Progress lines go to stdout only in plain text mode; structured
	// formats get the final report alone.
	var sink progress.Sink = progress.Discard{}
	if format == output.FormatText && !quiet {
		sink = progress.NewWriterSink(os.Stdout)
	}

	opts := update.Options{
		Backup:    doBackup,
		CheckOnly: checkOnly,
	}
	if interactiveMode {
		if !interactive.IsTerminal() {
			fmt.Fprintln(os.Stderr, "Warning: not running in a terminal, applying updates without prompting")
		} else {
			opts.Confirm = interactive.NewPrompter().ConfirmUpdate
		}
	}

	workflow := update.NewWorkflow(sink, update.WithLogger(log.Default()))
	outcomes := workflow.Run(context.Background(), paths, opts)

	// Remember the directory for the next run.
	if prefsPath != "" {
		prefs.LastDirectory = dir
		prefs.Recursive = recursive
		prefs.Backup = doBackup
		if err := config.Save(prefsPath, prefs); err != nil {
			log.Debug("could not save config", "path", prefsPath, "err", err)
		}
	}

	report := output.BuildReport(outcomes)
	if format == output.FormatText {
		if !quiet {
			fmt.Println(report.String())
		}
	} else {
		writer := output.NewWriter(os.Stdout, format)
		if err := writer.Write(report); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	if report.Failed > 0 {
		os.Exit(1)
	}
	return nil
}
