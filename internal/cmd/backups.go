package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modtools/modup/internal/backup"
	"github.com/modtools/modup/internal/output"
)

func newBackupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "Manage .bak copies left behind by updates",
	}

	cmd.AddCommand(newBackupsListCmd())
	cmd.AddCommand(newBackupsCleanCmd())

	return cmd
}

// backupsRoot resolves the directory to operate on: the argument if given,
// otherwise the last scanned directory from the config file.
func backupsRoot(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	prefs, _, err := loadPreferences()
	if err != nil {
		return "", err
	}
	if prefs.LastDirectory == "" {
		return "", fmt.Errorf("no directory given and no previous directory in config")
	}
	return prefs.LastDirectory, nil
}

func newBackupsListCmd() *cobra.Command {
	var noRecursive bool

	cmd := &cobra.Command{
		Use:   "list [directory]",
		Short: "List backup zips under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := backupsRoot(args)
			if err != nil {
				return err
			}

			backups, err := backup.NewManager(root, !noRecursive).List()
			if err != nil {
				return err
			}

			format, err := output.ParseFormat(outputFormat)
			if err != nil {
				return err
			}
			if format != output.FormatText {
				return output.NewWriter(os.Stdout, format).Write(backups)
			}

			if len(backups) == 0 {
				fmt.Println("No backups found.")
				return nil
			}
			for _, b := range backups {
				fmt.Printf("%s\t%d bytes\t%s\n", b.Path, b.Size, b.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "Only scan the top-level directory")

	return cmd
}

func newBackupsCleanCmd() *cobra.Command {
	var noRecursive bool

	cmd := &cobra.Command{
		Use:   "clean [directory]",
		Short: "Delete backup zips under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := backupsRoot(args)
			if err != nil {
				return err
			}

			result, err := backup.NewManager(root, !noRecursive).Clean()
			if err != nil {
				return err
			}

			format, err := output.ParseFormat(outputFormat)
			if err != nil {
				return err
			}
			if format != output.FormatText {
				return output.NewWriter(os.Stdout, format).Write(result)
			}

			if !quiet {
				fmt.Printf("Deleted %d backup(s), freed %d bytes\n", len(result.Deleted), result.Freed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "Only scan the top-level directory")

	return cmd
}
