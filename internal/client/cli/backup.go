package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) backupCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload an encrypted snapshot of the local store",
		Long: `Seal every local record with the backup passphrase and upload it to
the configured bucket, or to a local directory with --dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.backupService(cmd.Context(), dir)
			if err != nil {
				return err
			}
			key, err := svc.Create(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.Out, successStyle.Render("Backup stored as "+key))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "write to this directory instead of the bucket")
	return cmd
}

func (a *App) restoreCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "restore <key>",
		Short: "Write the records of a snapshot back to the local store",
		Long: `Download and open a snapshot and write its records back. Records with
local pending changes are kept as they are.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.backupService(cmd.Context(), dir)
			if err != nil {
				return err
			}
			r, err := svc.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.Out, successStyle.Render(fmt.Sprintf("Restored %d of %d records", r.Restored, r.Records)))
			if r.SkippedExisting > 0 {
				fmt.Fprintln(a.Out, warningStyle.Render(fmt.Sprintf("%d records skipped because a local copy exists", r.SkippedExisting)))
			}
			if r.SkippedInvalid > 0 {
				fmt.Fprintln(a.Out, warningStyle.Render(fmt.Sprintf("%d invalid records ignored", r.SkippedInvalid)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "read from this directory instead of the bucket")
	return cmd
}
