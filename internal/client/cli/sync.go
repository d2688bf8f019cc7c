package cli

import (
	"fmt"

	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/spf13/cobra"
)

func (a *App) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push pending records to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.sync.Sync(cmd.Context())
			if err != nil {
				return err
			}

			switch {
			case r.Skipped:
				fmt.Fprintln(a.Out, subtleStyle.Render("Another sync is already running."))
			case r.NothingToSync:
				fmt.Fprintln(a.Out, subtleStyle.Render("Nothing to sync."))
			default:
				fmt.Fprintln(a.Out, successStyle.Render(fmt.Sprintf("Sent %d: %d accepted, %d rejected",
					r.Submitted, r.Accepted, r.Rejected)))
				if r.Rejected > 0 {
					fmt.Fprintln(a.Out, warningStyle.Render(fmt.Sprintf("%d rejected records stay pending", r.Rejected)))
				}
				if r.Superseded > 0 {
					fmt.Fprintln(a.Out, warningStyle.Render(fmt.Sprintf("%d records changed during the sync and stay pending", r.Superseded)))
				}
				if r.Deferred > 0 {
					fmt.Fprintln(a.Out, warningStyle.Render(fmt.Sprintf("%d records left for the next sync", r.Deferred)))
				}
			}
			return nil
		},
	}
}

func (a *App) pullCmd() *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Merge recent server records into the local store",
		Long: `Fetch the records of the current and previous months from the server
and store them locally as synced. Records with local pending changes are
never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if months <= 0 {
				months = a.cfg.PullMonths
			}
			r, err := a.merge.Pull(cmd.Context(), months)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.Out, successStyle.Render(fmt.Sprintf("Fetched %d records in %d pages: %d merged, %d kept pending",
				r.Fetched, r.Pages, r.Merged, r.SkippedPending)))
			if skipped := r.SkippedNoUUID + r.SkippedInvalid; skipped > 0 {
				fmt.Fprintln(a.Out, warningStyle.Render(fmt.Sprintf("%d server records were ignored", skipped)))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&months, "months", 0, "calendar months to fetch, including this one (default: sync.pull_months)")
	return cmd
}

func (a *App) purgeCmd() *cobra.Command {
	var (
		before string
		months int
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Drop old synced records from the local store",
		Long: `Drop synced records dated before a cutoff from the local store. Pending
records are kept regardless of age. The server copy is not affected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				n   int
				err error
			)
			switch {
			case before != "":
				n, err = a.merge.Purge(cmd.Context(), before)
			case cmd.Flags().Changed("months"):
				n, err = a.merge.PurgeOlderThan(cmd.Context(), months)
			default:
				return common.NewValidationError("cutoff", "set --before or --months")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Removed %d synced records\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "cutoff date, YYYY-MM-DD")
	cmd.Flags().IntVar(&months, "months", 0, "drop records dated before the first day of the month this many months ago")
	return cmd
}
