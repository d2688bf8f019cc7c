package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/spf13/cobra"
)

func (a *App) summaryCmd() *cobra.Command {
	var (
		rf     rangeFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals by category and payer",
		Long: `Show totals of the local records of a date range, by category and by
payer. Records marked for deletion are not counted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, to, err := rf.resolve(a.Now())
			if err != nil {
				return err
			}
			s, err := a.expenses.Summary(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			return writeSummary(a.Out, s)
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func writeSummary(out io.Writer, s models.Summary) error {
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s to %s", s.Start, s.End)))
	if s.Count == 0 {
		fmt.Fprintln(out, subtleStyle.Render("No expenses."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, c := range s.ByCategory {
		fmt.Fprintf(w, "%s\t%s\t%d\t\n", c.Category, formatYen(c.Total), c.Count)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	fmt.Fprintln(out, headerStyle.Render("By payer"))
	for _, p := range []models.PaidBy{models.PaidByMe, models.PaidByHer} {
		fmt.Fprintf(out, "  %-4s %s\n", p, formatYen(s.ByPayer[p]))
	}
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Total %s (%d)", formatYen(s.Total), s.Count)))
	return nil
}
