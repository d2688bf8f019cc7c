package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/spf13/cobra"
)

func expenseFlags(cmd *cobra.Command, in *models.ExpenseInput) {
	f := cmd.Flags()
	f.StringVar(&in.Date, "date", "", "expense date, YYYY-MM-DD (default: today)")
	f.StringVar(&in.Amount, "amount", "", "amount in whole yen")
	f.StringVar(&in.Category, "category", "", "category, e.g. 食費")
	f.StringVar(&in.Note, "note", "", "free-form note")
	f.StringVar(&in.PaidBy, "paid-by", "me", "who paid: me or her")
}

// resolveUUID accepts a full client UUID or a prefix matching exactly one
// stored record, logically deleted ones included.
func (a *App) resolveUUID(ctx context.Context, arg string) (string, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" {
		return "", common.NewValidationError("uuid", "must not be empty")
	}

	_, err := a.expenses.Get(ctx, arg)
	if err == nil {
		return arg, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return "", err
	}

	all, err := a.expenses.All(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, e := range all {
		if strings.HasPrefix(e.ClientUUID, arg) {
			matches = append(matches, e.ClientUUID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", arg, common.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", common.NewValidationError("uuid",
			fmt.Sprintf("%q matches %d records, give more characters", arg, len(matches)))
	}
}

func (a *App) addCmd() *cobra.Command {
	var in models.ExpenseInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Long: `Record a new expense in the local store. The record stays pending
until the next successful sync.`,
		Example: `  kakeibo add --amount 1,280 --category 食費 --note "supermarket"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := models.ParseExpenseInput(in, a.Now())
			if err != nil {
				return err
			}
			saved, err := a.expenses.Upsert(cmd.Context(), e)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.Out, successStyle.Render(fmt.Sprintf("Saved %s %s %s (%s)",
				saved.ClientUUID, formatYen(saved.Amount), saved.Category, saved.Status)))
			return nil
		},
	}
	expenseFlags(cmd, &in)
	cmd.Flags().StringVar(&in.ClientUUID, "uuid", "", "client UUID (default: generated)")
	return cmd
}

func (a *App) editCmd() *cobra.Command {
	var in models.ExpenseInput

	cmd := &cobra.Command{
		Use:   "edit <uuid>",
		Short: "Change a recorded expense",
		Long: `Change the fields given as flags and keep the others. The record
becomes pending again. A unique UUID prefix is enough.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := a.resolveUUID(ctx, args[0])
			if err != nil {
				return err
			}
			cur, err := a.expenses.Get(ctx, id)
			if err != nil {
				return err
			}

			merged := models.ExpenseInput{
				ClientUUID: cur.ClientUUID,
				Date:       cur.Date,
				Amount:     strconv.FormatInt(cur.Amount, 10),
				Category:   cur.Category,
				Note:       cur.Note,
				PaidBy:     string(cur.PaidBy),
			}
			f := cmd.Flags()
			if f.Changed("date") {
				merged.Date = in.Date
			}
			if f.Changed("amount") {
				merged.Amount = in.Amount
			}
			if f.Changed("category") {
				merged.Category = in.Category
			}
			if f.Changed("note") {
				merged.Note = in.Note
			}
			if f.Changed("paid-by") {
				merged.PaidBy = in.PaidBy
			}

			e, err := models.ParseExpenseInput(merged, a.Now())
			if err != nil {
				return err
			}
			saved, err := a.expenses.Upsert(ctx, e)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.Out, successStyle.Render(fmt.Sprintf("Updated %s %s %s (%s)",
				saved.ClientUUID, formatYen(saved.Amount), saved.Category, saved.Status)))
			return nil
		},
	}
	expenseFlags(cmd, &in)
	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <uuid>",
		Short: "Delete an expense here and, after the next sync, on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveUUID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			e, err := a.expenses.MarkDelete(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.Out, successStyle.Render(fmt.Sprintf("Marked %s for deletion (%s)", e.ClientUUID, e.Status)))
			return nil
		},
	}
}

func (a *App) discardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard <uuid>",
		Short: "Remove a record from the local store only",
		Long: `Remove a record from the local store without telling the server.
A pending change is lost.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveUUID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.expenses.HardDelete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Discarded %s\n", id)
			return nil
		},
	}
}

func (a *App) pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Show records waiting to be synced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.expenses.Pending(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(a.Out, subtleStyle.Render("Nothing pending."))
				return nil
			}
			if err := writeExpenses(a.Out, items); err != nil {
				return err
			}
			fmt.Fprintln(a.Out, warningStyle.Render(fmt.Sprintf("%d pending", len(items))))
			return nil
		},
	}
}

type rangeFlags struct {
	from, to, month string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&r.from, "from", "", "first date, YYYY-MM-DD (default: start of this month)")
	f.StringVar(&r.to, "to", "", "last date, YYYY-MM-DD (default: end of this month)")
	f.StringVar(&r.month, "month", "", "calendar month, YYYY-MM; overrides --from and --to")
}

func (r *rangeFlags) resolve(now time.Time) (string, string, error) {
	if r.month != "" {
		t, err := time.Parse("2006-01", r.month)
		if err != nil {
			return "", "", common.NewValidationError("month", "must be YYYY-MM")
		}
		from, to := models.MonthRange(t)
		return from, to, nil
	}

	first, last := models.MonthRange(now)
	from, to := r.from, r.to
	if from == "" {
		from = first
	}
	if to == "" {
		to = last
	}
	return from, to, nil
}

func (a *App) listCmd() *cobra.Command {
	var (
		rf     rangeFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses of a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, to, err := rf.resolve(a.Now())
			if err != nil {
				return err
			}
			items, err := a.expenses.ByRange(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			if asJSON {
				if items == nil {
					items = []models.Expense{}
				}
				enc := json.NewEncoder(a.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			if len(items) == 0 {
				fmt.Fprintln(a.Out, subtleStyle.Render(fmt.Sprintf("No expenses between %s and %s.", from, to)))
				return nil
			}
			return writeExpenses(a.Out, items)
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func writeExpenses(out io.Writer, items []models.Expense) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "DATE\tAMOUNT\tCATEGORY\tPAID BY\tOP\tSTATUS\tID\tNOTE"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range items {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Date, formatYen(e.Amount), e.Category, e.PaidBy, e.Op, e.Status, e.ClientUUID, e.Note); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return w.Flush()
}
