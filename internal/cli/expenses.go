package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tripboard/tripboard/internal/domain"
	"github.com/tripboard/tripboard/internal/ledger"
)

func (a *App) expensesCommand() *Command {
	return &Command{
		Name:    "expenses",
		Summary: "Track shared expenses and balances",
		Subcommands: []*Command{
			a.expensesListCommand(),
			a.expensesAddCommand(),
			a.expensesDeleteCommand(),
		},
	}
}

func (a *App) openLedger(ctx context.Context, tripID int64) (ledger.Snapshot, error) {
	trip, err := a.openTrip(ctx, tripID)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	return a.ledger.SetTrip(ctx, trip.ID)
}

func (a *App) printLedger(snap ledger.Snapshot) {
	if len(snap.Expenses) == 0 {
		a.note("No expenses yet. Add one with 'tripboard expenses add'.")
	} else {
		rows := make([][]string, 0, len(snap.Expenses))
		for _, e := range snap.Expenses {
			paidBy := "-"
			if e.PaidBy != nil {
				paidBy = e.PaidBy.FullName()
			}
			rows = append(rows, []string{
				fmt.Sprint(e.ID),
				date(e.ExpenseDate),
				e.Description,
				strings.ToLower(e.Category),
				money(e.Amount, e.Currency),
				paidBy,
				ago(e.CreatedAt),
			})
		}
		a.table([]string{"ID", "DATE", "DESCRIPTION", "CATEGORY", "AMOUNT", "PAID BY", "ADDED"}, rows)
	}

	fmt.Fprintln(a.out)
	a.printf("Total: %s\n", money(snap.Total, ""))
	if len(snap.Balances) == 0 {
		return
	}
	names := make([]string, 0, len(snap.Balances))
	for name := range snap.Balances {
		names = append(names, name)
	}
	slices.Sort(names)
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, a.signed(snap.Balances[name])})
	}
	a.table([]string{"PERSON", "BALANCE"}, rows)
}

func (a *App) expensesListCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "list",
		Summary: "List expenses with the total and everyone's balance",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			snap, err := a.openLedger(ctx, tripID)
			if err != nil {
				return err
			}
			a.printLedger(snap)
			return nil
		},
	}
}

func (a *App) expensesAddCommand() *Command {
	var (
		tripID int64
		in     domain.ExpenseInput
		when   string
	)
	return &Command{
		Name:    "add",
		Summary: "Record an expense you paid",
		Usage:   "tripboard expenses add --amount <n> --description <text> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			fs.Float64Var(&in.Amount, "amount", 0, "amount paid")
			fs.StringVarP(&in.Description, "description", "d", "", "what it was for")
			fs.StringVar(&in.Currency, "currency", "", "one of "+strings.Join(domain.Currencies, ", ")+" (default USD)")
			fs.StringVar(&in.Category, "category", "", "one of "+strings.Join(domain.ExpenseCategories, ", ")+" (default FOOD)")
			fs.StringVar(&when, "date", "", "expense date, "+domain.DateLayout+" (default today)")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			if when != "" {
				d, err := domain.ParseDate(when)
				if err != nil {
					return err
				}
				in.ExpenseDate = d
			}
			if _, err := a.openLedger(ctx, tripID); err != nil {
				return err
			}
			snap, err := a.ledger.Create(ctx, in)
			if err != nil {
				return err
			}
			a.printLedger(snap)
			return nil
		},
	}
}

func (a *App) expensesDeleteCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "delete",
		Summary: "Delete an expense",
		Usage:   "tripboard expenses delete <expense-id>",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := wantArgs(args, 1, "tripboard expenses delete <expense-id>"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.openLedger(ctx, tripID); err != nil {
				return err
			}
			snap, err := a.ledger.Delete(ctx, id)
			if err != nil {
				return err
			}
			a.printLedger(snap)
			return nil
		},
	}
}
