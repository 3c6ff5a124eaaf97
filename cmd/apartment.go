package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/spospordo/nestegg"
)

// apartmentCmd holds the flags for the 'apartment' subcommand.
type apartmentCmd struct {
	principal   float64
	rate        float64
	term        int
	origination string
	currency    string

	goal   string
	target float64

	rent      bool
	cashflow  bool
	from      string
	to        string
	asOf      string
	reconcile float64
	month     string
	sync      bool
}

func (*apartmentCmd) Name() string     { return "apartment" }
func (*apartmentCmd) Synopsis() string { return "analyze the rental apartment investment" }
func (*apartmentCmd) Usage() string {
	return `negg apartment [-principal <amount> -rate <apr> -term <months> -origination <date>]
               [-goal <type> [-target <amount>]]
               [-rent [-as-of <date>]]
               [-cashflow -from <date> -to <date>]
               [-reconcile <amount> -month <date>]
               [-sync]

  Mortgage terms, the financial goal, rent suggestions, the monthly
  cash-flow analysis, income reconciliation and account synchronization
  all operate on the single apartment of the vault.
`
}

func (c *apartmentCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.principal, "principal", 0, "Original loan amount")
	f.Float64Var(&c.rate, "rate", 0, "Annual interest rate, e.g. 0.045")
	f.IntVar(&c.term, "term", 0, "Loan term in months")
	f.StringVar(&c.origination, "origination", "", "Loan origination date")
	f.StringVar(&c.currency, "currency", "USD", "Currency of the amounts")
	f.StringVar(&c.goal, "goal", "", "Rent goal: breakeven, breakeven_excluding_principal or profit")
	f.Float64Var(&c.target, "target", 0, "Monthly margin for the profit goal")
	f.BoolVar(&c.rent, "rent", false, "Print the suggested monthly rent")
	f.BoolVar(&c.cashflow, "cashflow", false, "Print the monthly cash-flow analysis")
	f.StringVar(&c.from, "from", "", "First month of the cash-flow range")
	f.StringVar(&c.to, "to", "", "Last month of the cash-flow range")
	f.StringVar(&c.asOf, "as-of", "", "Reference date for the rent suggestion (default today)")
	f.Float64Var(&c.reconcile, "reconcile", 0, "Record collected rent for -month")
	f.StringVar(&c.month, "month", "", "Month the reconciled amount was collected in")
	f.BoolVar(&c.sync, "sync", false, "Sync the linked mortgage and equity accounts")
}

func (c *apartmentCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}

	err = vault.Update(func(st *nestegg.State) error {
		if st.Apartment == nil {
			st.Apartment = &nestegg.Apartment{}
		}
		ap := st.Apartment

		if c.principal > 0 {
			ap.Principal = nestegg.M(c.principal, c.currency)
		}
		if c.rate > 0 {
			ap.AnnualRate = c.rate
		}
		if c.term > 0 {
			ap.TermMonths = c.term
		}
		if c.origination != "" {
			d, err := nestegg.ParseDate(c.origination)
			if err != nil {
				return fmt.Errorf("parsing -origination: %w", err)
			}
			ap.Origination = d
		}
		if c.goal != "" {
			ap.Goal = nestegg.FinancialGoal{
				Type:         nestegg.GoalType(c.goal),
				TargetAmount: nestegg.M(c.target, c.currency),
			}
		}
		if c.reconcile > 0 {
			month, err := nestegg.ParseDate(c.month)
			if err != nil {
				return fmt.Errorf("parsing -month: %w", err)
			}
			if err := st.ReconcileMonth(month, nestegg.M(c.reconcile, c.currency)); err != nil {
				return err
			}
			fmt.Printf("Reconciled %s for %s\n", nestegg.M(c.reconcile, c.currency), month.FirstOfMonth())
		}

		if c.rent {
			asOf := nestegg.Today()
			if c.asOf != "" {
				var err error
				asOf, err = nestegg.ParseDate(c.asOf)
				if err != nil {
					return fmt.Errorf("parsing -as-of: %w", err)
				}
			}
			suggested, err := ap.SuggestedRent(asOf)
			if err != nil {
				return err
			}
			fmt.Printf("Suggested rent (%s goal): %s\n", ap.Goal.Type, suggested)
		}

		if c.cashflow {
			from, err := nestegg.ParseDate(c.from)
			if err != nil {
				return fmt.Errorf("parsing -from: %w", err)
			}
			to, err := nestegg.ParseDate(c.to)
			if err != nil {
				return fmt.Errorf("parsing -to: %w", err)
			}
			months, err := ap.CashFlow(from, to)
			if err != nil {
				return err
			}
			fmt.Printf("%-10s %12s %12s %12s %12s\n", "Month", "Income", "Expenses", "Mortgage", "Net")
			for _, m := range months {
				fmt.Printf("%-10s %12s %12s %12s %12s\n", m.Month, m.Income, m.Expenses, m.Mortgage, m.Net)
			}
		}

		if c.sync {
			if err := st.SyncMortgageAccounts(nestegg.Today()); err != nil {
				return err
			}
			fmt.Println("Mortgage and equity accounts synced")
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
