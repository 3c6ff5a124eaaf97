package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/google/subcommands"
	"github.com/spospordo/nestegg"
)

// profileCmd holds the flags for the 'profile' subcommand.
type profileCmd struct {
	age      int
	income   float64
	retireAt int
	spending float64
	risk     string
}

func (*profileCmd) Name() string     { return "profile" }
func (*profileCmd) Synopsis() string { return "view or update the owner's planning profile" }
func (*profileCmd) Usage() string {
	return `negg profile [-age <years>] [-income <amount>] [-retire-at <age>] [-spending <amount>] [-risk <tier>]

  With no flags, prints the stored profile. Flags update the matching
  fields; unset flags leave the stored values alone.
`
}

func (c *profileCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.age, "age", 0, "Current age")
	f.Float64Var(&c.income, "income", 0, "Annual income")
	f.IntVar(&c.retireAt, "retire-at", 0, "Planned retirement age")
	f.Float64Var(&c.spending, "spending", 0, "Annual retirement spending")
	f.StringVar(&c.risk, "risk", "", "Risk tolerance: conservative, moderate or aggressive")
}

func (c *profileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var risk nestegg.RiskTolerance
	if c.risk != "" {
		var err error
		risk, err = nestegg.ParseRiskTolerance(c.risk)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}
	err = vault.Update(func(st *nestegg.State) error {
		if c.age > 0 {
			st.Profile.Age = c.age
		}
		if c.income > 0 {
			st.Profile.AnnualIncome = c.income
		}
		if c.retireAt > 0 {
			st.Profile.RetirementAge = c.retireAt
		}
		if c.spending > 0 {
			st.Profile.AnnualRetirementSpending = c.spending
		}
		if risk != "" {
			st.Profile.RiskTolerance = risk
		}
		p := st.Profile
		fmt.Printf("Age:                 %d\n", p.Age)
		fmt.Printf("Annual income:       %.2f\n", p.AnnualIncome)
		fmt.Printf("Retirement age:      %d\n", p.EffectiveRetirementAge())
		fmt.Printf("Retirement spending: %.2f\n", p.AnnualRetirementSpending)
		fmt.Printf("Risk tolerance:      %s\n", p.EffectiveRiskTolerance())
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// allocateCmd holds the flags for the 'allocate' subcommand.
type allocateCmd struct{}

func (*allocateCmd) Name() string     { return "allocate" }
func (*allocateCmd) Synopsis() string { return "compare current allocation against the target" }
func (*allocateCmd) Usage() string {
	return `negg allocate

  Categorizes every account, derives the age- and risk-based target
  allocation, and prints rebalancing suggestions for material gaps.
`
}
func (*allocateCmd) SetFlags(*flag.FlagSet) {}

func (c *allocateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}
	err = vault.View(func(st *nestegg.State) error {
		report, err := st.AllocationReport()
		if err != nil {
			return err
		}
		fmt.Printf("Total assets:      %s\n", report.TotalAssets)
		fmt.Printf("Total liabilities: %s\n", report.TotalLiabilities)
		fmt.Printf("Debt ratio:        %.1f%%\n", report.DebtRatio*100)
		fmt.Println()

		categories := make([]nestegg.Category, 0, len(report.Current))
		for cat := range report.Current {
			categories = append(categories, cat)
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
		fmt.Printf("%-15s %10s %10s\n", "Category", "Current", "Target")
		for _, cat := range categories {
			fmt.Printf("%-15s %9.1f%% %9.1f%%\n", cat, report.Current[cat], report.Target[cat])
		}

		if len(report.Suggestions) > 0 {
			fmt.Println()
			for _, s := range report.Suggestions {
				fmt.Printf("- %s\n", s.Text)
			}
		}
		for _, d := range report.Diagnostics {
			fmt.Printf("! %s\n", d)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// retireCmd holds the flags for the 'retire' subcommand.
type retireCmd struct{}

func (*retireCmd) Name() string     { return "retire" }
func (*retireCmd) Synopsis() string { return "estimate the retirement plan's success probability" }
func (*retireCmd) Usage() string {
	return `negg retire

  Runs the stochastic projection from the current asset base and profile
  and prints the success probability with its advisory band.
`
}
func (*retireCmd) SetFlags(*flag.FlagSet) {}

func (c *retireCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}
	err = vault.View(func(st *nestegg.State) error {
		p, err := st.ProjectRetirement(nil)
		if err != nil {
			return err
		}
		fmt.Printf("Success probability:  %.1f%% over %d trials (%s)\n", p.SuccessProbability, p.Trials, p.Band)
		source := "risk tier"
		if p.ReturnFromHistory {
			source = "balance history"
		}
		fmt.Printf("Expected return:      %.2f%% (from %s), volatility %.2f%%\n", p.ExpectedReturn*100, source, p.Volatility*100)
		fmt.Printf("At retirement:        %.2f projected vs %.2f needed\n", p.ProjectedAtRetirement, p.CapitalNeeded)
		if p.Shortfall > 0 {
			fmt.Printf("Shortfall:            %.2f\n", p.Shortfall)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
