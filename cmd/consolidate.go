package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/spospordo/nestegg"
)

// mergeCmd holds the flags for the 'merge' subcommand.
type mergeCmd struct{}

func (*mergeCmd) Name() string     { return "merge" }
func (*mergeCmd) Synopsis() string { return "merge two or more accounts into one survivor" }
func (*mergeCmd) Usage() string {
	return `negg merge <accountId> <accountId> [<accountId>...]

  The most recently updated account survives and absorbs the others'
  history and names. The merge is recorded as an audit entry so it can be
  reversed with 'unmerge'.
`
}
func (*mergeCmd) SetFlags(*flag.FlagSet) {}

func (c *mergeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ids := f.Args()
	if len(ids) < 2 {
		fmt.Fprintln(os.Stderr, "Error: at least two account ids are required")
		return subcommands.ExitUsageError
	}
	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}

	var survivor nestegg.Account
	err = vault.Update(func(st *nestegg.State) error {
		var err error
		survivor, err = st.MergeAccounts(ids)
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Merged %d accounts into %s (%s)\n", len(ids), survivor.Label(), survivor.ID)
	return subcommands.ExitSuccess
}

// unmergeCmd holds the flags for the 'unmerge' subcommand.
type unmergeCmd struct {
	id       string
	balances string
	currency string
}

func (*unmergeCmd) Name() string     { return "unmerge" }
func (*unmergeCmd) Synopsis() string { return "recreate the accounts previously merged into one" }
func (*unmergeCmd) Usage() string {
	return `negg unmerge -id <accountId> [-balances name=amount,name=amount]

  Recreates the merged accounts from the merge audit entry. Balances are
  reconstructed from pre-merge history unless overridden explicitly.
`
}

func (c *unmergeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Survivor account id")
	f.StringVar(&c.balances, "balances", "", "Manual balance overrides, name=amount comma separated")
	f.StringVar(&c.currency, "currency", "USD", "Currency of the manual overrides")
}

func (c *unmergeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	manual := make(map[string]nestegg.Money)
	if c.balances != "" {
		for _, pair := range strings.Split(c.balances, ",") {
			name, amount, ok := strings.Cut(pair, "=")
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: malformed balance override %q\n", pair)
				return subcommands.ExitUsageError
			}
			var value float64
			if _, err := fmt.Sscanf(amount, "%g", &value); err != nil {
				fmt.Fprintf(os.Stderr, "Error: malformed amount %q: %v\n", amount, err)
				return subcommands.ExitUsageError
			}
			manual[name] = nestegg.M(value, c.currency)
		}
	}

	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}
	var report *nestegg.UnmergeReport
	err = vault.Update(func(st *nestegg.State) error {
		var err error
		report, err = st.UnmergeAccount(c.id, manual)
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for i, name := range report.RecreatedNames {
		fmt.Printf("Recreated %s (%s)\n", name, report.RecreatedIDs[i])
	}
	return subcommands.ExitSuccess
}

// historyCmd holds the flags for the 'history' subcommand.
type historyCmd struct {
	account string
	from    string
	to      string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show history ledger entries" }
func (*historyCmd) Usage() string {
	return `negg history [-account <accountId>] [-from <date>] [-to <date>]

  Shows ledger entries, optionally filtered by account and an inclusive
  timestamp range.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Filter by account id")
	f.StringVar(&c.from, "from", "", "Start of the range (inclusive)")
	f.StringVar(&c.to, "to", "", "End of the range (inclusive)")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var start, end time.Time
	if c.from != "" {
		d, err := nestegg.ParseDate(c.from)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
		start = d.Time()
	}
	if c.to != "" {
		d, err := nestegg.ParseDate(c.to)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
			return subcommands.ExitUsageError
		}
		end = d.Time().Add(24*time.Hour - time.Nanosecond)
	}

	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}
	err = vault.View(func(st *nestegg.State) error {
		for _, e := range st.History.Query(c.account, start, end) {
			switch v := e.(type) {
			case nestegg.BalanceUpdate:
				fmt.Printf("%s  %-17s  %-20s  %s -> %s\n", v.When().Format(time.RFC3339), v.Kind(), v.AccountName, v.OldBalance, v.NewBalance)
			case nestegg.AccountCreated:
				fmt.Printf("%s  %-17s  %-20s  %s\n", v.When().Format(time.RFC3339), v.Kind(), v.AccountName, v.InitialBalance)
			case nestegg.AccountsMerged:
				fmt.Printf("%s  %-17s  %-20s  absorbed %s\n", v.When().Format(time.RFC3339), v.Kind(), v.SurvivorName, strings.Join(v.MergedNames, ", "))
			case nestegg.AccountsUnmerged:
				fmt.Printf("%s  %-17s  %-20s  recreated %s\n", v.When().Format(time.RFC3339), v.Kind(), v.SourceName, strings.Join(v.RecreatedNames, ", "))
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
