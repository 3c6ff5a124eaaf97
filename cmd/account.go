package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/spospordo/nestegg"
)

// accountAddCmd holds the flags for the 'account-add' subcommand.
type accountAddCmd struct {
	name     string
	accType  string
	value    float64
	currency string
	display  string
}

func (*accountAddCmd) Name() string     { return "account-add" }
func (*accountAddCmd) Synopsis() string { return "create or update an account in the vault" }
func (*accountAddCmd) Usage() string {
	return `negg account-add -name <name> -type <type> [-value <amount>] [-display <label>]

  Creates an account. Types: checking, savings, brokerage, crypto, 401k,
  ira, pension, property, mortgage, loan, credit-card, social-security.
`
}

func (c *accountAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Account name")
	f.StringVar(&c.accType, "type", "checking", "Account type")
	f.Float64Var(&c.value, "value", 0, "Current balance (liabilities as a positive number)")
	f.StringVar(&c.currency, "currency", "USD", "Currency code")
	f.StringVar(&c.display, "display", "", "Optional display name override")
}

func (c *accountAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		return subcommands.ExitUsageError
	}
	accountType, err := nestegg.ParseAccountType(c.accType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}

	var created nestegg.Account
	err = vault.Update(func(st *nestegg.State) error {
		created = st.UpsertAccount(nestegg.Account{
			Name:         c.name,
			DisplayName:  c.display,
			Type:         accountType,
			CurrentValue: nestegg.M(c.value, c.currency),
		})
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Created account %s (%s)\n", created.Label(), created.ID)
	return subcommands.ExitSuccess
}

// accountListCmd holds the flags for the 'account-list' subcommand.
type accountListCmd struct{}

func (*accountListCmd) Name() string     { return "account-list" }
func (*accountListCmd) Synopsis() string { return "list accounts with balances by category" }
func (*accountListCmd) Usage() string {
	return `negg account-list

  Lists every account, its category and its current balance.
`
}
func (*accountListCmd) SetFlags(*flag.FlagSet) {}

func (c *accountListCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}
	err = vault.View(func(st *nestegg.State) error {
		for _, a := range st.SortedAccounts() {
			fmt.Printf("%-36s  %-20s  %-13s  %s\n", a.ID, a.Label(), a.Type.Category(), a.CurrentValue)
		}
		net := st.NetWorth()
		fmt.Printf("\nassets %s  liabilities %s  net %s\n", net.Assets, net.Liabilities, net.Net)
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// accountDeleteCmd holds the flags for the 'account-delete' subcommand.
type accountDeleteCmd struct {
	id string
}

func (*accountDeleteCmd) Name() string     { return "account-delete" }
func (*accountDeleteCmd) Synopsis() string { return "delete an account by id" }
func (*accountDeleteCmd) Usage() string {
	return `negg account-delete -id <accountId>

  Removes the account from the registry. Its history entries remain.
`
}

func (c *accountDeleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Account id")
}

func (c *accountDeleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}
	err = vault.Update(func(st *nestegg.State) error { return st.DeleteAccount(c.id) })
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted account %s\n", c.id)
	return subcommands.ExitSuccess
}

// balanceCmd holds the flags for the 'balance' subcommand.
type balanceCmd struct {
	id       string
	value    float64
	currency string
	date     string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "record a new balance for an account" }
func (*balanceCmd) Usage() string {
	return `negg balance -id <accountId> -value <amount> [-d <date>]

  Updates the account balance and appends a balance_update history entry.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Account id")
	f.Float64Var(&c.value, "value", 0, "New balance")
	f.StringVar(&c.currency, "currency", "USD", "Currency code")
	f.StringVar(&c.date, "d", nestegg.Today().String(), "Balance date")
}

func (c *balanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := nestegg.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}
	err = vault.Update(func(st *nestegg.State) error {
		return st.UpdateBalance(c.id, nestegg.M(c.value, c.currency), on)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Updated balance of %s\n", c.id)
	return subcommands.ExitSuccess
}

// displayNameCmd holds the flags for the 'display-name' subcommand.
type displayNameCmd struct {
	id    string
	value string
}

func (*displayNameCmd) Name() string     { return "display-name" }
func (*displayNameCmd) Synopsis() string { return "set or clear an account's display name" }
func (*displayNameCmd) Usage() string {
	return `negg display-name -id <accountId> [-value <label>]

  A blank value clears the override.
`
}

func (c *displayNameCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Account id")
	f.StringVar(&c.value, "value", "", "Display name; blank clears the override")
}

func (c *displayNameCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}
	err = vault.Update(func(st *nestegg.State) error { return st.SetDisplayName(c.id, c.value) })
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
