package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/spospordo/nestegg"
)

// ingestCmd holds the flags for the 'ingest' subcommand.
type ingestCmd struct {
	file     string
	asOf     string
	defaults string
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "apply scanned account balances to the registry" }
func (*ingestCmd) Usage() string {
	return `negg ingest -file <scan.json> [-as-of <date>] [-defaults category=type,...]

  Reads a JSON array of {name, balance, category} triples, fuzzy-matches
  each against the registry, refreshes matched balances that are not
  stale, and creates accounts for the rest.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "Path to the scanned-triples JSON file")
	f.StringVar(&c.asOf, "as-of", "", "Date of the scan (default today)")
	f.StringVar(&c.defaults, "defaults", "", "Account type per scan category, category=type comma separated")
}

func (c *ingestCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading scan file: %v\n", err)
		return subcommands.ExitFailure
	}
	var items []nestegg.ScannedAccount
	if err := json.Unmarshal(data, &items); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing scan file: %v\n", err)
		return subcommands.ExitFailure
	}

	asOf := nestegg.Today()
	if c.asOf != "" {
		asOf, err = nestegg.ParseDate(c.asOf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -as-of: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	defaults := make(map[string]nestegg.AccountType)
	if c.defaults != "" {
		for _, pair := range strings.Split(c.defaults, ",") {
			category, typeName, ok := strings.Cut(pair, "=")
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: malformed default %q\n", pair)
				return subcommands.ExitUsageError
			}
			accountType, err := nestegg.ParseAccountType(typeName)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitUsageError
			}
			defaults[category] = accountType
		}
	}

	vault, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vault: %v\n", err)
		return subcommands.ExitFailure
	}
	var report *nestegg.IngestReport
	err = vault.Update(func(st *nestegg.State) error {
		report = st.IngestScan(items, defaults, asOf)
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, name := range report.Updated {
		fmt.Printf("Updated %s\n", name)
	}
	for _, name := range report.Stale {
		fmt.Printf("Skipped %s (scan older than last update)\n", name)
	}
	for _, name := range report.Created {
		fmt.Printf("Created %s\n", name)
	}
	return subcommands.ExitSuccess
}
