// Package cmd implements the CLI application to manage a nestegg vault.
package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/spospordo/nestegg"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&accountAddCmd{}, "accounts")
	c.Register(&accountListCmd{}, "accounts")
	c.Register(&accountDeleteCmd{}, "accounts")
	c.Register(&balanceCmd{}, "accounts")
	c.Register(&displayNameCmd{}, "accounts")

	c.Register(&mergeCmd{}, "consolidation")
	c.Register(&unmergeCmd{}, "consolidation")
	c.Register(&historyCmd{}, "consolidation")

	c.Register(&profileCmd{}, "planning")
	c.Register(&allocateCmd{}, "planning")
	c.Register(&retireCmd{}, "planning")
	c.Register(&apartmentCmd{}, "planning")

	c.Register(&ingestCmd{}, "ingestion")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var statePath = flag.String("state", "nestegg.state", "Path to the encrypted state blob")
var keyPath = flag.String("key", "nestegg.key", "Path to the encryption key file")

// openVault opens the vault over the configured paths, creating the key on
// first use.
func openVault() (*nestegg.Vault, error) {
	return nestegg.Open(nestegg.Config{
		StatePath: *statePath,
		KeyPath:   *keyPath,
	})
}
