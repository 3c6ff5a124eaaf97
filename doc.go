// Package nestegg is a single-user, file-persisted financial ledger and
// planning engine. It keeps a registry of accounts and a bounded history of
// balance events encrypted at rest, and derives planning guidance from them.
//
// The core functionalities include:
//   - Encrypted Store: the whole state is serialized and persisted as a
//     single AES-256-GCM blob, with the key kept in a separate owner-only
//     file. Every mutating operation runs a load, mutate, persist cycle
//     under a per-vault mutex.
//   - Account Registry: CRUD over accounts and their category taxonomy
//     (cash, investments, retirement, real estate, liabilities, future
//     income).
//   - History Ledger: a bounded, append-only log of typed entries
//     (balance updates, account creations, merge and unmerge audits) with
//     oldest-first eviction and filtered queries.
//   - Merge/Unmerge Engine: reversible consolidation of accounts, with the
//     audit trail required to reconstruct the merged accounts later.
//   - Allocation Engine: target-versus-current allocation diffing with
//     rebalancing suggestions and diagnostics.
//   - Retirement Projector: a Monte Carlo retirement-success simulation
//     cross-checked by deterministic closed-form estimates.
//   - Apartment Analyzer: loan amortization, rent-goal solving and a
//     monthly cash-flow forecast for a rental property.
//
// This package is the foundational logic for the `negg` command-line tool;
// it exposes no network or command-line surface of its own.
package nestegg
