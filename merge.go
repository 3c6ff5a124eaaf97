package nestegg

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Domain failures of the merge/unmerge engine. Messages are user-facing.
var (
	ErrNotEnoughAccounts = errors.New("at least two resolvable accounts are required to merge")
	ErrNothingToUnmerge  = errors.New("account has no previous names to unmerge")
	ErrNoMergeAudit      = errors.New("merge audit entry not found; it may have been evicted from the bounded history")
)

// MergeAccounts consolidates the accounts with the given ids into a single
// survivor.
//
// The survivor is the account with the latest update time (falling back to
// its creation time); ties resolve to the first account encountered during
// the scan. The survivor absorbs, in insertion order and without duplicates,
// the other accounts' current names (unless identical to its own) and their
// previous names. All history entries referencing a non-survivor are
// re-pointed to the survivor, an accounts_merged audit entry is appended,
// and the non-survivors are removed from the registry.
//
// The transform happens on the in-memory state; it is durable only once the
// caller persists it.
func (st *State) MergeAccounts(ids []string) (Account, error) {
	var resolved []*Account
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if a := st.Account(id); a != nil {
			resolved = append(resolved, a)
		}
	}
	if len(resolved) < 2 {
		return Account{}, ErrNotEnoughAccounts
	}

	survivor := resolved[0]
	for _, a := range resolved[1:] {
		if effectiveTime(a).After(effectiveTime(survivor)) {
			survivor = a
		}
	}

	// Union of previous names, insertion order, duplicates dropped.
	names := make([]string, 0, len(survivor.PreviousNames))
	known := make(map[string]bool)
	addName := func(name string) {
		if name == "" || known[name] {
			return
		}
		known[name] = true
		names = append(names, name)
	}
	for _, n := range survivor.PreviousNames {
		addName(n)
	}
	var mergedIDs, mergedNames []string
	for _, a := range resolved {
		if a.ID == survivor.ID {
			continue
		}
		mergedIDs = append(mergedIDs, a.ID)
		mergedNames = append(mergedNames, a.Name)
		if a.Name != survivor.Name {
			addName(a.Name)
		}
		for _, n := range a.PreviousNames {
			addName(n)
		}
	}

	removed := make(map[string]string, len(mergedIDs)) // id -> original name
	for i, id := range mergedIDs {
		removed[id] = mergedNames[i]
	}

	// Re-point ledger entries from the removed accounts to the survivor.
	for i, e := range st.History.entries {
		switch v := e.(type) {
		case BalanceUpdate:
			if name, ok := removed[v.AccountID]; ok {
				if v.OriginalAccountName == "" {
					// Keep the first original name across repeated merges.
					v.OriginalAccountName = name
				}
				v.AccountID = survivor.ID
				v.AccountName = survivor.Name
				v.TransferredToAccount = true
				st.History.entries[i] = v
			}
		case AccountCreated:
			if name, ok := removed[v.AccountID]; ok {
				if v.OriginalAccountName == "" {
					v.OriginalAccountName = name
				}
				v.AccountID = survivor.ID
				v.AccountName = survivor.Name
				v.TransferredToAccount = true
				st.History.entries[i] = v
			}
		}
	}

	survivor.PreviousNames = names
	survivor.UpdatedAt = time.Now()

	st.History.Append(AccountsMerged{
		baseEntry:     baseEntry{Event: KindAccountsMerged},
		SurvivorID:    survivor.ID,
		SurvivorName:  survivor.Name,
		MergedIDs:     mergedIDs,
		MergedNames:   mergedNames,
		PreviousNames: append([]string(nil), names...),
	})

	survived := *survivor
	kept := st.Accounts[:0]
	for _, a := range st.Accounts {
		if _, gone := removed[a.ID]; !gone {
			kept = append(kept, a)
		}
	}
	st.Accounts = kept
	return survived, nil
}

func effectiveTime(a *Account) time.Time {
	if a.UpdatedAt.IsZero() {
		return a.CreatedAt
	}
	return a.UpdatedAt
}

// UnmergeReport describes the accounts recreated by an unmerge.
type UnmergeReport struct {
	SourceID       string
	RecreatedIDs   []string
	RecreatedNames []string
}

// UnmergeAccount recreates the accounts previously merged into the given
// survivor. It is a best-effort structural inverse of MergeAccounts, not an
// exact mathematical one: recreated accounts take the survivor's current
// type, and balances are reconstructed by priority from a manual override
// keyed by name, then from the most recent pre-merge balance_update matching
// the name, then zero.
//
// It fails when the account's previousNames set is empty or when the
// accounts_merged audit entry has been evicted from the bounded history.
func (st *State) UnmergeAccount(id string, manualBalances map[string]Money) (*UnmergeReport, error) {
	acct := st.Account(id)
	if acct == nil {
		return nil, ErrAccountNotFound
	}
	if len(acct.PreviousNames) == 0 {
		return nil, ErrNothingToUnmerge
	}

	// Latest merge audit naming this account as survivor.
	var audit *AccountsMerged
	for i := len(st.History.entries) - 1; i >= 0; i-- {
		if m, ok := st.History.entries[i].(AccountsMerged); ok && m.SurvivorID == id {
			audit = &m
			break
		}
	}
	if audit == nil {
		return nil, ErrNoMergeAudit
	}
	mergeTime := audit.Timestamp

	report := &UnmergeReport{SourceID: id}
	now := time.Now()
	for _, name := range audit.MergedNames {
		// Fresh random ids: time-based ids collide under rapid repeated
		// operations.
		newID := uuid.NewString()

		balance, ok := manualBalances[name]
		if !ok {
			balance = lastBalanceBefore(st.History, name, mergeTime)
		}

		st.Accounts = append(st.Accounts, Account{
			ID:           newID,
			Name:         name,
			Type:         acct.Type, // survivor's current type; the original type is not restored
			CurrentValue: balance,
			CreatedAt:    now,
			UpdatedAt:    now,
		})

		// Duplicate the pre-merge entries for that name under the new id.
		var restored []Entry
		for _, e := range st.History.entries {
			v, ok := e.(BalanceUpdate)
			if !ok || !matchesMergedName(v, name) || !v.Timestamp.Before(mergeTime) {
				continue
			}
			v.AccountID = newID
			v.AccountName = name
			v.TransferredToAccount = false
			v.RestoredFromMerge = true
			restored = append(restored, v)
		}
		st.History.Append(restored...)

		// Synthetic entry recording the recreation itself.
		st.History.Append(NewBalanceUpdate(newID, name, Money{}, balance, Today()))

		report.RecreatedIDs = append(report.RecreatedIDs, newID)
		report.RecreatedNames = append(report.RecreatedNames, name)
	}

	// The merge relationship is consumed.
	acct = st.Account(id) // reacquire: the slice may have been reallocated
	acct.PreviousNames = nil
	acct.UpdatedAt = now

	st.History.Append(AccountsUnmerged{
		baseEntry:      baseEntry{Event: KindAccountsUnmerged},
		SourceID:       id,
		SourceName:     acct.Name,
		RecreatedIDs:   append([]string(nil), report.RecreatedIDs...),
		RecreatedNames: append([]string(nil), report.RecreatedNames...),
	})
	return report, nil
}

// matchesMergedName reports whether a balance entry belonged to the account
// named name before a merge re-pointed it.
func matchesMergedName(e BalanceUpdate, name string) bool {
	if e.OriginalAccountName == name {
		return true
	}
	return e.AccountName == name && e.TransferredToAccount
}

// lastBalanceBefore returns the newest pre-merge balance recorded for the
// merged account name, or zero money when none survives in the history.
func lastBalanceBefore(h *History, name string, mergeTime time.Time) Money {
	var balance Money
	var at time.Time
	for _, e := range h.entries {
		v, ok := e.(BalanceUpdate)
		if !ok || !matchesMergedName(v, name) {
			continue
		}
		if !v.Timestamp.Before(mergeTime) {
			continue
		}
		if at.IsZero() || v.Timestamp.After(at) {
			at = v.Timestamp
			balance = v.NewBalance
		}
	}
	return balance
}
