package nestegg

import (
	"iter"
	"sort"
	"time"
)

// EntryKind is a typed string identifying history entry kinds.
type EntryKind string

// Entry kinds recorded in the history ledger.
const (
	KindBalanceUpdate    EntryKind = "balance_update"
	KindAccountCreated   EntryKind = "account_created"
	KindAccountsMerged   EntryKind = "accounts_merged"
	KindAccountsUnmerged EntryKind = "accounts_unmerged"
)

// Entry defines the common interface for all history entry kinds.
type Entry interface {
	Kind() EntryKind      // Kind returns the entry kind (e.g., "balance_update").
	When() time.Time      // When returns the entry timestamp, the ordering and eviction key.
	AccountRef() string   // AccountRef returns the id of the account the entry concerns.
	Equal(Entry) bool
}

// baseEntry carries the discriminator and timestamp shared by all kinds.
type baseEntry struct {
	Event     EntryKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func (e baseEntry) Kind() EntryKind { return e.Event }
func (e baseEntry) When() time.Time { return e.Timestamp }

// BalanceUpdate records a change of an account's balance.
//
// BalanceDate is the authoritative chronological key for financial
// calculations; Timestamp orders the ledger. They are intentionally distinct.
type BalanceUpdate struct {
	baseEntry
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	OldBalance  Money  `json:"oldBalance"`
	NewBalance  Money  `json:"newBalance"`
	BalanceDate Date   `json:"balanceDate,omitempty"`
	// Merge bookkeeping. OriginalAccountName is captured once when the entry
	// is re-pointed to a merge survivor; TransferredToAccount marks the
	// re-pointing; RestoredFromMerge marks entries duplicated by an unmerge.
	OriginalAccountName  string `json:"originalAccountName,omitempty"`
	TransferredToAccount bool   `json:"transferredToAccount,omitempty"`
	RestoredFromMerge    bool   `json:"restoredFromMerge,omitempty"`
}

// NewBalanceUpdate creates a balance_update entry. The timestamp is assigned
// by History.Append.
func NewBalanceUpdate(accountID, accountName string, oldBalance, newBalance Money, on Date) BalanceUpdate {
	return BalanceUpdate{
		baseEntry:   baseEntry{Event: KindBalanceUpdate},
		AccountID:   accountID,
		AccountName: accountName,
		OldBalance:  oldBalance,
		NewBalance:  newBalance,
		BalanceDate: on,
	}
}

func (e BalanceUpdate) AccountRef() string { return e.AccountID }

func (e BalanceUpdate) Equal(other Entry) bool {
	o, ok := other.(BalanceUpdate)
	return ok && e.baseEntry == o.baseEntry && e.AccountID == o.AccountID &&
		e.AccountName == o.AccountName && e.OldBalance.Equal(o.OldBalance) &&
		e.NewBalance.Equal(o.NewBalance) && e.BalanceDate == o.BalanceDate &&
		e.OriginalAccountName == o.OriginalAccountName &&
		e.TransferredToAccount == o.TransferredToAccount &&
		e.RestoredFromMerge == o.RestoredFromMerge
}

// AccountCreated records the creation of an account.
type AccountCreated struct {
	baseEntry
	AccountID            string `json:"accountId"`
	AccountName          string `json:"accountName"`
	InitialBalance       Money  `json:"initialBalance"`
	OriginalAccountName  string `json:"originalAccountName,omitempty"`
	TransferredToAccount bool   `json:"transferredToAccount,omitempty"`
}

// NewAccountCreated creates an account_created entry.
func NewAccountCreated(accountID, accountName string, initial Money) AccountCreated {
	return AccountCreated{
		baseEntry:      baseEntry{Event: KindAccountCreated},
		AccountID:      accountID,
		AccountName:    accountName,
		InitialBalance: initial,
	}
}

func (e AccountCreated) AccountRef() string { return e.AccountID }

func (e AccountCreated) Equal(other Entry) bool {
	o, ok := other.(AccountCreated)
	return ok && e.baseEntry == o.baseEntry && e.AccountID == o.AccountID &&
		e.AccountName == o.AccountName && e.InitialBalance.Equal(o.InitialBalance) &&
		e.OriginalAccountName == o.OriginalAccountName &&
		e.TransferredToAccount == o.TransferredToAccount
}

// AccountsMerged is the audit entry of a merge. MergedIDs and MergedNames are
// pairwise: MergedNames[i] was the name of the account MergedIDs[i]. The
// pairs are what a later unmerge replays.
type AccountsMerged struct {
	baseEntry
	SurvivorID    string   `json:"survivorId"`
	SurvivorName  string   `json:"survivorName"`
	MergedIDs     []string `json:"mergedAccountIds"`
	MergedNames   []string `json:"mergedAccountNames"`
	PreviousNames []string `json:"previousNames"` // survivor's previousNames right after the merge
}

func (e AccountsMerged) AccountRef() string { return e.SurvivorID }

func (e AccountsMerged) Equal(other Entry) bool {
	o, ok := other.(AccountsMerged)
	return ok && e.baseEntry == o.baseEntry && e.SurvivorID == o.SurvivorID &&
		e.SurvivorName == o.SurvivorName && equalStrings(e.MergedIDs, o.MergedIDs) &&
		equalStrings(e.MergedNames, o.MergedNames) && equalStrings(e.PreviousNames, o.PreviousNames)
}

// AccountsUnmerged is the audit entry of an unmerge.
type AccountsUnmerged struct {
	baseEntry
	SourceID       string   `json:"sourceAccountId"`
	SourceName     string   `json:"sourceAccountName"`
	RecreatedIDs   []string `json:"recreatedAccountIds"`
	RecreatedNames []string `json:"recreatedAccountNames"`
}

func (e AccountsUnmerged) AccountRef() string { return e.SourceID }

func (e AccountsUnmerged) Equal(other Entry) bool {
	o, ok := other.(AccountsUnmerged)
	return ok && e.baseEntry == o.baseEntry && e.SourceID == o.SourceID &&
		e.SourceName == o.SourceName && equalStrings(e.RecreatedIDs, o.RecreatedIDs) &&
		equalStrings(e.RecreatedNames, o.RecreatedNames)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DefaultHistoryCap bounds the ledger when no explicit cap is configured.
const DefaultHistoryCap = 1000

// History is the bounded append-only event log.
//
// Entries are kept sorted by timestamp; once the cap is exceeded the oldest
// entries are evicted. The invariant holds unconditionally after every append.
type History struct {
	entries []Entry
	cap     int
}

// NewHistory creates an empty history with the given cap. A non-positive cap
// means DefaultHistoryCap.
func NewHistory(cap int) *History {
	return &History{cap: cap}
}

// Cap returns the effective maximum number of entries.
func (h *History) Cap() int {
	if h.cap <= 0 {
		return DefaultHistoryCap
	}
	return h.cap
}

// SetCap changes the cap and immediately applies eviction.
func (h *History) SetCap(cap int) {
	h.cap = cap
	h.evict()
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Append adds entries, assigning the current time to any entry missing a
// timestamp, then evicts the oldest entries beyond the cap.
func (h *History) Append(entries ...Entry) {
	now := time.Now()
	for _, e := range entries {
		h.entries = append(h.entries, stamp(e, now))
	}
	h.stableSort()
	h.evict()
}

// stamp returns a copy of the entry with the timestamp set when missing.
func stamp(e Entry, now time.Time) Entry {
	switch v := e.(type) {
	case BalanceUpdate:
		if v.Timestamp.IsZero() {
			v.Timestamp = now
		}
		return v
	case AccountCreated:
		if v.Timestamp.IsZero() {
			v.Timestamp = now
		}
		return v
	case AccountsMerged:
		if v.Timestamp.IsZero() {
			v.Timestamp = now
		}
		return v
	case AccountsUnmerged:
		if v.Timestamp.IsZero() {
			v.Timestamp = now
		}
		return v
	}
	return e
}

// stableSort sorts the history by timestamp. The sort is stable, meaning
// entries with the same timestamp maintain their original relative order.
func (h *History) stableSort() {
	sort.SliceStable(h.entries, func(i, j int) bool {
		return h.entries[i].When().Before(h.entries[j].When())
	})
}

func (h *History) evict() {
	if overflow := len(h.entries) - h.Cap(); overflow > 0 {
		h.entries = append(h.entries[:0], h.entries[overflow:]...)
	}
}

// Entries returns an iterator over entries in timestamp order. With no
// filters every entry is yielded; with filters an entry is yielded when any
// filter accepts it.
func (h *History) Entries(filters ...func(Entry) bool) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range h.entries {
			accept := len(filters) == 0
			for _, filter := range filters {
				if filter(e) {
					accept = true
					break
				}
			}
			if !accept {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Query returns entries filtered by account id and an inclusive timestamp
// range. An empty id or zero bound leaves that dimension unbounded.
func (h *History) Query(accountID string, start, end time.Time) []Entry {
	var out []Entry
	for _, e := range h.entries {
		if accountID != "" && e.AccountRef() != accountID {
			continue
		}
		if !start.IsZero() && e.When().Before(start) {
			continue
		}
		if !end.IsZero() && e.When().After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ByKind returns a predicate that filters entries by kind.
func ByKind(kind EntryKind) func(Entry) bool {
	return func(e Entry) bool { return e.Kind() == kind }
}

// ByAccount returns a predicate that filters entries by account reference.
func ByAccount(id string) func(Entry) bool {
	return func(e Entry) bool { return e.AccountRef() == id }
}
