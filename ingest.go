package nestegg

import (
	"strings"
	"time"
)

// ScannedAccount is one `{name, balance, category}` triple produced by the
// external text-extraction step. Its heuristics stay entirely behind this
// interface; nothing here leaks into the ledger or merge logic.
type ScannedAccount struct {
	Name     string `json:"name"`
	Balance  Money  `json:"balance"`
	Category string `json:"category"`
}

// IngestReport lists what a scan did to the registry.
type IngestReport struct {
	Updated []string // names of matched accounts whose balance was refreshed
	Stale   []string // matched accounts left untouched because the scan was older
	Created []string // names of accounts created for unmatched triples
}

// IngestScan applies a batch of scanned triples to the registry as of a
// date. Each triple is fuzzy-matched against existing accounts; a match has
// its balance updated only when asOf is on or after the account's last
// update, but a history entry is appended regardless. Unmatched triples
// create new accounts typed by the category's default.
func (st *State) IngestScan(items []ScannedAccount, defaults map[string]AccountType, asOf Date) *IngestReport {
	report := &IngestReport{}
	for _, item := range items {
		a := st.matchAccount(item.Name)
		if a == nil {
			accountType, ok := defaults[item.Category]
			if !ok {
				accountType = Checking
			}
			created := st.UpsertAccount(Account{
				Name:         item.Name,
				Type:         accountType,
				CurrentValue: item.Balance,
			})
			report.Created = append(report.Created, created.Name)
			continue
		}

		// The entry is appended unconditionally: even a stale scan is
		// evidence worth keeping in the ledger.
		entry := NewBalanceUpdate(a.ID, a.Name, a.CurrentValue, item.Balance, asOf)
		st.History.Append(entry)

		if asOf.Before(DateOf(a.UpdatedAt)) {
			report.Stale = append(report.Stale, a.Name)
			continue
		}
		a.CurrentValue = item.Balance
		a.UpdatedAt = time.Now()
		report.Updated = append(report.Updated, a.Name)
	}
	return report
}

// matchAccount finds the first account whose current or previous name
// matches the scanned name: exact (case-insensitive), substring containment
// either way, or punctuation-normalized equality/containment.
func (st *State) matchAccount(name string) *Account {
	for i := range st.Accounts {
		a := &st.Accounts[i]
		if nameMatches(a.Name, name) {
			return a
		}
		for _, prev := range a.PreviousNames {
			if nameMatches(prev, name) {
				return a
			}
		}
	}
	return nil
}

func nameMatches(known, scanned string) bool {
	k := strings.ToLower(strings.TrimSpace(known))
	s := strings.ToLower(strings.TrimSpace(scanned))
	if k == "" || s == "" {
		return false
	}
	if k == s || strings.Contains(k, s) || strings.Contains(s, k) {
		return true
	}
	nk, ns := normalizeName(k), normalizeName(s)
	if nk == "" || ns == "" {
		return false
	}
	return nk == ns || strings.Contains(nk, ns) || strings.Contains(ns, nk)
}

// normalizeName strips everything but letters and digits, so "Vanguard -
// 401(k)" and "vanguard 401k" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
