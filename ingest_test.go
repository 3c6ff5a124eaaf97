package nestegg

import (
	"testing"
	"time"
)

func TestIngestScanUpdatesMatches(t *testing.T) {
	st := NewState()
	a := st.UpsertAccount(Account{Name: "Chase Checking", Type: Checking, CurrentValue: M(1000, "USD")})

	report := st.IngestScan([]ScannedAccount{
		{Name: "CHASE CHECKING", Balance: M(1250, "USD"), Category: "cash"},
	}, nil, Today())

	if len(report.Updated) != 1 || report.Updated[0] != "Chase Checking" {
		t.Fatalf("Updated = %v", report.Updated)
	}
	if len(report.Created) != 0 || len(report.Stale) != 0 {
		t.Errorf("report = %+v", report)
	}
	if got := st.Account(a.ID).CurrentValue; !got.Equal(M(1250, "USD")) {
		t.Errorf("balance = %s, want 1250", got)
	}
}

func TestIngestScanFuzzyMatching(t *testing.T) {
	tests := []struct {
		name    string
		known   string
		scanned string
		match   bool
	}{
		{"exact fold", "Chase Checking", "chase checking", true},
		{"scan contains known", "Checking", "Chase Checking ...4321", true},
		{"known contains scan", "Fidelity Brokerage Account", "Fidelity Brokerage", true},
		{"punctuation normalized", "vanguard-401k", "Vanguard 401K", true},
		{"unrelated", "Chase Checking", "Wells Fargo Savings", false},
		{"blank scan", "Chase Checking", "  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nameMatches(tt.known, tt.scanned); got != tt.match {
				t.Errorf("nameMatches(%q, %q) = %v, want %v", tt.known, tt.scanned, got, tt.match)
			}
		})
	}
}

func TestIngestScanMatchesPreviousNames(t *testing.T) {
	st := NewState()
	a := st.UpsertAccount(Account{Name: "Consolidated Savings", Type: Savings, CurrentValue: M(500, "USD")})
	st.Account(a.ID).PreviousNames = []string{"Old Bank Savings"}

	report := st.IngestScan([]ScannedAccount{
		{Name: "old bank savings", Balance: M(600, "USD"), Category: "cash"},
	}, nil, Today())

	if len(report.Updated) != 1 {
		t.Fatalf("scan did not match the previous name: %+v", report)
	}
	if got := st.Account(a.ID).CurrentValue; !got.Equal(M(600, "USD")) {
		t.Errorf("balance = %s", got)
	}
}

func TestIngestScanStaleGuard(t *testing.T) {
	st := NewState()
	a := st.UpsertAccount(Account{Name: "Brokerage", Type: Brokerage, CurrentValue: M(5000, "USD")})

	// A scan dated before the account's last update must not move the balance.
	yesterday := DateOf(time.Now().AddDate(0, 0, -1))
	report := st.IngestScan([]ScannedAccount{
		{Name: "Brokerage", Balance: M(1, "USD"), Category: "investments"},
	}, nil, yesterday)

	if len(report.Stale) != 1 {
		t.Fatalf("report = %+v, want the account marked stale", report)
	}
	if got := st.Account(a.ID).CurrentValue; !got.Equal(M(5000, "USD")) {
		t.Errorf("stale scan moved the balance to %s", got)
	}

	// The evidence is still appended to the ledger.
	found := false
	for e := range st.History.Entries(ByKind(KindBalanceUpdate)) {
		v := e.(BalanceUpdate)
		if v.AccountID == a.ID && v.NewBalance.Equal(M(1, "USD")) {
			found = true
		}
	}
	if !found {
		t.Errorf("stale scan left no history entry")
	}
}

func TestIngestScanCreatesUnmatched(t *testing.T) {
	st := NewState()
	report := st.IngestScan([]ScannedAccount{
		{Name: "New Credit Union", Balance: M(2000, "USD"), Category: "cash"},
		{Name: "Employer 401k", Balance: M(90000, "USD"), Category: "retirement"},
	}, map[string]AccountType{"retirement": Retirement401k}, Today())

	if len(report.Created) != 2 {
		t.Fatalf("Created = %v", report.Created)
	}
	if len(st.Accounts) != 2 {
		t.Fatalf("registry holds %d accounts", len(st.Accounts))
	}

	byName := make(map[string]Account)
	for _, a := range st.Accounts {
		byName[a.Name] = a
	}
	// Category default applies when mapped; unmapped categories fall back to
	// checking.
	if got := byName["Employer 401k"].Type; got != Retirement401k {
		t.Errorf("mapped category type = %s, want 401k", got)
	}
	if got := byName["New Credit Union"].Type; got != Checking {
		t.Errorf("fallback type = %s, want checking", got)
	}
	if got := byName["New Credit Union"].CurrentValue; !got.Equal(M(2000, "USD")) {
		t.Errorf("created balance = %s", got)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"chase checking ...4321", "chasechecking4321"},
		{"vanguard-401k", "vanguard401k"},
		{"  a & b  ", "ab"},
	}
	for _, tt := range tests {
		if got := normalizeName(tt.input); got != tt.expected {
			t.Errorf("normalizeName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
