package nestegg

import (
	"testing"
)

func TestNetWorth(t *testing.T) {
	st := NewState()
	st.UpsertAccount(Account{Name: "Checking", Type: Checking, CurrentValue: M(5000, "USD")})
	st.UpsertAccount(Account{Name: "Brokerage", Type: Brokerage, CurrentValue: M(45000, "USD")})
	st.UpsertAccount(Account{Name: "Home", Type: Property, CurrentValue: M(250000, "USD")})
	st.UpsertAccount(Account{Name: "Mortgage", Type: Mortgage, CurrentValue: M(180000, "USD")})
	st.UpsertAccount(Account{Name: "Social Security", Type: SocialSecurity, CurrentValue: M(400000, "USD")})

	nw := st.NetWorth()
	if !nw.Assets.Equal(M(300000, "USD")) {
		t.Errorf("Assets = %s; future income must not count", nw.Assets)
	}
	if !nw.Liabilities.Equal(M(180000, "USD")) {
		t.Errorf("Liabilities = %s", nw.Liabilities)
	}
	if !nw.Net.Equal(M(120000, "USD")) {
		t.Errorf("Net = %s", nw.Net)
	}
}

func TestSortedAccounts(t *testing.T) {
	st := NewState()
	st.UpsertAccount(Account{Name: "zulu", Type: Checking})
	b := st.UpsertAccount(Account{Name: "bravo", Type: Checking})
	st.UpsertAccount(Account{Name: "mike", Type: Checking})
	// The display label, not the raw name, orders the listing.
	if err := st.SetDisplayName(b.ID, "yankee"); err != nil {
		t.Fatal(err)
	}

	var labels []string
	for _, a := range st.SortedAccounts() {
		labels = append(labels, a.Label())
	}
	want := []string{"mike", "yankee", "zulu"}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("labels = %v, want %v", labels, want)
		}
	}
}

func TestSettingsWithDefaults(t *testing.T) {
	var s AdvancedSettings
	got := s.withDefaults()
	if got.SimulationCount != 10000 || got.YearsInRetirement != 30 {
		t.Errorf("defaults = %+v", got)
	}
	if got.Tiers[Moderate].ExpectedReturn != 0.07 {
		t.Errorf("moderate tier = %+v", got.Tiers[Moderate])
	}

	// Explicit values survive.
	s.SimulationCount = 500
	s.InflationRate = 0.05
	got = s.withDefaults()
	if got.SimulationCount != 500 || got.InflationRate != 0.05 {
		t.Errorf("explicit settings overridden: %+v", got)
	}
	if got.SavingsRate != 0.15 {
		t.Errorf("unset field not defaulted: %+v", got)
	}
}

func TestStateEncodeDecodeRoundTrip(t *testing.T) {
	st := NewState()
	a := st.UpsertAccount(Account{Name: "Checking", Type: Checking, CurrentValue: M(1234.56, "USD")})
	if err := st.UpdateBalance(a.ID, M(2000, "USD"), NewDate(2025, 6, 1)); err != nil {
		t.Fatal(err)
	}
	st.Profile = Demographics{Age: 38, AnnualIncome: 90000, RiskTolerance: Aggressive}
	st.Apartment = &Apartment{
		Principal:   M(200000, "USD"),
		AnnualRate:  0.045,
		TermMonths:  360,
		Origination: NewDate(2024, 1, 1),
		Goal:        FinancialGoal{Type: Breakeven},
	}

	payload, err := encodeState(st)
	if err != nil {
		t.Fatalf("encodeState: %v", err)
	}
	back, err := decodeState(payload)
	if err != nil {
		t.Fatalf("decodeState: %v", err)
	}

	if len(back.Accounts) != 1 || back.Accounts[0].ID != a.ID {
		t.Fatalf("accounts = %+v", back.Accounts)
	}
	if !back.Accounts[0].CurrentValue.Equal(M(2000, "USD")) {
		t.Errorf("balance = %s", back.Accounts[0].CurrentValue)
	}
	if back.Profile.Age != 38 || back.Profile.RiskTolerance != Aggressive {
		t.Errorf("profile = %+v", back.Profile)
	}
	if back.Apartment == nil || back.Apartment.TermMonths != 360 || back.Apartment.Origination != NewDate(2024, 1, 1) {
		t.Errorf("apartment = %+v", back.Apartment)
	}
	if back.History.Len() != st.History.Len() {
		t.Errorf("history entries = %d, want %d", back.History.Len(), st.History.Len())
	}
}

func TestDecodeStateRejectsGarbage(t *testing.T) {
	if _, err := decodeState([]byte("not json")); err == nil {
		t.Errorf("garbage payload accepted")
	}
	if _, err := decodeState([]byte(`{"history":[{"kind":"martian"}]}`)); err == nil {
		t.Errorf("unknown entry kind accepted")
	}
}
