package nestegg

import (
	"errors"
	"math"
	"testing"
)

func TestTargetAllocationSumsTo100(t *testing.T) {
	for _, tier := range []RiskTolerance{Conservative, Moderate, Aggressive} {
		for age := 20; age <= 90; age += 5 {
			target := targetAllocation(age, tier)
			sum := 0.0
			for _, c := range AssetCategories {
				sum += target[c]
			}
			if math.Abs(sum-100) > 1e-9 {
				t.Errorf("%s at age %d: targets sum to %.4f", tier, age, sum)
			}
			if target[FutureIncome] != 0 {
				t.Errorf("%s at age %d: future income target = %.1f, want 0", tier, age, target[FutureIncome])
			}
		}
	}
}

func TestTargetAllocationShiftsWithAge(t *testing.T) {
	young := targetAllocation(25, Moderate)
	older := targetAllocation(65, Moderate)
	if young[Investments] <= older[Investments] {
		t.Errorf("investments target should fall with age: %.1f then %.1f", young[Investments], older[Investments])
	}
	if young[Retirement] >= older[Retirement] {
		t.Errorf("retirement target should rise with age: %.1f then %.1f", young[Retirement], older[Retirement])
	}
}

func TestAllocationReportRequiresAge(t *testing.T) {
	st := NewState()
	if _, err := st.AllocationReport(); !errors.Is(err, ErrAgeNotSet) {
		t.Errorf("missing age: %v, want ErrAgeNotSet", err)
	}
}

func TestAllocationReportCurrentShares(t *testing.T) {
	st := NewState()
	st.Profile.Age = 40
	st.UpsertAccount(Account{Name: "Checking", Type: Checking, CurrentValue: M(10000, "USD")})
	st.UpsertAccount(Account{Name: "Brokerage", Type: Brokerage, CurrentValue: M(60000, "USD")})
	st.UpsertAccount(Account{Name: "401k", Type: Retirement401k, CurrentValue: M(30000, "USD")})
	st.UpsertAccount(Account{Name: "Pension est.", Type: SocialSecurity, CurrentValue: M(100000, "USD")})

	report, err := st.AllocationReport()
	if err != nil {
		t.Fatal(err)
	}
	if !report.TotalAssets.Equal(M(100000, "USD")) {
		t.Errorf("total assets = %s; future income must not count", report.TotalAssets)
	}
	if got := report.Current[Cash]; math.Abs(got-10) > 1e-9 {
		t.Errorf("cash share = %.2f%%, want 10%%", got)
	}
	if got := report.Current[Investments]; math.Abs(got-60) > 1e-9 {
		t.Errorf("investments share = %.2f%%, want 60%%", got)
	}
	if got := report.Current[FutureIncome]; got != 0 {
		t.Errorf("future income share = %.2f%%, want 0", got)
	}
}

func TestAllocationReportSuggestions(t *testing.T) {
	st := NewState()
	st.Profile.Age = 40
	st.Profile.RiskTolerance = Moderate
	// Everything in cash: far above the cash target, far below investments.
	st.UpsertAccount(Account{Name: "Checking", Type: Checking, CurrentValue: M(100000, "USD")})

	report, err := st.AllocationReport()
	if err != nil {
		t.Fatal(err)
	}
	var reduceCash, increaseInv bool
	for _, s := range report.Suggestions {
		if s.Category == Cash && s.Direction == "reduce" {
			reduceCash = true
		}
		if s.Category == Investments && s.Direction == "increase" {
			increaseInv = true
		}
	}
	if !reduceCash || !increaseInv {
		t.Errorf("suggestions = %+v, want reduce cash and increase investments", report.Suggestions)
	}
	// The 100-point cash gap is well past the diagnostic threshold.
	if len(report.Diagnostics) == 0 {
		t.Errorf("no diagnostics for an extreme allocation")
	}
}

func TestAllocationReportDebtRatio(t *testing.T) {
	st := NewState()
	st.Profile.Age = 35
	st.UpsertAccount(Account{Name: "Brokerage", Type: Brokerage, CurrentValue: M(100000, "USD")})
	st.UpsertAccount(Account{Name: "Mortgage", Type: Mortgage, CurrentValue: M(50000, "USD")})

	report, err := st.AllocationReport()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(report.DebtRatio-0.5) > 1e-9 {
		t.Errorf("debt ratio = %.2f, want 0.50", report.DebtRatio)
	}
	found := false
	for _, s := range report.Suggestions {
		if s.Category == Liabilities && s.Direction == "reduce" {
			found = true
		}
	}
	if !found {
		t.Errorf("no debt paydown recommendation above the %.0f%% line", debtRatioThreshold*100)
	}
}
