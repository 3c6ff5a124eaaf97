package nestegg

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

func testRng() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestProjectRetirementValidation(t *testing.T) {
	tests := []struct {
		name     string
		profile  Demographics
		expected error
	}{
		{"no age", Demographics{AnnualRetirementSpending: 50000}, ErrAgeNotSet},
		{"no spending", Demographics{Age: 40}, ErrSpendingNotSet},
		{"already retired", Demographics{Age: 70, AnnualRetirementSpending: 50000}, ErrAlreadyRetired},
		{"at retirement age", Demographics{Age: 65, AnnualRetirementSpending: 50000}, ErrAlreadyRetired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState()
			st.Profile = tt.profile
			if _, err := st.ProjectRetirement(testRng()); !errors.Is(err, tt.expected) {
				t.Errorf("ProjectRetirement = %v, want %v", err, tt.expected)
			}
		})
	}
}

func TestAdvisoryBand(t *testing.T) {
	tests := []struct {
		probability float64
		expected    string
	}{
		{100, BandExcellent},
		{80, BandExcellent},
		{79.9, BandGood},
		{60, BandGood},
		{59.9, BandConcerning},
		{40, BandConcerning},
		{39.9, BandCritical},
		{0, BandCritical},
	}
	for _, tt := range tests {
		if got := AdvisoryBand(tt.probability); got != tt.expected {
			t.Errorf("AdvisoryBand(%.1f) = %s, want %s", tt.probability, got, tt.expected)
		}
	}
}

func TestProjectRetirementScenario(t *testing.T) {
	st := NewState()
	st.Profile = Demographics{
		Age:                      40,
		AnnualIncome:             300000,
		AnnualRetirementSpending: 80000,
		RiskTolerance:            Moderate,
	}
	st.UpsertAccount(Account{Name: "Brokerage", Type: Brokerage, CurrentValue: M(300000, "USD")})
	st.UpsertAccount(Account{Name: "401k", Type: Retirement401k, CurrentValue: M(150000, "USD")})

	p, err := st.ProjectRetirement(testRng())
	if err != nil {
		t.Fatal(err)
	}
	if p.Trials != 10000 {
		t.Errorf("Trials = %d, want the default 10000", p.Trials)
	}
	if p.ReturnFromHistory {
		t.Errorf("expected return should come from the tier with no usable history")
	}
	if p.ExpectedReturn != 0.07 {
		t.Errorf("ExpectedReturn = %.3f, want the moderate tier 0.07", p.ExpectedReturn)
	}
	// A healthy saver 25 years out: reliably above coin-flip, below certainty.
	if p.SuccessProbability < 55 || p.SuccessProbability > 99.9 {
		t.Errorf("SuccessProbability = %.1f, outside the plausible [55, 99.9] window", p.SuccessProbability)
	}
	if p.Band != AdvisoryBand(p.SuccessProbability) {
		t.Errorf("Band = %s, inconsistent with the probability", p.Band)
	}
	if p.ProjectedAtRetirement <= 450000 {
		t.Errorf("ProjectedAtRetirement = %.0f, should exceed the starting principal", p.ProjectedAtRetirement)
	}
	if p.CapitalNeeded <= 0 {
		t.Errorf("CapitalNeeded = %.0f", p.CapitalNeeded)
	}
}

func TestProjectRetirementMonotonicInSavings(t *testing.T) {
	project := func(income float64) float64 {
		st := NewState()
		st.Profile = Demographics{
			Age:                      45,
			AnnualIncome:             income,
			AnnualRetirementSpending: 70000,
			RiskTolerance:            Moderate,
		}
		st.UpsertAccount(Account{Name: "Brokerage", Type: Brokerage, CurrentValue: M(200000, "USD")})
		p, err := st.ProjectRetirement(testRng())
		if err != nil {
			t.Fatal(err)
		}
		return p.SuccessProbability
	}

	low := project(20000)
	high := project(250000)
	if high <= low {
		t.Errorf("higher savings should not lower success: %.1f%% at 20k vs %.1f%% at 250k", low, high)
	}
}

func TestFutureValue(t *testing.T) {
	// 1000 at 10% for 2 years plus 100/year: 1000*1.21 + 100*(1.21-1)/0.1 = 1420.
	if got := futureValue(1000, 100, 0.10, 2); math.Abs(got-1420) > 1e-9 {
		t.Errorf("futureValue = %.4f, want 1420", got)
	}
	if got := futureValue(1000, 100, 0, 5); got != 1500 {
		t.Errorf("futureValue at zero rate = %.1f, want 1500", got)
	}
}

func TestCapitalNeeded(t *testing.T) {
	// Zero inflation and zero return degenerate to spending*years.
	if got := capitalNeeded(50000, 0, 0, 30); got != 1500000 {
		t.Errorf("capitalNeeded = %.0f, want 1500000", got)
	}
	// A positive discount rate lowers the requirement.
	if got := capitalNeeded(50000, 0, 0.05, 30); got >= 1500000 {
		t.Errorf("discounting did not reduce the requirement: %.0f", got)
	}
}

func TestHistoricalReturn(t *testing.T) {
	st := NewState()
	a := st.UpsertAccount(Account{Name: "Brokerage", Type: Brokerage, CurrentValue: M(10000, "USD")})

	// Fewer than three balance points: the tier assumption stands.
	if _, ok := st.historicalReturn(); ok {
		t.Fatalf("history qualified with no balance updates")
	}

	stampedUpdate := func(value Money, on Date, at time.Time) {
		e := NewBalanceUpdate(a.ID, a.Name, Money{}, value, on)
		e.Timestamp = at
		st.History.Append(e)
	}
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stampedUpdate(M(10000, "USD"), NewDate(2024, 1, 1), t0)
	stampedUpdate(M(10500, "USD"), NewDate(2024, 7, 1), t0.AddDate(0, 6, 0))
	stampedUpdate(M(11000, "USD"), NewDate(2025, 1, 1), t0.AddDate(1, 0, 0))

	rate, ok := st.historicalReturn()
	if !ok {
		t.Fatalf("three points over a year should qualify")
	}
	// 10% over exactly one year.
	if math.Abs(rate-0.10) > 0.005 {
		t.Errorf("annualized rate = %.4f, want about 0.10", rate)
	}
}

func TestHistoricalReturnRejectsShortSpan(t *testing.T) {
	st := NewState()
	a := st.UpsertAccount(Account{Name: "Brokerage", Type: Brokerage, CurrentValue: M(10000, "USD")})
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		e := NewBalanceUpdate(a.ID, a.Name, Money{}, M(10000+100*i, "USD"), NewDate(2025, 3, i+1))
		e.Timestamp = t0.AddDate(0, 0, i)
		st.History.Append(e)
	}
	if _, ok := st.historicalReturn(); ok {
		t.Errorf("a three-day span should not qualify")
	}
}

func TestHistoricalReturnClamp(t *testing.T) {
	st := NewState()
	a := st.UpsertAccount(Account{Name: "Moonshot", Type: Crypto, CurrentValue: M(100, "USD")})
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	values := []Money{M(100, "USD"), M(1000, "USD"), M(100000, "USD")}
	for i, v := range values {
		e := NewBalanceUpdate(a.ID, a.Name, Money{}, v, NewDate(2024, 1+time.Month(3*i), 1))
		e.Timestamp = t0.AddDate(0, 3*i, 0)
		st.History.Append(e)
	}
	rate, ok := st.historicalReturn()
	if !ok {
		t.Fatalf("history should qualify")
	}
	if rate != maxAnnualGrowth {
		t.Errorf("rate = %.2f, want the %.2f clamp", rate, maxAnnualGrowth)
	}
}
