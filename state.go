package nestegg

import (
	"fmt"
	"sort"
	"strings"
)

// RiskTolerance is one of the three risk tiers driving return and volatility
// assumptions.
type RiskTolerance string

const (
	Conservative RiskTolerance = "conservative"
	Moderate     RiskTolerance = "moderate"
	Aggressive   RiskTolerance = "aggressive"
)

// ParseRiskTolerance parses a string into a RiskTolerance.
func ParseRiskTolerance(s string) (RiskTolerance, error) {
	switch t := RiskTolerance(strings.ToLower(strings.TrimSpace(s))); t {
	case Conservative, Moderate, Aggressive:
		return t, nil
	default:
		return "", fmt.Errorf("unknown risk tolerance: %q", s)
	}
}

// Demographics describes the owner of the vault.
type Demographics struct {
	Age                      int           `json:"age,omitempty"`
	AnnualIncome             float64       `json:"annualIncome,omitempty"`
	RetirementAge            int           `json:"retirementAge,omitempty"` // 0 means the default of 65
	AnnualRetirementSpending float64       `json:"annualRetirementSpending,omitempty"`
	RiskTolerance            RiskTolerance `json:"riskTolerance,omitempty"`
}

// DefaultRetirementAge applies when Demographics.RetirementAge is unset.
const DefaultRetirementAge = 65

// EffectiveRetirementAge returns the configured retirement age or the default.
func (d Demographics) EffectiveRetirementAge() int {
	if d.RetirementAge <= 0 {
		return DefaultRetirementAge
	}
	return d.RetirementAge
}

// EffectiveRiskTolerance returns the configured tier, defaulting to moderate.
func (d Demographics) EffectiveRiskTolerance() RiskTolerance {
	switch d.RiskTolerance {
	case Conservative, Moderate, Aggressive:
		return d.RiskTolerance
	default:
		return Moderate
	}
}

// TierAssumption is the (expected return, volatility) pair of a risk tier,
// both as ratios (0.07 for 7%).
type TierAssumption struct {
	ExpectedReturn float64 `json:"expectedReturn"`
	Volatility     float64 `json:"volatility"`
}

// AdvancedSettings tunes the simulation engines. Zero values fall back to the
// defaults returned by DefaultSettings.
type AdvancedSettings struct {
	SimulationCount            int                              `json:"simulationCount,omitempty"`
	YearsInRetirement          int                              `json:"yearsInRetirement,omitempty"`
	InflationRate              float64                          `json:"inflationRate,omitempty"`
	SavingsRate                float64                          `json:"savingsRate,omitempty"`
	Tiers                      map[RiskTolerance]TierAssumption `json:"tiers,omitempty"`
	RetirementReturnFactor     float64                          `json:"retirementReturnFactor,omitempty"`
	RetirementVolatilityFactor float64                          `json:"retirementVolatilityFactor,omitempty"`
}

// DefaultSettings returns the stock simulation assumptions.
func DefaultSettings() AdvancedSettings {
	return AdvancedSettings{
		SimulationCount:   10000,
		YearsInRetirement: 30,
		InflationRate:     0.03,
		SavingsRate:       0.15,
		Tiers: map[RiskTolerance]TierAssumption{
			Conservative: {ExpectedReturn: 0.05, Volatility: 0.08},
			Moderate:     {ExpectedReturn: 0.07, Volatility: 0.12},
			Aggressive:   {ExpectedReturn: 0.09, Volatility: 0.18},
		},
		RetirementReturnFactor:     0.75,
		RetirementVolatilityFactor: 0.6,
	}
}

// withDefaults fills unset fields from DefaultSettings.
func (s AdvancedSettings) withDefaults() AdvancedSettings {
	def := DefaultSettings()
	if s.SimulationCount <= 0 {
		s.SimulationCount = def.SimulationCount
	}
	if s.YearsInRetirement <= 0 {
		s.YearsInRetirement = def.YearsInRetirement
	}
	if s.InflationRate == 0 {
		s.InflationRate = def.InflationRate
	}
	if s.SavingsRate == 0 {
		s.SavingsRate = def.SavingsRate
	}
	if len(s.Tiers) == 0 {
		s.Tiers = def.Tiers
	} else {
		for tier, assumption := range def.Tiers {
			if _, ok := s.Tiers[tier]; !ok {
				s.Tiers[tier] = assumption
			}
		}
	}
	if s.RetirementReturnFactor == 0 {
		s.RetirementReturnFactor = def.RetirementReturnFactor
	}
	if s.RetirementVolatilityFactor == 0 {
		s.RetirementVolatilityFactor = def.RetirementVolatilityFactor
	}
	return s
}

// State is the full decrypted payload of a vault: the registry, the bounded
// history, the owner profile and the planning settings.
type State struct {
	Accounts  []Account        `json:"accounts"`
	History   *History         `json:"history"`
	Profile   Demographics     `json:"profile"`
	Settings  AdvancedSettings `json:"settings"`
	Apartment *Apartment       `json:"apartment,omitempty"`
}

// NewState creates an empty state with a default-capped history.
func NewState() *State {
	return &State{History: NewHistory(DefaultHistoryCap)}
}

// SortedAccounts returns the accounts sorted by display label.
func (st *State) SortedAccounts() []Account {
	out := make([]Account, len(st.Accounts))
	copy(out, st.Accounts)
	sort.Slice(out, func(i, j int) bool { return out[i].Label() < out[j].Label() })
	return out
}

// CategoryValues sums current values per category.
func (st *State) CategoryValues() map[Category]Money {
	sums := make(map[Category]Money)
	for _, a := range st.Accounts {
		c := a.Type.Category()
		sums[c] = sums[c].Add(a.CurrentValue)
	}
	return sums
}

// NetWorth summarizes assets, liabilities and their difference. Future income
// does not count as a present asset.
type NetWorth struct {
	Assets      Money
	Liabilities Money
	Net         Money
}

// NetWorth computes the net-worth summary from the category sums.
func (st *State) NetWorth() NetWorth {
	sums := st.CategoryValues()
	var assets Money
	for _, c := range []Category{Cash, Investments, Retirement, RealEstate} {
		assets = assets.Add(sums[c])
	}
	liabilities := sums[Liabilities]
	return NetWorth{Assets: assets, Liabilities: liabilities, Net: assets.Sub(liabilities)}
}
