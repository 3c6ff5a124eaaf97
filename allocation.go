package nestegg

import (
	"errors"
	"fmt"
	"math"
)

// ErrAgeNotSet is returned by engines that need the owner's age.
var ErrAgeNotSet = errors.New("age is not set in the profile")

// Thresholds (in percentage points) for allocation guidance.
const (
	suggestionGapPoints = 5
	diagnosticGapPoints = 15
	debtRatioThreshold  = 0.40
)

// Suggestion is one directional rebalancing recommendation.
type Suggestion struct {
	Category  Category
	Direction string // "increase" or "reduce"
	GapPoints float64
	Text      string
}

// AllocationReport compares the current allocation against the age- and
// risk-derived target.
type AllocationReport struct {
	TotalAssets      Money
	TotalLiabilities Money
	DebtRatio        float64
	Values           map[Category]Money
	Current          map[Category]float64 // percent of total assets
	Target           map[Category]float64 // percent, sums to 100 across AssetCategories
	Suggestions      []Suggestion
	Diagnostics      []string
}

// AllocationReport categorizes every account, derives the target allocation
// for the owner's age and risk tier, and reports gaps. Future income and
// liabilities are excluded from the total-assets denominator.
func (st *State) AllocationReport() (*AllocationReport, error) {
	if st.Profile.Age <= 0 {
		return nil, ErrAgeNotSet
	}

	values := st.CategoryValues()
	var assets Money
	for _, c := range []Category{Cash, Investments, Retirement, RealEstate} {
		assets = assets.Add(values[c])
	}
	liabilities := values[Liabilities]

	report := &AllocationReport{
		TotalAssets:      assets,
		TotalLiabilities: liabilities,
		Values:           values,
		Current:          make(map[Category]float64),
		Target:           targetAllocation(st.Profile.Age, st.Profile.EffectiveRiskTolerance()),
	}

	total := assets.Float()
	if total > 0 {
		for _, c := range AssetCategories {
			if c == FutureIncome {
				continue // excluded from the denominator, always 0% of assets
			}
			report.Current[c] = values[c].Float() / total * 100
		}
		report.DebtRatio = liabilities.Float() / total
	}

	for _, c := range AssetCategories {
		gap := report.Current[c] - report.Target[c]
		if math.Abs(gap) <= suggestionGapPoints {
			continue
		}
		s := Suggestion{Category: c, GapPoints: math.Abs(gap)}
		if gap > 0 {
			s.Direction = "reduce"
			s.Text = fmt.Sprintf("%s is %.1f points above its %.1f%% target; shift the excess toward underweight categories", c, s.GapPoints, report.Target[c])
		} else {
			s.Direction = "increase"
			s.Text = fmt.Sprintf("%s is %.1f points below its %.1f%% target; direct new contributions there", c, s.GapPoints, report.Target[c])
		}
		report.Suggestions = append(report.Suggestions, s)
		if s.GapPoints > diagnosticGapPoints {
			report.Diagnostics = append(report.Diagnostics, diagnose(c, gap))
		}
	}

	if report.DebtRatio > debtRatioThreshold {
		report.Suggestions = append(report.Suggestions, Suggestion{
			Category:  Liabilities,
			Direction: "reduce",
			GapPoints: (report.DebtRatio - debtRatioThreshold) * 100,
			Text:      fmt.Sprintf("debt is %.0f%% of assets, above the %.0f%% comfort line; prioritize paying down liabilities", report.DebtRatio*100, debtRatioThreshold*100),
		})
	}

	return report, nil
}

// targetAllocation computes the per-category target percentages for an age
// and risk tier. Each tier is a set of age-linear terms clamped by min/max,
// renormalized so the asset categories sum to 100. Future income carries no
// target share of current assets.
func targetAllocation(age int, tier RiskTolerance) map[Category]float64 {
	a := float64(age)
	var inv, ret, cash, re float64
	switch tier {
	case Conservative:
		inv = clamp(90-a, 15, 50)
		ret = clamp(15+0.4*a, 20, 40)
		cash = clamp(10+0.2*a, 10, 25)
		re = clamp(5+0.1*a, 5, 15)
	case Aggressive:
		inv = clamp(125-a, 35, 85)
		ret = clamp(5+0.5*a, 10, 30)
		cash = clamp(10-0.1*a, 3, 10)
		re = clamp(5+0.25*a, 5, 25)
	default: // moderate
		inv = clamp(110-a, 25, 70)
		ret = clamp(10+0.5*a, 15, 35)
		cash = clamp(15-0.1*a, 5, 15)
		re = clamp(5+0.2*a, 5, 20)
	}

	sum := inv + ret + cash + re
	target := map[Category]float64{
		Investments:  inv / sum * 100,
		Retirement:   ret / sum * 100,
		Cash:         cash / sum * 100,
		RealEstate:   re / sum * 100,
		FutureIncome: 0,
	}
	return target
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// diagnose returns the category-specific narrative for a large gap.
func diagnose(c Category, gap float64) string {
	over := gap > 0
	switch c {
	case Cash:
		if over {
			return "cash is far above target: idle balances may be accumulating after salary deposits or a recent asset sale; consider sweeping the excess into investments"
		}
		return "cash is far below target: the emergency buffer looks thin, possibly drained by a large purchase or irregular income"
	case Investments:
		if over {
			return "investments are far above target: a market run-up or concentrated position may have outgrown the plan; rebalancing locks in the gain"
		}
		return "investments are far below target: contributions may have stalled or a drawdown went unrebalanced"
	case Retirement:
		if over {
			return "retirement holdings are far above target: tax-advantaged accounts dominate; check that accessible savings cover pre-retirement needs"
		}
		return "retirement holdings are far below target: employer-plan contributions may have lapsed or a rollover is sitting in cash"
	case RealEstate:
		if over {
			return "real estate is far above target: property equity dominates the portfolio; appreciation or aggressive mortgage paydown concentrates risk in one illiquid asset"
		}
		return "real estate is far below target: if property exposure is intended, the equity accounts may be stale or unlinked"
	default:
		return fmt.Sprintf("%s allocation is %.0f points away from target", c, math.Abs(gap))
	}
}
