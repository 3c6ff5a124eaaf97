package nestegg

import (
	"errors"
	"math"
	"math/rand/v2"
)

// Validation failures of the retirement projector. No simulation runs when
// any of these hold.
var (
	ErrSpendingNotSet = errors.New("annual retirement spending must be positive")
	ErrAlreadyRetired = errors.New("age must be below retirement age")
)

// Advisory bands for the simulated success probability.
const (
	BandExcellent  = "excellent"
	BandGood       = "good"
	BandConcerning = "concerning"
	BandCritical   = "critical"
)

// AdvisoryBand maps a success probability (in percent) to its fixed band.
func AdvisoryBand(probability float64) string {
	switch {
	case probability >= 80:
		return BandExcellent
	case probability >= 60:
		return BandGood
	case probability >= 40:
		return BandConcerning
	default:
		return BandCritical
	}
}

// RetirementProjection is the outcome of a retirement run: the Monte Carlo
// success probability plus deterministic closed-form estimates computed
// independently so the two can cross-check each other.
type RetirementProjection struct {
	Trials             int
	SuccessProbability float64 // percent
	Band               string

	ExpectedReturn    float64
	Volatility        float64
	ReturnFromHistory bool // true when the expected return came from balance history

	// Closed-form point estimates, intentionally redundant with the simulation.
	ProjectedAtRetirement float64
	CapitalNeeded         float64
	Shortfall             float64
}

// ProjectRetirement runs the stochastic retirement-success projection.
//
// Each trial compounds the current asset base through the accumulation years
// with normally sampled returns plus a fixed annual contribution, then walks
// the retirement years withdrawing inflation-escalating spending while
// compounding by a reduced return/volatility pair. A trial succeeds only if
// the balance stays positive through the whole distribution phase.
//
// rng may be nil, in which case a fresh pseudo-random source is used. The
// run is CPU-bound and uncancellable; callers with large simulation counts
// should run it off the hot path.
func (st *State) ProjectRetirement(rng *rand.Rand) (*RetirementProjection, error) {
	p := st.Profile
	if p.Age <= 0 {
		return nil, ErrAgeNotSet
	}
	if p.AnnualRetirementSpending <= 0 {
		return nil, ErrSpendingNotSet
	}
	retirementAge := p.EffectiveRetirementAge()
	if p.Age >= retirementAge {
		return nil, ErrAlreadyRetired
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	settings := st.Settings.withDefaults()
	tierAssumption := settings.Tiers[p.EffectiveRiskTolerance()]

	expectedReturn, fromHistory := st.historicalReturn()
	if !fromHistory {
		expectedReturn = tierAssumption.ExpectedReturn
	}
	volatility := tierAssumption.Volatility // history never overrides volatility

	accumulationYears := retirementAge - p.Age
	contribution := p.AnnualIncome * settings.SavingsRate
	principal := st.NetWorth().Assets.Float()

	retReturn := expectedReturn * settings.RetirementReturnFactor
	retVolatility := volatility * settings.RetirementVolatilityFactor
	// Spending at the first retirement year, already inflated from today.
	firstSpending := p.AnnualRetirementSpending * math.Pow(1+settings.InflationRate, float64(accumulationYears))

	successes := 0
	for trial := 0; trial < settings.SimulationCount; trial++ {
		balance := principal
		for y := 0; y < accumulationYears; y++ {
			balance = balance*(1+normal(rng, expectedReturn, volatility)) + contribution
		}

		spending := firstSpending
		survived := true
		for y := 0; y < settings.YearsInRetirement; y++ {
			balance -= spending
			if balance <= 0 {
				survived = false
				break
			}
			balance *= 1 + normal(rng, retReturn, retVolatility)
			if balance <= 0 {
				survived = false
				break
			}
			spending *= 1 + settings.InflationRate
		}
		if survived {
			successes++
		}
	}

	projection := &RetirementProjection{
		Trials:             settings.SimulationCount,
		SuccessProbability: float64(successes) / float64(settings.SimulationCount) * 100,
		ExpectedReturn:     expectedReturn,
		Volatility:         volatility,
		ReturnFromHistory:  fromHistory,
	}
	projection.Band = AdvisoryBand(projection.SuccessProbability)

	// Deterministic cross-check, no sampling involved.
	projection.ProjectedAtRetirement = futureValue(principal, contribution, expectedReturn, accumulationYears)
	projection.CapitalNeeded = capitalNeeded(firstSpending, settings.InflationRate, retReturn, settings.YearsInRetirement)
	if shortfall := projection.CapitalNeeded - projection.ProjectedAtRetirement; shortfall > 0 {
		projection.Shortfall = shortfall
	}
	return projection, nil
}

// normal samples a normal distribution via the Box-Muller two-uniform
// transform.
func normal(rng *rand.Rand, mean, std float64) float64 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + std*z
}

// futureValue is the closed-form value of a principal plus fixed annual
// contributions compounded at a constant rate.
func futureValue(principal, contribution, rate float64, years int) float64 {
	if rate == 0 {
		return principal + contribution*float64(years)
	}
	growth := math.Pow(1+rate, float64(years))
	return principal*growth + contribution*(growth-1)/rate
}

// capitalNeeded is the present value, at retirement, of the whole
// inflation-escalating spending stream.
func capitalNeeded(firstSpending, inflation, rate float64, years int) float64 {
	var needed float64
	spending := firstSpending
	for y := 0; y < years; y++ {
		needed += spending / math.Pow(1+rate, float64(y))
		spending *= 1 + inflation
	}
	return needed
}

// Minimum history required before the expected return is estimated from
// observed balances instead of the configured tier.
const (
	minHistoryPoints   = 3
	minHistoryStamps   = 2
	minHistorySpanDays = 30
	minAnnualGrowth    = -0.50
	maxAnnualGrowth    = 2.00
)

// historicalReturn derives an expected annual return from the balance
// history: every account with at least three balance points over at least
// two timestamps, spanning more than thirty days, contributes its annualized
// growth rate (clamped to [-50%, +200%]); the cross-account average is the
// estimate. It reports false when no account qualifies.
func (st *State) historicalReturn() (float64, bool) {
	var sum float64
	var count int
	for _, a := range st.Accounts {
		if rate, ok := accountGrowth(st.History, a.ID); ok {
			sum += rate
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func accountGrowth(h *History, accountID string) (float64, bool) {
	type point struct {
		on    Date
		value float64
	}
	var points []point
	stamps := make(map[int64]bool)
	for e := range h.Entries(ByKind(KindBalanceUpdate)) {
		v := e.(BalanceUpdate)
		if v.AccountID != accountID {
			continue
		}
		on := v.BalanceDate
		if on.IsZero() {
			on = DateOf(v.Timestamp)
		}
		points = append(points, point{on: on, value: v.NewBalance.Float()})
		stamps[v.Timestamp.UnixNano()] = true
	}
	if len(points) < minHistoryPoints || len(stamps) < minHistoryStamps {
		return 0, false
	}

	first, last := points[0], points[0]
	for _, pt := range points[1:] {
		if pt.on.Before(first.on) {
			first = pt
		}
		if !pt.on.Before(last.on) {
			last = pt
		}
	}
	days := last.on.DaysSince(first.on)
	if days <= minHistorySpanDays || first.value <= 0 || last.value <= 0 {
		return 0, false
	}

	annualized := math.Pow(last.value/first.value, 365/float64(days)) - 1
	if annualized < minAnnualGrowth {
		annualized = minAnnualGrowth
	}
	if annualized > maxAnnualGrowth {
		annualized = maxAnnualGrowth
	}
	return annualized, true
}
