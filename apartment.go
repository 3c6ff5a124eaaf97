package nestegg

import (
	"errors"
	"fmt"
	"math"
)

// ExpenseType tells how often an apartment expense recurs.
type ExpenseType string

const (
	OneTime        ExpenseType = "one-time"
	MonthlyExpense ExpenseType = "monthly"
	AnnualExpense  ExpenseType = "annual"
)

// Expense is a cost attached to the apartment. An annual increase, when set,
// compounds once per full calendar year elapsed since the expense was added
// or last increased.
type Expense struct {
	Amount                Money       `json:"amount"`
	Type                  ExpenseType `json:"type"`
	Category              string      `json:"category,omitempty"`
	AnnualIncreasePercent float64     `json:"annualIncreasePercent,omitempty"`
	LastIncreaseDate      Date        `json:"lastIncreaseDate,omitempty"`
	Added                 Date        `json:"added,omitempty"`
}

// IncomeType discriminates reconciled rent from projections.
type IncomeType string

const (
	Collected  IncomeType = "collected"
	Forecasted IncomeType = "forecasted"
)

// IncomeEntry is one month of rental income.
type IncomeEntry struct {
	Amount Money      `json:"amount"`
	Type   IncomeType `json:"type"`
	Month  Date       `json:"month"` // any day within the month it belongs to
}

// RentForecast is a forecasted monthly rent over an inclusive month range.
type RentForecast struct {
	From        Date  `json:"from"`
	To          Date  `json:"to"`
	MonthlyRent Money `json:"monthlyRent"`
}

// GoalType selects how the suggested rent is solved.
type GoalType string

const (
	Breakeven              GoalType = "breakeven"
	BreakevenExclPrincipal GoalType = "breakeven-excluding-principal"
	Profit                 GoalType = "profit"
)

// FinancialGoal is the rent target of the apartment.
type FinancialGoal struct {
	Type         GoalType `json:"type"`
	TargetAmount Money    `json:"targetAmount,omitempty"` // monthly margin for the profit goal
}

// Apartment is a rental property under analysis: its mortgage, the accounts
// it is linked to, and its income and expense records.
type Apartment struct {
	Principal          Money          `json:"principal"` // original loan amount
	AnnualRate         float64        `json:"annualRate"`
	TermMonths         int            `json:"termMonths"`
	Origination        Date           `json:"origination"`
	MortgageAccountID  string         `json:"mortgageAccountId,omitempty"`
	EquityAccountID    string         `json:"equityAccountId,omitempty"`
	Expenses           []Expense      `json:"expenses,omitempty"`
	Income             []IncomeEntry  `json:"income,omitempty"`
	ForecastedRents    []RentForecast `json:"forecastedRents,omitempty"`
	ReconciliationDate Date           `json:"reconciliationDate,omitempty"`
	Goal               FinancialGoal  `json:"goal"`
}

// forecastWindowMonths is how far past the reconciliation date forecasted
// rent is trusted.
const forecastWindowMonths = 24

var errNoMortgage = errors.New("apartment has no mortgage terms")

// MonthlyPayment computes the fixed payment of the amortizing loan.
func (ap *Apartment) MonthlyPayment() (Money, error) {
	if ap.TermMonths <= 0 || !ap.Principal.IsPositive() {
		return Money{}, errNoMortgage
	}
	p := ap.Principal.Float()
	r := ap.AnnualRate / 12
	if r == 0 {
		return M(p/float64(ap.TermMonths), ap.Principal.Currency()), nil
	}
	payment := p * r / (1 - math.Pow(1+r, -float64(ap.TermMonths)))
	return M(payment, ap.Principal.Currency()), nil
}

// AmortizationPoint is the state of the loan after a given number of
// payments.
type AmortizationPoint struct {
	Month            int // 1-based payment count
	Payment          Money
	PrincipalPaid    Money
	InterestPaid     Money
	RemainingBalance Money
}

// AmortizationAt walks the schedule month by month from origination up to
// the requested payment, accumulating interest and principal paid. There is
// deliberately no closed-form shortcut: the iteration matches the reference
// tables payment for payment.
func (ap *Apartment) AmortizationAt(month int) (AmortizationPoint, error) {
	if month < 1 || month > ap.TermMonths {
		return AmortizationPoint{}, fmt.Errorf("month %d is outside the %d-month loan term", month, ap.TermMonths)
	}
	payment, err := ap.MonthlyPayment()
	if err != nil {
		return AmortizationPoint{}, err
	}

	pay := payment.Float()
	r := ap.AnnualRate / 12
	balance := ap.Principal.Float()
	var interestPaid, principalPaid float64
	for m := 1; m <= month; m++ {
		interest := balance * r
		principal := pay - interest
		if principal > balance {
			principal = balance
		}
		interestPaid += interest
		principalPaid += principal
		balance -= principal
	}

	currency := ap.Principal.Currency()
	return AmortizationPoint{
		Month:            month,
		Payment:          payment,
		PrincipalPaid:    M(principalPaid, currency),
		InterestPaid:     M(interestPaid, currency),
		RemainingBalance: M(balance, currency),
	}, nil
}

// SuggestedRent solves for the minimum monthly rent satisfying the
// apartment's goal as of a date: breakeven covers all costs including
// mortgage principal, breakeven-excluding-principal covers only the interest
// portion plus expenses, and profit adds the target monthly margin on top of
// breakeven.
func (ap *Apartment) SuggestedRent(asOf Date) (Money, error) {
	payment, err := ap.MonthlyPayment()
	if err != nil {
		return Money{}, err
	}
	currency := ap.Principal.Currency()

	expenses := M(0, currency)
	for _, e := range ap.Expenses {
		switch e.Type {
		case MonthlyExpense:
			expenses = expenses.Add(escalated(e, asOf))
		case AnnualExpense:
			expenses = expenses.Add(escalated(e, asOf).Scale(1.0 / 12))
		}
		// One-time expenses are not part of a recurring rent floor.
	}

	mortgage := payment
	if ap.Goal.Type == BreakevenExclPrincipal {
		month := asOf.MonthsSince(ap.Origination) + 1
		if month < 1 {
			month = 1
		}
		if month > ap.TermMonths {
			month = ap.TermMonths
		}
		point, err := ap.AmortizationAt(month)
		if err != nil {
			return Money{}, err
		}
		interest := point.RemainingBalance.Float() * ap.AnnualRate / 12
		// Interest of the month being evaluated, not an average over the term.
		mortgage = M(interest, currency)
	}

	rent := expenses.Add(mortgage)
	if ap.Goal.Type == Profit {
		rent = rent.Add(ap.Goal.TargetAmount)
	}
	return rent, nil
}

// MonthCashFlow is one month of the forecast.
type MonthCashFlow struct {
	Month    Date // first day of the month
	Income   Money
	Expenses Money
	Mortgage Money
	Net      Money
}

// CashFlow walks the month range [from, to] producing the monthly cash-flow
// analysis. Past months (up to the reconciliation date) use collected
// income; months after it use the forecasted-rent ranges, but only within
// the 24-month window a reconciliation date enables. Expenses escalate once
// per full calendar year elapsed, and the mortgage payment applies only
// while the month falls within the loan term.
func (ap *Apartment) CashFlow(from, to Date) ([]MonthCashFlow, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("cash-flow range is inverted: %s is after %s", from, to)
	}
	payment, err := ap.MonthlyPayment()
	if err != nil {
		return nil, err
	}
	currency := ap.Principal.Currency()

	var out []MonthCashFlow
	for month := from.FirstOfMonth(); !month.After(to); month = month.AddMonth(1) {
		row := MonthCashFlow{Month: month, Income: M(0, currency), Expenses: M(0, currency), Mortgage: M(0, currency)}

		if ap.ReconciliationDate.IsZero() || !month.After(ap.ReconciliationDate.FirstOfMonth()) {
			for _, in := range ap.Income {
				if in.Type == Collected && in.Month.SameMonth(month) {
					row.Income = row.Income.Add(in.Amount)
				}
			}
		} else if month.MonthsSince(ap.ReconciliationDate.FirstOfMonth()) <= forecastWindowMonths {
			row.Income = row.Income.Add(ap.forecastRent(month))
		}

		for _, e := range ap.Expenses {
			switch e.Type {
			case OneTime:
				if e.Added.SameMonth(month) {
					row.Expenses = row.Expenses.Add(e.Amount)
				}
			case MonthlyExpense:
				row.Expenses = row.Expenses.Add(escalated(e, month))
			case AnnualExpense:
				if !e.Added.IsZero() && e.Added.Month() == month.Month() {
					row.Expenses = row.Expenses.Add(escalated(e, month))
				}
			}
		}

		monthsIn := month.MonthsSince(ap.Origination.FirstOfMonth())
		if monthsIn >= 0 && monthsIn < ap.TermMonths {
			row.Mortgage = payment
		}

		row.Net = row.Income.Sub(row.Expenses).Sub(row.Mortgage)
		out = append(out, row)
	}
	return out, nil
}

// forecastRent returns the forecasted rent covering the month, or zero.
func (ap *Apartment) forecastRent(month Date) Money {
	for _, f := range ap.ForecastedRents {
		if !month.Before(f.From.FirstOfMonth()) && !month.After(f.To.FirstOfMonth()) {
			return f.MonthlyRent
		}
	}
	return Money{}
}

// escalated applies the expense's compounding annual increase, once per full
// calendar year elapsed since its last increase (or since it was added).
func escalated(e Expense, on Date) Money {
	if e.AnnualIncreasePercent == 0 {
		return e.Amount
	}
	base := e.LastIncreaseDate
	if base.IsZero() {
		base = e.Added
	}
	if base.IsZero() {
		return e.Amount
	}
	years := on.YearsSince(base)
	return e.Amount.Scale(math.Pow(1+e.AnnualIncreasePercent/100, float64(years)))
}

// ReconcileMonth records collected rent for a month and advances the
// reconciliation date, which in turn enables the forward forecast window.
func (st *State) ReconcileMonth(month Date, amount Money) error {
	if st.Apartment == nil {
		return errors.New("no apartment is configured")
	}
	ap := st.Apartment
	ap.Income = append(ap.Income, IncomeEntry{Amount: amount, Type: Collected, Month: month.FirstOfMonth()})
	if ap.ReconciliationDate.IsZero() || ap.ReconciliationDate.Before(month) {
		ap.ReconciliationDate = month
	}
	return nil
}

// SyncMortgageAccounts refreshes the linked accounts from the amortization
// schedule: the mortgage account gets the remaining balance (stored positive,
// like every liability) and the equity account the principal paid so far.
func (st *State) SyncMortgageAccounts(asOf Date) error {
	if st.Apartment == nil {
		return errors.New("no apartment is configured")
	}
	ap := st.Apartment
	month := asOf.MonthsSince(ap.Origination)
	if month < 1 {
		month = 1
	}
	if month > ap.TermMonths {
		month = ap.TermMonths
	}
	point, err := ap.AmortizationAt(month)
	if err != nil {
		return err
	}

	if ap.MortgageAccountID != "" {
		if err := st.UpdateBalance(ap.MortgageAccountID, point.RemainingBalance, asOf); err != nil {
			return fmt.Errorf("mortgage account: %w", err)
		}
	}
	if ap.EquityAccountID != "" {
		if err := st.UpdateBalance(ap.EquityAccountID, point.PrincipalPaid, asOf); err != nil {
			return fmt.Errorf("equity account: %w", err)
		}
	}
	return nil
}
