package models

import (
	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
)

// DaysPerYear converts a day count to a year fraction.
const DaysPerYear = 365.0

// MarketParams holds the market inputs for one evaluation: spot price,
// implied volatility and risk-free rate (both as fractions), the contract
// duration in days, and how many of those days have already elapsed.
// Immutable per evaluation.
type MarketParams struct {
	Spot         float64
	Volatility   float64
	RiskFreeRate float64
	TotalDays    int
	DaysPassed   int
}

// Validate rejects parameter combinations the pricing engine cannot accept.
func (m MarketParams) Validate() error {
	if m.Spot <= 0 {
		return errors.InvalidParameterf("spot must be positive, got %f", m.Spot)
	}
	if m.Volatility <= 0 {
		return errors.InvalidParameterf("volatility must be positive, got %f", m.Volatility)
	}
	if m.TotalDays <= 0 {
		return errors.InvalidParameterf("total days must be positive, got %d", m.TotalDays)
	}
	if m.DaysPassed < 0 || m.DaysPassed > m.TotalDays {
		return errors.InvalidParameterf("days passed must be within [0, %d], got %d", m.TotalDays, m.DaysPassed)
	}
	return nil
}

// InitialTerm returns the full contract duration in years.
func (m MarketParams) InitialTerm() float64 {
	return float64(m.TotalDays) / DaysPerYear
}

// RemainingTerm returns the time to expiry in years after DaysPassed have
// elapsed.
func (m MarketParams) RemainingTerm() float64 {
	return float64(m.TotalDays-m.DaysPassed) / DaysPerYear
}
