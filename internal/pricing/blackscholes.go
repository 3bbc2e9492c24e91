// Package pricing implements closed-form European option valuation.
package pricing

import (
	"math"

	"github.com/rzzdr/payoff-engine/pkg/models"
	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
)

// MinTerm is the time-to-expiry threshold, in years, below which an option
// is priced at intrinsic value. Below it d1 and d2 degenerate (division by
// sigma*sqrt(T) with T near zero), and intrinsic value is the correct
// Black-Scholes limit as T approaches zero.
const MinTerm = 1e-6

// Engine prices single European options with the Black-Scholes model.
type Engine struct{}

// NewEngine creates a new pricing engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Price returns the theoretical value of a European option.
//
// spot and strike must be positive, vol must be positive, and term (years to
// expiry) must be non-negative; anything else is an InvalidParameter error.
// A term within MinTerm of zero returns intrinsic value.
func (e *Engine) Price(spot, strike, term, rate, vol float64, optionType models.OptionType) (float64, error) {
	if spot <= 0 {
		return 0, errors.InvalidParameterf("spot must be positive, got %f", spot)
	}
	if strike <= 0 {
		return 0, errors.InvalidParameterf("strike must be positive, got %f", strike)
	}
	if vol <= 0 {
		return 0, errors.InvalidParameterf("volatility must be positive, got %f", vol)
	}
	if term < 0 {
		return 0, errors.InvalidParameterf("term must be non-negative, got %f", term)
	}

	if term <= MinTerm {
		return Intrinsic(spot, strike, optionType), nil
	}

	sqrtT := math.Sqrt(term)
	d1 := (math.Log(spot/strike) + (rate+0.5*vol*vol)*term) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT

	discount := math.Exp(-rate * term)
	if optionType == models.OptionTypeCall {
		return spot*normalCDF(d1) - strike*discount*normalCDF(d2), nil
	}
	return strike*discount*normalCDF(-d2) - spot*normalCDF(-d1), nil
}

// Intrinsic returns the exercise payoff of an option at the given
// underlying price: max(0, S-K) for a call, max(0, K-S) for a put.
func Intrinsic(spot, strike float64, optionType models.OptionType) float64 {
	if optionType == models.OptionTypeCall {
		return math.Max(0, spot-strike)
	}
	return math.Max(0, strike-spot)
}

// normalCDF returns the standard normal cumulative distribution function.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
