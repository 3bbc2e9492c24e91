// Package payoff aggregates per-leg option values into portfolio
// profit/loss curves and scalar position metrics.
package payoff

import (
	"github.com/rzzdr/payoff-engine/internal/pricing"
	"github.com/rzzdr/payoff-engine/pkg/models"
	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
	"github.com/rzzdr/payoff-engine/pkg/utils/logger"
)

// Aggregator computes portfolio PnL over a price grid by summing per-leg
// contributions. It holds no state between calls and is safe for concurrent
// use.
type Aggregator struct {
	pricer *pricing.Engine
	log    *logger.Logger
}

// NewAggregator creates a new PnL aggregator.
func NewAggregator(pricer *pricing.Engine) *Aggregator {
	return &Aggregator{
		pricer: pricer,
		log:    logger.GetLogger("payoff.aggregator"),
	}
}

// ComputePnL evaluates the portfolio PnL for each price in the grid.
//
// At each grid price the value of every leg is computed, either at intrinsic
// value (atExpiry) or with the pricing engine at timeRemaining years to
// expiry. The leg contribution is (value - premium) * quantity; legs are
// summed in their stored order so results are reproducible. An empty leg
// list yields an all-zero curve.
func (a *Aggregator) ComputePnL(legs []models.Leg, grid []float64, rate, vol, timeRemaining float64, atExpiry bool) (models.PnLCurve, error) {
	if err := models.ValidateLegs(legs); err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, errors.InvalidParameter("price grid must not be empty")
	}
	if timeRemaining < 0 {
		return nil, errors.InvalidParameterf("time remaining must be non-negative, got %f", timeRemaining)
	}
	if !atExpiry && vol <= 0 {
		return nil, errors.InvalidParameterf("volatility must be positive, got %f", vol)
	}

	curve := make(models.PnLCurve, len(grid))
	for i, price := range grid {
		total := 0.0
		for _, leg := range legs {
			var value float64
			if atExpiry {
				value = pricing.Intrinsic(price, leg.Strike, leg.Type)
			} else {
				v, err := a.pricer.Price(price, leg.Strike, timeRemaining, rate, vol, leg.Type)
				if err != nil {
					return nil, errors.Wrapf(err, "pricing leg with strike %f", leg.Strike)
				}
				value = v
			}
			total += (value - leg.Premium) * float64(leg.Quantity)
		}
		curve[i] = models.PnLPoint{Price: price, PnL: total}
	}

	return curve, nil
}
