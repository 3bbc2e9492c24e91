package models

import (
	"time"

	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
)

// Default price grid bounds and density, as factors of the spot price.
const (
	DefaultGridLowFactor  = 0.6
	DefaultGridHighFactor = 1.4
	DefaultGridSamples    = 250
)

// NewPriceGrid builds a uniform, monotonically increasing partition of
// [spot*lowFactor, spot*highFactor] with the given sample count. Both ends
// are included.
func NewPriceGrid(spot, lowFactor, highFactor float64, samples int) ([]float64, error) {
	if spot <= 0 {
		return nil, errors.InvalidParameterf("spot must be positive, got %f", spot)
	}
	if lowFactor <= 0 || highFactor <= lowFactor {
		return nil, errors.InvalidParameterf("grid factors must satisfy 0 < low < high, got low=%f high=%f", lowFactor, highFactor)
	}
	if samples < 2 {
		return nil, errors.InvalidParameterf("grid needs at least 2 samples, got %d", samples)
	}

	low := spot * lowFactor
	high := spot * highFactor
	step := (high - low) / float64(samples-1)

	grid := make([]float64, samples)
	for i := range grid {
		grid[i] = low + float64(i)*step
	}
	// Pin the upper bound; accumulated rounding must not break the
	// proportionality invariant.
	grid[samples-1] = high
	return grid, nil
}

// PnLPoint is one sample of a profit/loss curve.
type PnLPoint struct {
	Price float64
	PnL   float64
}

// PnLCurve is a profit/loss curve aligned 1:1 with the price grid it was
// computed over. Produced fresh on every evaluation, never mutated in place.
type PnLCurve []PnLPoint

// PositionSummary holds the scalar portfolio metrics for a strategy.
//
// Sign convention: NetPremium is the sum of premium*quantity over all legs.
// Positive means a net debit was paid to open the position, negative means a
// net credit was received. UnrealizedPnL = MarkToMarket - NetPremium.
type PositionSummary struct {
	NetPremium    float64
	MarkToMarket  float64
	UnrealizedPnL float64
}

// DecayCurve is one member of a time-decay family: the PnL curve after the
// given fraction of the contract duration has elapsed.
type DecayCurve struct {
	Elapsed float64
	Curve   PnLCurve
}

// Evaluation is the full result of evaluating a strategy: the curves at the
// current time and at expiry, an optional decay family, and the summary
// scalars.
type Evaluation struct {
	StrategyID string
	Market     MarketParams
	Current    PnLCurve
	Expiry     PnLCurve
	Decay      []DecayCurve
	Summary    PositionSummary
	Timestamp  time.Time
}
