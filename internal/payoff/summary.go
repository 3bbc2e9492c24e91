package payoff

import (
	"github.com/rzzdr/payoff-engine/pkg/models"
	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
)

// NetPremium returns the aggregate premium of the strategy: the sum of
// premium*quantity over all legs. Positive is a net debit paid at entry,
// negative a net credit received.
func NetPremium(legs []models.Leg) float64 {
	total := 0.0
	for _, leg := range legs {
		total += leg.Premium * float64(leg.Quantity)
	}
	return total
}

// MarkToMarket returns the current theoretical value of the strategy: the
// sum of each leg's Black-Scholes value at the remaining term, scaled by its
// signed quantity.
func (a *Aggregator) MarkToMarket(legs []models.Leg, spot, term, rate, vol float64) (float64, error) {
	total := 0.0
	for _, leg := range legs {
		value, err := a.pricer.Price(spot, leg.Strike, term, rate, vol, leg.Type)
		if err != nil {
			return 0, errors.Wrapf(err, "marking leg with strike %f", leg.Strike)
		}
		total += value * float64(leg.Quantity)
	}
	return total, nil
}

// Summarize derives the scalar position metrics for a strategy under the
// given market parameters. UnrealizedPnL is MarkToMarket minus NetPremium,
// keeping the NetPremium sign convention.
func (a *Aggregator) Summarize(legs []models.Leg, market models.MarketParams) (models.PositionSummary, error) {
	if err := models.ValidateLegs(legs); err != nil {
		return models.PositionSummary{}, err
	}
	if err := market.Validate(); err != nil {
		return models.PositionSummary{}, err
	}

	net := NetPremium(legs)
	mtm, err := a.MarkToMarket(legs, market.Spot, market.RemainingTerm(), market.RiskFreeRate, market.Volatility)
	if err != nil {
		return models.PositionSummary{}, err
	}

	return models.PositionSummary{
		NetPremium:    net,
		MarkToMarket:  mtm,
		UnrealizedPnL: mtm - net,
	}, nil
}
