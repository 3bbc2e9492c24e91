package payoff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzzdr/payoff-engine/internal/pricing"
	"github.com/rzzdr/payoff-engine/pkg/models"
	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
)

func TestNetPremium(t *testing.T) {
	// Long strangle-like position: both legs bought, net debit of 3.5.
	legs := []models.Leg{
		mustLeg(t, models.OptionTypeCall, 105, 2.5, 1),
		mustLeg(t, models.OptionTypePut, 95, 1.0, 1),
	}
	assert.InDelta(t, 3.5, NetPremium(legs), 1e-12)

	// Selling both legs turns the debit into a credit.
	short := []models.Leg{
		mustLeg(t, models.OptionTypeCall, 105, 2.5, -1),
		mustLeg(t, models.OptionTypePut, 95, 1.0, -1),
	}
	assert.InDelta(t, -3.5, NetPremium(short), 1e-12)

	assert.Zero(t, NetPremium(nil))
}

func TestSummarize(t *testing.T) {
	agg := newTestAggregator()
	engine := pricing.NewEngine()

	market := models.MarketParams{
		Spot:         100,
		Volatility:   0.25,
		RiskFreeRate: 0.02,
		TotalDays:    45,
		DaysPassed:   0,
	}
	legs := []models.Leg{
		mustLeg(t, models.OptionTypeCall, 105, 2.5, 1),
		mustLeg(t, models.OptionTypePut, 95, 1.0, 1),
	}

	summary, err := agg.Summarize(legs, market)
	require.NoError(t, err)

	callValue, err := engine.Price(100, 105, market.RemainingTerm(), 0.02, 0.25, models.OptionTypeCall)
	require.NoError(t, err)
	putValue, err := engine.Price(100, 95, market.RemainingTerm(), 0.02, 0.25, models.OptionTypePut)
	require.NoError(t, err)

	assert.InDelta(t, 3.5, summary.NetPremium, 1e-12)
	assert.InDelta(t, callValue+putValue, summary.MarkToMarket, 1e-12)
	assert.InDelta(t, summary.MarkToMarket-summary.NetPremium, summary.UnrealizedPnL, 1e-12)
}

func TestSummarizeAtExpiry(t *testing.T) {
	// With the whole duration elapsed, mark-to-market collapses to
	// intrinsic value.
	agg := newTestAggregator()

	market := models.MarketParams{
		Spot:         110,
		Volatility:   0.25,
		RiskFreeRate: 0.02,
		TotalDays:    45,
		DaysPassed:   45,
	}
	legs := []models.Leg{mustLeg(t, models.OptionTypeCall, 105, 2.5, 1)}

	summary, err := agg.Summarize(legs, market)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, summary.MarkToMarket, 1e-12)
	assert.InDelta(t, 2.5, summary.UnrealizedPnL, 1e-12)
}

func TestSummarizeRejectsBadMarket(t *testing.T) {
	agg := newTestAggregator()
	legs := []models.Leg{mustLeg(t, models.OptionTypeCall, 105, 2.5, 1)}

	bad := models.MarketParams{Spot: -1, Volatility: 0.25, RiskFreeRate: 0.02, TotalDays: 45}
	_, err := agg.Summarize(legs, bad)
	assert.True(t, errors.IsInvalidParameter(err))

	bad = models.MarketParams{Spot: 100, Volatility: 0.25, RiskFreeRate: 0.02, TotalDays: 45, DaysPassed: 50}
	_, err = agg.Summarize(legs, bad)
	assert.True(t, errors.IsInvalidParameter(err))
}
