package payoff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzzdr/payoff-engine/internal/pricing"
	"github.com/rzzdr/payoff-engine/pkg/models"
	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(pricing.NewEngine())
}

func mustLeg(t *testing.T, optionType models.OptionType, strike, premium float64, quantity int) models.Leg {
	t.Helper()
	leg, err := models.NewLeg(optionType, strike, premium, quantity)
	require.NoError(t, err)
	return leg
}

func testGrid(t *testing.T) []float64 {
	t.Helper()
	grid, err := models.NewPriceGrid(100, 0.6, 1.4, 101)
	require.NoError(t, err)
	return grid
}

func TestComputePnLEmptyLegs(t *testing.T) {
	agg := newTestAggregator()
	grid := testGrid(t)

	curve, err := agg.ComputePnL(nil, grid, 0.02, 0.25, 45.0/365, false)
	require.NoError(t, err)
	require.Len(t, curve, len(grid))
	for i, pt := range curve {
		assert.Equal(t, grid[i], pt.Price)
		assert.Zero(t, pt.PnL)
	}
}

func TestComputePnLSuperposition(t *testing.T) {
	agg := newTestAggregator()
	grid := testGrid(t)

	legA := mustLeg(t, models.OptionTypeCall, 105, 2.5, 1)
	legB := mustLeg(t, models.OptionTypePut, 95, 1.0, -2)

	both, err := agg.ComputePnL([]models.Leg{legA, legB}, grid, 0.02, 0.25, 45.0/365, false)
	require.NoError(t, err)
	onlyA, err := agg.ComputePnL([]models.Leg{legA}, grid, 0.02, 0.25, 45.0/365, false)
	require.NoError(t, err)
	onlyB, err := agg.ComputePnL([]models.Leg{legB}, grid, 0.02, 0.25, 45.0/365, false)
	require.NoError(t, err)

	for i := range both {
		assert.InDelta(t, onlyA[i].PnL+onlyB[i].PnL, both[i].PnL, 1e-12)
	}
}

func TestComputePnLExpiryBranchesAgree(t *testing.T) {
	// With zero time remaining, the intrinsic shortcut and the pricing
	// engine's near-expiry branch must produce the same curve.
	agg := newTestAggregator()
	grid := testGrid(t)

	legs := []models.Leg{
		mustLeg(t, models.OptionTypeCall, 105, 2.5, 1),
		mustLeg(t, models.OptionTypePut, 95, 1.0, 1),
		mustLeg(t, models.OptionTypeCall, 110, 1.2, -1),
	}

	viaIntrinsic, err := agg.ComputePnL(legs, grid, 0.02, 0.25, 0, true)
	require.NoError(t, err)
	viaEngine, err := agg.ComputePnL(legs, grid, 0.02, 0.25, 0, false)
	require.NoError(t, err)

	for i := range viaIntrinsic {
		assert.InDelta(t, viaIntrinsic[i].PnL, viaEngine[i].PnL, 1e-9)
	}
}

func TestComputePnLLongCallScenario(t *testing.T) {
	// Long call: K=105, premium=2.5, 45 days, sigma=0.25, r=0.02.
	agg := newTestAggregator()
	engine := pricing.NewEngine()
	leg := mustLeg(t, models.OptionTypeCall, 105, 2.5, 1)

	// Current PnL at S=100 equals the theoretical value less the premium.
	current, err := agg.ComputePnL([]models.Leg{leg}, []float64{100}, 0.02, 0.25, 45.0/365, false)
	require.NoError(t, err)
	theo, err := engine.Price(100, 105, 45.0/365, 0.02, 0.25, models.OptionTypeCall)
	require.NoError(t, err)
	assert.InDelta(t, theo-2.5, current[0].PnL, 1e-12)

	// At expiry the payoff is piecewise linear.
	atExpiry, err := agg.ComputePnL([]models.Leg{leg}, []float64{100, 110}, 0.02, 0.25, 0, true)
	require.NoError(t, err)
	assert.InDelta(t, -2.5, atExpiry[0].PnL, 1e-12)
	assert.InDelta(t, 2.5, atExpiry[1].PnL, 1e-12)
}

func TestComputePnLShortLegInvertsSign(t *testing.T) {
	agg := newTestAggregator()
	grid := testGrid(t)

	long := mustLeg(t, models.OptionTypePut, 95, 1.0, 1)
	short := mustLeg(t, models.OptionTypePut, 95, 1.0, -1)

	longCurve, err := agg.ComputePnL([]models.Leg{long}, grid, 0.02, 0.25, 30.0/365, false)
	require.NoError(t, err)
	shortCurve, err := agg.ComputePnL([]models.Leg{short}, grid, 0.02, 0.25, 30.0/365, false)
	require.NoError(t, err)

	for i := range longCurve {
		assert.InDelta(t, -longCurve[i].PnL, shortCurve[i].PnL, 1e-12)
	}
}

func TestComputePnLRejectsBadInput(t *testing.T) {
	agg := newTestAggregator()
	grid := testGrid(t)
	leg := mustLeg(t, models.OptionTypeCall, 105, 2.5, 1)

	_, err := agg.ComputePnL([]models.Leg{leg}, nil, 0.02, 0.25, 0.1, false)
	assert.True(t, errors.IsInvalidParameter(err))

	_, err = agg.ComputePnL([]models.Leg{leg}, grid, 0.02, 0.25, -0.1, false)
	assert.True(t, errors.IsInvalidParameter(err))

	_, err = agg.ComputePnL([]models.Leg{leg}, grid, 0.02, 0, 0.1, false)
	assert.True(t, errors.IsInvalidParameter(err))

	tooMany := []models.Leg{leg, leg, leg, leg, leg}
	_, err = agg.ComputePnL(tooMany, grid, 0.02, 0.25, 0.1, false)
	assert.True(t, errors.IsInvalidParameter(err))

	zeroQty := []models.Leg{{Type: models.OptionTypeCall, Strike: 100, Premium: 1, Quantity: 0}}
	_, err = agg.ComputePnL(zeroQty, grid, 0.02, 0.25, 0.1, false)
	assert.True(t, errors.IsInvalidParameter(err))
}
