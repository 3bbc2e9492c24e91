package payoff

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rzzdr/payoff-engine/pkg/models"
	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
)

// DefaultDecayCheckpoints are the elapsed-duration fractions used when a
// request does not supply its own.
var DefaultDecayCheckpoints = []float64{0.1, 0.3, 0.5, 0.8}

// DecayFamily computes one PnL curve per checkpoint fraction, illustrating
// how the position's value erodes as the contract duration elapses. Each
// checkpoint p in [0,1) is priced at initialTerm*(1-p) years to expiry.
//
// Curves are independent, so they are computed concurrently, one goroutine
// per checkpoint. The result is ordered by ascending elapsed fraction; as
// the fraction approaches 1 the curve converges to the expiry curve.
func (a *Aggregator) DecayFamily(ctx context.Context, legs []models.Leg, grid []float64, rate, vol, initialTerm float64, checkpoints []float64) ([]models.DecayCurve, error) {
	if initialTerm <= 0 {
		return nil, errors.InvalidParameterf("initial term must be positive, got %f", initialTerm)
	}
	for _, p := range checkpoints {
		if p < 0 || p >= 1 {
			return nil, errors.InvalidParameterf("decay checkpoint must be in [0,1), got %f", p)
		}
	}
	if len(checkpoints) == 0 {
		checkpoints = DefaultDecayCheckpoints
	}

	family := make([]models.DecayCurve, len(checkpoints))
	g, _ := errgroup.WithContext(ctx)
	for i, p := range checkpoints {
		g.Go(func() error {
			remaining := initialTerm * (1 - p)
			curve, err := a.ComputePnL(legs, grid, rate, vol, remaining, false)
			if err != nil {
				return err
			}
			family[i] = models.DecayCurve{Elapsed: p, Curve: curve}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(family, func(i, j int) bool {
		return family[i].Elapsed < family[j].Elapsed
	})
	return family, nil
}
