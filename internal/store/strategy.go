// Package store provides in-memory storage for named strategies. The
// pricing core itself is stateless; persistence of strategy definitions is a
// service-layer concern.
package store

import (
	"sync"
	"time"

	"github.com/rzzdr/payoff-engine/pkg/models"
	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
	"github.com/rzzdr/payoff-engine/pkg/utils/logger"
)

// InMemoryStrategyStore implements in-memory strategy storage.
type InMemoryStrategyStore struct {
	strategies map[string]*models.Strategy
	mu         sync.RWMutex
	log        *logger.Logger
}

// NewInMemoryStrategyStore creates a new in-memory strategy store.
func NewInMemoryStrategyStore() *InMemoryStrategyStore {
	return &InMemoryStrategyStore{
		strategies: make(map[string]*models.Strategy),
		log:        logger.GetLogger("store.strategy"),
	}
}

// GetStrategy retrieves a strategy by ID.
func (s *InMemoryStrategyStore) GetStrategy(id string) (*models.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strategy, exists := s.strategies[id]
	if !exists {
		return nil, errors.NotFound("strategy not found: " + id)
	}

	return strategy, nil
}

// GetAllStrategies returns all stored strategies.
func (s *InMemoryStrategyStore) GetAllStrategies() ([]*models.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strategies := make([]*models.Strategy, 0, len(s.strategies))
	for _, strategy := range s.strategies {
		strategies = append(strategies, strategy)
	}

	return strategies, nil
}

// SaveStrategy saves or updates a strategy after validating its legs.
func (s *InMemoryStrategyStore) SaveStrategy(strategy *models.Strategy) error {
	if strategy == nil {
		return errors.InvalidParameter("cannot save nil strategy")
	}
	if strategy.ID == "" {
		return errors.InvalidParameter("strategy ID cannot be empty")
	}
	if err := models.ValidateLegs(strategy.Legs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, exists := s.strategies[strategy.ID]; exists {
		strategy.Created = existing.Created
	} else {
		strategy.Created = now
	}
	strategy.Updated = now

	s.strategies[strategy.ID] = strategy
	return nil
}

// DeleteStrategy removes a strategy by ID.
func (s *InMemoryStrategyStore) DeleteStrategy(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.strategies[id]; !exists {
		return errors.NotFound("strategy not found: " + id)
	}

	delete(s.strategies, id)
	return nil
}
