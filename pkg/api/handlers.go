package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rzzdr/payoff-engine/config"
	"github.com/rzzdr/payoff-engine/internal/payoff"
	"github.com/rzzdr/payoff-engine/internal/store"
	"github.com/rzzdr/payoff-engine/internal/stream"
	"github.com/rzzdr/payoff-engine/internal/websocket"
	"github.com/rzzdr/payoff-engine/pkg/metrics"
	"github.com/rzzdr/payoff-engine/pkg/models"
	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
	"github.com/rzzdr/payoff-engine/pkg/utils/logger"
)

// Handlers contains all HTTP handlers for the API.
type Handlers struct {
	aggregator *payoff.Aggregator
	store      *store.InMemoryStrategyStore
	hub        *websocket.Hub
	publisher  *stream.Publisher // nil when streaming is disabled
	recorder   *metrics.Recorder
	engineCfg  config.EngineConfig
	log        *logger.Logger
}

// CreateHandlers creates new API handlers. publisher may be nil.
func CreateHandlers(
	aggregator *payoff.Aggregator,
	strategyStore *store.InMemoryStrategyStore,
	hub *websocket.Hub,
	publisher *stream.Publisher,
	recorder *metrics.Recorder,
	engineCfg config.EngineConfig,
) *Handlers {
	return &Handlers{
		aggregator: aggregator,
		store:      strategyStore,
		hub:        hub,
		publisher:  publisher,
		recorder:   recorder,
		engineCfg:  engineCfg,
		log:        logger.GetLogger("api.handlers"),
	}
}

// Request DTOs. Option types travel as strings ("call"/"put") and are
// converted at this boundary.

type legRequest struct {
	Type     string  `json:"type"`
	Strike   float64 `json:"strike"`
	Premium  float64 `json:"premium"`
	Quantity int     `json:"quantity"`
}

type marketRequest struct {
	Spot         float64  `json:"spot"`
	Volatility   float64  `json:"volatility"`
	RiskFreeRate *float64 `json:"riskFreeRate"`
	TotalDays    int      `json:"totalDays"`
	DaysPassed   int      `json:"daysPassed"`
}

type gridRequest struct {
	LowFactor  float64 `json:"lowFactor"`
	HighFactor float64 `json:"highFactor"`
	Samples    int     `json:"samples"`
}

type payoffRequest struct {
	Market      marketRequest `json:"market"`
	Legs        []legRequest  `json:"legs"`
	Grid        *gridRequest  `json:"grid"`
	Checkpoints []float64     `json:"checkpoints"`
}

type strategyRequest struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Legs []legRequest `json:"legs"`
}

// toMarketParams converts the request, filling the configured default
// risk-free rate when none was supplied.
func (h *Handlers) toMarketParams(req marketRequest) (models.MarketParams, error) {
	rate := h.engineCfg.RiskFreeRate
	if req.RiskFreeRate != nil {
		rate = *req.RiskFreeRate
	}

	m := models.MarketParams{
		Spot:         req.Spot,
		Volatility:   req.Volatility,
		RiskFreeRate: rate,
		TotalDays:    req.TotalDays,
		DaysPassed:   req.DaysPassed,
	}
	if err := m.Validate(); err != nil {
		return models.MarketParams{}, err
	}
	return m, nil
}

// toLegs converts and validates the request legs.
func toLegs(reqs []legRequest) ([]models.Leg, error) {
	if len(reqs) > models.MaxLegs {
		return nil, errors.InvalidParameterf("a strategy holds at most %d legs, got %d", models.MaxLegs, len(reqs))
	}
	legs := make([]models.Leg, 0, len(reqs))
	for i, req := range reqs {
		optionType, err := models.ParseOptionType(strings.ToLower(req.Type))
		if err != nil {
			return nil, errors.Wrapf(err, "leg %d", i)
		}
		leg, err := models.NewLeg(optionType, req.Strike, req.Premium, req.Quantity)
		if err != nil {
			return nil, errors.Wrapf(err, "leg %d", i)
		}
		legs = append(legs, leg)
	}
	return legs, nil
}

// buildGrid creates the price grid for a request, falling back to the
// configured defaults.
func (h *Handlers) buildGrid(spot float64, req *gridRequest) ([]float64, error) {
	low := h.engineCfg.GridLowFactor
	high := h.engineCfg.GridHighFactor
	samples := h.engineCfg.GridSamples
	if req != nil {
		if req.LowFactor > 0 {
			low = req.LowFactor
		}
		if req.HighFactor > 0 {
			high = req.HighFactor
		}
		if req.Samples > 0 {
			samples = req.Samples
		}
	}
	return models.NewPriceGrid(spot, low, high, samples)
}

// respondError maps taxonomy errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.TypeOf(err) {
	case errors.ErrorTypeInvalidParameter:
		status = http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case errors.ErrorTypeAlreadyExists:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// HealthCheckHandler handles health check requests.
func (h *Handlers) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

// ComputeCurvesHandler computes the current-time and expiry PnL curves for
// an ad-hoc strategy.
func (h *Handlers) ComputeCurvesHandler(c *gin.Context) {
	var req payoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	start := time.Now()
	market, legs, grid, err := h.prepare(req)
	if err != nil {
		respondError(c, err)
		return
	}

	current, err := h.aggregator.ComputePnL(legs, grid, market.RiskFreeRate, market.Volatility, market.RemainingTerm(), false)
	if err != nil {
		respondError(c, err)
		return
	}

	expiry, err := h.aggregator.ComputePnL(legs, grid, market.RiskFreeRate, market.Volatility, 0, true)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordEvaluation("curves", len(legs), time.Since(start))
	}

	c.JSON(http.StatusOK, gin.H{
		"current": current,
		"expiry":  expiry,
	})
}

// ComputeDecayHandler computes the time-decay curve family for an ad-hoc
// strategy.
func (h *Handlers) ComputeDecayHandler(c *gin.Context) {
	var req payoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	start := time.Now()
	market, legs, grid, err := h.prepare(req)
	if err != nil {
		respondError(c, err)
		return
	}

	checkpoints := req.Checkpoints
	if len(checkpoints) == 0 {
		checkpoints = h.engineCfg.DecayCheckpoints
	}

	family, err := h.aggregator.DecayFamily(c.Request.Context(), legs, grid, market.RiskFreeRate, market.Volatility, market.InitialTerm(), checkpoints)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordEvaluation("decay", len(legs), time.Since(start))
	}

	c.JSON(http.StatusOK, gin.H{"decay": family})
}

// ComputeSummaryHandler computes the scalar position metrics for an ad-hoc
// strategy.
func (h *Handlers) ComputeSummaryHandler(c *gin.Context) {
	var req payoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	start := time.Now()
	market, err := h.toMarketParams(req.Market)
	if err != nil {
		respondError(c, err)
		return
	}
	legs, err := toLegs(req.Legs)
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.aggregator.Summarize(legs, market)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordEvaluation("summary", len(legs), time.Since(start))
	}

	c.JSON(http.StatusOK, summary)
}

// prepare converts and validates the shared parts of a payoff request.
func (h *Handlers) prepare(req payoffRequest) (models.MarketParams, []models.Leg, []float64, error) {
	market, err := h.toMarketParams(req.Market)
	if err != nil {
		return models.MarketParams{}, nil, nil, err
	}
	legs, err := toLegs(req.Legs)
	if err != nil {
		return models.MarketParams{}, nil, nil, err
	}
	grid, err := h.buildGrid(market.Spot, req.Grid)
	if err != nil {
		return models.MarketParams{}, nil, nil, err
	}
	return market, legs, grid, nil
}

// ListStrategiesHandler returns all stored strategies.
func (h *Handlers) ListStrategiesHandler(c *gin.Context) {
	strategies, err := h.store.GetAllStrategies()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"strategies": strategies,
		"count":      len(strategies),
	})
}

// CreateStrategyHandler stores a new named strategy.
func (h *Handlers) CreateStrategyHandler(c *gin.Context) {
	var req strategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	legs, err := toLegs(req.Legs)
	if err != nil {
		respondError(c, err)
		return
	}

	id := req.ID
	if id == "" {
		id = generateID()
	}

	strategy := &models.Strategy{ID: id, Name: req.Name, Legs: legs}
	if err := h.store.SaveStrategy(strategy); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, strategy)
}

// GetStrategyHandler returns one strategy.
func (h *Handlers) GetStrategyHandler(c *gin.Context) {
	strategy, err := h.store.GetStrategy(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, strategy)
}

// UpdateStrategyHandler replaces a stored strategy's name and legs.
func (h *Handlers) UpdateStrategyHandler(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.store.GetStrategy(id); err != nil {
		respondError(c, err)
		return
	}

	var req strategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	legs, err := toLegs(req.Legs)
	if err != nil {
		respondError(c, err)
		return
	}

	strategy := &models.Strategy{ID: id, Name: req.Name, Legs: legs}
	if err := h.store.SaveStrategy(strategy); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, strategy)
}

// DeleteStrategyHandler removes a stored strategy.
func (h *Handlers) DeleteStrategyHandler(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.DeleteStrategy(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Strategy %s deleted", id),
	})
}

// EvaluateStrategyHandler runs a full evaluation of a stored strategy:
// current and expiry curves, the decay family, and the summary scalars.
// The result is broadcast to websocket subscribers and, when streaming is
// enabled, published to Kafka.
func (h *Handlers) EvaluateStrategyHandler(c *gin.Context) {
	id := c.Param("id")

	strategy, err := h.store.GetStrategy(id)
	if err != nil {
		respondError(c, err)
		return
	}

	var req payoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	start := time.Now()
	market, err := h.toMarketParams(req.Market)
	if err != nil {
		respondError(c, err)
		return
	}
	grid, err := h.buildGrid(market.Spot, req.Grid)
	if err != nil {
		respondError(c, err)
		return
	}
	checkpoints := req.Checkpoints
	if len(checkpoints) == 0 {
		checkpoints = h.engineCfg.DecayCheckpoints
	}

	legs := strategy.Legs

	current, err := h.aggregator.ComputePnL(legs, grid, market.RiskFreeRate, market.Volatility, market.RemainingTerm(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	expiry, err := h.aggregator.ComputePnL(legs, grid, market.RiskFreeRate, market.Volatility, 0, true)
	if err != nil {
		respondError(c, err)
		return
	}
	family, err := h.aggregator.DecayFamily(c.Request.Context(), legs, grid, market.RiskFreeRate, market.Volatility, market.InitialTerm(), checkpoints)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.aggregator.Summarize(legs, market)
	if err != nil {
		respondError(c, err)
		return
	}

	eval := &models.Evaluation{
		StrategyID: id,
		Market:     market,
		Current:    current,
		Expiry:     expiry,
		Decay:      family,
		Summary:    summary,
		Timestamp:  time.Now(),
	}

	if h.recorder != nil {
		h.recorder.RecordEvaluation("full", len(legs), time.Since(start))
	}

	if h.hub != nil {
		h.hub.BroadcastEvaluation(eval)
	}

	if h.publisher != nil {
		pubErr := h.publisher.PublishEvaluation(c.Request.Context(), eval)
		if pubErr != nil {
			h.log.Warnf("Failed to publish evaluation for strategy %s: %v", id, pubErr)
		}
		if h.recorder != nil {
			h.recorder.RecordPublish(pubErr)
		}
	}

	c.JSON(http.StatusOK, eval)
}

// generateID generates a unique ID for stored strategies.
func generateID() string {
	return fmt.Sprintf("strat-%d", time.Now().UnixNano())
}
