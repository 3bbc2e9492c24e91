// Package stream publishes evaluation results to Kafka for downstream
// consumers (dashboards, journaling). Publishing is optional and
// best-effort; an evaluation never fails because the broker is down.
package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rzzdr/payoff-engine/pkg/models"
	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
	"github.com/rzzdr/payoff-engine/pkg/utils/logger"
)

// Config holds the publisher configuration.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Publisher writes evaluation summaries to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
	config Config
	log    *logger.Logger
}

// evaluationEvent is the wire payload. Curves are omitted; consumers that
// need them recompute from the strategy definition.
type evaluationEvent struct {
	StrategyID    string  `json:"strategyId"`
	Spot          float64 `json:"spot"`
	Volatility    float64 `json:"volatility"`
	RiskFreeRate  float64 `json:"riskFreeRate"`
	TotalDays     int     `json:"totalDays"`
	DaysPassed    int     `json:"daysPassed"`
	NetPremium    float64 `json:"netPremium"`
	MarkToMarket  float64 `json:"markToMarket"`
	UnrealizedPnL float64 `json:"unrealizedPnl"`
	Timestamp     string  `json:"timestamp"`
}

// NewPublisher creates a Kafka publisher for evaluation results.
func NewPublisher(config Config) (*Publisher, error) {
	if len(config.Brokers) == 0 {
		return nil, errors.InvalidParameter("at least one Kafka broker is required")
	}
	if config.Topic == "" {
		return nil, errors.InvalidParameter("Kafka topic is required")
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           config.WriteTimeout,
	}

	return &Publisher{
		writer: writer,
		config: config,
		log:    logger.GetLogger("stream.publisher"),
	}, nil
}

// PublishEvaluation writes the summary of one evaluation, keyed by strategy
// ID so results for the same strategy stay in one partition.
func (p *Publisher) PublishEvaluation(ctx context.Context, eval *models.Evaluation) error {
	event := evaluationEvent{
		StrategyID:    eval.StrategyID,
		Spot:          eval.Market.Spot,
		Volatility:    eval.Market.Volatility,
		RiskFreeRate:  eval.Market.RiskFreeRate,
		TotalDays:     eval.Market.TotalDays,
		DaysPassed:    eval.Market.DaysPassed,
		NetPremium:    eval.Summary.NetPremium,
		MarkToMarket:  eval.Summary.MarkToMarket,
		UnrealizedPnL: eval.Summary.UnrealizedPnL,
		Timestamp:     eval.Timestamp.UTC().Format(time.RFC3339Nano),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal evaluation event")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eval.StrategyID),
		Value: value,
	})
	if err != nil {
		p.log.Errorf("Failed to publish evaluation for strategy %s: %v", eval.StrategyID, err)
		return errors.Wrap(err, "failed to publish evaluation")
	}

	p.log.Debugf("Published evaluation for strategy %s", eval.StrategyID)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
