// Package events announces committed status changes on the message bus.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"projecttracker/pkg/circuitbreaker"
	"projecttracker/pkg/logger"
)

const (
	ProjectStatusChanged = "project.status_changed"
	TaskStatusChanged    = "task.status_changed"
)

// Event is the envelope written to the exchange.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: data}, nil
}

// 状态变更事件的 payload
type StatusChangedPayload struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id,omitempty"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is implemented by *mq.Publisher.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Emitter publishes events best-effort: failures are logged and dropped.
// A nil publisher turns every call into a no-op. Repeated failures open a
// breaker so writes stop waiting on an unreachable broker.
type Emitter struct {
	pub     Publisher
	breaker *circuitbreaker.Breaker
	logger  *zap.Logger
}

func NewEmitter(pub Publisher, logger *zap.Logger) *Emitter {
	return NewEmitterWithBreaker(pub, circuitbreaker.New(circuitbreaker.DefaultConfig()), logger)
}

func NewEmitterWithBreaker(pub Publisher, breaker *circuitbreaker.Breaker, logger *zap.Logger) *Emitter {
	return &Emitter{pub: pub, breaker: breaker, logger: logger}
}

func (e *Emitter) StatusChanged(ctx context.Context, eventType string, p StatusChangedPayload) {
	if e == nil || e.pub == nil {
		return
	}
	log := logger.WithTrace(ctx, e.logger)

	evt, err := NewEvent(eventType, p)
	if err != nil {
		log.Error("Failed to encode event", zap.String("type", eventType), zap.Error(err))
		return
	}
	err = e.breaker.Execute(func() error { return e.pub.Publish(ctx, eventType, evt) })
	if errors.Is(err, circuitbreaker.ErrOpen) {
		log.Debug("Event dropped, publisher breaker open", zap.String("type", eventType), zap.Int64("id", p.ID))
		return
	}
	if err != nil {
		log.Warn("Failed to publish event",
			zap.String("type", eventType),
			zap.Int64("id", p.ID),
			zap.Error(err),
		)
		return
	}
	log.Debug("Event published", zap.String("type", eventType), zap.Int64("id", p.ID))
}
