package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"projecttracker/pkg/circuitbreaker"
)

type recordingPublisher struct {
	keys     []string
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.keys = append(p.keys, routingKey)
	p.payloads = append(p.payloads, payload)
	return p.err
}

func TestEmitter_PublishesEnvelope(t *testing.T) {
	pub := &recordingPublisher{}
	e := NewEmitter(pub, zap.NewNop())

	at := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	e.StatusChanged(context.Background(), TaskStatusChanged, StatusChangedPayload{
		ID: 7, ProjectID: 3, From: "OPEN", To: "COMPLETED", Actor: "alice", OccurredAt: at,
	})

	if len(pub.keys) != 1 || pub.keys[0] != TaskStatusChanged {
		t.Fatalf("unexpected routing keys %v", pub.keys)
	}
	evt, ok := pub.payloads[0].(Event)
	if !ok || evt.Type != TaskStatusChanged {
		t.Fatalf("unexpected payload %#v", pub.payloads[0])
	}
	var data StatusChangedPayload
	if err := json.Unmarshal(evt.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.ID != 7 || data.To != "COMPLETED" || !data.OccurredAt.Equal(at) {
		t.Fatalf("unexpected data %+v", data)
	}
}

func TestEmitter_SwallowsFailures(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	NewEmitter(pub, zap.NewNop()).StatusChanged(context.Background(), ProjectStatusChanged, StatusChangedPayload{ID: 1})
	if len(pub.keys) != 1 {
		t.Fatalf("expected one publish attempt, got %d", len(pub.keys))
	}

	// nil publisher and nil emitter are both no-ops
	NewEmitter(nil, zap.NewNop()).StatusChanged(context.Background(), ProjectStatusChanged, StatusChangedPayload{})
	var nilEmitter *Emitter
	nilEmitter.StatusChanged(context.Background(), ProjectStatusChanged, StatusChangedPayload{})
}

func TestEmitter_BreakerStopsPublishing(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	breaker := circuitbreaker.New(circuitbreaker.Config{FailureThreshold: 2, Cooldown: time.Hour})
	e := NewEmitterWithBreaker(pub, breaker, zap.NewNop())

	for i := 0; i < 5; i++ {
		e.StatusChanged(context.Background(), TaskStatusChanged, StatusChangedPayload{ID: int64(i)})
	}
	if len(pub.keys) != 2 {
		t.Fatalf("expected publishing to stop after two failures, got %d attempts", len(pub.keys))
	}
	if breaker.State() != circuitbreaker.StateOpen {
		t.Fatalf("expected breaker open, got %s", breaker.State())
	}
}
