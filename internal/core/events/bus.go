package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

// Publisher is what services depend on; EventBus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Handler func(ctx context.Context, event Event) error

// wildcard subscribers receive every event type.
const wildcard = "*"

type EventBus struct {
	handlers map[string][]Handler
	logger   *slog.Logger
	mu       sync.RWMutex
	inflight sync.WaitGroup
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debug("event handler registered",
		"event_type", eventType,
		"total_handlers", len(eb.handlers[eventType]))
}

// SubscribeAll registers a handler for every published event.
func (eb *EventBus) SubscribeAll(handler Handler) {
	eb.Subscribe(wildcard, handler)
}

func (eb *EventBus) handlersFor(eventType string) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	hs := make([]Handler, 0, len(eb.handlers[eventType])+len(eb.handlers[wildcard]))
	hs = append(hs, eb.handlers[eventType]...)
	return append(hs, eb.handlers[wildcard]...)
}

// Publish runs handlers in the background. The request context is detached
// from cancellation so handlers outlive the HTTP response.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	handlers := eb.handlersFor(event.EventType())
	if len(handlers) == 0 {
		eb.logger.Debug("no handlers for event type", "event_type", event.EventType())
		return nil
	}

	detached := context.WithoutCancel(ctx)
	for _, handler := range handlers {
		eb.inflight.Add(1)
		go func(h Handler) {
			defer eb.inflight.Done()
			if err := h(detached, event); err != nil {
				eb.logger.Error("event handler failed",
					"event_type", event.EventType(),
					"event_id", event.EventID(),
					"error", err)
			}
		}(handler)
	}

	return nil
}

func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	for _, handler := range eb.handlersFor(event.EventType()) {
		if err := handler(ctx, event); err != nil {
			eb.logger.Error("event handler failed",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"error", err)
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}
	return nil
}

// Wait blocks until background handlers finish or ctx expires.
func (eb *EventBus) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		eb.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Emit publishes through p when one is configured. Publishing never fails
// the calling operation; errors are logged.
func Emit(ctx context.Context, p Publisher, logger *slog.Logger, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
