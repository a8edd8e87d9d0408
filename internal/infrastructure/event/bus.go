package event

import (
	"sync"

	"go.uber.org/zap"

	"github.com/craftbridge/backend/internal/domain/shared"
)

// Handler processes domain events it has subscribed to
type Handler interface {
	Handle(event shared.DomainEvent) error
	EventTypes() []string
}

// InMemoryEventBus implements shared.EventPublisher with in-process
// pub/sub. Handlers run synchronously on the publishing goroutine; a
// failing handler is logged and does not stop the others.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for specific event types. With no
// explicit types, the handler's own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler Handler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Publish delivers the event to all handlers registered for its type
func (b *InMemoryEventBus) Publish(event shared.DomainEvent) error {
	b.mu.RLock()
	handlers := b.handlers[event.EventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := b.dispatchToHandler(handler, event); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (b *InMemoryEventBus) dispatchToHandler(handler Handler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(event)
}

// Ensure InMemoryEventBus implements EventPublisher
var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
