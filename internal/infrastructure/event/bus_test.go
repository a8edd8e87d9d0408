package event

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/craftbridge/backend/internal/domain/pooling"
	"github.com/craftbridge/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
}

func (h *recordingHandler) Handle(event shared.DomainEvent) error {
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

type panickingHandler struct{}

func (h *panickingHandler) Handle(shared.DomainEvent) error { panic("boom") }
func (h *panickingHandler) EventTypes() []string {
	return []string{pooling.EventOrderOptedIn}
}

func TestInMemoryEventBus(t *testing.T) {
	t.Run("delivers events to subscribed handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{pooling.EventOrderOptedIn}}
		bus.Subscribe(handler)

		event := pooling.NewOrderOptedInEvent(uuid.New(), uuid.New())
		assert.NoError(t, bus.Publish(event))

		assert.Len(t, handler.received, 1)
		assert.Equal(t, pooling.EventOrderOptedIn, handler.received[0].EventType())
	})

	t.Run("does not deliver unrelated event types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{pooling.EventShipmentShipped}}
		bus.Subscribe(handler)

		assert.NoError(t, bus.Publish(pooling.NewOrderOptedInEvent(uuid.New(), uuid.New())))

		assert.Empty(t, handler.received)
	})

	t.Run("continues past a failing handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{
			types: []string{pooling.EventOrderOptedIn},
			err:   errors.New("handler down"),
		}
		healthy := &recordingHandler{types: []string{pooling.EventOrderOptedIn}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		assert.NoError(t, bus.Publish(pooling.NewOrderOptedInEvent(uuid.New(), uuid.New())))

		assert.Len(t, failing.received, 1)
		assert.Len(t, healthy.received, 1)
	})

	t.Run("recovers from a panicking handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		bus.Subscribe(&panickingHandler{})
		healthy := &recordingHandler{types: []string{pooling.EventOrderOptedIn}}
		bus.Subscribe(healthy)

		assert.NotPanics(t, func() {
			_ = bus.Publish(pooling.NewOrderOptedInEvent(uuid.New(), uuid.New()))
		})
		assert.Len(t, healthy.received, 1)
	})
}
