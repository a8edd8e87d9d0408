package pooling

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBoxTier(t *testing.T) {
	tests := []struct {
		name     string
		weight   float64
		tier     BoxTier
		boxCount int
	}{
		{"light shipment uses one small box", 4.9, BoxTierSmall, 1},
		{"five kilos moves to medium", 5, BoxTierMedium, 1},
		{"twelve kilos needs two medium boxes", 12, BoxTierMedium, 2},
		{"fifteen kilos moves to large", 15, BoxTierLarge, 1},
		{"forty five kilos needs three large boxes", 45, BoxTierLarge, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, count := SelectBoxTier(decimal.NewFromFloat(tt.weight))
			assert.Equal(t, tt.tier, tier)
			assert.Equal(t, tt.boxCount, count)
		})
	}
}

func TestNewConsolidatedShipment(t *testing.T) {
	orderIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	delivery := time.Now().AddDate(0, 0, 10)

	t.Run("valid shipment", func(t *testing.T) {
		shipment, err := NewConsolidatedShipment(orderIDs, "12 Main St, Portland, US", decimal.NewFromFloat(7.5), delivery)
		require.NoError(t, err)

		assert.Equal(t, ShipmentStatusPendingPickup, shipment.Status)
		assert.Equal(t, BoxTierMedium, shipment.BoxTier)
		assert.Equal(t, 1, shipment.BoxCount)
		assert.Len(t, shipment.MemberOrderIDs, 3)
		assert.Len(t, shipment.GetDomainEvents(), 1)
	})

	t.Run("reference is date-stamped and traceable to first order", func(t *testing.T) {
		shipment, err := NewConsolidatedShipment(orderIDs, "addr", decimal.NewFromInt(3), delivery)
		require.NoError(t, err)

		datePart := shipment.CreatedAt.Format("20060102")
		firstShort := strings.ReplaceAll(orderIDs[0].String(), "-", "")[:8]
		assert.True(t, strings.HasPrefix(shipment.ShipmentRef, "POOL-"+datePart+"-"+firstShort+"-"),
			"unexpected shipment ref %s", shipment.ShipmentRef)
	})

	t.Run("references do not collide for same first order", func(t *testing.T) {
		a, err := NewConsolidatedShipment(orderIDs, "addr", decimal.NewFromInt(3), delivery)
		require.NoError(t, err)
		b, err := NewConsolidatedShipment(orderIDs, "addr", decimal.NewFromInt(3), delivery)
		require.NoError(t, err)
		assert.NotEqual(t, a.ShipmentRef, b.ShipmentRef)
	})

	t.Run("empty order list", func(t *testing.T) {
		_, err := NewConsolidatedShipment(nil, "addr", decimal.NewFromInt(3), delivery)
		require.Error(t, err)
	})

	t.Run("blank destination address", func(t *testing.T) {
		_, err := NewConsolidatedShipment(orderIDs, "   ", decimal.NewFromInt(3), delivery)
		require.Error(t, err)
	})

	t.Run("non-positive weight", func(t *testing.T) {
		_, err := NewConsolidatedShipment(orderIDs, "addr", decimal.Zero, delivery)
		require.Error(t, err)
	})

	t.Run("duplicate member order", func(t *testing.T) {
		dup := uuid.New()
		_, err := NewConsolidatedShipment([]uuid.UUID{dup, dup}, "addr", decimal.NewFromInt(3), delivery)
		require.Error(t, err)
	})
}

func TestConsolidatedShipment_Lifecycle(t *testing.T) {
	newShipment := func(t *testing.T) *ConsolidatedShipment {
		t.Helper()
		shipment, err := NewConsolidatedShipment([]uuid.UUID{uuid.New()}, "addr", decimal.NewFromInt(3), time.Now())
		require.NoError(t, err)
		return shipment
	}

	t.Run("forward transitions", func(t *testing.T) {
		shipment := newShipment(t)
		require.NoError(t, shipment.MarkShipped())
		assert.Equal(t, ShipmentStatusShipped, shipment.Status)
		require.NoError(t, shipment.MarkDelivered())
		assert.Equal(t, ShipmentStatusDelivered, shipment.Status)
		assert.False(t, shipment.IsOpen())
	})

	t.Run("cannot deliver before shipping", func(t *testing.T) {
		shipment := newShipment(t)
		require.Error(t, shipment.MarkDelivered())
		assert.Equal(t, ShipmentStatusPendingPickup, shipment.Status)
	})

	t.Run("cannot ship twice", func(t *testing.T) {
		shipment := newShipment(t)
		require.NoError(t, shipment.MarkShipped())
		require.Error(t, shipment.MarkShipped())
	})
}
