package pooling

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftbridge/backend/internal/domain/shared"
)

// Event types for the pooling lifecycle
const (
	EventOrderOptedIn         = "pooling.order_opted_in"
	EventShipmentConsolidated = "pooling.shipment_consolidated"
	EventShipmentShipped      = "pooling.shipment_shipped"
	EventShipmentDelivered    = "pooling.shipment_delivered"
)

// OrderOptedInEvent is raised when an artisan opts an order into pooling
type OrderOptedInEvent struct {
	shared.BaseDomainEvent
	ArtisanID uuid.UUID `json:"artisan_id"`
}

// NewOrderOptedInEvent creates a new OrderOptedInEvent
func NewOrderOptedInEvent(orderID, artisanID uuid.UUID) *OrderOptedInEvent {
	return &OrderOptedInEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderOptedIn, "PoolableOrder", orderID),
		ArtisanID:       artisanID,
	}
}

// ShipmentConsolidatedEvent is raised when a consolidated shipment is
// created and its member orders are claimed.
type ShipmentConsolidatedEvent struct {
	shared.BaseDomainEvent
	ShipmentRef   string          `json:"shipment_ref"`
	MemberOrders  []uuid.UUID     `json:"member_orders"`
	TotalWeightKg decimal.Decimal `json:"total_weight_kg"`
}

// NewShipmentConsolidatedEvent creates a new ShipmentConsolidatedEvent
func NewShipmentConsolidatedEvent(shipmentID uuid.UUID, shipmentRef string, memberOrders []uuid.UUID, totalWeight decimal.Decimal) *ShipmentConsolidatedEvent {
	return &ShipmentConsolidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventShipmentConsolidated, "ConsolidatedShipment", shipmentID),
		ShipmentRef:     shipmentRef,
		MemberOrders:    memberOrders,
		TotalWeightKg:   totalWeight,
	}
}

// ShipmentStatusChangedEvent is raised when a shipment moves forward in
// its lifecycle (shipped, delivered).
type ShipmentStatusChangedEvent struct {
	shared.BaseDomainEvent
	ShipmentRef string `json:"shipment_ref"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
}

// NewShipmentStatusChangedEvent creates a new ShipmentStatusChangedEvent
func NewShipmentStatusChangedEvent(eventType string, shipmentID uuid.UUID, shipmentRef, oldStatus, newStatus string) *ShipmentStatusChangedEvent {
	return &ShipmentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "ConsolidatedShipment", shipmentID),
		ShipmentRef:     shipmentRef,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
