package pooling

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftbridge/backend/internal/domain/shared"
)

// BoxTier is the packaging size class selected from aggregate weight
type BoxTier string

const (
	BoxTierSmall  BoxTier = "small"  // 30x30x20 cm
	BoxTierMedium BoxTier = "medium" // 40x40x30 cm
	BoxTierLarge  BoxTier = "large"  // 50x50x40 cm
)

// Dimensions returns the human-readable box dimensions for the tier
func (t BoxTier) Dimensions() string {
	switch t {
	case BoxTierSmall:
		return "30x30x20 cm"
	case BoxTierMedium:
		return "40x40x30 cm"
	case BoxTierLarge:
		return "50x50x40 cm"
	default:
		return ""
	}
}

var (
	smallTierLimit  = decimal.NewFromInt(5)
	mediumTierLimit = decimal.NewFromInt(15)
	mediumBoxCapKg  = decimal.NewFromInt(10)
	largeBoxCapKg   = decimal.NewFromInt(20)
)

// SelectBoxTier picks the packaging tier and box count for an aggregate
// weight: under 5kg a single small box, under 15kg medium boxes of 10kg
// capacity, otherwise large boxes of 20kg capacity.
func SelectBoxTier(totalWeightKg decimal.Decimal) (BoxTier, int) {
	switch {
	case totalWeightKg.LessThan(smallTierLimit):
		return BoxTierSmall, 1
	case totalWeightKg.LessThan(mediumTierLimit):
		return BoxTierMedium, int(totalWeightKg.Div(mediumBoxCapKg).Ceil().IntPart())
	default:
		return BoxTierLarge, int(totalWeightKg.Div(largeBoxCapKg).Ceil().IntPart())
	}
}

// ShipmentStatus represents the lifecycle status of a consolidated
// shipment. Forward-only: pending_pickup -> shipped -> delivered.
type ShipmentStatus string

const (
	ShipmentStatusPendingPickup ShipmentStatus = "pending_pickup"
	ShipmentStatusShipped       ShipmentStatus = "shipped"
	ShipmentStatusDelivered     ShipmentStatus = "delivered"
)

var shipmentStatusRank = map[ShipmentStatus]int{
	ShipmentStatusPendingPickup: 0,
	ShipmentStatusShipped:       1,
	ShipmentStatusDelivered:     2,
}

// CanTransitionTo reports whether the move is forward in the lifecycle
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	from, ok := shipmentStatusRank[s]
	if !ok {
		return false
	}
	to, ok := shipmentStatusRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// GenerateShipmentRef builds the human-traceable shipment reference:
// a date-stamped prefix, the first member order's short identifier, and
// a random suffix so two shipments created the same second for
// different order sets cannot collide.
func GenerateShipmentRef(createdAt time.Time, firstOrderID uuid.UUID) string {
	short := strings.ReplaceAll(firstOrderID.String(), "-", "")[:8]
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return fmt.Sprintf("POOL-%s-%s-%s", createdAt.Format("20060102"), short, suffix)
}

// ConsolidatedShipment is the aggregate created on consolidation commit.
// Its member set is immutable after creation; adding an order to an
// existing shipment is not supported.
type ConsolidatedShipment struct {
	shared.BaseAggregateRoot
	ShipmentRef        string
	MemberOrderIDs     []uuid.UUID
	TotalWeightKg      decimal.Decimal
	BoxTier            BoxTier
	BoxCount           int
	DestinationAddress string
	Status             ShipmentStatus
	EstimatedDelivery  time.Time
}

// NewConsolidatedShipment creates a shipment for the given member orders.
// The order list and destination address must be non-empty and the
// aggregate weight positive.
func NewConsolidatedShipment(memberOrderIDs []uuid.UUID, destinationAddress string, totalWeightKg decimal.Decimal, estimatedDelivery time.Time) (*ConsolidatedShipment, error) {
	if len(memberOrderIDs) == 0 {
		return nil, shared.ErrInvalidInput.WithDetails("shipment must contain at least one order")
	}
	if strings.TrimSpace(destinationAddress) == "" {
		return nil, shared.ErrInvalidInput.WithDetails("destination address cannot be blank")
	}
	if !totalWeightKg.IsPositive() {
		return nil, shared.ErrInvalidInput.WithDetails("total weight must be positive")
	}
	seen := make(map[uuid.UUID]struct{}, len(memberOrderIDs))
	for _, id := range memberOrderIDs {
		if _, dup := seen[id]; dup {
			return nil, shared.ErrInvalidInput.WithDetails("duplicate order id in shipment: " + id.String())
		}
		seen[id] = struct{}{}
	}

	root := shared.NewBaseAggregateRoot()
	tier, boxCount := SelectBoxTier(totalWeightKg)
	shipment := &ConsolidatedShipment{
		BaseAggregateRoot:  root,
		ShipmentRef:        GenerateShipmentRef(root.CreatedAt, memberOrderIDs[0]),
		MemberOrderIDs:     memberOrderIDs,
		TotalWeightKg:      totalWeightKg,
		BoxTier:            tier,
		BoxCount:           boxCount,
		DestinationAddress: strings.TrimSpace(destinationAddress),
		Status:             ShipmentStatusPendingPickup,
		EstimatedDelivery:  estimatedDelivery,
	}
	shipment.AddDomainEvent(NewShipmentConsolidatedEvent(shipment.ID, shipment.ShipmentRef, memberOrderIDs, totalWeightKg))
	return shipment, nil
}

// MarkShipped moves the shipment from pending_pickup to shipped
func (s *ConsolidatedShipment) MarkShipped() error {
	if !s.Status.CanTransitionTo(ShipmentStatusShipped) {
		return shared.ErrInvalidState.WithDetails(
			"cannot ship from status " + string(s.Status))
	}
	old := s.Status
	s.Status = ShipmentStatusShipped
	s.AddDomainEvent(NewShipmentStatusChangedEvent(EventShipmentShipped, s.ID, s.ShipmentRef, string(old), string(s.Status)))
	return nil
}

// MarkDelivered moves the shipment from shipped to delivered
func (s *ConsolidatedShipment) MarkDelivered() error {
	if !s.Status.CanTransitionTo(ShipmentStatusDelivered) {
		return shared.ErrInvalidState.WithDetails(
			"cannot deliver from status " + string(s.Status))
	}
	old := s.Status
	s.Status = ShipmentStatusDelivered
	s.AddDomainEvent(NewShipmentStatusChangedEvent(EventShipmentDelivered, s.ID, s.ShipmentRef, string(old), string(s.Status)))
	return nil
}

// IsOpen reports whether the shipment still claims its member orders
// exclusively (not yet delivered).
func (s *ConsolidatedShipment) IsOpen() bool {
	return s.Status != ShipmentStatusDelivered
}
