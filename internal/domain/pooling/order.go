package pooling

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftbridge/backend/internal/domain/shared"
	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OpenOrderStatuses are the statuses under which an order has not yet
// shipped and may still join a pooled shipment.
func OpenOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusConfirmed}
}

// PoolingStatus tracks an order's progress through the pooling lifecycle:
// none -> candidate -> opted_in -> consolidated -> delivered.
// Transitions are forward-only.
type PoolingStatus string

const (
	PoolingStatusNone         PoolingStatus = "none"
	PoolingStatusCandidate    PoolingStatus = "candidate"
	PoolingStatusOptedIn      PoolingStatus = "opted_in"
	PoolingStatusConsolidated PoolingStatus = "consolidated"
	PoolingStatusDelivered    PoolingStatus = "delivered"
)

var poolingStatusRank = map[PoolingStatus]int{
	PoolingStatusNone:         0,
	PoolingStatusCandidate:    1,
	PoolingStatusOptedIn:      2,
	PoolingStatusConsolidated: 3,
	PoolingStatusDelivered:    4,
}

// CanTransitionTo reports whether moving to the given status is a
// forward move in the pooling chain.
func (s PoolingStatus) CanTransitionTo(next PoolingStatus) bool {
	from, ok := poolingStatusRank[s]
	if !ok {
		return false
	}
	to, ok := poolingStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// ShippingMethodPooled is written to an order when it opts into a
// consolidated shipment.
const ShippingMethodPooled = "cluster_pooling"

// PoolableOrder is the pooling view of a marketplace order: the fields
// this subsystem reads to form clusters plus the tracking state it
// writes back on consolidation. The order itself is owned by the order
// subsystem.
type PoolableOrder struct {
	shared.BaseAggregateRoot
	ArtisanID          uuid.UUID
	BuyerID            uuid.UUID
	Origin             valueobject.Region
	DestinationCountry string
	DestinationAddress string
	Quantity           int
	WeightKg           decimal.Decimal
	ShippingCost       valueobject.Money
	Status             OrderStatus
	PoolingStatus      PoolingStatus
	ShippingMethod     string
	TrackingNumber     string
}

// NewPoolableOrder creates a pooling view for a freshly placed order,
// estimating its weight from the item quantity.
func NewPoolableOrder(artisanID, buyerID uuid.UUID, origin valueobject.Region, destinationCountry, destinationAddress string, quantity int, estimator WeightEstimator) (*PoolableOrder, error) {
	if quantity <= 0 {
		return nil, shared.ErrInvalidInput.WithDetails("order quantity must be positive")
	}
	if origin.IsZero() {
		return nil, shared.ErrInvalidInput.WithDetails("order origin region is required")
	}
	weight := estimator.EstimateWeight(quantity)
	if !weight.IsPositive() {
		return nil, shared.ErrInvalidInput.WithDetails("estimated weight must be positive")
	}
	return &PoolableOrder{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		ArtisanID:          artisanID,
		BuyerID:            buyerID,
		Origin:             origin,
		DestinationCountry: destinationCountry,
		DestinationAddress: destinationAddress,
		Quantity:           quantity,
		WeightKg:           weight,
		ShippingCost:       valueobject.ZeroINR(),
		Status:             OrderStatusPending,
		PoolingStatus:      PoolingStatusNone,
	}, nil
}

// IsOpenForPooling reports whether the order can still join a pooled
// shipment: not yet shipped and not claimed by another shipment.
func (o *PoolableOrder) IsOpenForPooling() bool {
	if o.TrackingNumber != "" {
		return false
	}
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// MarkCandidate records that the eligibility finder returned this order
// as part of a pooling cluster.
func (o *PoolableOrder) MarkCandidate() error {
	if o.PoolingStatus == PoolingStatusCandidate {
		return nil
	}
	if !o.PoolingStatus.CanTransitionTo(PoolingStatusCandidate) {
		return shared.ErrInvalidState.WithDetails(
			"cannot mark order as pooling candidate from status " + string(o.PoolingStatus))
	}
	o.PoolingStatus = PoolingStatusCandidate
	return nil
}

// OptIn records the artisan's decision to pool this order. Sets the
// shipping method tag read by the checkout flow.
func (o *PoolableOrder) OptIn() error {
	if !o.IsOpenForPooling() {
		return shared.ErrInvalidState.WithDetails("order is no longer open for pooling")
	}
	if !o.PoolingStatus.CanTransitionTo(PoolingStatusOptedIn) {
		return shared.ErrInvalidState.WithDetails(
			"cannot opt in from pooling status " + string(o.PoolingStatus))
	}
	o.PoolingStatus = PoolingStatusOptedIn
	o.ShippingMethod = ShippingMethodPooled
	o.AddDomainEvent(NewOrderOptedInEvent(o.ID, o.ArtisanID))
	return nil
}

// MarkConsolidated claims the order into a consolidated shipment: the
// shared tracking number is written and the order ships.
func (o *PoolableOrder) MarkConsolidated(trackingNumber string) error {
	if trackingNumber == "" {
		return shared.ErrInvalidInput.WithDetails("tracking number cannot be empty")
	}
	if o.TrackingNumber != "" {
		return shared.ErrConflictingClaim
	}
	if !o.PoolingStatus.CanTransitionTo(PoolingStatusConsolidated) {
		return shared.ErrInvalidState.WithDetails(
			"cannot consolidate from pooling status " + string(o.PoolingStatus))
	}
	o.PoolingStatus = PoolingStatusConsolidated
	o.ShippingMethod = ShippingMethodPooled
	o.TrackingNumber = trackingNumber
	o.Status = OrderStatusShipped
	return nil
}
