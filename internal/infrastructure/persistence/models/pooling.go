package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftbridge/backend/internal/domain/pooling"
	"github.com/craftbridge/backend/internal/domain/shared"
	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
)

// PoolableOrderModel is the persistence model for the pooling view of a
// marketplace order.
type PoolableOrderModel struct {
	AggregateModel
	ArtisanID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	BuyerID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	District           string          `gorm:"type:varchar(100);not null;index:idx_poolable_orders_region,priority:1"`
	State              string          `gorm:"type:varchar(100);not null;index:idx_poolable_orders_region,priority:2"`
	DestinationCountry string          `gorm:"type:varchar(56);not null;index"`
	DestinationAddress string          `gorm:"type:varchar(500);not null"`
	Quantity           int             `gorm:"not null"`
	WeightKg           decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	ShippingCost       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status             string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	PoolingStatus      string          `gorm:"type:varchar(20);not null;default:'none'"`
	ShippingMethod     string          `gorm:"type:varchar(50)"`
	TrackingNumber     string          `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (PoolableOrderModel) TableName() string {
	return "poolable_orders"
}

// ToDomain converts the persistence model to a domain PoolableOrder
func (m *PoolableOrderModel) ToDomain() *pooling.PoolableOrder {
	origin, _ := valueobject.NewRegion(m.District, m.State)
	return &pooling.PoolableOrder{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		ArtisanID:          m.ArtisanID,
		BuyerID:            m.BuyerID,
		Origin:             origin,
		DestinationCountry: m.DestinationCountry,
		DestinationAddress: m.DestinationAddress,
		Quantity:           m.Quantity,
		WeightKg:           m.WeightKg,
		ShippingCost:       valueobject.NewMoneyINR(m.ShippingCost),
		Status:             pooling.OrderStatus(m.Status),
		PoolingStatus:      pooling.PoolingStatus(m.PoolingStatus),
		ShippingMethod:     m.ShippingMethod,
		TrackingNumber:     m.TrackingNumber,
	}
}

// FromDomain populates the persistence model from a domain PoolableOrder
func (m *PoolableOrderModel) FromDomain(o *pooling.PoolableOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.ArtisanID = o.ArtisanID
	m.BuyerID = o.BuyerID
	m.District = o.Origin.District()
	m.State = o.Origin.State()
	m.DestinationCountry = o.DestinationCountry
	m.DestinationAddress = o.DestinationAddress
	m.Quantity = o.Quantity
	m.WeightKg = o.WeightKg
	m.ShippingCost = o.ShippingCost.Amount()
	m.Status = string(o.Status)
	m.PoolingStatus = string(o.PoolingStatus)
	m.ShippingMethod = o.ShippingMethod
	m.TrackingNumber = o.TrackingNumber
}

// PoolableOrderModelFromDomain creates a persistence model from a domain order
func PoolableOrderModelFromDomain(o *pooling.PoolableOrder) *PoolableOrderModel {
	m := &PoolableOrderModel{}
	m.FromDomain(o)
	return m
}

// ConsolidatedShipmentModel is the persistence model for the
// ConsolidatedShipment aggregate. Member orders are linked through
// poolable_orders.tracking_number, which equals the shipment reference.
type ConsolidatedShipmentModel struct {
	AggregateModel
	ShipmentRef        string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	TotalWeightKg      decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	BoxTier            string          `gorm:"type:varchar(20);not null"`
	BoxCount           int             `gorm:"not null"`
	DestinationAddress string          `gorm:"type:varchar(500);not null"`
	Status             string          `gorm:"type:varchar(20);not null;default:'pending_pickup';index"`
	EstimatedDelivery  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ConsolidatedShipmentModel) TableName() string {
	return "consolidated_shipments"
}

// ToDomain converts the persistence model to a domain shipment. Member
// order IDs are loaded separately by the repository.
func (m *ConsolidatedShipmentModel) ToDomain(memberOrderIDs []uuid.UUID) *pooling.ConsolidatedShipment {
	return &pooling.ConsolidatedShipment{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		ShipmentRef:        m.ShipmentRef,
		MemberOrderIDs:     memberOrderIDs,
		TotalWeightKg:      m.TotalWeightKg,
		BoxTier:            pooling.BoxTier(m.BoxTier),
		BoxCount:           m.BoxCount,
		DestinationAddress: m.DestinationAddress,
		Status:             pooling.ShipmentStatus(m.Status),
		EstimatedDelivery:  m.EstimatedDelivery,
	}
}

// FromDomain populates the persistence model from a domain shipment
func (m *ConsolidatedShipmentModel) FromDomain(s *pooling.ConsolidatedShipment) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.ShipmentRef = s.ShipmentRef
	m.TotalWeightKg = s.TotalWeightKg
	m.BoxTier = string(s.BoxTier)
	m.BoxCount = s.BoxCount
	m.DestinationAddress = s.DestinationAddress
	m.Status = string(s.Status)
	m.EstimatedDelivery = s.EstimatedDelivery
}

// ConsolidatedShipmentModelFromDomain creates a persistence model from a
// domain shipment
func ConsolidatedShipmentModelFromDomain(s *pooling.ConsolidatedShipment) *ConsolidatedShipmentModel {
	m := &ConsolidatedShipmentModel{}
	m.FromDomain(s)
	return m
}

// ArtisanProfileModel is the persistence model for the artisan directory
// read model owned by the user subsystem.
type ArtisanProfileModel struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Name     string    `gorm:"type:varchar(200);not null"`
	Craft    string    `gorm:"type:varchar(100)"`
	District string    `gorm:"type:varchar(100);not null;index:idx_artisan_profiles_region,priority:1"`
	State    string    `gorm:"type:varchar(100);not null;index:idx_artisan_profiles_region,priority:2"`
}

// TableName returns the table name for GORM
func (ArtisanProfileModel) TableName() string {
	return "artisan_profiles"
}
