package pooling

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftbridge/backend/internal/domain/pooling"
)

// ==================== Order DTOs ====================

// RegisterOrderRequest represents a new marketplace order entering the
// pooling subsystem
type RegisterOrderRequest struct {
	ArtisanID          uuid.UUID `json:"artisan_id" binding:"required"`
	BuyerID            uuid.UUID `json:"buyer_id" binding:"required"`
	District           string    `json:"district" binding:"required,min=1,max=100"`
	State              string    `json:"state" binding:"required,min=1,max=100"`
	DestinationCountry string    `json:"destination_country" binding:"required,min=2,max=56"`
	DestinationAddress string    `json:"destination_address" binding:"required,min=1,max=500"`
	Quantity           int       `json:"quantity" binding:"required,min=1"`
}

// OrderResponse represents a poolable order
type OrderResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ArtisanID          uuid.UUID       `json:"artisan_id"`
	BuyerID            uuid.UUID       `json:"buyer_id"`
	District           string          `json:"district"`
	State              string          `json:"state"`
	DestinationCountry string          `json:"destination_country"`
	DestinationAddress string          `json:"destination_address"`
	Quantity           int             `json:"quantity"`
	WeightKg           decimal.Decimal `json:"weight_kg"`
	Status             string          `json:"status"`
	PoolingStatus      string          `json:"pooling_status"`
	ShippingMethod     string          `json:"shipping_method,omitempty"`
	TrackingNumber     string          `json:"tracking_number,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ==================== Eligibility DTOs ====================

// FindPoolableRequest selects open orders eligible to share a shipment
type FindPoolableRequest struct {
	District           string `json:"district" binding:"required,min=1,max=100"`
	State              string `json:"state" binding:"required,min=1,max=100"`
	DestinationCountry string `json:"destination_country"`
	WindowDays         int    `json:"window_days"`
}

// FindPoolableOrderSummary is one eligible order in the finder result
type FindPoolableOrderSummary struct {
	OrderID   uuid.UUID       `json:"order_id"`
	ArtisanID uuid.UUID       `json:"artisan_id"`
	WeightKg  decimal.Decimal `json:"weight_kg"`
	CreatedAt time.Time       `json:"created_at"`
}

// FindPoolableResponse lists eligible orders, creation time ascending
type FindPoolableResponse struct {
	OrderIDs []uuid.UUID                `json:"order_ids"`
	Orders   []FindPoolableOrderSummary `json:"orders"`
}

// ==================== Savings DTOs ====================

// SavingsOrderInput is one order in a savings calculation request
type SavingsOrderInput struct {
	OrderID   uuid.UUID       `json:"order_id" binding:"required"`
	ArtisanID uuid.UUID       `json:"artisan_id" binding:"required"`
	WeightKg  decimal.Decimal `json:"weight_kg" binding:"required"`
}

// CalculateSavingsRequest prices a candidate cluster
type CalculateSavingsRequest struct {
	Orders             []SavingsOrderInput `json:"orders" binding:"required"`
	DestinationCountry string              `json:"destination_country" binding:"required,min=2,max=56"`
}

// CostSplitResponse apportions the pooled cost to one member order
type CostSplitResponse struct {
	OrderID        uuid.UUID       `json:"order_id"`
	ArtisanID      uuid.UUID       `json:"artisan_id"`
	WeightKg       decimal.Decimal `json:"weight_kg"`
	IndividualCost decimal.Decimal `json:"individual_cost"`
	PooledCost     decimal.Decimal `json:"pooled_cost"`
	Savings        decimal.Decimal `json:"savings"`
	SavingsPercent decimal.Decimal `json:"savings_percent"`
}

// SavingsReportResponse compares individual and consolidated shipping
type SavingsReportResponse struct {
	PoolingAvailable   bool                `json:"pooling_available"`
	DestinationCountry string              `json:"destination_country"`
	UsedDefaultRate    bool                `json:"used_default_rate"`
	OrderCount         int                 `json:"order_count"`
	TotalWeightKg      decimal.Decimal     `json:"total_weight_kg"`
	IndividualTotal    decimal.Decimal     `json:"individual_total"`
	PooledTotal        decimal.Decimal     `json:"pooled_total"`
	TotalSavings       decimal.Decimal     `json:"total_savings"`
	SavingsPercent     decimal.Decimal     `json:"savings_percent"`
	Splits             []CostSplitResponse `json:"splits"`
}

// ==================== Hub and schedule DTOs ====================

// HubResponse is a resolved consolidation hub
type HubResponse struct {
	State       string  `json:"state"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	UsedDefault bool    `json:"used_default"`
}

// EstimateScheduleRequest quotes a pickup timeline for a cluster
type EstimateScheduleRequest struct {
	Orders []SavingsOrderInput `json:"orders" binding:"required,min=1"`
	State  string              `json:"state" binding:"required,min=1,max=100"`
}

// ScheduleResponse is the quoted pickup and delivery timeline
type ScheduleResponse struct {
	PickupStart       time.Time `json:"pickup_start"`
	PickupDaysNeeded  int       `json:"pickup_days_needed"`
	ConsolidationAt   string    `json:"consolidation_at"`
	ConsolidationDate time.Time `json:"consolidation_date"`
	ShipDate          time.Time `json:"ship_date"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

// ==================== Shipment DTOs ====================

// CreateShipmentRequest commits a cluster into a consolidated shipment
type CreateShipmentRequest struct {
	OrderIDs           []uuid.UUID `json:"order_ids" binding:"required,min=1"`
	DestinationAddress string      `json:"destination_address" binding:"required,min=1,max=500"`
}

// ShipmentResponse represents a consolidated shipment
type ShipmentResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ShipmentRef        string          `json:"shipment_ref"`
	OrderIDs           []uuid.UUID     `json:"order_ids"`
	TotalWeightKg      decimal.Decimal `json:"total_weight_kg"`
	BoxTier            string          `json:"box_tier"`
	BoxDimensions      string          `json:"box_dimensions"`
	BoxCount           int             `json:"box_count"`
	DestinationAddress string          `json:"destination_address"`
	Status             string          `json:"status"`
	EstimatedDelivery  time.Time       `json:"estimated_delivery"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ShipmentListResponse is a paginated shipment listing
type ShipmentListResponse struct {
	Items    []ShipmentResponse `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// ==================== Opportunity and cluster DTOs ====================

// OpportunityResponse is the composite pooling quote for one order:
// eligible peers, the savings report, the hub, and the timeline. When
// no peers exist, PoolingAvailable is false and IndividualCost carries
// the fallback price.
type OpportunityResponse struct {
	PoolingAvailable bool                   `json:"pooling_available"`
	OrderID          uuid.UUID              `json:"order_id"`
	EligibleOrderIDs []uuid.UUID            `json:"eligible_order_ids"`
	IndividualCost   decimal.Decimal        `json:"individual_cost"`
	Savings          *SavingsReportResponse `json:"savings,omitempty"`
	Hub              *HubResponse           `json:"hub,omitempty"`
	Schedule         *ScheduleResponse      `json:"schedule,omitempty"`
}

// ClusterResponse is one planned cluster of poolable orders
type ClusterResponse struct {
	District           string          `json:"district"`
	State              string          `json:"state"`
	DestinationCountry string          `json:"destination_country"`
	OrderIDs           []uuid.UUID     `json:"order_ids"`
	TotalWeightKg      decimal.Decimal `json:"total_weight_kg"`
}

// ActiveClusterOrder is one member order inside an active cluster
type ActiveClusterOrder struct {
	OrderID  uuid.UUID       `json:"order_id"`
	Quantity int             `json:"quantity"`
	WeightKg decimal.Decimal `json:"weight_kg"`
}

// ActiveClusterResponse is one pooled shipment an artisan participates
// in, grouped by the shared tracking number
type ActiveClusterResponse struct {
	ShipmentRef string               `json:"shipment_ref"`
	Status      string               `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	Orders      []ActiveClusterOrder `json:"orders"`
}

// ActiveClustersResponse lists the artisan's pooled shipments
type ActiveClustersResponse struct {
	Clusters      []ActiveClusterResponse `json:"clusters"`
	TotalClusters int                     `json:"total_clusters"`
}

// RegionAnalyticsResponse reports pooling potential for a region
type RegionAnalyticsResponse struct {
	Region             string          `json:"region"`
	ArtisanCount       int64           `json:"artisan_count"`
	OrdersLast30Days   int64           `json:"orders_last_30_days"`
	TotalShippingSpent decimal.Decimal `json:"total_shipping_spent"`
	PotentialSavings   decimal.Decimal `json:"potential_savings"`
	NearestHub         string          `json:"nearest_hub"`
	HubUsedDefault     bool            `json:"hub_used_default"`
	ActiveClusters     int64           `json:"active_clusters"`
	AvgSavingsPercent  decimal.Decimal `json:"avg_savings_percent"`
}

// ==================== Converters ====================

// ToOrderResponse converts a domain order to its response DTO
func ToOrderResponse(order *pooling.PoolableOrder) OrderResponse {
	return OrderResponse{
		ID:                 order.ID,
		ArtisanID:          order.ArtisanID,
		BuyerID:            order.BuyerID,
		District:           order.Origin.District(),
		State:              order.Origin.State(),
		DestinationCountry: order.DestinationCountry,
		DestinationAddress: order.DestinationAddress,
		Quantity:           order.Quantity,
		WeightKg:           order.WeightKg,
		Status:             string(order.Status),
		PoolingStatus:      string(order.PoolingStatus),
		ShippingMethod:     order.ShippingMethod,
		TrackingNumber:     order.TrackingNumber,
		CreatedAt:          order.CreatedAt,
	}
}

// ToSavingsReportResponse converts a domain savings report
func ToSavingsReportResponse(report *pooling.SavingsReport) SavingsReportResponse {
	splits := make([]CostSplitResponse, 0, len(report.Splits))
	for _, split := range report.Splits {
		splits = append(splits, CostSplitResponse{
			OrderID:        split.OrderID,
			ArtisanID:      split.ArtisanID,
			WeightKg:       split.WeightKg,
			IndividualCost: split.IndividualCost,
			PooledCost:     split.PooledCost,
			Savings:        split.Savings,
			SavingsPercent: split.SavingsPercent,
		})
	}
	return SavingsReportResponse{
		PoolingAvailable:   report.PoolingAvailable,
		DestinationCountry: report.DestinationCountry,
		UsedDefaultRate:    report.UsedDefaultRate,
		OrderCount:         report.OrderCount,
		TotalWeightKg:      report.TotalWeightKg,
		IndividualTotal:    report.IndividualTotal,
		PooledTotal:        report.PooledTotal,
		TotalSavings:       report.TotalSavings,
		SavingsPercent:     report.SavingsPercent,
		Splits:             splits,
	}
}

// ToHubResponse converts a hub resolution
func ToHubResponse(res pooling.HubResolution) HubResponse {
	return HubResponse{
		State:       res.State,
		City:        res.Hub.City,
		Latitude:    res.Hub.Latitude,
		Longitude:   res.Hub.Longitude,
		UsedDefault: res.UsedDefault,
	}
}

// ToScheduleResponse converts a pickup schedule
func ToScheduleResponse(schedule *pooling.PickupSchedule) ScheduleResponse {
	return ScheduleResponse{
		PickupStart:       schedule.PickupStart,
		PickupDaysNeeded:  schedule.PickupDaysNeeded,
		ConsolidationAt:   schedule.ConsolidationAt,
		ConsolidationDate: schedule.ConsolidationDate,
		ShipDate:          schedule.ShipDate,
		EstimatedDelivery: schedule.EstimatedDelivery,
	}
}

// ToShipmentResponse converts a consolidated shipment
func ToShipmentResponse(shipment *pooling.ConsolidatedShipment) ShipmentResponse {
	return ShipmentResponse{
		ID:                 shipment.ID,
		ShipmentRef:        shipment.ShipmentRef,
		OrderIDs:           shipment.MemberOrderIDs,
		TotalWeightKg:      shipment.TotalWeightKg,
		BoxTier:            string(shipment.BoxTier),
		BoxDimensions:      shipment.BoxTier.Dimensions(),
		BoxCount:           shipment.BoxCount,
		DestinationAddress: shipment.DestinationAddress,
		Status:             string(shipment.Status),
		EstimatedDelivery:  shipment.EstimatedDelivery,
		CreatedAt:          shipment.CreatedAt,
	}
}

// ToClusterResponse converts a planned cluster
func ToClusterResponse(cluster pooling.Cluster) ClusterResponse {
	return ClusterResponse{
		District:           cluster.Origin.District(),
		State:              cluster.Origin.State(),
		DestinationCountry: cluster.DestinationCountry,
		OrderIDs:           cluster.OrderIDs,
		TotalWeightKg:      cluster.TotalWeightKg,
	}
}
