package pooling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/craftbridge/backend/internal/domain/pooling"
	"github.com/craftbridge/backend/internal/domain/shared"
	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
)

// Config holds the tunable pooling constants
type Config struct {
	WindowDays     int `mapstructure:"window_days"`
	MaxClusterSize int `mapstructure:"max_cluster_size"`
}

// DefaultConfig returns the standard pooling constants: a 7-day
// eligibility window and clusters of at most 20 orders.
func DefaultConfig() Config {
	return Config{WindowDays: 7, MaxClusterSize: pooling.DefaultMaxClusterSize}
}

// Validate rejects non-positive constants at startup
func (c Config) Validate() error {
	if c.WindowDays <= 0 {
		return shared.ErrConfiguration.WithDetails("pooling window_days must be positive")
	}
	if c.MaxClusterSize <= 0 {
		return shared.ErrConfiguration.WithDetails("pooling max_cluster_size must be positive")
	}
	return nil
}

// PoolingService orchestrates cluster logistics pooling: eligibility,
// savings quotes, scheduling, opt-in, and consolidation commits.
type PoolingService struct {
	orders         pooling.OrderRepository
	shipments      pooling.ShipmentRepository
	hubs           *pooling.HubDirectory
	calculator     *pooling.SavingsCalculator
	estimator      *pooling.ScheduleEstimator
	weights        pooling.WeightEstimator
	config         Config
	ledger         shared.LedgerService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewPoolingService creates a new PoolingService. Returns a
// configuration error if the pooling constants are invalid.
func NewPoolingService(
	orders pooling.OrderRepository,
	shipments pooling.ShipmentRepository,
	rates *pooling.RateCard,
	hubs *pooling.HubDirectory,
	estimator *pooling.ScheduleEstimator,
	weights pooling.WeightEstimator,
	config Config,
	logger *zap.Logger,
) (*PoolingService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolingService{
		orders:     orders,
		shipments:  shipments,
		hubs:       hubs,
		calculator: pooling.NewSavingsCalculator(rates),
		estimator:  estimator,
		weights:    weights,
		config:     config,
		ledger:     shared.NoopLedger{},
		logger:     logger,
		now:        time.Now,
	}, nil
}

// SetLedger installs an external settlement recorder. Recording happens
// after the consolidation commit and never rolls it back.
func (s *PoolingService) SetLedger(ledger shared.LedgerService) {
	if ledger != nil {
		s.ledger = ledger
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PoolingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// WithClock overrides the time source, for deterministic tests
func (s *PoolingService) WithClock(now func() time.Time) *PoolingService {
	s.now = now
	return s
}

// RegisterOrder enters a freshly placed marketplace order into the
// pooling subsystem, estimating its weight from the item quantity.
func (s *PoolingService) RegisterOrder(ctx context.Context, req RegisterOrderRequest) (*OrderResponse, error) {
	origin, err := valueobject.NewRegion(req.District, req.State)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithDetails(err.Error())
	}
	order, err := pooling.NewPoolableOrder(req.ArtisanID, req.BuyerID, origin, req.DestinationCountry, req.DestinationAddress, req.Quantity, s.weights)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetOrder retrieves a poolable order by ID
func (s *PoolingService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// FindPoolable returns the open orders from the given origin region
// that could share a shipment within the eligibility window, sorted by
// creation time ascending. Returned orders are marked as pooling
// candidates.
func (s *PoolingService) FindPoolable(ctx context.Context, req FindPoolableRequest) (*FindPoolableResponse, error) {
	origin, err := valueobject.NewRegion(req.District, req.State)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithDetails(err.Error())
	}
	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = s.config.WindowDays
	}

	orders, err := s.orders.FindPoolable(ctx, pooling.EligibilityQuery{
		Origin:             origin,
		DestinationCountry: req.DestinationCountry,
		WindowDays:         windowDays,
		Now:                s.now(),
	})
	if err != nil {
		return nil, err
	}

	response := &FindPoolableResponse{
		OrderIDs: make([]uuid.UUID, 0, len(orders)),
		Orders:   make([]FindPoolableOrderSummary, 0, len(orders)),
	}
	for _, order := range orders {
		if order.PoolingStatus == pooling.PoolingStatusNone {
			if err := order.MarkCandidate(); err == nil {
				if err := s.orders.Update(ctx, order); err != nil {
					s.logger.Warn("failed to persist candidate mark",
						zap.String("order_id", order.ID.String()), zap.Error(err))
				}
			}
		}
		response.OrderIDs = append(response.OrderIDs, order.ID)
		response.Orders = append(response.Orders, FindPoolableOrderSummary{
			OrderID:   order.ID,
			ArtisanID: order.ArtisanID,
			WeightKg:  order.WeightKg,
			CreatedAt: order.CreatedAt,
		})
	}
	return response, nil
}

// CalculateSavings prices a candidate cluster against the rate card
func (s *PoolingService) CalculateSavings(req CalculateSavingsRequest) (*SavingsReportResponse, error) {
	report, err := s.calculator.Calculate(toOrderWeights(req.Orders), req.DestinationCountry)
	if err != nil {
		return nil, err
	}
	response := ToSavingsReportResponse(report)
	return &response, nil
}

// ResolveHub maps a state to its nearest consolidation hub. The lookup
// never fails; unmapped states get the fallback hub with UsedDefault.
func (s *PoolingService) ResolveHub(state string) HubResponse {
	return ToHubResponse(s.hubs.Resolve(state))
}

// EstimateSchedule quotes a pickup and delivery timeline for a cluster
// consolidating in the given state.
func (s *PoolingService) EstimateSchedule(req EstimateScheduleRequest) (*ScheduleResponse, error) {
	resolution := s.hubs.Resolve(req.State)
	schedule, err := s.estimator.Estimate(toOrderWeights(req.Orders), resolution.Hub)
	if err != nil {
		return nil, err
	}
	response := ToScheduleResponse(schedule)
	return &response, nil
}

// FindOpportunities is the composite checkout quote for one order: its
// eligible peers, the savings report, the resolved hub, and the pickup
// schedule. A pool smaller than two orders is reported with
// PoolingAvailable false and the individual cost, not an error.
func (s *PoolingService) FindOpportunities(ctx context.Context, orderID uuid.UUID) (*OpportunityResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	peers, err := s.orders.FindPoolable(ctx, pooling.EligibilityQuery{
		Origin:             order.Origin,
		DestinationCountry: order.DestinationCountry,
		WindowDays:         s.config.WindowDays,
		Now:                s.now(),
	})
	if err != nil {
		return nil, err
	}

	cluster := make([]pooling.OrderWeight, 0, len(peers)+1)
	eligibleIDs := make([]uuid.UUID, 0, len(peers))
	seen := false
	for _, peer := range peers {
		if peer.ID == order.ID {
			seen = true
		}
		eligibleIDs = append(eligibleIDs, peer.ID)
		cluster = append(cluster, pooling.OrderWeight{
			OrderID:   peer.ID,
			ArtisanID: peer.ArtisanID,
			WeightKg:  peer.WeightKg,
		})
	}
	if !seen && order.IsOpenForPooling() {
		eligibleIDs = append(eligibleIDs, order.ID)
		cluster = append(cluster, pooling.OrderWeight{
			OrderID:   order.ID,
			ArtisanID: order.ArtisanID,
			WeightKg:  order.WeightKg,
		})
	}

	report, err := s.calculator.Calculate(cluster, order.DestinationCountry)
	if err != nil {
		return nil, err
	}

	response := &OpportunityResponse{
		PoolingAvailable: report.PoolingAvailable,
		OrderID:          order.ID,
		EligibleOrderIDs: eligibleIDs,
		IndividualCost:   individualCostFor(order, report),
	}
	if !report.PoolingAvailable {
		return response, nil
	}

	savings := ToSavingsReportResponse(report)
	response.Savings = &savings

	resolution := s.hubs.Resolve(order.Origin.State())
	hub := ToHubResponse(resolution)
	response.Hub = &hub

	schedule, err := s.estimator.Estimate(cluster, resolution.Hub)
	if err != nil {
		return nil, err
	}
	scheduleResponse := ToScheduleResponse(schedule)
	response.Schedule = &scheduleResponse
	return response, nil
}

// OptIn records the artisan's decision to pool an order
func (s *PoolingService) OptIn(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.OptIn(); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(order.GetDomainEvents())
	order.ClearDomainEvents()

	response := ToOrderResponse(order)
	return &response, nil
}

// CreateShipment commits a cluster into a consolidated shipment. All
// member orders are claimed in one transaction; a conflicting claim
// fails the whole commit with no state change.
func (s *PoolingService) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*ShipmentResponse, error) {
	if len(req.OrderIDs) == 0 {
		return nil, shared.ErrInvalidInput.WithDetails("order_ids cannot be empty")
	}

	orders, err := s.orders.FindByIDs(ctx, req.OrderIDs)
	if err != nil {
		return nil, err
	}
	if len(orders) != len(req.OrderIDs) {
		return nil, shared.ErrNotFound.WithDetails(
			fmt.Sprintf("resolved %d of %d orders", len(orders), len(req.OrderIDs)))
	}

	totalWeight := decimal.Zero
	cluster := make([]pooling.OrderWeight, 0, len(orders))
	for _, order := range orders {
		if !order.IsOpenForPooling() {
			return nil, shared.ErrConflictingClaim.WithDetails(
				"order " + order.ID.String() + " is already claimed or shipped")
		}
		totalWeight = totalWeight.Add(order.WeightKg)
		cluster = append(cluster, pooling.OrderWeight{
			OrderID:   order.ID,
			ArtisanID: order.ArtisanID,
			WeightKg:  order.WeightKg,
		})
	}

	resolution := s.hubs.Resolve(orders[0].Origin.State())
	schedule, err := s.estimator.Estimate(cluster, resolution.Hub)
	if err != nil {
		return nil, err
	}

	shipment, err := pooling.NewConsolidatedShipment(req.OrderIDs, req.DestinationAddress, totalWeight, schedule.EstimatedDelivery)
	if err != nil {
		return nil, err
	}

	// claim and status write for every member happens atomically in
	// the storage layer; a lost race surfaces as ErrConflictingClaim
	if err := s.orders.ClaimForShipment(ctx, req.OrderIDs, shipment.ShipmentRef); err != nil {
		return nil, err
	}
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}

	orderRefs := make([]string, 0, len(req.OrderIDs))
	for _, id := range req.OrderIDs {
		orderRefs = append(orderRefs, id.String())
	}
	if err := s.ledger.RecordShipmentConsolidated(ctx, shipment.ShipmentRef, orderRefs); err != nil {
		s.logger.Warn("ledger recording failed",
			zap.String("shipment_ref", shipment.ShipmentRef), zap.Error(err))
	}
	s.publishEvents(shipment.GetDomainEvents())
	shipment.ClearDomainEvents()

	response := ToShipmentResponse(shipment)
	return &response, nil
}

// GetShipmentByRef retrieves a consolidated shipment by its reference
func (s *PoolingService) GetShipmentByRef(ctx context.Context, shipmentRef string) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByRef(ctx, shipmentRef)
	if err != nil {
		return nil, err
	}
	response := ToShipmentResponse(shipment)
	return &response, nil
}

// ListShipments returns a page of consolidated shipments, newest first
func (s *PoolingService) ListShipments(ctx context.Context, page, pageSize int) (*ShipmentListResponse, error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	shipments, total, err := s.shipments.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ShipmentResponse, 0, len(shipments))
	for _, shipment := range shipments {
		items = append(items, ToShipmentResponse(shipment))
	}
	return &ShipmentListResponse{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// MarkShipmentShipped moves a shipment to shipped
func (s *PoolingService) MarkShipmentShipped(ctx context.Context, shipmentRef string) (*ShipmentResponse, error) {
	return s.transitionShipment(ctx, shipmentRef, (*pooling.ConsolidatedShipment).MarkShipped)
}

// MarkShipmentDelivered moves a shipment to delivered
func (s *PoolingService) MarkShipmentDelivered(ctx context.Context, shipmentRef string) (*ShipmentResponse, error) {
	return s.transitionShipment(ctx, shipmentRef, (*pooling.ConsolidatedShipment).MarkDelivered)
}

func (s *PoolingService) transitionShipment(ctx context.Context, shipmentRef string, transition func(*pooling.ConsolidatedShipment) error) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByRef(ctx, shipmentRef)
	if err != nil {
		return nil, err
	}
	if err := transition(shipment); err != nil {
		return nil, err
	}
	if err := s.shipments.Update(ctx, shipment); err != nil {
		return nil, err
	}
	s.publishEvents(shipment.GetDomainEvents())
	shipment.ClearDomainEvents()

	response := ToShipmentResponse(shipment)
	return &response, nil
}

// ActiveClusters groups the artisan's consolidated orders by their
// shared tracking number, one entry per pooled shipment the artisan
// participates in.
func (s *PoolingService) ActiveClusters(ctx context.Context, artisanID uuid.UUID) (*ActiveClustersResponse, error) {
	orders, err := s.orders.FindConsolidatedByArtisan(ctx, artisanID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(orders))
	clusters := make([]ActiveClusterResponse, 0, len(orders))
	for _, order := range orders {
		i, ok := index[order.TrackingNumber]
		if !ok {
			i = len(clusters)
			index[order.TrackingNumber] = i
			clusters = append(clusters, ActiveClusterResponse{
				ShipmentRef: order.TrackingNumber,
				Status:      string(order.Status),
				CreatedAt:   order.CreatedAt,
			})
		}
		clusters[i].Orders = append(clusters[i].Orders, ActiveClusterOrder{
			OrderID:  order.ID,
			Quantity: order.Quantity,
			WeightKg: order.WeightKg,
		})
	}
	return &ActiveClustersResponse{Clusters: clusters, TotalClusters: len(clusters)}, nil
}

// PlanClusters groups all open orders into consolidation candidates by
// origin region and destination country, capped at the configured
// cluster size.
func (s *PoolingService) PlanClusters(ctx context.Context) ([]ClusterResponse, error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "created_at"
	filter.OrderDir = "asc"
	filter.PageSize = 1000

	var orders []*pooling.PoolableOrder
	for {
		page, total, err := s.orders.FindOpen(ctx, filter)
		if err != nil {
			return nil, err
		}
		orders = append(orders, page...)
		if len(page) == 0 || int64(len(orders)) >= total {
			break
		}
		filter.Page++
	}

	clusters, err := pooling.PlanClusters(orders, s.config.MaxClusterSize)
	if err != nil {
		return nil, err
	}
	responses := make([]ClusterResponse, 0, len(clusters))
	for _, cluster := range clusters {
		responses = append(responses, ToClusterResponse(cluster))
	}
	return responses, nil
}

func (s *PoolingService) publishEvents(events []shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()), zap.Error(err))
		}
	}
}

func toOrderWeights(inputs []SavingsOrderInput) []pooling.OrderWeight {
	weights := make([]pooling.OrderWeight, 0, len(inputs))
	for _, input := range inputs {
		weights = append(weights, pooling.OrderWeight{
			OrderID:   input.OrderID,
			ArtisanID: input.ArtisanID,
			WeightKg:  input.WeightKg,
		})
	}
	return weights
}

func individualCostFor(order *pooling.PoolableOrder, report *pooling.SavingsReport) decimal.Decimal {
	for _, split := range report.Splits {
		if split.OrderID == order.ID {
			return split.IndividualCost
		}
	}
	return decimal.Zero
}
