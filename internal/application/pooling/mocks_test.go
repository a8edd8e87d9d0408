package pooling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/craftbridge/backend/internal/domain/pooling"
	"github.com/craftbridge/backend/internal/domain/shared"
	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
)

// MockOrderRepository is a mock implementation of pooling.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, order *pooling.PoolableOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *pooling.PoolableOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*pooling.PoolableOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pooling.PoolableOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*pooling.PoolableOrder, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pooling.PoolableOrder), args.Error(1)
}

func (m *MockOrderRepository) FindPoolable(ctx context.Context, query pooling.EligibilityQuery) ([]*pooling.PoolableOrder, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pooling.PoolableOrder), args.Error(1)
}

func (m *MockOrderRepository) FindOpen(ctx context.Context, filter shared.Filter) ([]*pooling.PoolableOrder, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*pooling.PoolableOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindConsolidatedByArtisan(ctx context.Context, artisanID uuid.UUID) ([]*pooling.PoolableOrder, error) {
	args := m.Called(ctx, artisanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pooling.PoolableOrder), args.Error(1)
}

func (m *MockOrderRepository) ClaimForShipment(ctx context.Context, orderIDs []uuid.UUID, trackingNumber string) error {
	args := m.Called(ctx, orderIDs, trackingNumber)
	return args.Error(0)
}

func (m *MockOrderRepository) CountByRegionSince(ctx context.Context, region valueobject.Region, since time.Time) (int64, error) {
	args := m.Called(ctx, region, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SumShippingCostByRegionSince(ctx context.Context, region valueobject.Region, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, region, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockShipmentRepository is a mock implementation of pooling.ShipmentRepository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Save(ctx context.Context, shipment *pooling.ConsolidatedShipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) Update(ctx context.Context, shipment *pooling.ConsolidatedShipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*pooling.ConsolidatedShipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pooling.ConsolidatedShipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByRef(ctx context.Context, shipmentRef string) (*pooling.ConsolidatedShipment, error) {
	args := m.Called(ctx, shipmentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pooling.ConsolidatedShipment), args.Error(1)
}

func (m *MockShipmentRepository) List(ctx context.Context, filter shared.Filter) ([]*pooling.ConsolidatedShipment, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*pooling.ConsolidatedShipment), args.Get(1).(int64), args.Error(2)
}

func (m *MockShipmentRepository) CountOpenByRegion(ctx context.Context, region valueobject.Region) (int64, error) {
	args := m.Called(ctx, region)
	return args.Get(0).(int64), args.Error(1)
}

// MockArtisanDirectory is a mock implementation of pooling.ArtisanDirectory
type MockArtisanDirectory struct {
	mock.Mock
}

func (m *MockArtisanDirectory) CountByRegion(ctx context.Context, region valueobject.Region) (int64, error) {
	args := m.Called(ctx, region)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedger is a mock implementation of shared.LedgerService
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RecordShipmentConsolidated(ctx context.Context, shipmentRef string, orderRefs []string) error {
	args := m.Called(ctx, shipmentRef, orderRefs)
	return args.Error(0)
}

// MockAnalyticsCache is a mock implementation of AnalyticsCache
type MockAnalyticsCache struct {
	mock.Mock
}

func (m *MockAnalyticsCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockAnalyticsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
