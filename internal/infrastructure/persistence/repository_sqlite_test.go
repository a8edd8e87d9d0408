package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/craftbridge/backend/internal/domain/pooling"
	"github.com/craftbridge/backend/internal/domain/shared"
	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
	"github.com/craftbridge/backend/internal/infrastructure/persistence/models"
)

// setupPoolingSQLiteDB builds an in-memory database with the pooling
// schema, for tests that exercise real SQL instead of sqlmock
// expectations.
func setupPoolingSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.PoolableOrderModel{},
		&models.ConsolidatedShipmentModel{},
		&models.ArtisanProfileModel{},
	)
	require.NoError(t, err)
	return db
}

type constantWeight struct{}

func (constantWeight) Name() string { return "constant" }

func (constantWeight) EstimateWeight(quantity int) decimal.Decimal {
	return decimal.NewFromInt(int64(quantity))
}

func newPoolableOrder(t *testing.T, district, state, destination string) *pooling.PoolableOrder {
	t.Helper()
	origin, err := valueobject.NewRegion(district, state)
	require.NoError(t, err)
	order, err := pooling.NewPoolableOrder(uuid.New(), uuid.New(), origin, destination,
		"48 Mill Road, London", 2, constantWeight{})
	require.NoError(t, err)
	return order
}

func TestGormOrderRepository_SaveAndFindRoundTrip(t *testing.T) {
	db := setupPoolingSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := newPoolableOrder(t, "Jaipur", "Rajasthan", "GB")
	order.ShippingCost = valueobject.NewMoneyINRFromFloat(450)
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, "Jaipur", found.Origin.District())
	assert.Equal(t, "Rajasthan", found.Origin.State())
	assert.Equal(t, "GB", found.DestinationCountry)
	assert.True(t, found.WeightKg.Equal(decimal.NewFromInt(2)))
	assert.True(t, found.ShippingCost.Amount().Equal(decimal.NewFromInt(450)))
	assert.Equal(t, pooling.OrderStatusPending, found.Status)
	assert.Equal(t, pooling.PoolingStatusNone, found.PoolingStatus)
}

func TestGormOrderRepository_FindPoolableFilters(t *testing.T) {
	db := setupPoolingSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	older := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	older.CreatedAt = older.CreatedAt.Add(-48 * time.Hour)
	newer := newPoolableOrder(t, "JAIPUR", "RAJASTHAN", "us")
	elsewhere := newPoolableOrder(t, "Kutch", "Gujarat", "US")
	stale := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	stale.CreatedAt = stale.CreatedAt.AddDate(0, 0, -30)
	claimed := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	claimed.TrackingNumber = "POOL-20260810-AAAAAA"
	claimed.Status = pooling.OrderStatusShipped

	for _, o := range []*pooling.PoolableOrder{older, newer, elsewhere, stale, claimed} {
		require.NoError(t, repo.Save(ctx, o))
	}

	origin, err := valueobject.NewRegion("jaipur", "rajasthan")
	require.NoError(t, err)

	found, err := repo.FindPoolable(ctx, pooling.EligibilityQuery{
		Origin:     origin,
		WindowDays: 7,
		Now:        time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, found, 2)

	// oldest first, region matching is case-insensitive
	assert.Equal(t, older.ID, found[0].ID)
	assert.Equal(t, newer.ID, found[1].ID)

	// destination narrows the pool, case-insensitively
	found, err = repo.FindPoolable(ctx, pooling.EligibilityQuery{
		Origin:             origin,
		DestinationCountry: "Us",
		WindowDays:         7,
		Now:                time.Now(),
	})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.FindPoolable(ctx, pooling.EligibilityQuery{
		Origin:             origin,
		DestinationCountry: "AU",
		WindowDays:         7,
		Now:                time.Now(),
	})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGormOrderRepository_ClaimForShipmentAtomicity(t *testing.T) {
	db := setupPoolingSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	first := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	second := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	ids := []uuid.UUID{first.ID, second.ID}
	require.NoError(t, repo.ClaimForShipment(ctx, ids, "POOL-20260830-AB12CD"))

	for _, id := range ids {
		claimed, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "POOL-20260830-AB12CD", claimed.TrackingNumber)
		assert.Equal(t, pooling.OrderStatusShipped, claimed.Status)
		assert.Equal(t, pooling.PoolingStatusConsolidated, claimed.PoolingStatus)
	}

	// A second claim over any already-claimed order fails whole and
	// leaves the first claim intact.
	third := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	require.NoError(t, repo.Save(ctx, third))

	err := repo.ClaimForShipment(ctx, []uuid.UUID{second.ID, third.ID}, "POOL-20260830-ZZ99XX")
	assert.ErrorIs(t, err, shared.ErrConflictingClaim)

	untouched, err := repo.FindByID(ctx, third.ID)
	require.NoError(t, err)
	assert.Empty(t, untouched.TrackingNumber)
	assert.Equal(t, pooling.OrderStatusPending, untouched.Status)

	kept, err := repo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "POOL-20260830-AB12CD", kept.TrackingNumber)
}

func TestGormOrderRepository_FindConsolidatedByArtisan(t *testing.T) {
	db := setupPoolingSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	artisanID := uuid.New()
	pooled := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	pooled.ArtisanID = artisanID
	peer := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	unpooled := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	unpooled.ArtisanID = artisanID
	for _, o := range []*pooling.PoolableOrder{pooled, peer, unpooled} {
		require.NoError(t, repo.Save(ctx, o))
	}

	require.NoError(t, repo.ClaimForShipment(ctx, []uuid.UUID{pooled.ID, peer.ID}, "POOL-20260830-DD44EE"))

	// only the artisan's claimed order comes back, not the peer's and
	// not the artisan's unclaimed one
	found, err := repo.FindConsolidatedByArtisan(ctx, artisanID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, pooled.ID, found[0].ID)
	assert.Equal(t, "POOL-20260830-DD44EE", found[0].TrackingNumber)
	assert.Equal(t, pooling.OrderStatusShipped, found[0].Status)
}

func TestGormOrderRepository_FindOpenSortWhitelist(t *testing.T) {
	db := setupPoolingSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	light := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	light.CreatedAt = light.CreatedAt.Add(-time.Hour)
	heavy := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	heavy.Quantity = 9
	heavy.WeightKg = decimal.NewFromInt(9)
	require.NoError(t, repo.Save(ctx, light))
	require.NoError(t, repo.Save(ctx, heavy))

	filter := shared.DefaultFilter()
	filter.OrderBy = "weight_kg"
	filter.OrderDir = "desc"
	found, _, err := repo.FindOpen(ctx, filter)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, heavy.ID, found[0].ID)

	// a column outside the whitelist never reaches the SQL text and
	// sorting falls back to creation time
	filter.OrderBy = "weight_kg; DROP TABLE poolable_orders;--"
	found, _, err = repo.FindOpen(ctx, filter)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, light.ID, found[0].ID)

	var count int64
	require.NoError(t, db.Model(&models.PoolableOrderModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestGormShipmentRepository_MembersFollowTrackingNumber(t *testing.T) {
	db := setupPoolingSQLiteDB(t)
	orderRepo := NewGormOrderRepository(db)
	shipmentRepo := NewGormShipmentRepository(db)
	ctx := context.Background()

	first := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	first.CreatedAt = first.CreatedAt.Add(-time.Hour)
	second := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	require.NoError(t, orderRepo.Save(ctx, first))
	require.NoError(t, orderRepo.Save(ctx, second))

	shipment, err := pooling.NewConsolidatedShipment(
		[]uuid.UUID{first.ID, second.ID},
		"12 Harbor Lane, Boston",
		decimal.NewFromInt(4),
		time.Now().AddDate(0, 0, 10),
	)
	require.NoError(t, err)

	require.NoError(t, orderRepo.ClaimForShipment(ctx, []uuid.UUID{first.ID, second.ID}, shipment.ShipmentRef))
	require.NoError(t, shipmentRepo.Save(ctx, shipment))

	found, err := shipmentRepo.FindByRef(ctx, shipment.ShipmentRef)
	require.NoError(t, err)
	assert.Equal(t, shipment.ShipmentRef, found.ShipmentRef)
	require.Len(t, found.MemberOrderIDs, 2)
	assert.Equal(t, first.ID, found.MemberOrderIDs[0])
	assert.Equal(t, second.ID, found.MemberOrderIDs[1])

	listed, total, err := shipmentRepo.List(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, listed, 1)
	assert.Len(t, listed[0].MemberOrderIDs, 2)
}

func TestGormShipmentRepository_ListSortWhitelist(t *testing.T) {
	db := setupPoolingSQLiteDB(t)
	repo := NewGormShipmentRepository(db)
	ctx := context.Background()

	lighter, err := pooling.NewConsolidatedShipment(
		[]uuid.UUID{uuid.New()}, "12 Harbor Lane, Boston",
		decimal.NewFromInt(2), time.Now().AddDate(0, 0, 10))
	require.NoError(t, err)
	lighter.CreatedAt = lighter.CreatedAt.Add(-time.Hour)
	heavier, err := pooling.NewConsolidatedShipment(
		[]uuid.UUID{uuid.New()}, "12 Harbor Lane, Boston",
		decimal.NewFromInt(8), time.Now().AddDate(0, 0, 10))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, lighter))
	require.NoError(t, repo.Save(ctx, heavier))

	filter := shared.DefaultFilter()
	filter.OrderBy = "total_weight_kg"
	filter.OrderDir = "asc"
	listed, _, err := repo.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, lighter.ID, listed[0].ID)

	filter.OrderBy = "status) UNION SELECT * FROM consolidated_shipments--"
	listed, _, err = repo.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, heavier.ID, listed[0].ID, "unknown columns sort by creation time, newest first")
}

func TestGormShipmentRepository_CountOpenByRegionLifecycle(t *testing.T) {
	db := setupPoolingSQLiteDB(t)
	orderRepo := NewGormOrderRepository(db)
	shipmentRepo := NewGormShipmentRepository(db)
	ctx := context.Background()

	order := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	require.NoError(t, orderRepo.Save(ctx, order))

	shipment, err := pooling.NewConsolidatedShipment(
		[]uuid.UUID{order.ID}, "12 Harbor Lane, Boston",
		decimal.NewFromInt(2), time.Now().AddDate(0, 0, 10))
	require.NoError(t, err)

	require.NoError(t, orderRepo.ClaimForShipment(ctx, []uuid.UUID{order.ID}, shipment.ShipmentRef))
	require.NoError(t, shipmentRepo.Save(ctx, shipment))

	region, err := valueobject.NewRegion("Jaipur", "Rajasthan")
	require.NoError(t, err)

	count, err := shipmentRepo.CountOpenByRegion(ctx, region)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, shipment.MarkShipped())
	require.NoError(t, shipment.MarkDelivered())
	require.NoError(t, shipmentRepo.Update(ctx, shipment))

	count, err = shipmentRepo.CountOpenByRegion(ctx, region)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRegionAggregates_SQLite(t *testing.T) {
	db := setupPoolingSQLiteDB(t)
	orderRepo := NewGormOrderRepository(db)
	directory := NewGormArtisanDirectory(db)
	ctx := context.Background()

	recent := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	recent.ShippingCost = valueobject.NewMoneyINRFromFloat(800)
	old := newPoolableOrder(t, "Jaipur", "Rajasthan", "US")
	old.CreatedAt = old.CreatedAt.AddDate(0, 0, -45)
	old.ShippingCost = valueobject.NewMoneyINRFromFloat(9999)
	require.NoError(t, orderRepo.Save(ctx, recent))
	require.NoError(t, orderRepo.Save(ctx, old))

	profile := models.ArtisanProfileModel{
		UserID:   uuid.New(),
		Name:     "Meera Devi",
		Craft:    "block printing",
		District: "Jaipur",
		State:    "Rajasthan",
	}
	profile.ID = uuid.New()
	require.NoError(t, db.Create(&profile).Error)

	region, err := valueobject.NewRegion("jaipur", "RAJASTHAN")
	require.NoError(t, err)
	since := time.Now().AddDate(0, 0, -30)

	count, err := orderRepo.CountByRegionSince(ctx, region, since)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	total, err := orderRepo.SumShippingCostByRegionSince(ctx, region, since)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(800)), "got %s", total)

	artisans, err := directory.CountByRegion(ctx, region)
	require.NoError(t, err)
	assert.Equal(t, int64(1), artisans)
}
