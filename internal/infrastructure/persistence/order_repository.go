package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/craftbridge/backend/internal/domain/pooling"
	"github.com/craftbridge/backend/internal/domain/shared"
	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
	"github.com/craftbridge/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements pooling.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save persists a poolable order
func (r *GormOrderRepository) Save(ctx context.Context, order *pooling.PoolableOrder) error {
	model := models.PoolableOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Save(model).Error
}

// Update updates an existing poolable order
func (r *GormOrderRepository) Update(ctx context.Context, order *pooling.PoolableOrder) error {
	model := models.PoolableOrderModelFromDomain(order)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ?", order.ID).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a poolable order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*pooling.PoolableOrder, error) {
	var model models.PoolableOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple poolable orders by their IDs
func (r *GormOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*pooling.PoolableOrder, error) {
	if len(ids) == 0 {
		return []*pooling.PoolableOrder{}, nil
	}

	var orderModels []models.PoolableOrderModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*pooling.PoolableOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders, nil
}

// FindPoolable finds open orders from the same origin region created
// within the eligibility window, oldest first
func (r *GormOrderRepository) FindPoolable(ctx context.Context, query pooling.EligibilityQuery) ([]*pooling.PoolableOrder, error) {
	q := r.db.WithContext(ctx).
		Model(&models.PoolableOrderModel{}).
		Where("LOWER(district) = ? AND LOWER(state) = ?",
			strings.ToLower(query.Origin.District()), strings.ToLower(query.Origin.State())).
		Where("(tracking_number IS NULL OR tracking_number = '')").
		Where("status IN ?", openStatusStrings()).
		Where("created_at BETWEEN ? AND ?", query.WindowStart(), query.WindowEnd())

	if query.DestinationCountry != "" {
		q = q.Where("UPPER(destination_country) = ?", strings.ToUpper(query.DestinationCountry))
	}

	var orderModels []models.PoolableOrderModel
	if err := q.Order("created_at ASC").Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*pooling.PoolableOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders, nil
}

// FindOpen finds all orders still open for pooling, across regions
func (r *GormOrderRepository) FindOpen(ctx context.Context, filter shared.Filter) ([]*pooling.PoolableOrder, int64, error) {
	var total int64
	if err := r.openQuery(ctx).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orderModels []models.PoolableOrderModel
	if err := r.applyFilter(r.openQuery(ctx), filter).Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]*pooling.PoolableOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders, total, nil
}

// FindConsolidatedByArtisan finds the artisan's orders that belong to a
// pooled shipment, creation time ascending. Membership is carried by the
// tracking number, which equals the shipment reference.
func (r *GormOrderRepository) FindConsolidatedByArtisan(ctx context.Context, artisanID uuid.UUID) ([]*pooling.PoolableOrder, error) {
	var orderModels []models.PoolableOrderModel
	if err := r.db.WithContext(ctx).
		Where("artisan_id = ?", artisanID).
		Where("tracking_number LIKE ?", "POOL-%").
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*pooling.PoolableOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders, nil
}

// ClaimForShipment stamps the tracking number on every listed order in a
// single transaction. Any order already claimed or no longer open makes
// the whole claim fail with ErrConflictingClaim and nothing is written.
func (r *GormOrderRepository) ClaimForShipment(ctx context.Context, orderIDs []uuid.UUID, trackingNumber string) error {
	if len(orderIDs) == 0 {
		return shared.ErrInvalidInput.WithDetails("no orders to claim")
	}
	if trackingNumber == "" {
		return shared.ErrInvalidInput.WithDetails("tracking number cannot be empty")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PoolableOrderModel{}).
			Where("id IN ?", orderIDs).
			Where("(tracking_number IS NULL OR tracking_number = '')").
			Where("status IN ?", openStatusStrings()).
			Updates(map[string]interface{}{
				"tracking_number": trackingNumber,
				"status":          string(pooling.OrderStatusShipped),
				"pooling_status":  string(pooling.PoolingStatusConsolidated),
				"updated_at":      time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(orderIDs)) {
			return shared.ErrConflictingClaim
		}
		return nil
	})
}

// CountByRegionSince counts orders from the region created after the cutoff
func (r *GormOrderRepository) CountByRegionSince(ctx context.Context, region valueobject.Region, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PoolableOrderModel{}).
		Where("LOWER(district) = ? AND LOWER(state) = ?",
			strings.ToLower(region.District()), strings.ToLower(region.State())).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// SumShippingCostByRegionSince totals the shipping spend of orders from
// the region created after the cutoff
func (r *GormOrderRepository) SumShippingCostByRegionSince(ctx context.Context, region valueobject.Region, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.PoolableOrderModel{}).
		Select("COALESCE(SUM(shipping_cost), 0)").
		Where("LOWER(district) = ? AND LOWER(state) = ?",
			strings.ToLower(region.District()), strings.ToLower(region.State())).
		Where("created_at >= ?", since).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *GormOrderRepository) openQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.PoolableOrderModel{}).
		Where("(tracking_number IS NULL OR tracking_number = '')").
		Where("status IN ?", openStatusStrings())
}

// orderSortColumns whitelists the columns a caller may sort by. OrderBy
// comes from query strings and must never reach the SQL text unchecked.
var orderSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"quantity":   true,
	"weight_kg":  true,
	"status":     true,
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if orderSortColumns[filter.OrderBy] {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at ASC")
	}

	return query
}

func openStatusStrings() []string {
	statuses := pooling.OpenOrderStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
