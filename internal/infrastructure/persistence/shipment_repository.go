package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/craftbridge/backend/internal/domain/pooling"
	"github.com/craftbridge/backend/internal/domain/shared"
	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
	"github.com/craftbridge/backend/internal/infrastructure/persistence/models"
)

// GormShipmentRepository implements pooling.ShipmentRepository using GORM.
// Membership is not stored on the shipment row: an order belongs to a
// shipment when its tracking number equals the shipment reference.
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// Save persists a consolidated shipment
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *pooling.ConsolidatedShipment) error {
	model := models.ConsolidatedShipmentModelFromDomain(shipment)
	return r.db.WithContext(ctx).Save(model).Error
}

// Update updates an existing consolidated shipment
func (r *GormShipmentRepository) Update(ctx context.Context, shipment *pooling.ConsolidatedShipment) error {
	model := models.ConsolidatedShipmentModelFromDomain(shipment)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ?", shipment.ID).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a consolidated shipment by its ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*pooling.ConsolidatedShipment, error) {
	var model models.ConsolidatedShipmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	members, err := r.memberOrderIDs(ctx, model.ShipmentRef)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(members), nil
}

// FindByRef finds a consolidated shipment by its shipment reference
func (r *GormShipmentRepository) FindByRef(ctx context.Context, shipmentRef string) (*pooling.ConsolidatedShipment, error) {
	var model models.ConsolidatedShipmentModel
	if err := r.db.WithContext(ctx).
		Where("shipment_ref = ?", shipmentRef).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	members, err := r.memberOrderIDs(ctx, model.ShipmentRef)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(members), nil
}

// List finds consolidated shipments matching the filter
func (r *GormShipmentRepository) List(ctx context.Context, filter shared.Filter) ([]*pooling.ConsolidatedShipment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.ConsolidatedShipmentModel{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shipmentModels []models.ConsolidatedShipmentModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ConsolidatedShipmentModel{}), filter)
	if err := query.Find(&shipmentModels).Error; err != nil {
		return nil, 0, err
	}

	membersByRef, err := r.memberOrderIDsByRef(ctx, shipmentModels)
	if err != nil {
		return nil, 0, err
	}

	shipments := make([]*pooling.ConsolidatedShipment, len(shipmentModels))
	for i := range shipmentModels {
		shipments[i] = shipmentModels[i].ToDomain(membersByRef[shipmentModels[i].ShipmentRef])
	}
	return shipments, total, nil
}

// CountOpenByRegion counts undelivered shipments with at least one member
// order originating in the region
func (r *GormShipmentRepository) CountOpenByRegion(ctx context.Context, region valueobject.Region) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ConsolidatedShipmentModel{}).
		Distinct("consolidated_shipments.id").
		Joins("JOIN poolable_orders ON poolable_orders.tracking_number = consolidated_shipments.shipment_ref").
		Where("consolidated_shipments.status <> ?", string(pooling.ShipmentStatusDelivered)).
		Where("LOWER(poolable_orders.district) = ? AND LOWER(poolable_orders.state) = ?",
			strings.ToLower(region.District()), strings.ToLower(region.State())).
		Count(&count).Error
	return count, err
}

func (r *GormShipmentRepository) memberOrderIDs(ctx context.Context, shipmentRef string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.PoolableOrderModel{}).
		Where("tracking_number = ?", shipmentRef).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormShipmentRepository) memberOrderIDsByRef(ctx context.Context, shipmentModels []models.ConsolidatedShipmentModel) (map[string][]uuid.UUID, error) {
	membersByRef := make(map[string][]uuid.UUID, len(shipmentModels))
	if len(shipmentModels) == 0 {
		return membersByRef, nil
	}

	refs := make([]string, len(shipmentModels))
	for i := range shipmentModels {
		refs[i] = shipmentModels[i].ShipmentRef
	}

	var memberModels []models.PoolableOrderModel
	if err := r.db.WithContext(ctx).
		Where("tracking_number IN ?", refs).
		Order("created_at ASC").
		Find(&memberModels).Error; err != nil {
		return nil, err
	}

	for i := range memberModels {
		ref := memberModels[i].TrackingNumber
		membersByRef[ref] = append(membersByRef[ref], memberModels[i].ID)
	}
	return membersByRef, nil
}

// shipmentSortColumns whitelists the columns a caller may sort by, same
// reasoning as orderSortColumns.
var shipmentSortColumns = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"total_weight_kg": true,
	"status":          true,
}

func (r *GormShipmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if shipmentSortColumns[filter.OrderBy] {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}
