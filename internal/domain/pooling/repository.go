package pooling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftbridge/backend/internal/domain/shared"
	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
)

// EligibilityQuery selects open orders that could share a shipment:
// same origin region, optionally the same destination country, created
// within a symmetric window around Now. The window is symmetric because
// an order may catch pooling from slightly earlier orders or be caught
// by slightly later ones.
type EligibilityQuery struct {
	Origin             valueobject.Region
	DestinationCountry string // empty matches any destination
	WindowDays         int
	Now                time.Time
}

// WindowStart returns the inclusive lower bound of the eligibility window
func (q EligibilityQuery) WindowStart() time.Time {
	return q.Now.AddDate(0, 0, -q.WindowDays)
}

// WindowEnd returns the inclusive upper bound of the eligibility window
func (q EligibilityQuery) WindowEnd() time.Time {
	return q.Now.AddDate(0, 0, q.WindowDays)
}

// OrderRepository is the persistence port for poolable orders
type OrderRepository interface {
	Save(ctx context.Context, order *PoolableOrder) error
	Update(ctx context.Context, order *PoolableOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*PoolableOrder, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*PoolableOrder, error)
	// FindPoolable returns open orders matching the eligibility query,
	// sorted by creation time ascending
	FindPoolable(ctx context.Context, query EligibilityQuery) ([]*PoolableOrder, error)
	// FindOpen returns all orders still open for pooling, for cluster
	// planning across regions
	FindOpen(ctx context.Context, filter shared.Filter) ([]*PoolableOrder, int64, error)
	// FindConsolidatedByArtisan returns the artisan's orders already
	// claimed into pooled shipments, creation time ascending
	FindConsolidatedByArtisan(ctx context.Context, artisanID uuid.UUID) ([]*PoolableOrder, error)
	// ClaimForShipment atomically writes the tracking number and ships
	// every listed order, in one transaction. It fails with
	// ErrConflictingClaim, changing nothing, when any order is already
	// claimed or no longer open.
	ClaimForShipment(ctx context.Context, orderIDs []uuid.UUID, trackingNumber string) error
	CountByRegionSince(ctx context.Context, region valueobject.Region, since time.Time) (int64, error)
	SumShippingCostByRegionSince(ctx context.Context, region valueobject.Region, since time.Time) (decimal.Decimal, error)
}

// ShipmentRepository is the persistence port for consolidated shipments
type ShipmentRepository interface {
	Save(ctx context.Context, shipment *ConsolidatedShipment) error
	Update(ctx context.Context, shipment *ConsolidatedShipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*ConsolidatedShipment, error)
	FindByRef(ctx context.Context, shipmentRef string) (*ConsolidatedShipment, error)
	List(ctx context.Context, filter shared.Filter) ([]*ConsolidatedShipment, int64, error)
	// CountOpenByRegion counts open shipments whose member orders
	// originate in the region
	CountOpenByRegion(ctx context.Context, region valueobject.Region) (int64, error)
}

// ArtisanDirectory is the read port into the artisan profiles owned by
// the user subsystem.
type ArtisanDirectory interface {
	CountByRegion(ctx context.Context, region valueobject.Region) (int64, error)
}
