package persistence

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/craftbridge/backend/internal/domain/shared/valueobject"
	"github.com/craftbridge/backend/internal/infrastructure/persistence/models"
)

// GormArtisanDirectory implements pooling.ArtisanDirectory over the
// artisan profiles table
type GormArtisanDirectory struct {
	db *gorm.DB
}

// NewGormArtisanDirectory creates a new GormArtisanDirectory
func NewGormArtisanDirectory(db *gorm.DB) *GormArtisanDirectory {
	return &GormArtisanDirectory{db: db}
}

// CountByRegion counts registered artisans in the region
func (r *GormArtisanDirectory) CountByRegion(ctx context.Context, region valueobject.Region) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ArtisanProfileModel{}).
		Where("LOWER(district) = ? AND LOWER(state) = ?",
			strings.ToLower(region.District()), strings.ToLower(region.State())).
		Count(&count).Error
	return count, err
}
