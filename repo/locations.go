package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ssokolov/blogium/models"
)

// Locations lists the places posts can be tagged with.
type Locations struct {
	db *gorm.DB
}

func NewLocations(db *gorm.DB) *Locations {
	return &Locations{db: db}
}

// ListPublished returns visible locations ordered by name.
func (r *Locations) ListPublished(ctx context.Context) ([]models.Location, error) {
	locations := []models.Location{}
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("name ASC").
		Find(&locations).Error
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}
