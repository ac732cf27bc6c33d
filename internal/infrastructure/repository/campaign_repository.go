package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mohammadpnp/content-inventory/internal/infrastructure/db/models"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// EnsureByName returns the id of the campaign called name, creating it if
// absent. A create that loses a race on the name uniqueness constraint
// falls back to re-reading the winner's row.
func (r *CampaignRepository) EnsureByName(ctx context.Context, name string) (string, error) {
	var existing models.Campaign
	err := r.db.WithContext(ctx).First(&existing, "name = ?", name).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("lookup campaign %q: %w", name, err)
	}

	created := models.Campaign{Name: name}
	if createErr := r.db.WithContext(ctx).Create(&created).Error; createErr != nil {
		if isUniqueViolation(createErr) {
			if err := r.db.WithContext(ctx).First(&existing, "name = ?", name).Error; err == nil {
				return existing.ID, nil
			}
		}
		return "", fmt.Errorf("create campaign %q: %w", name, createErr)
	}
	return created.ID, nil
}
