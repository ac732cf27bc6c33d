package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mohammadpnp/content-inventory/internal/infrastructure/db/models"
)

// ContentIndexMarker records that an item has been made searchable by
// stamping indexed_at. The search engine itself consumes the same queue
// downstream; this keeps the inventory's view of indexing state current.
type ContentIndexMarker struct {
	db *gorm.DB
}

func NewContentIndexMarker(db *gorm.DB) *ContentIndexMarker {
	return &ContentIndexMarker{db: db}
}

func (m *ContentIndexMarker) Index(ctx context.Context, contentItemID, url string) error {
	_ = url

	result := m.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("id = ?", contentItemID).
		Update("indexed_at", gorm.Expr("NOW()"))
	if result.Error != nil {
		return fmt.Errorf("mark content item indexed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("content item %s not found", contentItemID)
	}
	return nil
}
