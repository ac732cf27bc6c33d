package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
	"github.com/mohammadpnp/content-inventory/internal/infrastructure/db/models"
)

const pgUniqueViolation = "23505"

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) URLExists(ctx context.Context, url string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Where("current_url = ?", url).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check url existence: %w", err)
	}
	return count > 0, nil
}

// Insert persists one content item. A uniqueness-constraint race with a
// concurrent import surfaces as ErrDuplicateURL so the caller can degrade
// the row instead of aborting the batch.
func (r *ContentRepository) Insert(ctx context.Context, item *domain.ContentItem) (string, error) {
	row := models.ContentItem{
		Title:          item.Title,
		CurrentURL:     item.CurrentURL,
		ContentType:    string(item.ContentType),
		PublishDate:    nullableText(item.PublishDate),
		Description:    nullableText(item.Description),
		Author:         nullableText(item.Author),
		TargetAudience: nullableText(item.TargetAudience),
		Tags:           nullableText(item.Tags),
		CampaignID:     nullableText(item.CampaignID),
		Source:         item.Source,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return "", domain.ErrDuplicateURL
		}
		return "", fmt.Errorf("insert content item: %w", err)
	}
	return row.ID, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func nullableText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
