package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mohammadpnp/content-inventory/internal/domain/identity"
	"github.com/mohammadpnp/content-inventory/internal/infrastructure/db/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByAPIKey(ctx context.Context, apiKey string) (*identity.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).First(&row, "api_key = ?", apiKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrUnknownAPIKey
		}
		return nil, fmt.Errorf("get user by api key: %w", err)
	}

	return &identity.User{
		ID:    row.ID,
		Name:  row.Name,
		Email: row.Email,
		Role:  identity.Role(row.Role),
	}, nil
}
