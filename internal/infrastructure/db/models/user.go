package models

import "time"

type User struct {
	ID        string `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:320;not null;uniqueIndex"`
	Role      string `gorm:"size:32;not null;default:'viewer'"`
	APIKey    string `gorm:"column:api_key;size:64;not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
