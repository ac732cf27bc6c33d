package models

import "time"

type Campaign struct {
	ID        string `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Campaign) TableName() string {
	return "campaigns"
}
