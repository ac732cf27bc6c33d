package models

import "time"

type ContentItem struct {
	ID             string  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title          string  `gorm:"type:text;not null"`
	CurrentURL     string  `gorm:"column:current_url;type:text;not null;uniqueIndex"`
	ContentType    string  `gorm:"type:text;not null"`
	PublishDate    *string `gorm:"type:date"`
	Description    *string `gorm:"type:text"`
	Author         *string `gorm:"type:text"`
	TargetAudience *string `gorm:"type:text"`
	Tags           *string `gorm:"type:text"`
	CampaignID     *string `gorm:"type:uuid"`
	Source         string  `gorm:"type:text;not null;default:'manual'"`
	IndexedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (ContentItem) TableName() string {
	return "content_items"
}
