package models

import "time"

type IndexJob struct {
	ID             string  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ContentItemID  string  `gorm:"type:uuid;not null"`
	URL            string  `gorm:"type:text;not null"`
	Status         string  `gorm:"type:text;not null"`
	Attempts       int     `gorm:"not null;default:0"`
	MaxAttempts    int     `gorm:"not null;default:5"`
	ErrorMessage   *string `gorm:"type:text"`
	HeartbeatAt    *time.Time
	LeaseExpiresAt *time.Time
	StartedAt      *time.Time
	FinishedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (IndexJob) TableName() string {
	return "index_jobs"
}
