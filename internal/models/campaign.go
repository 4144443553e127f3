package models

import (
	"time"

	"github.com/google/uuid"
)

type CampaignStatus string

const (
	StatusScheduled CampaignStatus = "scheduled"
	StatusActive    CampaignStatus = "active"
	StatusCompleted CampaignStatus = "completed"
)

type Campaign struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatorID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"creator_id"`
	Title           string         `gorm:"type:text;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	ScheduledAt     *time.Time     `gorm:"type:timestamp" json:"scheduled_at,omitempty"`
	Status          CampaignStatus `gorm:"not null;default:'scheduled'" json:"status"`
	AnalysisFileURL string         `gorm:"type:text" json:"analysis_file_url"`
	BatchCallID     string         `gorm:"type:text" json:"batch_call_id"`
	CreatedAt       time.Time      `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"type:timestamp" json:"updated_at"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (Campaign) TableName() string {
	return "campaigns"
}
