package models

import (
	"time"

	"github.com/google/uuid"
)

// Developer project statuses
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusOngoing   = "ongoing"
	ProjectStatusDelayed   = "delayed"
	ProjectStatusCompleted = "completed"
)

// TimelinePhase represents one construction phase of a developer project
type TimelinePhase struct {
	Phase    string `json:"phase"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// ProjectTimeline holds the extracted schedule of a developer project
type ProjectTimeline struct {
	StartDate      *time.Time      `json:"start_date"`
	CompletionDate *time.Time      `json:"completion_date"`
	Phases         []TimelinePhase `json:"phases"`
}

// DeveloperProject represents a construction project announced by a property developer
type DeveloperProject struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DeveloperName string    `json:"developer_name" gorm:"type:varchar(255);not null"`
	DeveloperURL  string    `json:"developer_url" gorm:"type:varchar(500)"`
	ProjectName   string    `json:"project_name" gorm:"type:varchar(500);not null"`
	Description   string    `json:"description" gorm:"type:text"`

	Location    string  `json:"location" gorm:"type:varchar(255)"`
	Region      string  `json:"region" gorm:"type:varchar(100)"`
	Budget      *string `json:"budget" gorm:"type:varchar(100)"`
	ProjectType string  `json:"project_type" gorm:"type:varchar(100)"`
	Status      string  `json:"status" gorm:"type:varchar(50);not null;default:'planning'"`

	StartDate          *time.Time      `json:"start_date"`
	ExpectedCompletion *time.Time      `json:"expected_completion"`
	TimelinePhases     []TimelinePhase `json:"timeline_phases" gorm:"type:jsonb"`

	SourceURL string    `json:"source_url" gorm:"type:varchar(500)"`
	ScrapedAt time.Time `json:"scraped_at"`
	CreatedAt time.Time `json:"created_at" gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"default:CURRENT_TIMESTAMP"`
}
