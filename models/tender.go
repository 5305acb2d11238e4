package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tender lifecycle statuses
const (
	TenderStatusNew        = "New"
	TenderStatusInProgress = "In Progress"
	TenderStatusClosed     = "Closed"
)

// Application tracking statuses
const (
	ApplicationStatusNotApplied      = "Not Applied"
	ApplicationStatusAwaitingResults = "Awaiting Results"
	ApplicationStatusWon             = "Won"
	ApplicationStatusLost            = "Lost"
)

// ValidApplicationStatuses lists the closed enumeration of application states
var ValidApplicationStatuses = []string{
	ApplicationStatusNotApplied,
	ApplicationStatusAwaitingResults,
	ApplicationStatusWon,
	ApplicationStatusLost,
}

// IsValidApplicationStatus checks enum membership for an application status value
func IsValidApplicationStatus(status string) bool {
	for _, valid := range ValidApplicationStatuses {
		if status == valid {
			return true
		}
	}
	return false
}

// IsValidTenderStatus checks enum membership for a lifecycle status value
func IsValidTenderStatus(status string) bool {
	return status == TenderStatusNew || status == TenderStatusInProgress || status == TenderStatusClosed
}

type Tender struct {
	// Primary identification
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SourceID string    `json:"source_id" gorm:"type:varchar(100);not null;uniqueIndex"`

	// Listing content
	Title       string  `json:"title" gorm:"type:varchar(500);not null"`
	Description string  `json:"description" gorm:"type:text"`
	Budget      *string `json:"budget" gorm:"type:varchar(100)"`

	// Schedule
	Deadline   time.Time  `json:"deadline" gorm:"not null"`
	TenderDate *time.Time `json:"tender_date"`

	// Classification
	Location             string  `json:"location" gorm:"type:varchar(255)"`
	ProjectType          string  `json:"project_type" gorm:"type:varchar(100)"`
	ContractingAuthority string  `json:"contracting_authority" gorm:"type:varchar(255)"`
	Category             string  `json:"category" gorm:"type:varchar(100);not null"`
	BuildingTypology     *string `json:"building_typology" gorm:"type:varchar(100)"`
	Country              string  `json:"country" gorm:"type:varchar(100);default:'Germany'"`

	// Origin
	PlatformSource string  `json:"platform_source" gorm:"type:varchar(255);not null"`
	PlatformURL    string  `json:"platform_url" gorm:"type:varchar(500)"`
	ApplicationURL string  `json:"application_url" gorm:"type:varchar(500)"`
	DirectLink     *string `json:"direct_link" gorm:"type:varchar(500)"`

	// Application tracking
	Status            string     `json:"status" gorm:"type:varchar(50);not null;default:'New'"`
	IsApplied         bool       `json:"is_applied" gorm:"default:false"`
	ApplicationStatus string     `json:"application_status" gorm:"type:varchar(50);not null;default:'Not Applied'"`
	AppliedBy         []string   `json:"applied_by" gorm:"type:text[]"`
	AppliedDate       *time.Time `json:"applied_date"`
	ResultDate        *time.Time `json:"result_date"`

	// Audit fields
	ScrapedAt time.Time `json:"scraped_at"`
	CreatedAt time.Time `json:"created_at" gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"default:CURRENT_TIMESTAMP"`
}

// Apply records an application by the given user. Re-applying by a user who is
// already in the applied set is a no-op.
func (t *Tender) Apply(userID string, now time.Time) {
	for _, existing := range t.AppliedBy {
		if existing == userID {
			return
		}
	}

	t.AppliedBy = append(t.AppliedBy, userID)
	t.IsApplied = true
	if t.ApplicationStatus == ApplicationStatusNotApplied {
		t.ApplicationStatus = ApplicationStatusAwaitingResults
	}
	if t.AppliedDate == nil {
		appliedAt := now
		t.AppliedDate = &appliedAt
	}
	t.UpdatedAt = now
}

// Unapply removes the given user from the applied set. The tender-level applied
// flag reflects whether anyone is still applied, not a single user's state.
func (t *Tender) Unapply(userID string, now time.Time) {
	remaining := make([]string, 0, len(t.AppliedBy))
	for _, existing := range t.AppliedBy {
		if existing != userID {
			remaining = append(remaining, existing)
		}
	}
	t.AppliedBy = remaining

	if len(t.AppliedBy) == 0 {
		t.IsApplied = false
		t.ApplicationStatus = ApplicationStatusNotApplied
		t.AppliedDate = nil
	}
	t.UpdatedAt = now
}

// SetApplicationStatus moves the tender to any member of the status enumeration.
// Transitions are not restricted beyond enum membership, so a direct jump from
// Not Applied to Won is accepted. Setting Won or Lost stamps the result date;
// moving away from Won or Lost leaves a previously stamped result date in place.
func (t *Tender) SetApplicationStatus(status string, now time.Time) error {
	if !IsValidApplicationStatus(status) {
		return fmt.Errorf("invalid application status: %q (valid: %v)", status, ValidApplicationStatuses)
	}

	t.ApplicationStatus = status
	if status == ApplicationStatusWon || status == ApplicationStatusLost {
		resultAt := now
		t.ResultDate = &resultAt
	}
	t.UpdatedAt = now
	return nil
}
