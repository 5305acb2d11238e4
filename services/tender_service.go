package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/grovellows/tender-backend/models"
	"github.com/grovellows/tender-backend/shared"
)

// ErrTenderNotFound is returned when a tender ID does not exist.
var ErrTenderNotFound = errors.New("tender not found")

const uniqueViolationCode = "23505"

// TenderFilter narrows tender listings. Zero values mean "no filter".
type TenderFilter struct {
	Category          string
	Region            string
	Status            string
	ApplicationStatus string
	Platform          string
	Search            string
	DeadlineAfter     *time.Time
	Limit             int
	Offset            int
}

// TenderService is the PostgreSQL-backed store and query layer for tenders.
type TenderService struct {
	db     *sql.DB
	logger *logrus.Entry
}

func NewTenderService(db *sql.DB) *TenderService {
	return &TenderService{
		db:     db,
		logger: logrus.WithField("component", "TenderService"),
	}
}

const tenderColumns = `id, source_id, title, description, budget, deadline, tender_date,
	location, project_type, contracting_authority, category, building_typology, country,
	platform_source, platform_url, application_url, direct_link,
	status, is_applied, application_status, applied_by, applied_date, result_date,
	scraped_at, created_at, updated_at`

// InsertTender persists a new tender. Returns ErrDuplicateTender when the
// source ID is already present, so ingestion can count it as a dedup rather
// than a failure.
func (s *TenderService) InsertTender(ctx context.Context, tender *models.Tender) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenders (
			id, source_id, title, description, budget, deadline, tender_date,
			location, project_type, contracting_authority, category, building_typology, country,
			platform_source, platform_url, application_url, direct_link,
			status, is_applied, application_status, applied_by, applied_date, result_date,
			scraped_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)`,
		tender.ID, tender.SourceID, tender.Title, tender.Description, tender.Budget,
		tender.Deadline, tender.TenderDate, tender.Location, tender.ProjectType,
		tender.ContractingAuthority, tender.Category, tender.BuildingTypology, tender.Country,
		tender.PlatformSource, tender.PlatformURL, tender.ApplicationURL, tender.DirectLink,
		tender.Status, tender.IsApplied, tender.ApplicationStatus, pq.Array(tender.AppliedBy),
		tender.AppliedDate, tender.ResultDate, tender.ScrapedAt, tender.CreatedAt, tender.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
			return ErrDuplicateTender
		}
		return shared.WrapError(err, shared.ErrorCategoryDatabase, "INSERT_FAILED",
			"failed to insert tender", "TenderService", "InsertTender")
	}
	return nil
}

// ListTenders returns tenders matching the filter, newest scrape first.
func (s *TenderService) ListTenders(ctx context.Context, filter TenderFilter) ([]models.Tender, error) {
	var conditions []string
	var args []interface{}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Category != "" {
		addCondition("category = $%d", filter.Category)
	}
	if filter.Region != "" {
		addCondition("location ILIKE '%%' || $%d || '%%'", filter.Region)
	}
	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}
	if filter.ApplicationStatus != "" {
		addCondition("application_status = $%d", filter.ApplicationStatus)
	}
	if filter.Platform != "" {
		addCondition("platform_source = $%d", filter.Platform)
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')",
			len(args), len(args)))
	}
	if filter.DeadlineAfter != nil {
		addCondition("deadline >= $%d", *filter.DeadlineAfter)
	}

	query := "SELECT " + tenderColumns + " FROM tenders"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY scraped_at DESC, deadline ASC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "QUERY_FAILED",
			"failed to list tenders", "TenderService", "ListTenders")
	}
	defer rows.Close()

	var tenders []models.Tender
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, *tender)
	}
	return tenders, rows.Err()
}

// GetTenderByID fetches one tender.
func (s *TenderService) GetTenderByID(ctx context.Context, id string) (*models.Tender, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+tenderColumns+" FROM tenders WHERE id = $1", id)

	tender, err := scanTender(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenderNotFound
		}
		return nil, err
	}
	return tender, nil
}

// ApplyToTender records that a user applied to a tender and returns the
// updated record.
func (s *TenderService) ApplyToTender(ctx context.Context, id, userID string) (*models.Tender, error) {
	tender, err := s.GetTenderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tender.Apply(userID, time.Now())
	if err := s.saveApplicationState(ctx, tender); err != nil {
		return nil, err
	}
	return tender, nil
}

// WithdrawFromTender removes a user's application and returns the updated
// record.
func (s *TenderService) WithdrawFromTender(ctx context.Context, id, userID string) (*models.Tender, error) {
	tender, err := s.GetTenderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tender.Unapply(userID, time.Now())
	if err := s.saveApplicationState(ctx, tender); err != nil {
		return nil, err
	}
	return tender, nil
}

// UpdateApplicationStatus moves a tender's application status and returns the
// updated record. Invalid status values are rejected before touching the
// database.
func (s *TenderService) UpdateApplicationStatus(ctx context.Context, id, status string) (*models.Tender, error) {
	tender, err := s.GetTenderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tender.SetApplicationStatus(status, time.Now()); err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryValidation, "INVALID_STATUS",
			err.Error(), "TenderService", "UpdateApplicationStatus")
	}
	if err := s.saveApplicationState(ctx, tender); err != nil {
		return nil, err
	}
	return tender, nil
}

// UpdateTenderStatus sets the lifecycle status (New, In Progress, Closed).
func (s *TenderService) UpdateTenderStatus(ctx context.Context, id, status string) (*models.Tender, error) {
	tender, err := s.GetTenderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tender.Status = status
	tender.UpdatedAt = time.Now()
	if err := s.saveApplicationState(ctx, tender); err != nil {
		return nil, err
	}
	return tender, nil
}

func (s *TenderService) saveApplicationState(ctx context.Context, tender *models.Tender) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tenders SET
			status = $2, is_applied = $3, application_status = $4, applied_by = $5,
			applied_date = $6, result_date = $7, updated_at = $8
		WHERE id = $1`,
		tender.ID, tender.Status, tender.IsApplied, tender.ApplicationStatus,
		pq.Array(tender.AppliedBy), tender.AppliedDate, tender.ResultDate, tender.UpdatedAt,
	)
	if err != nil {
		return shared.WrapError(err, shared.ErrorCategoryDatabase, "UPDATE_FAILED",
			"failed to update tender application state", "TenderService", "saveApplicationState")
	}
	return nil
}

// CountTenders returns total tender counts grouped by application status for
// the admin overview.
func (s *TenderService) CountTenders(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT application_status, COUNT(*) FROM tenders GROUP BY application_status")
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "QUERY_FAILED",
			"failed to count tenders", "TenderService", "CountTenders")
	}
	defer rows.Close()

	counts := make(map[string]int)
	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
		total += count
	}
	counts["total"] = total
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTender(row rowScanner) (*models.Tender, error) {
	var tender models.Tender
	var appliedBy pq.StringArray

	err := row.Scan(
		&tender.ID, &tender.SourceID, &tender.Title, &tender.Description, &tender.Budget,
		&tender.Deadline, &tender.TenderDate, &tender.Location, &tender.ProjectType,
		&tender.ContractingAuthority, &tender.Category, &tender.BuildingTypology, &tender.Country,
		&tender.PlatformSource, &tender.PlatformURL, &tender.ApplicationURL, &tender.DirectLink,
		&tender.Status, &tender.IsApplied, &tender.ApplicationStatus, &appliedBy,
		&tender.AppliedDate, &tender.ResultDate, &tender.ScrapedAt, &tender.CreatedAt, &tender.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "SCAN_FAILED",
			"failed to scan tender row", "TenderService", "scanTender")
	}

	tender.AppliedBy = []string(appliedBy)
	return &tender, nil
}
