package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// RawListing is an unprocessed tender announcement as a source adapter found
// it. Normalization into a models.Tender happens downstream in the ingestion
// pipeline.
type RawListing struct {
	Title        string
	Description  string
	Authority    string
	Location     string
	DeadlineText string
	// BudgetValue carries a raw numeric amount from structured source
	// fields; free-text amounts are left for extraction downstream.
	BudgetValue string
	DetailURL   string
	Platform     string
	PlatformURL  string
	Region       string
	Country      string
}

// SourceAdapter fetches raw tender listings from one procurement platform.
// Fetch returns whatever listings it could gather; an error means the source
// as a whole was unreachable.
type SourceAdapter interface {
	Name() string
	Platform() string
	Fetch(ctx context.Context) ([]RawListing, error)
}

// deadlineHashLayout renders the parsed deadline for source ID hashing, so
// the same announcement hashes identically across runs.
const deadlineHashLayout = "2006-01-02 15:04:05"

// GenerateSourceID derives a stable identifier for a tender from its title,
// platform, and deadline. Re-scraping the same announcement yields the same
// ID, which the unique constraint on source_id turns into a dedup.
func GenerateSourceID(title, platform string, deadline time.Time) string {
	seed := fmt.Sprintf("%s_%s_%s", title, platform, deadline.UTC().Format(deadlineHashLayout))
	sum := md5.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])[:16]
}

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
var whitespacePattern = regexp.MustCompile(`\s+`)

// GenerateTitleSourceID derives an identifier from the normalized title
// alone. Coarser than GenerateSourceID: the same tender republished with a
// new deadline still collapses into one record. Used by the comprehensive
// ingestion run where portals overlap heavily.
func GenerateTitleSourceID(title string) string {
	normalized := nonWordPattern.ReplaceAllString(title, "")
	normalized = strings.ToLower(normalized)
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	normalized = strings.TrimSpace(normalized)

	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}
