package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/grovellows/tender-backend/config"
	"github.com/grovellows/tender-backend/models"
	"github.com/grovellows/tender-backend/shared"
)

// ErrDuplicateTender is returned by TenderStore implementations when a
// tender with the same source ID already exists.
var ErrDuplicateTender = errors.New("tender already exists")

// TenderStore persists normalized tenders. The ingestion pipeline only needs
// insert semantics; querying lives on the full tender service.
type TenderStore interface {
	InsertTender(ctx context.Context, tender *models.Tender) error
}

// IngestionResult summarizes one ingestion run across all sources.
type IngestionResult struct {
	SourcesTotal    int            `json:"sources_total"`
	SourcesFailed   int            `json:"sources_failed"`
	ListingsFetched int            `json:"listings_fetched"`
	Irrelevant      int            `json:"irrelevant"`
	Inserted        int            `json:"inserted"`
	Duplicates      int            `json:"duplicates"`
	InsertErrors    int            `json:"insert_errors"`
	PerSource       map[string]int `json:"per_source"`
	FailedSources   []string       `json:"failed_sources,omitempty"`
	Duration        string         `json:"duration"`
}

// IngestionService orchestrates a scraping run: it fans out over source
// adapters with bounded concurrency, normalizes and classifies what they
// return, filters irrelevant listings, and persists the rest. A failing
// source never aborts the run.
type IngestionService struct {
	store      TenderStore
	extractor  *TextExtractor
	classifier *TenderClassifier
	cfg        config.ScraperConfig
	logger     *logrus.Entry
	metrics    *shared.ServiceMetrics
}

func NewIngestionService(store TenderStore, extractor *TextExtractor, classifier *TenderClassifier, cfg config.ScraperConfig) *IngestionService {
	return &IngestionService{
		store:      store,
		extractor:  extractor,
		classifier: classifier,
		cfg:        cfg,
		logger:     logrus.WithField("component", "IngestionService"),
		metrics:    shared.NewServiceMetrics("IngestionService"),
	}
}

// Metrics exposes the service metrics for the admin endpoints.
func (s *IngestionService) Metrics() *shared.ServiceMetrics {
	return s.metrics
}

// RunIngestion scrapes all given sources and persists relevant tenders,
// deduplicating on (title, platform, deadline).
func (s *IngestionService) RunIngestion(ctx context.Context, adapters []SourceAdapter, maxPerSource int) *IngestionResult {
	return s.run(ctx, adapters, maxPerSource, false)
}

// RunComprehensiveIngestion is the wide sweep across overlapping portals.
// Deduplication uses the normalized title alone, so the same tender
// republished on several platforms or with a shifted deadline collapses into
// one record.
func (s *IngestionService) RunComprehensiveIngestion(ctx context.Context, adapters []SourceAdapter, maxPerSource int) *IngestionResult {
	return s.run(ctx, adapters, maxPerSource, true)
}

func (s *IngestionService) run(ctx context.Context, adapters []SourceAdapter, maxPerSource int, titleDedup bool) *IngestionResult {
	startTime := time.Now()
	result := &IngestionResult{
		SourcesTotal: len(adapters),
		PerSource:    make(map[string]int),
	}

	s.logger.WithFields(logrus.Fields{
		"source_count":    len(adapters),
		"max_per_source":  maxPerSource,
		"max_concurrency": s.cfg.MaxConcurrency,
		"title_dedup":     titleDedup,
	}).Info("Starting ingestion run")

	type sourceOutcome struct {
		adapter  SourceAdapter
		listings []RawListing
		err      error
	}

	outcomes := make([]sourceOutcome, len(adapters))
	semaphore := make(chan struct{}, s.cfg.MaxConcurrency)
	var waitGroup sync.WaitGroup

	for i, adapter := range adapters {
		waitGroup.Add(1)
		go func(index int, source SourceAdapter) {
			defer waitGroup.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			listings, err := source.Fetch(ctx)
			outcomes[index] = sourceOutcome{adapter: source, listings: listings, err: err}
		}(i, adapter)
	}
	waitGroup.Wait()

	// Seen titles across sources for the comprehensive run
	seenTitles := make(map[string]bool)

	for _, outcome := range outcomes {
		sourceName := outcome.adapter.Name()

		if outcome.err != nil {
			result.SourcesFailed++
			result.FailedSources = append(result.FailedSources, sourceName)
			s.logger.WithError(outcome.err).WithField("source", sourceName).Warn("Source fetch failed, continuing with remaining sources")
			s.metrics.RecordRequest(false, 0)
			continue
		}
		s.metrics.RecordRequest(true, 0)

		listings := outcome.listings
		if maxPerSource > 0 && len(listings) > maxPerSource {
			listings = listings[:maxPerSource]
		}
		result.ListingsFetched += len(listings)

		for _, listing := range listings {
			tender := s.normalize(listing)

			if !s.classifier.IsRelevant(listing.Title + " " + listing.Description) {
				result.Irrelevant++
				continue
			}

			if titleDedup {
				titleKey := GenerateTitleSourceID(listing.Title)
				if seenTitles[titleKey] {
					result.Duplicates++
					continue
				}
				seenTitles[titleKey] = true
				tender.SourceID = titleKey
			}

			err := s.store.InsertTender(ctx, tender)
			switch {
			case err == nil:
				result.Inserted++
				result.PerSource[sourceName]++
			case errors.Is(err, ErrDuplicateTender):
				result.Duplicates++
			default:
				result.InsertErrors++
				s.logger.WithError(err).WithFields(logrus.Fields{
					"source": sourceName,
					"title":  listing.Title,
				}).Error("Failed to persist tender")
			}
		}
	}

	result.Duration = time.Since(startTime).Round(time.Millisecond).String()
	s.logger.WithFields(logrus.Fields{
		"inserted":       result.Inserted,
		"duplicates":     result.Duplicates,
		"irrelevant":     result.Irrelevant,
		"sources_failed": result.SourcesFailed,
		"duration":       result.Duration,
	}).Info("Ingestion run finished")

	return result
}

// normalize converts a raw listing into a persistable tender: extracted
// deadline and budget, classification, region detection, and a deep link for
// applying.
func (s *IngestionService) normalize(listing RawListing) *models.Tender {
	combinedText := strings.TrimSpace(listing.Title + " " + listing.Description)

	deadlineSource := listing.DeadlineText
	if deadlineSource == "" {
		deadlineSource = combinedText
	}
	deadline := s.extractor.ExtractDeadline(deadlineSource, s.cfg.DefaultDeadline)

	// Free-text matches are stored verbatim; compact rendering is reserved
	// for sources that supply a raw numeric amount.
	var budget *string
	if listing.BudgetValue != "" {
		normalized := s.extractor.NormalizeBudget(listing.BudgetValue)
		budget = &normalized
	} else {
		budget = s.extractor.ExtractBudget(combinedText)
	}

	description := listing.Description
	if strings.TrimSpace(description) == "" {
		description = "Ausschreibung: " + listing.Title
	}

	category, typology := s.classifier.Categorize(combinedText)

	region := listing.Region
	if region == "" {
		region = s.extractor.DetectRegion(combinedText + " " + listing.Location + " " + listing.Authority)
	}

	country := listing.Country
	if country == "" {
		country = "Germany"
	}

	now := time.Now()
	tender := &models.Tender{
		ID:                   uuid.New(),
		SourceID:             GenerateSourceID(listing.Title, listing.Platform, deadline),
		Title:                listing.Title,
		Description:          description,
		Budget:               budget,
		Deadline:             deadline,
		Location:             firstNonEmpty(listing.Location, region),
		ContractingAuthority: listing.Authority,
		Category:             category,
		BuildingTypology:     typology,
		Country:              country,
		PlatformSource:       listing.Platform,
		PlatformURL:          listing.PlatformURL,
		ApplicationURL:       BuildApplicationURL(listing.Platform, listing.Title),
		Status:               models.TenderStatusNew,
		ApplicationStatus:    models.ApplicationStatusNotApplied,
		ScrapedAt:            now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if listing.DetailURL != "" {
		tender.DirectLink = &listing.DetailURL
	}
	if typology != nil {
		tender.ProjectType = *typology
	}

	return tender
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// BuildDefaultAdapters assembles the full adapter set for a scraping run.
func BuildDefaultAdapters(clientFactory *shared.HTTPClientFactory, rateLimiter *shared.HTTPRequestRateLimiter, metrics *shared.ExtractionMetrics, cfg config.ScraperConfig) []SourceAdapter {
	var adapters []SourceAdapter

	adapters = append(adapters, NewBundAdapter(rateLimiter, cfg))
	adapters = append(adapters, NewTEDAdapter(clientFactory, rateLimiter, metrics, cfg))
	adapters = append(adapters, NewBayernTickerAdapter(cfg))

	for _, portal := range StatePortals {
		if portal.Key == "bayern" {
			// the ticker adapter covers Bayern with a rendered page
			continue
		}
		adapters = append(adapters, NewPortalAdapter(portal, rateLimiter, cfg))
	}
	for _, portal := range NationalPortals {
		adapters = append(adapters, NewPortalAdapter(portal, rateLimiter, cfg))
	}
	for _, portal := range HospitalPortals {
		adapters = append(adapters, NewPortalAdapter(portal, rateLimiter, cfg))
	}
	adapters = append(adapters, NewPortalAdapter(SwissPortal, rateLimiter, cfg))

	return adapters
}

// DescribeAdapters lists adapter names for diagnostics endpoints.
func DescribeAdapters(adapters []SourceAdapter) []string {
	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		names = append(names, fmt.Sprintf("%s (%s)", adapter.Name(), adapter.Platform()))
	}
	return names
}
