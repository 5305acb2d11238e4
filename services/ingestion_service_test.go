package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/grovellows/tender-backend/config"
	"github.com/grovellows/tender-backend/models"
)

type stubAdapter struct {
	name     string
	platform string
	listings []RawListing
	err      error
}

func (a *stubAdapter) Name() string     { return a.name }
func (a *stubAdapter) Platform() string { return a.platform }
func (a *stubAdapter) Fetch(ctx context.Context) ([]RawListing, error) {
	return a.listings, a.err
}

type memoryStore struct {
	mutex   sync.Mutex
	tenders map[string]*models.Tender
	failAll bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tenders: make(map[string]*models.Tender)}
}

func (s *memoryStore) InsertTender(ctx context.Context, tender *models.Tender) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.failAll {
		return errors.New("connection lost")
	}
	if _, exists := s.tenders[tender.SourceID]; exists {
		return ErrDuplicateTender
	}
	s.tenders[tender.SourceID] = tender
	return nil
}

func newTestIngestionService(store TenderStore) *IngestionService {
	cfg := *config.DefaultScraperConfig()
	cfg.MaxConcurrency = 2
	return NewIngestionService(store, NewTextExtractor(nil), NewTenderClassifier(), cfg)
}

func relevantListing(title, platform string) RawListing {
	return RawListing{
		Title:       title,
		Description: "Projektsteuerung für den Neubau, Frist: 15.03.2026",
		Platform:    platform,
		PlatformURL: "https://example.invalid",
		Country:     "Germany",
	}
}

func TestRunIngestionDeduplicatesAcrossSources(t *testing.T) {
	store := newMemoryStore()
	service := newTestIngestionService(store)

	sharedListing := relevantListing("Projektsteuerung Neubau Schulcampus Nord", "Bund.de")
	adapters := []SourceAdapter{
		&stubAdapter{name: "a", platform: "Bund.de", listings: []RawListing{
			sharedListing,
			relevantListing("Bauüberwachung Sanierung Rathaus Mitte", "Bund.de"),
			relevantListing("Generalplanung Feuerwache Süd Erweiterung", "Bund.de"),
		}},
		&stubAdapter{name: "b", platform: "Bund.de", listings: []RawListing{
			sharedListing,
			relevantListing("Projektcontrolling Klinikneubau Westflügel", "Bund.de"),
		}},
	}

	result := service.RunIngestion(context.Background(), adapters, 0)

	if result.Inserted != 4 {
		t.Errorf("Expected 4 inserted, got %d", result.Inserted)
	}
	if result.Duplicates != 1 {
		t.Errorf("Expected 1 duplicate, got %d", result.Duplicates)
	}
	if result.ListingsFetched != 5 {
		t.Errorf("Expected 5 fetched, got %d", result.ListingsFetched)
	}
	if len(store.tenders) != 4 {
		t.Errorf("Expected 4 stored tenders, got %d", len(store.tenders))
	}
}

func TestRunIngestionToleratesFailingSource(t *testing.T) {
	store := newMemoryStore()
	service := newTestIngestionService(store)

	adapters := []SourceAdapter{
		&stubAdapter{name: "broken", platform: "e-Vergabe NRW", err: errors.New("connection refused")},
		&stubAdapter{name: "healthy", platform: "Bund.de", listings: []RawListing{
			relevantListing("Projektsteuerung Neubau Laborgebäude", "Bund.de"),
		}},
	}

	result := service.RunIngestion(context.Background(), adapters, 0)

	if result.SourcesFailed != 1 {
		t.Errorf("Expected 1 failed source, got %d", result.SourcesFailed)
	}
	if len(result.FailedSources) != 1 || result.FailedSources[0] != "broken" {
		t.Errorf("Expected broken source recorded, got %v", result.FailedSources)
	}
	if result.Inserted != 1 {
		t.Errorf("Expected 1 inserted despite source failure, got %d", result.Inserted)
	}
}

func TestRunIngestionFiltersIrrelevantListings(t *testing.T) {
	store := newMemoryStore()
	service := newTestIngestionService(store)

	adapters := []SourceAdapter{
		&stubAdapter{name: "a", platform: "Bund.de", listings: []RawListing{
			{Title: "Lieferung von Streusalz für den Winterdienst", Platform: "Bund.de"},
			relevantListing("Projektsteuerung Neubau Sporthalle", "Bund.de"),
		}},
	}

	result := service.RunIngestion(context.Background(), adapters, 0)

	if result.Irrelevant != 1 {
		t.Errorf("Expected 1 irrelevant listing, got %d", result.Irrelevant)
	}
	if result.Inserted != 1 {
		t.Errorf("Expected 1 inserted, got %d", result.Inserted)
	}
}

func TestRunIngestionRespectsPerSourceCap(t *testing.T) {
	store := newMemoryStore()
	service := newTestIngestionService(store)

	adapters := []SourceAdapter{
		&stubAdapter{name: "a", platform: "Bund.de", listings: []RawListing{
			relevantListing("Projektsteuerung Objekt Eins Neubau", "Bund.de"),
			relevantListing("Projektsteuerung Objekt Zwei Neubau", "Bund.de"),
			relevantListing("Projektsteuerung Objekt Drei Neubau", "Bund.de"),
		}},
	}

	result := service.RunIngestion(context.Background(), adapters, 2)

	if result.ListingsFetched != 2 {
		t.Errorf("Expected fetch capped at 2, got %d", result.ListingsFetched)
	}
	if result.Inserted != 2 {
		t.Errorf("Expected 2 inserted, got %d", result.Inserted)
	}
}

func TestRunIngestionCountsInsertErrors(t *testing.T) {
	store := newMemoryStore()
	store.failAll = true
	service := newTestIngestionService(store)

	adapters := []SourceAdapter{
		&stubAdapter{name: "a", platform: "Bund.de", listings: []RawListing{
			relevantListing("Projektsteuerung Neubau Depot", "Bund.de"),
		}},
	}

	result := service.RunIngestion(context.Background(), adapters, 0)

	if result.InsertErrors != 1 {
		t.Errorf("Expected 1 insert error, got %d", result.InsertErrors)
	}
	if result.Inserted != 0 {
		t.Errorf("Expected 0 inserted, got %d", result.Inserted)
	}
}

func TestComprehensiveIngestionDeduplicatesByTitleOnly(t *testing.T) {
	store := newMemoryStore()
	service := newTestIngestionService(store)

	// Same title republished with different deadlines on two platforms
	first := relevantListing("Projektsteuerung Neubau Schulcampus Nord", "Bund.de")
	second := relevantListing("Projektsteuerung Neubau Schulcampus Nord", "DTVP")
	second.Description = "Projektsteuerung für den Neubau, Frist: 30.04.2026"

	adapters := []SourceAdapter{
		&stubAdapter{name: "a", platform: "Bund.de", listings: []RawListing{first}},
		&stubAdapter{name: "b", platform: "DTVP", listings: []RawListing{second}},
	}

	result := service.RunComprehensiveIngestion(context.Background(), adapters, 0)

	if result.Inserted != 1 {
		t.Errorf("Expected 1 inserted with title dedup, got %d", result.Inserted)
	}
	if result.Duplicates != 1 {
		t.Errorf("Expected 1 duplicate with title dedup, got %d", result.Duplicates)
	}
}

func TestRunIngestionDefaultDedupKeepsDistinctDeadlines(t *testing.T) {
	store := newMemoryStore()
	service := newTestIngestionService(store)

	first := relevantListing("Projektsteuerung Neubau Schulcampus Nord", "Bund.de")
	second := relevantListing("Projektsteuerung Neubau Schulcampus Nord", "Bund.de")
	second.Description = "Projektsteuerung für den Neubau, Frist: 30.04.2026"

	adapters := []SourceAdapter{
		&stubAdapter{name: "a", platform: "Bund.de", listings: []RawListing{first, second}},
	}

	result := service.RunIngestion(context.Background(), adapters, 0)

	// Different deadlines produce different source IDs in the default run
	if result.Inserted != 2 {
		t.Errorf("Expected 2 inserted for distinct deadlines, got %d", result.Inserted)
	}
}

func TestNormalizePopulatesClassificationAndURL(t *testing.T) {
	service := newTestIngestionService(newMemoryStore())

	listing := RawListing{
		Title:       "Bauüberwachung Klinikneubau Charlottenburg",
		Description: "Bauüberwachung für den Klinikneubau, Auftragswert: 2.500.000 EUR, Frist: 15.03.2026",
		Platform:    "Bund.de",
		PlatformURL: "https://www.service.bund.de",
	}

	tender := service.normalize(listing)

	if tender.Category != "Bauüberwachung" {
		t.Errorf("Expected Bauüberwachung category, got %s", tender.Category)
	}
	if tender.BuildingTypology == nil || *tender.BuildingTypology != "Healthcare" {
		t.Errorf("Expected Healthcare typology, got %v", tender.BuildingTypology)
	}
	if tender.Budget == nil || *tender.Budget != "2.500.000 EUR" {
		t.Errorf("Expected verbatim budget text, got %v", tender.Budget)
	}
	if tender.Deadline.Year() != 2026 || tender.Deadline.Month() != time.March {
		t.Errorf("Unexpected deadline %v", tender.Deadline)
	}
	if tender.ApplicationURL == "" {
		t.Error("Expected application URL to be set")
	}
	if tender.Status != models.TenderStatusNew {
		t.Errorf("Expected status New, got %s", tender.Status)
	}
	if tender.SourceID == "" || len(tender.SourceID) != 16 {
		t.Errorf("Expected 16 character source ID, got %q", tender.SourceID)
	}
}

func TestNormalizeUsesStructuredBudgetValue(t *testing.T) {
	service := newTestIngestionService(newMemoryStore())

	listing := RawListing{
		Title:       "Projektsteuerung Verwaltungsneubau Potsdam",
		Description: "Projektsteuerung für den Verwaltungsneubau",
		BudgetValue: "2500000",
		Platform:    "TED",
		PlatformURL: "https://ted.europa.eu",
	}

	tender := service.normalize(listing)

	if tender.Budget == nil || *tender.Budget != "€2.5M" {
		t.Errorf("Expected normalized budget from structured value, got %v", tender.Budget)
	}
}

func TestNormalizeFallsBackToGeneratedDescription(t *testing.T) {
	service := newTestIngestionService(newMemoryStore())

	listing := RawListing{
		Title:       "Objektplanung Feuerwache Dortmund",
		Description: "   ",
		Platform:    "Bund.de",
		PlatformURL: "https://www.service.bund.de",
	}

	tender := service.normalize(listing)

	if tender.Description != "Ausschreibung: Objektplanung Feuerwache Dortmund" {
		t.Errorf("Expected generated description, got %q", tender.Description)
	}
}
