package services

import (
	"testing"

	"github.com/grovellows/tender-backend/config"
	"github.com/grovellows/tender-backend/models"
	"github.com/grovellows/tender-backend/shared"
)

func newTestDeveloperScraper() *DeveloperScraper {
	return NewDeveloperScraper(
		NewTextExtractor(nil),
		shared.NewHTTPRequestRateLimiter(0),
		*config.DefaultScraperConfig(),
	)
}

func TestBuildProjectExtractsBudgetAndTimeline(t *testing.T) {
	scraper := newTestDeveloperScraper()
	source := DeveloperSource{Name: "Vonovia", BaseURL: "https://www.vonovia.de"}

	project := scraper.buildProject(source,
		"Neubau Quartier Spreeufer mit 800 Wohnungen",
		"Baustart 2026, Fertigstellung 2028. Das Investitionsvolumen beträgt 250 Mio. Euro in Berlin.",
		"https://www.vonovia.de/presse/123")

	if project == nil {
		t.Fatal("Expected a project for a construction announcement")
	}
	if project.Budget == nil || *project.Budget != "€250 Mio." {
		t.Errorf("Expected €250 Mio. budget, got %v", project.Budget)
	}
	if project.StartDate == nil || project.StartDate.Year() != 2026 {
		t.Errorf("Expected start year 2026, got %v", project.StartDate)
	}
	if project.ExpectedCompletion == nil || project.ExpectedCompletion.Year() != 2028 {
		t.Errorf("Expected completion year 2028, got %v", project.ExpectedCompletion)
	}
	if project.Region != "Berlin" {
		t.Errorf("Expected Berlin region, got %q", project.Region)
	}
	if len(project.TimelinePhases) == 0 {
		t.Error("Expected timeline phases")
	}
	if project.ScrapedAt.IsZero() {
		t.Error("Expected scraped_at to be stamped")
	}
}

func TestBuildProjectSkipsNonConstructionNews(t *testing.T) {
	scraper := newTestDeveloperScraper()
	source := DeveloperSource{Name: "Vonovia", BaseURL: "https://www.vonovia.de"}

	project := scraper.buildProject(source,
		"Dividende für das Geschäftsjahr beschlossen",
		"Die Hauptversammlung hat der Ausschüttung zugestimmt.",
		"https://www.vonovia.de/presse/456")

	if project != nil {
		t.Errorf("Expected nil for financial news, got %+v", project)
	}
}

func TestBuildProjectStatusFollowsPhases(t *testing.T) {
	scraper := newTestDeveloperScraper()
	source := DeveloperSource{Name: "HOWOGE", BaseURL: "https://www.howoge.de", Region: "Berlin"}

	planning := scraper.buildProject(source,
		"Neubau Wohnquartier Lichtenberg geplant",
		"Die Planung für das Quartier läuft.",
		"https://www.howoge.de/neubau/1")

	if planning == nil {
		t.Fatal("Expected a project")
	}
	if planning.Status != models.ProjectStatusPlanning {
		t.Errorf("Expected planning status, got %s", planning.Status)
	}
}
