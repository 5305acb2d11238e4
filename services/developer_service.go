package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/grovellows/tender-backend/config"
	"github.com/grovellows/tender-backend/models"
	"github.com/grovellows/tender-backend/shared"
)

// DeveloperSource is one property developer whose news pages are monitored
// for construction project announcements.
type DeveloperSource struct {
	Name      string
	BaseURL   string
	NewsPaths []string
	Region    string
}

// DeveloperSources are the large German project developers tracked for
// upcoming construction volume.
var DeveloperSources = []DeveloperSource{
	{"Vonovia", "https://www.vonovia.de", []string{"/ueber-uns/presse", "/neubau"}, ""},
	{"Instone Real Estate", "https://www.instone.de", []string{"/projekte", "/presse"}, ""},
	{"BUWOG", "https://www.buwog.de", []string{"/de/projekte", "/de/presse"}, "Berlin"},
	{"Tishman Speyer", "https://tishmanspeyer.de", []string{"/projekte"}, ""},
	{"Edge Technologies", "https://www.edge.tech", []string{"/de/projects"}, ""},
	{"Signa", "https://www.signa.at", []string{"/de/projekte"}, ""},
	{"CA Immo", "https://www.caimmo.com", []string{"/de/projekte", "/de/presse"}, ""},
	{"Aroundtown", "https://www.aroundtown.de", []string{"/presse"}, ""},
	{"HOWOGE", "https://www.howoge.de", []string{"/neubau"}, "Berlin"},
	{"degewo", "https://www.degewo.de", []string{"/neubau"}, "Berlin"},
}

// DeveloperScraper pulls project announcements from developer news and
// project pages.
type DeveloperScraper struct {
	logger      *logrus.Entry
	extractor   *TextExtractor
	rateLimiter *shared.HTTPRequestRateLimiter
	cfg         config.ScraperConfig
}

func NewDeveloperScraper(extractor *TextExtractor, rateLimiter *shared.HTTPRequestRateLimiter, cfg config.ScraperConfig) *DeveloperScraper {
	return &DeveloperScraper{
		logger:      logrus.WithField("component", "DeveloperScraper"),
		extractor:   extractor,
		rateLimiter: rateLimiter,
		cfg:         cfg,
	}
}

// FetchProjects scrapes all developer sources. A failing developer is logged
// and skipped.
func (s *DeveloperScraper) FetchProjects(ctx context.Context) []models.DeveloperProject {
	var projects []models.DeveloperProject
	seen := make(map[string]bool)

	for _, source := range DeveloperSources {
		select {
		case <-ctx.Done():
			return projects
		default:
		}

		found, err := s.fetchDeveloper(ctx, source)
		if err != nil {
			s.logger.WithError(err).WithField("developer", source.Name).Warn("Developer fetch failed, skipping")
			continue
		}

		for _, project := range found {
			key := strings.ToLower(source.Name + "|" + project.ProjectName)
			if seen[key] {
				continue
			}
			seen[key] = true
			projects = append(projects, project)
		}
	}

	s.logger.WithField("project_count", len(projects)).Info("Fetched developer projects")
	return projects
}

func (s *DeveloperScraper) fetchDeveloper(ctx context.Context, source DeveloperSource) ([]models.DeveloperProject, error) {
	var projects []models.DeveloperProject
	var lastErr error

	for i, path := range source.NewsPaths {
		if i > 0 {
			if err := waitForContext(ctx, s.cfg.PortalDelay); err != nil {
				return projects, err
			}
		}
		s.rateLimiter.EnforceRateLimit()

		collector := colly.NewCollector()
		collector.SetRequestTimeout(s.cfg.RequestTimeout)
		collector.OnRequest(func(r *colly.Request) {
			shared.SetCollyBrowserHeaders(r)
		})

		collector.OnHTML("article, div.news-item, div.project-teaser, li.news", func(e *colly.HTMLElement) {
			title := strings.TrimSpace(e.ChildText("h1, h2, h3, a.title"))
			if len(title) <= 15 {
				return
			}

			description := strings.TrimSpace(e.ChildText("p"))
			if project := s.buildProject(source, title, description, e.Request.URL.String()); project != nil {
				projects = append(projects, *project)
			}
		})

		collector.OnError(func(r *colly.Response, err error) {
			lastErr = err
		})

		if err := collector.Visit(source.BaseURL + path); err != nil {
			lastErr = err
			continue
		}
		collector.Wait()
	}

	if len(projects) == 0 && lastErr != nil {
		return nil, shared.WrapError(lastErr, shared.ErrorCategoryNetwork, "DEVELOPER_FETCH_FAILED",
			"failed to fetch developer pages", "DeveloperScraper", source.Name)
	}
	return projects, nil
}

// constructionSignals gate announcements that are actually about building
// projects rather than financial news.
var constructionSignals = []string{
	"neubau", "bauprojekt", "quartier", "wohnungen", "baustart", "richtfest",
	"grundsteinlegung", "fertigstellung", "entwicklung", "projekt",
}

func (s *DeveloperScraper) buildProject(source DeveloperSource, title, description, sourceURL string) *models.DeveloperProject {
	combined := strings.ToLower(title + " " + description)

	relevant := false
	for _, signal := range constructionSignals {
		if strings.Contains(combined, signal) {
			relevant = true
			break
		}
	}
	if !relevant {
		return nil
	}

	timeline := s.extractor.ExtractTimeline(title + " " + description)

	region := source.Region
	if region == "" {
		region = s.extractor.DetectRegion(title + " " + description)
	}

	status := models.ProjectStatusPlanning
	for _, phase := range timeline.Phases {
		if phase.Status == "ongoing" && phase.Phase != "Planung" {
			status = models.ProjectStatusOngoing
			break
		}
	}

	now := time.Now()
	return &models.DeveloperProject{
		ID:                 uuid.New(),
		DeveloperName:      source.Name,
		DeveloperURL:       source.BaseURL,
		ProjectName:        title,
		Description:        description,
		Region:             region,
		Budget:             s.extractor.ExtractDeveloperBudget(title + " " + description),
		Status:             status,
		StartDate:          timeline.StartDate,
		ExpectedCompletion: timeline.CompletionDate,
		TimelinePhases:     timeline.Phases,
		SourceURL:          sourceURL,
		ScrapedAt:          now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// DeveloperProjectService persists and queries developer projects.
type DeveloperProjectService struct {
	db     *sql.DB
	logger *logrus.Entry
}

func NewDeveloperProjectService(db *sql.DB) *DeveloperProjectService {
	return &DeveloperProjectService{
		db:     db,
		logger: logrus.WithField("component", "DeveloperProjectService"),
	}
}

// UpsertProject inserts a project or, when the developer already announced
// it, refreshes the fields that move over time. Returns true when a new row
// was created.
func (s *DeveloperProjectService) UpsertProject(ctx context.Context, project *models.DeveloperProject) (bool, error) {
	phasesJSON, err := json.Marshal(project.TimelinePhases)
	if err != nil {
		return false, shared.WrapError(err, shared.ErrorCategoryProcessing, "PHASES_MARSHAL_FAILED",
			"failed to serialize timeline phases", "DeveloperProjectService", "UpsertProject")
	}

	var inserted bool
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO developer_projects (
			id, developer_name, developer_url, project_name, description,
			location, region, budget, project_type, status,
			start_date, expected_completion, timeline_phases, source_url,
			scraped_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (developer_name, project_name) DO UPDATE SET
			description = EXCLUDED.description,
			budget = COALESCE(EXCLUDED.budget, developer_projects.budget),
			status = EXCLUDED.status,
			start_date = COALESCE(EXCLUDED.start_date, developer_projects.start_date),
			expected_completion = COALESCE(EXCLUDED.expected_completion, developer_projects.expected_completion),
			timeline_phases = EXCLUDED.timeline_phases,
			scraped_at = EXCLUDED.scraped_at,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0)`,
		project.ID, project.DeveloperName, project.DeveloperURL, project.ProjectName,
		project.Description, project.Location, project.Region, project.Budget,
		project.ProjectType, project.Status, project.StartDate, project.ExpectedCompletion,
		phasesJSON, project.SourceURL, project.ScrapedAt, project.CreatedAt, project.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		return false, shared.WrapError(err, shared.ErrorCategoryDatabase, "UPSERT_FAILED",
			"failed to upsert developer project", "DeveloperProjectService", "UpsertProject")
	}
	return inserted, nil
}

// ListProjects returns developer projects, optionally filtered by region and
// status.
func (s *DeveloperProjectService) ListProjects(ctx context.Context, region, status string) ([]models.DeveloperProject, error) {
	query := `
		SELECT id, developer_name, developer_url, project_name, description,
			location, region, budget, project_type, status,
			start_date, expected_completion, timeline_phases, source_url,
			scraped_at, created_at, updated_at
		FROM developer_projects WHERE 1=1`
	var args []interface{}

	if region != "" {
		args = append(args, region)
		query += " AND region = $1"
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 1 {
			query += " AND status = $1"
		} else {
			query += " AND status = $2"
		}
	}
	query += " ORDER BY updated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "QUERY_FAILED",
			"failed to list developer projects", "DeveloperProjectService", "ListProjects")
	}
	defer rows.Close()

	var projects []models.DeveloperProject
	for rows.Next() {
		var p models.DeveloperProject
		var phasesJSON []byte
		err := rows.Scan(
			&p.ID, &p.DeveloperName, &p.DeveloperURL, &p.ProjectName, &p.Description,
			&p.Location, &p.Region, &p.Budget, &p.ProjectType, &p.Status,
			&p.StartDate, &p.ExpectedCompletion, &phasesJSON, &p.SourceURL,
			&p.ScrapedAt, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "SCAN_FAILED",
				"failed to scan developer project row", "DeveloperProjectService", "ListProjects")
		}
		if len(phasesJSON) > 0 {
			if err := json.Unmarshal(phasesJSON, &p.TimelinePhases); err != nil {
				s.logger.WithError(err).Warn("Failed to decode timeline phases, leaving empty")
			}
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// RefreshProjects runs the scraper and upserts everything it found.
func (s *DeveloperProjectService) RefreshProjects(ctx context.Context, scraper *DeveloperScraper) (created, updated int, err error) {
	projects := scraper.FetchProjects(ctx)

	for i := range projects {
		wasInserted, upsertErr := s.UpsertProject(ctx, &projects[i])
		if upsertErr != nil {
			s.logger.WithError(upsertErr).WithField("project", projects[i].ProjectName).Error("Failed to upsert developer project")
			continue
		}
		if wasInserted {
			created++
		} else {
			updated++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"created": created,
		"updated": updated,
	}).Info("Developer project refresh finished")
	return created, updated, nil
}
