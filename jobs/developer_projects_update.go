package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovellows/tender-backend/services"
)

// DeveloperProjectsUpdateJob refreshes the tracked developer project
// pipeline from the developers' news pages.
type DeveloperProjectsUpdateJob struct {
	ProjectService *services.DeveloperProjectService
	Scraper        *services.DeveloperScraper
}

func NewDeveloperProjectsUpdateJob(projectService *services.DeveloperProjectService, scraper *services.DeveloperScraper) *DeveloperProjectsUpdateJob {
	return &DeveloperProjectsUpdateJob{
		ProjectService: projectService,
		Scraper:        scraper,
	}
}

func (j *DeveloperProjectsUpdateJob) Run() {
	logrus.Info("Starting developer projects update job")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	created, updated, err := j.ProjectService.RefreshProjects(ctx, j.Scraper)
	if err != nil {
		logrus.Errorf("Developer projects update failed: %v", err)
		return
	}

	logrus.Infof("Developer projects update finished: %d created, %d updated", created, updated)
}
