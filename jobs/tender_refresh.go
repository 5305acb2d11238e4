package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovellows/tender-backend/services"
)

// TenderRefreshJob runs the ingestion pipeline across all procurement
// sources on a schedule.
type TenderRefreshJob struct {
	IngestionService *services.IngestionService
	Adapters         []services.SourceAdapter
	MaxPerSource     int
}

func NewTenderRefreshJob(ingestionService *services.IngestionService, adapters []services.SourceAdapter, maxPerSource int) *TenderRefreshJob {
	return &TenderRefreshJob{
		IngestionService: ingestionService,
		Adapters:         adapters,
		MaxPerSource:     maxPerSource,
	}
}

func (j *TenderRefreshJob) Run() {
	logrus.Info("Starting scheduled tender refresh job")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	result := j.IngestionService.RunIngestion(ctx, j.Adapters, j.MaxPerSource)

	logrus.Infof("Tender refresh finished: %d inserted, %d duplicates, %d sources failed (%s)",
		result.Inserted, result.Duplicates, result.SourcesFailed, result.Duration)
}
