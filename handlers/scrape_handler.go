package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/grovellows/tender-backend/services"
)

type ScrapeHandler struct {
	IngestionService *services.IngestionService
	Adapters         []services.SourceAdapter
	MaxPerSource     int
}

func NewScrapeHandler(ingestionService *services.IngestionService, adapters []services.SourceAdapter, maxPerSource int) *ScrapeHandler {
	return &ScrapeHandler{
		IngestionService: ingestionService,
		Adapters:         adapters,
		MaxPerSource:     maxPerSource,
	}
}

// ScrapeAll triggers a full ingestion run across all sources and returns the
// run summary.
func (h *ScrapeHandler) ScrapeAll(c *fiber.Ctx) error {
	result := h.IngestionService.RunIngestion(c.Context(), h.Adapters, h.MaxPerSource)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// ScrapeComprehensive triggers the wide sweep with title-based
// deduplication, collapsing republished tenders across portals.
func (h *ScrapeHandler) ScrapeComprehensive(c *fiber.Ctx) error {
	result := h.IngestionService.RunComprehensiveIngestion(c.Context(), h.Adapters, h.MaxPerSource)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// GetSources lists the configured source adapters.
func (h *ScrapeHandler) GetSources(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    services.DescribeAdapters(h.Adapters),
	})
}
