package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/grovellows/tender-backend/database"
	"github.com/grovellows/tender-backend/services"
	"github.com/grovellows/tender-backend/shared"
)

type AdminHandler struct {
	TenderService     *services.TenderService
	IngestionService  *services.IngestionService
	ExtractionMetrics *shared.ExtractionMetrics
	RateLimiter       *shared.HTTPRequestRateLimiter
	AdminToken        string
}

func NewAdminHandler(tenderService *services.TenderService, ingestionService *services.IngestionService, extractionMetrics *shared.ExtractionMetrics, rateLimiter *shared.HTTPRequestRateLimiter, adminToken string) *AdminHandler {
	return &AdminHandler{
		TenderService:     tenderService,
		IngestionService:  ingestionService,
		ExtractionMetrics: extractionMetrics,
		RateLimiter:       rateLimiter,
		AdminToken:        adminToken,
	}
}

// RequireToken guards admin routes with a static bearer token. When no token
// is configured the routes stay open, which matches local development use.
func (h *AdminHandler) RequireToken(c *fiber.Ctx) error {
	if h.AdminToken == "" {
		return c.Next()
	}
	if c.Get("Authorization") != "Bearer "+h.AdminToken {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "unauthorized",
		})
	}
	return c.Next()
}

// GetStats returns tender counts and database pool statistics.
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	counts, err := h.TenderService.CountTenders(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"tenders":  counts,
			"database": database.GetConnectionStats(),
		},
	})
}

// GetMetrics exposes ingestion and extraction metrics.
func (h *AdminHandler) GetMetrics(c *fiber.Ctx) error {
	snapshot := h.IngestionService.Metrics().GetSnapshot()

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"ingestion": fiber.Map{
				"total_requests":      snapshot.TotalRequests,
				"successful_requests": snapshot.SuccessfulRequests,
				"failed_requests":     snapshot.FailedRequests,
				"success_rate":        h.IngestionService.Metrics().GetSuccessRate(),
			},
			"extraction": fiber.Map{
				"deadline_success_rate": h.ExtractionMetrics.GetDeadlineSuccessRate(),
				"budget_success_rate":   h.ExtractionMetrics.GetBudgetSuccessRate(),
			},
			"rate_limiter": fiber.Map{
				"request_count": h.RateLimiter.GetRequestCount(),
			},
		},
	})
}

// ResetMetrics zeroes the ingestion counters and the rate limiter so a fresh
// measurement window can start without a restart.
func (h *AdminHandler) ResetMetrics(c *fiber.Ctx) error {
	h.IngestionService.Metrics().Reset()
	h.RateLimiter.Reset()

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Metrics reset",
	})
}

// GetHealth reports database health for load balancer checks.
func (h *AdminHandler) GetHealth(c *fiber.Ctx) error {
	if err := database.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"status":  "healthy",
	})
}
