package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/grovellows/tender-backend/services"
)

type ProjectHandler struct {
	Service *services.DeveloperProjectService
	Scraper *services.DeveloperScraper
}

func NewProjectHandler(service *services.DeveloperProjectService, scraper *services.DeveloperScraper) *ProjectHandler {
	return &ProjectHandler{Service: service, Scraper: scraper}
}

func (h *ProjectHandler) GetProjects(c *fiber.Ctx) error {
	projects, err := h.Service.ListProjects(c.Context(), c.Query("region"), c.Query("status"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(projects),
		"data":    projects,
	})
}

func (h *ProjectHandler) RefreshProjects(c *fiber.Ctx) error {
	created, updated, err := h.Service.RefreshProjects(c.Context(), h.Scraper)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"created": created,
			"updated": updated,
		},
	})
}
