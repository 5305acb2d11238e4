package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/grovellows/tender-backend/models"
	"github.com/grovellows/tender-backend/services"
)

type TenderHandler struct {
	Service *services.TenderService
}

func NewTenderHandler(service *services.TenderService) *TenderHandler {
	return &TenderHandler{Service: service}
}

func (h *TenderHandler) GetTenders(c *fiber.Ctx) error {
	filter := services.TenderFilter{
		Category:          c.Query("category"),
		Region:            c.Query("region"),
		Status:            c.Query("status"),
		ApplicationStatus: c.Query("application_status"),
		Platform:          c.Query("platform"),
		Search:            c.Query("search"),
		Limit:             c.QueryInt("limit", 100),
		Offset:            c.QueryInt("offset", 0),
	}

	if c.QueryBool("active", false) {
		now := time.Now()
		filter.DeadlineAfter = &now
	}

	tenders, err := h.Service.ListTenders(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(tenders),
		"data":    tenders,
	})
}

func (h *TenderHandler) GetTenderByID(c *fiber.Ctx) error {
	id := c.Params("id")
	tender, err := h.Service.GetTenderByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTenderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Tender not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    tender,
	})
}

type applicationRequest struct {
	UserID string `json:"user_id"`
}

func (h *TenderHandler) ApplyToTender(c *fiber.Ctx) error {
	var request applicationRequest
	if err := c.BodyParser(&request); err != nil || request.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "user_id is required",
		})
	}

	tender, err := h.Service.ApplyToTender(c.Context(), c.Params("id"), request.UserID)
	if err != nil {
		if errors.Is(err, services.ErrTenderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Tender not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    tender,
	})
}

func (h *TenderHandler) WithdrawFromTender(c *fiber.Ctx) error {
	var request applicationRequest
	if err := c.BodyParser(&request); err != nil || request.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "user_id is required",
		})
	}

	tender, err := h.Service.WithdrawFromTender(c.Context(), c.Params("id"), request.UserID)
	if err != nil {
		if errors.Is(err, services.ErrTenderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Tender not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    tender,
	})
}

type statusUpdateRequest struct {
	ApplicationStatus string `json:"application_status"`
	Status            string `json:"status"`
}

func (h *TenderHandler) UpdateStatus(c *fiber.Ctx) error {
	var request statusUpdateRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if request.ApplicationStatus == "" && request.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "application_status or status is required",
		})
	}

	id := c.Params("id")
	var tender *models.Tender
	var err error

	if request.ApplicationStatus != "" {
		if !models.IsValidApplicationStatus(request.ApplicationStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "invalid application_status value",
			})
		}
		tender, err = h.Service.UpdateApplicationStatus(c.Context(), id, request.ApplicationStatus)
	} else {
		if !models.IsValidTenderStatus(request.Status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "invalid status value",
			})
		}
		tender, err = h.Service.UpdateTenderStatus(c.Context(), id, request.Status)
	}

	if err != nil {
		if errors.Is(err, services.ErrTenderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Tender not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    tender,
	})
}
