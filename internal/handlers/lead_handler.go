package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
	"github.com/minjae-dev/WellCareBack/internal/services"
)

type leadApplicationService interface {
	Create(ctx context.Context, input repository.CreateLeadInput) (*models.Lead, error)
	List(ctx context.Context, filter repository.LeadListFilter) ([]models.Lead, int, error)
	UpdateStatus(ctx context.Context, leadID int64, status string) (*models.Lead, error)
	Convert(ctx context.Context, leadID int64, customerID *int64) (*models.Lead, error)
}

type LeadHandler struct {
	service leadApplicationService
}

func NewLeadHandler(service *services.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

type createLeadRequest struct {
	Name    string  `json:"name"`
	Phone   *string `json:"phone"`
	Channel string  `json:"channel"`
	Memo    *string `json:"memo"`
}

type updateLeadStatusRequest struct {
	Status string `json:"status"`
}

type convertLeadRequest struct {
	CustomerID *int64 `json:"customer_id"`
}

func (h *LeadHandler) Create(c *fiber.Ctx) error {
	var req createLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	lead, err := h.service.Create(c.Context(), repository.CreateLeadInput{
		Name:    strings.TrimSpace(req.Name),
		Phone:   req.Phone,
		Channel: strings.TrimSpace(req.Channel),
		Memo:    req.Memo,
	})
	if err != nil {
		return mapLeadError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"lead": lead})
}

func (h *LeadHandler) List(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	leads, total, err := h.service.List(c.Context(), repository.LeadListFilter{
		Status:  strings.TrimSpace(c.Query("status")),
		Channel: strings.TrimSpace(c.Query("channel")),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return mapLeadError(c, err)
	}
	return c.JSON(fiber.Map{
		"leads":      leads,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *LeadHandler) UpdateStatus(c *fiber.Ctx) error {
	leadID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || leadID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lead id"})
	}

	var req updateLeadStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	lead, err := h.service.UpdateStatus(c.Context(), leadID, strings.TrimSpace(req.Status))
	if err != nil {
		return mapLeadError(c, err)
	}
	return c.JSON(fiber.Map{"lead": lead})
}

func (h *LeadHandler) Convert(c *fiber.Ctx) error {
	leadID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || leadID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lead id"})
	}

	var req convertLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	lead, err := h.service.Convert(c.Context(), leadID, req.CustomerID)
	if err != nil {
		return mapLeadError(c, err)
	}
	return c.JSON(fiber.Map{"lead": lead})
}

func mapLeadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process lead request"})
	}
}
