package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
	"github.com/minjae-dev/WellCareBack/internal/services"
)

type usageApplicationService interface {
	Record(ctx context.Context, input services.RecordUsageInput) (*models.ServiceUsageEvent, error)
	Consume(ctx context.Context, customerID, purchaseID int64, serviceType, staffName string) (*models.ServiceUsageEvent, error)
	ManualAdjust(ctx context.Context, customerID, purchaseID int64, adjustments map[string]services.AllocationAdjustment, memo, staffName string) ([]models.CreditAllocation, error)
	ListEvents(ctx context.Context, filter repository.UsageListFilter) ([]models.ServiceUsageEvent, error)
	UpdateEventDetails(ctx context.Context, eventID int64, details *string, sessionNumber *int) (*models.ServiceUsageEvent, error)
}

type UsageHandler struct {
	service usageApplicationService
}

func NewUsageHandler(service *services.UsageService) *UsageHandler {
	return &UsageHandler{service: service}
}

type recordUsageRequest struct {
	CustomerID    int64   `json:"customer_id"`
	ServiceDate   *string `json:"service_date"`
	ServiceType   string  `json:"service_type"`
	PurchaseID    *int64  `json:"purchase_id"`
	SessionNumber *int    `json:"session_number"`
	Details       *string `json:"details"`
	StaffName     string  `json:"staff_name"`
}

type adjustServicesRequest struct {
	Services map[string]struct {
		Used  int `json:"used"`
		Total int `json:"total"`
	} `json:"services"`
	Memo string `json:"memo"`
}

type updateEventRequest struct {
	Details       *string `json:"details"`
	SessionNumber *int    `json:"session_number"`
}

// staffName prefers an explicit attribution from the request and falls back
// to the authenticated user id.
func staffName(c *fiber.Ctx, explicit string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}
	if id, ok := c.Locals("user_id").(string); ok {
		return "user:" + id
	}
	return ""
}

// Consume draws one session from a purchase: POST
// /customers/:id/packages/:purchaseId/use?service_type=Brain
func (h *UsageHandler) Consume(c *fiber.Ctx) error {
	customerID, purchaseID, ok := parsePurchasePath(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}
	serviceType := strings.TrimSpace(c.Query("service_type"))
	if serviceType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "service_type is required"})
	}

	event, err := h.service.Consume(c.Context(), customerID, purchaseID, serviceType, staffName(c, c.Query("staff_name")))
	if err != nil {
		return mapUsageError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"usage": event})
}

func (h *UsageHandler) Record(c *fiber.Ctx) error {
	var req recordUsageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var serviceDate time.Time
	if req.ServiceDate != nil && *req.ServiceDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.ServiceDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "service_date must be an ISO date"})
		}
		serviceDate = parsed
	}

	event, err := h.service.Record(c.Context(), services.RecordUsageInput{
		CustomerID:    req.CustomerID,
		ServiceDate:   serviceDate,
		ServiceType:   req.ServiceType,
		PurchaseID:    req.PurchaseID,
		SessionNumber: req.SessionNumber,
		Details:       req.Details,
		StaffName:     staffName(c, req.StaffName),
	})
	if err != nil {
		return mapUsageError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"usage": event})
}

// AdjustServices is the staff override: PUT
// /customers/:id/packages/:purchaseId/services with per-type used/total and
// a mandatory memo.
func (h *UsageHandler) AdjustServices(c *fiber.Ctx) error {
	customerID, purchaseID, ok := parsePurchasePath(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}

	var req adjustServicesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	adjustments := make(map[string]services.AllocationAdjustment, len(req.Services))
	for name, adj := range req.Services {
		adjustments[name] = services.AllocationAdjustment{Used: adj.Used, Total: adj.Total}
	}

	allocations, err := h.service.ManualAdjust(c.Context(), customerID, purchaseID, adjustments, req.Memo, staffName(c, c.Query("staff_name")))
	if err != nil {
		return mapUsageError(c, err)
	}
	return c.JSON(fiber.Map{"allocations": allocations})
}

func (h *UsageHandler) List(c *fiber.Ctx) error {
	filter := repository.UsageListFilter{}

	if raw := strings.TrimSpace(c.Query("customer_id")); raw != "" {
		customerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || customerID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer_id"})
		}
		filter.CustomerID = &customerID
	}
	if raw := strings.TrimSpace(c.Query("purchase_id")); raw != "" {
		purchaseID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || purchaseID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid purchase_id"})
		}
		filter.PurchaseID = &purchaseID
	}
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be an ISO date"})
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be an ISO date"})
		}
		filter.To = &to
	}

	events, err := h.service.ListEvents(c.Context(), filter)
	if err != nil {
		return mapUsageError(c, err)
	}
	return c.JSON(fiber.Map{"usage": events})
}

func (h *UsageHandler) UpdateEvent(c *fiber.Ctx) error {
	eventID, err := strconv.ParseInt(c.Params("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event id"})
	}

	var req updateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	event, err := h.service.UpdateEventDetails(c.Context(), eventID, req.Details, req.SessionNumber)
	if err != nil {
		return mapUsageError(c, err)
	}
	return c.JSON(fiber.Map{"usage": event})
}

func mapUsageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrMemoRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, services.ErrAllocationExhausted), errors.Is(err, services.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPurchaseExpired), errors.Is(err, services.ErrPurchaseInactive):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process usage request"})
	}
}
