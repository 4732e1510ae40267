package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/services"
)

type purchaseApplicationService interface {
	Create(ctx context.Context, input services.CreatePurchaseInput) (*models.PurchaseDetail, error)
	GetDetail(ctx context.Context, customerID, purchaseID int64) (*models.PurchaseDetail, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.PurchaseDetail, error)
	Suspend(ctx context.Context, customerID, purchaseID int64) (*models.PackagePurchase, error)
	Reactivate(ctx context.Context, customerID, purchaseID int64) (*models.PackagePurchase, error)
	Complete(ctx context.Context, customerID, purchaseID int64) (*models.PackagePurchase, error)
}

type PurchaseHandler struct {
	service purchaseApplicationService
}

func NewPurchaseHandler(service *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

type createPurchaseRequest struct {
	CustomerID    int64   `json:"customer_id"`
	PackageID     int64   `json:"package_id"`
	PaymentAmount int64   `json:"payment_amount"`
	PaymentMethod string  `json:"payment_method"`
	StaffMemo     *string `json:"staff_memo"`
	PurchaseDate  *string `json:"purchase_date"`
	ExpiryDate    *string `json:"expiry_date"`
}

type updatePurchaseStatusRequest struct {
	Action string `json:"action"`
}

func parseOptionalDate(value *string) (*time.Time, bool) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*value))
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var req createPurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	purchaseDate, ok := parseOptionalDate(req.PurchaseDate)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "purchase_date must be an ISO date"})
	}
	expiryDate, ok := parseOptionalDate(req.ExpiryDate)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "expiry_date must be an ISO date"})
	}

	detail, err := h.service.Create(c.Context(), services.CreatePurchaseInput{
		CustomerID:    req.CustomerID,
		PackageID:     req.PackageID,
		PaymentAmount: req.PaymentAmount,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		StaffMemo:     req.StaffMemo,
		PurchaseDate:  purchaseDate,
		ExpiryDate:    expiryDate,
	})
	if err != nil {
		return mapPurchaseError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"purchase": detail})
}

func (h *PurchaseHandler) ListByCustomer(c *fiber.Ctx) error {
	customerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || customerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer id"})
	}

	details, err := h.service.ListByCustomer(c.Context(), customerID)
	if err != nil {
		return mapPurchaseError(c, err)
	}
	return c.JSON(fiber.Map{"purchases": details})
}

func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	customerID, purchaseID, ok := parsePurchasePath(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}

	detail, err := h.service.GetDetail(c.Context(), customerID, purchaseID)
	if err != nil {
		return mapPurchaseError(c, err)
	}
	return c.JSON(fiber.Map{"purchase": detail})
}

// UpdateStatus handles the manual transitions: suspend, reactivate,
// complete. Expiry is never requested, it is a date fact.
func (h *PurchaseHandler) UpdateStatus(c *fiber.Ctx) error {
	customerID, purchaseID, ok := parsePurchasePath(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid id"})
	}

	var req updatePurchaseStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var purchase *models.PackagePurchase
	var err error
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "suspend":
		purchase, err = h.service.Suspend(c.Context(), customerID, purchaseID)
	case "reactivate":
		purchase, err = h.service.Reactivate(c.Context(), customerID, purchaseID)
	case "complete":
		purchase, err = h.service.Complete(c.Context(), customerID, purchaseID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action must be suspend, reactivate or complete"})
	}
	if err != nil {
		return mapPurchaseError(c, err)
	}
	return c.JSON(fiber.Map{"purchase": purchase})
}

func parsePurchasePath(c *fiber.Ctx) (customerID, purchaseID int64, ok bool) {
	customerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || customerID <= 0 {
		return 0, 0, false
	}
	purchaseID, err = strconv.ParseInt(c.Params("purchaseId"), 10, 64)
	if err != nil || purchaseID <= 0 {
		return 0, 0, false
	}
	return customerID, purchaseID, true
}

func mapPurchaseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process purchase request"})
	}
}
