package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/services"
)

type catalogApplicationService interface {
	CreateServiceType(ctx context.Context, input services.CreateServiceTypeInput) (*models.ServiceType, error)
	ListServiceTypes(ctx context.Context, activeOnly bool) ([]models.ServiceType, error)
	UpdateServiceType(ctx context.Context, id int64, input services.CreateServiceTypeInput, active bool) (*models.ServiceType, error)
	CreatePackage(ctx context.Context, input services.CreatePackageInput) (*models.Package, error)
	GetPackage(ctx context.Context, id int64) (*models.Package, error)
	ListPackages(ctx context.Context) ([]models.Package, error)
}

type CatalogHandler struct {
	service catalogApplicationService
}

func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type serviceTypeRequest struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	DefaultPrice    int64  `json:"default_price"`
	Active          *bool  `json:"active"`
}

type packageRequest struct {
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	ValidDays     int    `json:"valid_days"`
	TotalSessions int    `json:"total_sessions"`
	Services      []struct {
		ServiceTypeID int64 `json:"service_type_id"`
		TotalSessions *int  `json:"total_sessions"`
	} `json:"services"`
}

func (h *CatalogHandler) CreateServiceType(c *fiber.Ctx) error {
	var req serviceTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	st, err := h.service.CreateServiceType(c.Context(), services.CreateServiceTypeInput{
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		DefaultPrice:    req.DefaultPrice,
	})
	if err != nil {
		return mapCatalogError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"service_type": st})
}

func (h *CatalogHandler) ListServiceTypes(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"
	types, err := h.service.ListServiceTypes(c.Context(), activeOnly)
	if err != nil {
		return mapCatalogError(c, err)
	}
	return c.JSON(fiber.Map{"service_types": types})
}

func (h *CatalogHandler) UpdateServiceType(c *fiber.Ctx) error {
	typeID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || typeID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid service type id"})
	}

	var req serviceTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	st, err := h.service.UpdateServiceType(c.Context(), typeID, services.CreateServiceTypeInput{
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		DefaultPrice:    req.DefaultPrice,
	}, active)
	if err != nil {
		return mapCatalogError(c, err)
	}
	return c.JSON(fiber.Map{"service_type": st})
}

func (h *CatalogHandler) CreatePackage(c *fiber.Ctx) error {
	var req packageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := services.CreatePackageInput{
		Name:          req.Name,
		Price:         req.Price,
		ValidDays:     req.ValidDays,
		TotalSessions: req.TotalSessions,
	}
	for _, svc := range req.Services {
		input.Services = append(input.Services, services.PackageServiceSpec{
			ServiceTypeID: svc.ServiceTypeID,
			TotalSessions: svc.TotalSessions,
		})
	}

	pkg, err := h.service.CreatePackage(c.Context(), input)
	if err != nil {
		return mapCatalogError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"package": pkg})
}

func (h *CatalogHandler) GetPackage(c *fiber.Ctx) error {
	packageID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || packageID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package id"})
	}

	pkg, err := h.service.GetPackage(c.Context(), packageID)
	if err != nil {
		return mapCatalogError(c, err)
	}
	return c.JSON(fiber.Map{"package": pkg})
}

func (h *CatalogHandler) ListPackages(c *fiber.Ctx) error {
	packages, err := h.service.ListPackages(c.Context())
	if err != nil {
		return mapCatalogError(c, err)
	}
	return c.JSON(fiber.Map{"packages": packages})
}

func mapCatalogError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process catalog request"})
	}
}
