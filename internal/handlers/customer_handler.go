package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
)

type customerStore interface {
	Create(ctx context.Context, input repository.CreateCustomerInput) (*models.Customer, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context, filter repository.CustomerListFilter) ([]models.Customer, int, error)
	Update(ctx context.Context, id int64, input repository.CreateCustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, id int64) error
}

type CustomerHandler struct {
	repo customerStore
}

func NewCustomerHandler(repo *repository.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{repo: repo}
}

type customerRequest struct {
	Name      string  `json:"name"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
	Gender    *string `json:"gender"`
	Channel   *string `json:"channel"`
	Memo      *string `json:"memo"`
}

func (req customerRequest) toInput() (repository.CreateCustomerInput, string) {
	if strings.TrimSpace(req.Name) == "" {
		return repository.CreateCustomerInput{}, "name is required"
	}
	input := repository.CreateCustomerInput{
		Name:    strings.TrimSpace(req.Name),
		Phone:   req.Phone,
		Gender:  req.Gender,
		Channel: req.Channel,
		Memo:    req.Memo,
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return repository.CreateCustomerInput{}, "birth_date must be an ISO date"
		}
		input.BirthDate = &parsed
	}
	return input, ""
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, validationErr := req.toInput()
	if validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	customer, err := h.repo.Create(c.Context(), input)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create customer"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"customer": customer})
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	customers, total, err := h.repo.List(c.Context(), repository.CustomerListFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list customers"})
	}
	return c.JSON(fiber.Map{
		"customers":  customers,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	customerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || customerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer id"})
	}

	customer, err := h.repo.GetByID(c.Context(), customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load customer"})
	}
	return c.JSON(fiber.Map{"customer": customer})
}

func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	customerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || customerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer id"})
	}

	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, validationErr := req.toInput()
	if validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	customer, err := h.repo.Update(c.Context(), customerID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update customer"})
	}
	return c.JSON(fiber.Map{"customer": customer})
}

func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	customerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || customerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer id"})
	}

	if err := h.repo.Delete(c.Context(), customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete customer"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
