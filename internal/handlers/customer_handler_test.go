package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
)

type stubCustomerStore struct {
	createResult *models.Customer
	createErr    error
	getResult    *models.Customer
	getErr       error
	listResult   []models.Customer
	listTotal    int
	listErr      error
	updateResult *models.Customer
	updateErr    error
	deleteErr    error
	lastInput    repository.CreateCustomerInput
	lastFilter   repository.CustomerListFilter
	lastID       int64
}

func (s *stubCustomerStore) Create(_ context.Context, input repository.CreateCustomerInput) (*models.Customer, error) {
	s.lastInput = input
	return s.createResult, s.createErr
}

func (s *stubCustomerStore) GetByID(_ context.Context, id int64) (*models.Customer, error) {
	s.lastID = id
	return s.getResult, s.getErr
}

func (s *stubCustomerStore) List(_ context.Context, filter repository.CustomerListFilter) ([]models.Customer, int, error) {
	s.lastFilter = filter
	return s.listResult, s.listTotal, s.listErr
}

func (s *stubCustomerStore) Update(_ context.Context, id int64, input repository.CreateCustomerInput) (*models.Customer, error) {
	s.lastID = id
	s.lastInput = input
	return s.updateResult, s.updateErr
}

func (s *stubCustomerStore) Delete(_ context.Context, id int64) error {
	s.lastID = id
	return s.deleteErr
}

func newCustomerApp(store *stubCustomerStore) *fiber.App {
	handler := &CustomerHandler{repo: store}
	app := fiber.New()
	app.Post("/api/v1/customers", handler.Create)
	app.Get("/api/v1/customers", handler.List)
	app.Get("/api/v1/customers/:id", handler.Get)
	app.Delete("/api/v1/customers/:id", handler.Delete)
	return app
}

func TestCreateCustomerParsesBirthDate(t *testing.T) {
	store := &stubCustomerStore{
		createResult: &models.Customer{ID: 3, Name: "Park"},
	}
	app := newCustomerApp(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{
		"name": "Park",
		"phone": "010-9876-5432",
		"birth_date": "1988-05-20"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if store.lastInput.BirthDate == nil {
		t.Fatal("expected birth_date to be parsed")
	}
	if want := time.Date(1988, 5, 20, 0, 0, 0, 0, time.UTC); !store.lastInput.BirthDate.Equal(want) {
		t.Fatalf("expected %s, got %s", want, store.lastInput.BirthDate)
	}
}

func TestCreateCustomerRequiresName(t *testing.T) {
	app := newCustomerApp(&stubCustomerStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"phone": "010"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListCustomersForwardsSearch(t *testing.T) {
	store := &stubCustomerStore{listTotal: 0}
	app := newCustomerApp(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers?search=Park&page=3&limit=10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if store.lastFilter.Search != "Park" || store.lastFilter.Page != 3 || store.lastFilter.Limit != 10 {
		t.Fatalf("unexpected filter: %+v", store.lastFilter)
	}
}

func TestDeleteCustomerMapsNoRows(t *testing.T) {
	app := newCustomerApp(&stubCustomerStore{deleteErr: pgx.ErrNoRows})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/customers/9", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
