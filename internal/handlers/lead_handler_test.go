package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
	"github.com/minjae-dev/WellCareBack/internal/services"
)

type stubLeadService struct {
	createResult   *models.Lead
	createErr      error
	listResult     []models.Lead
	listTotal      int
	listErr        error
	updateResult   *models.Lead
	updateErr      error
	convertResult  *models.Lead
	convertErr     error
	lastInput      repository.CreateLeadInput
	lastFilter     repository.LeadListFilter
	lastLeadID     int64
	lastStatus     string
	lastCustomerID *int64
}

func (s *stubLeadService) Create(_ context.Context, input repository.CreateLeadInput) (*models.Lead, error) {
	s.lastInput = input
	return s.createResult, s.createErr
}

func (s *stubLeadService) List(_ context.Context, filter repository.LeadListFilter) ([]models.Lead, int, error) {
	s.lastFilter = filter
	return s.listResult, s.listTotal, s.listErr
}

func (s *stubLeadService) UpdateStatus(_ context.Context, leadID int64, status string) (*models.Lead, error) {
	s.lastLeadID = leadID
	s.lastStatus = status
	return s.updateResult, s.updateErr
}

func (s *stubLeadService) Convert(_ context.Context, leadID int64, customerID *int64) (*models.Lead, error) {
	s.lastLeadID = leadID
	s.lastCustomerID = customerID
	return s.convertResult, s.convertErr
}

func newLeadApp(service *stubLeadService) *fiber.App {
	handler := &LeadHandler{service: service}
	app := fiber.New()
	app.Post("/api/v1/leads", handler.Create)
	app.Get("/api/v1/leads", handler.List)
	app.Patch("/api/v1/leads/:id/status", handler.UpdateStatus)
	app.Post("/api/v1/leads/:id/convert", handler.Convert)
	return app
}

func TestCreateLeadForwardsInput(t *testing.T) {
	service := &stubLeadService{
		createResult: &models.Lead{ID: 4, Name: "Lee", Channel: "instagram", Status: models.LeadStatusNew},
	}
	app := newLeadApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads", strings.NewReader(`{
		"name": "Lee",
		"channel": "instagram",
		"phone": "010-1234-5678"
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
	if service.lastInput.Name != "Lee" || service.lastInput.Channel != "instagram" {
		t.Fatalf("unexpected input forwarded: %+v", service.lastInput)
	}
}

func TestListLeadsForwardsFilters(t *testing.T) {
	service := &stubLeadService{listTotal: 1, listResult: []models.Lead{{ID: 4, Name: "Lee"}}}
	app := newLeadApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads?status=contacted&channel=instagram&page=2&limit=5", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastFilter.Status != "contacted" || service.lastFilter.Channel != "instagram" {
		t.Fatalf("unexpected filter: %+v", service.lastFilter)
	}
	if service.lastFilter.Page != 2 || service.lastFilter.Limit != 5 {
		t.Fatalf("unexpected pagination: %+v", service.lastFilter)
	}

	var body struct {
		Leads      []models.Lead         `json:"leads"`
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Pagination.Total != 1 {
		t.Fatalf("expected total 1, got %d", body.Pagination.Total)
	}
}

func TestUpdateLeadStatusMapsTerminalConversion(t *testing.T) {
	service := &stubLeadService{updateErr: services.ErrInvalidStateTransition}
	app := newLeadApp(service)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/leads/4/status",
		strings.NewReader(`{"status": "contacted"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestConvertLeadForwardsCustomerID(t *testing.T) {
	service := &stubLeadService{
		convertResult: &models.Lead{ID: 4, Status: models.LeadStatusConverted},
	}
	app := newLeadApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/4/convert",
		strings.NewReader(`{"customer_id": 9}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastLeadID != 4 {
		t.Fatalf("expected lead 4, got %d", service.lastLeadID)
	}
	if service.lastCustomerID == nil || *service.lastCustomerID != 9 {
		t.Fatalf("expected customer 9 forwarded, got %v", service.lastCustomerID)
	}
}
