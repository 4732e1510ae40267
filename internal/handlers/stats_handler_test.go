package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/services"
)

type stubStatsService struct {
	calendarResult map[string]models.CalendarDay
	calendarErr    error
	monthlyResult  *models.MonthlyStats
	monthlyErr     error
	funnelResult   *models.LeadFunnelStats
	funnelErr      error
	channelResult  []models.ChannelConversionStat
	channelErr     error
	lastYear       int
	lastMonth      int
}

func (s *stubStatsService) CalendarRollup(_ context.Context, year, month int) (map[string]models.CalendarDay, error) {
	s.lastYear = year
	s.lastMonth = month
	return s.calendarResult, s.calendarErr
}

func (s *stubStatsService) MonthlyStats(_ context.Context, year, month int) (*models.MonthlyStats, error) {
	s.lastYear = year
	s.lastMonth = month
	return s.monthlyResult, s.monthlyErr
}

func (s *stubStatsService) LeadFunnel(_ context.Context) (*models.LeadFunnelStats, error) {
	return s.funnelResult, s.funnelErr
}

func (s *stubStatsService) ChannelConversion(_ context.Context) ([]models.ChannelConversionStat, error) {
	return s.channelResult, s.channelErr
}

func newStatsApp(service *stubStatsService) *fiber.App {
	handler := &StatsHandler{service: service}
	app := fiber.New()
	app.Get("/api/v1/stats/calendar", handler.Calendar)
	app.Get("/api/v1/stats/monthly", handler.Monthly)
	app.Get("/api/v1/stats/leads", handler.LeadStats)
	return app
}

func TestCalendarRequiresYearAndMonth(t *testing.T) {
	app := newStatsApp(&stubStatsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/calendar?year=2024", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCalendarForwardsYearMonth(t *testing.T) {
	service := &stubStatsService{
		calendarResult: map[string]models.CalendarDay{
			"2024-02-10": {Date: "2024-02-10", TotalServices: 3, UniqueCustomers: 2},
		},
	}
	app := newStatsApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/calendar?year=2024&month=2", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastYear != 2024 || service.lastMonth != 2 {
		t.Fatalf("expected 2024/2 forwarded, got %d/%d", service.lastYear, service.lastMonth)
	}

	var body struct {
		Calendar map[string]models.CalendarDay `json:"calendar"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if day, ok := body.Calendar["2024-02-10"]; !ok || day.TotalServices != 3 {
		t.Fatalf("unexpected calendar payload: %+v", body.Calendar)
	}
}

func TestMonthlyMapsInvalidInput(t *testing.T) {
	app := newStatsApp(&stubStatsService{monthlyErr: services.ErrInvalidInput})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/monthly?year=2024&month=13", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLeadStatsReturnsFunnelAndChannels(t *testing.T) {
	service := &stubStatsService{
		funnelResult: &models.LeadFunnelStats{
			Total:          10,
			Converted:      3,
			ConversionRate: 0.3,
			ByStatus:       map[string]int{"new": 5, "contacted": 2, "converted": 3},
		},
		channelResult: []models.ChannelConversionStat{
			{Channel: "instagram", Total: 6, Converted: 2, ConversionRate: 1.0 / 3},
		},
	}
	app := newStatsApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/leads", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Funnel   models.LeadFunnelStats         `json:"funnel"`
		Channels []models.ChannelConversionStat `json:"channels"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Funnel.Total != 10 || body.Funnel.Converted != 3 {
		t.Fatalf("unexpected funnel: %+v", body.Funnel)
	}
	if len(body.Channels) != 1 || body.Channels[0].Channel != "instagram" {
		t.Fatalf("unexpected channels: %+v", body.Channels)
	}
}
