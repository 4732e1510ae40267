package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/services"
)

type statsApplicationService interface {
	CalendarRollup(ctx context.Context, year, month int) (map[string]models.CalendarDay, error)
	MonthlyStats(ctx context.Context, year, month int) (*models.MonthlyStats, error)
	LeadFunnel(ctx context.Context) (*models.LeadFunnelStats, error)
	ChannelConversion(ctx context.Context) ([]models.ChannelConversionStat, error)
}

type StatsHandler struct {
	service statsApplicationService
}

func NewStatsHandler(service *services.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

func parseYearMonth(c *fiber.Ctx) (year, month int, ok bool) {
	year, errYear := strconv.Atoi(c.Query("year"))
	month, errMonth := strconv.Atoi(c.Query("month"))
	if errYear != nil || errMonth != nil {
		return 0, 0, false
	}
	return year, month, true
}

func (h *StatsHandler) Calendar(c *fiber.Ctx) error {
	year, month, ok := parseYearMonth(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "year and month are required"})
	}

	rollup, err := h.service.CalendarRollup(c.Context(), year, month)
	if err != nil {
		return mapStatsError(c, err)
	}
	return c.JSON(fiber.Map{"calendar": rollup})
}

func (h *StatsHandler) Monthly(c *fiber.Ctx) error {
	year, month, ok := parseYearMonth(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "year and month are required"})
	}

	stats, err := h.service.MonthlyStats(c.Context(), year, month)
	if err != nil {
		return mapStatsError(c, err)
	}
	return c.JSON(fiber.Map{"stats": stats})
}

func (h *StatsHandler) LeadStats(c *fiber.Ctx) error {
	funnel, err := h.service.LeadFunnel(c.Context())
	if err != nil {
		return mapStatsError(c, err)
	}
	channels, err := h.service.ChannelConversion(c.Context())
	if err != nil {
		return mapStatsError(c, err)
	}
	return c.JSON(fiber.Map{
		"funnel":   funnel,
		"channels": channels,
	})
}

func mapStatsError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute stats"})
}
