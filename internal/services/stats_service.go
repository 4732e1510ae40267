package services

import (
	"context"
	"time"

	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
)

type StatsService struct {
	usageRepo    *repository.UsageRepository
	purchaseRepo *repository.PurchaseRepository
	leadRepo     *repository.LeadRepository
}

func NewStatsService(
	usageRepo *repository.UsageRepository,
	purchaseRepo *repository.PurchaseRepository,
	leadRepo *repository.LeadRepository,
) *StatsService {
	return &StatsService{
		usageRepo:    usageRepo,
		purchaseRepo: purchaseRepo,
		leadRepo:     leadRepo,
	}
}

func monthBounds(year, month int) (time.Time, time.Time, error) {
	if year < 2000 || year > 2100 || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidInput
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}

// CalendarRollup returns per-date service counts for the month, keyed by
// ISO date. Dates with no events are absent.
func (s *StatsService) CalendarRollup(ctx context.Context, year, month int) (map[string]models.CalendarDay, error) {
	from, to, err := monthBounds(year, month)
	if err != nil {
		return nil, err
	}
	days, err := s.usageRepo.CalendarCounts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	rollup := make(map[string]models.CalendarDay, len(days))
	for key, day := range days {
		rollup[key] = *day
	}
	return rollup, nil
}

func (s *StatsService) MonthlyStats(ctx context.Context, year, month int) (*models.MonthlyStats, error) {
	from, to, err := monthBounds(year, month)
	if err != nil {
		return nil, err
	}
	total, customers, popular, err := s.usageRepo.MonthlyTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	revenue, err := s.purchaseRepo.SumPaymentsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &models.MonthlyStats{
		Year:            year,
		Month:           month,
		TotalSessions:   total,
		UniqueCustomers: customers,
		Revenue:         revenue,
		PopularService:  popular,
	}, nil
}

func (s *StatsService) LeadFunnel(ctx context.Context) (*models.LeadFunnelStats, error) {
	counts, err := s.leadRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &models.LeadFunnelStats{ByStatus: counts}
	for _, count := range counts {
		stats.Total += count
	}
	stats.Converted = counts[models.LeadStatusConverted]
	stats.ConversionRate = conversionRate(stats.Converted, stats.Total)
	return stats, nil
}

func (s *StatsService) ChannelConversion(ctx context.Context) ([]models.ChannelConversionStat, error) {
	counts, err := s.leadRepo.CountByChannel(ctx)
	if err != nil {
		return nil, err
	}
	stats := make([]models.ChannelConversionStat, 0, len(counts))
	for _, c := range counts {
		stats = append(stats, models.ChannelConversionStat{
			Channel:        c.Channel,
			Total:          c.Total,
			Converted:      c.Converted,
			ConversionRate: conversionRate(c.Converted, c.Total),
		})
	}
	return stats, nil
}

// conversionRate is converted/total as a fraction, 0 when total is 0.
func conversionRate(converted, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(converted) / float64(total)
}
