package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minjae-dev/WellCareBack/internal/metrics"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
)

var (
	ErrAllocationExhausted = errors.New("allocation exhausted")
	ErrPurchaseExpired     = errors.New("purchase expired")
	ErrPurchaseInactive    = errors.New("purchase inactive")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
	ErrMemoRequired        = errors.New("staff memo required")
)

type serviceTypeReader interface {
	GetByName(ctx context.Context, name string) (*models.ServiceType, error)
}

type UsageService struct {
	db           *pgxpool.Pool
	usageRepo    *repository.UsageRepository
	purchaseRepo *repository.PurchaseRepository
	allocRepo    *repository.AllocationRepository
	customerRepo customerReader
	typeRepo     serviceTypeReader
}

func NewUsageService(
	db *pgxpool.Pool,
	usageRepo *repository.UsageRepository,
	purchaseRepo *repository.PurchaseRepository,
	allocRepo *repository.AllocationRepository,
	customerRepo customerReader,
	typeRepo serviceTypeReader,
) *UsageService {
	return &UsageService{
		db:           db,
		usageRepo:    usageRepo,
		purchaseRepo: purchaseRepo,
		allocRepo:    allocRepo,
		customerRepo: customerRepo,
		typeRepo:     typeRepo,
	}
}

type RecordUsageInput struct {
	CustomerID    int64
	ServiceDate   time.Time
	ServiceType   string
	PurchaseID    *int64
	SessionNumber *int
	Details       *string
	StaffName     string
}

// checkConsumable gates a draw against a purchase. The date test overrides
// the stored status column.
func checkConsumable(purchase *models.PackagePurchase, now time.Time) error {
	switch purchase.EffectiveStatus(now) {
	case models.PurchaseStatusActive:
		return nil
	case models.PurchaseStatusExpired:
		return ErrPurchaseExpired
	default:
		return ErrPurchaseInactive
	}
}

// Record logs one consumed session. Without a purchase id it is a plain
// pay-per-use insert. With one, the usage event and the credit decrement
// commit or roll back together.
func (s *UsageService) Record(ctx context.Context, input RecordUsageInput) (*models.ServiceUsageEvent, error) {
	if input.CustomerID <= 0 || strings.TrimSpace(input.ServiceType) == "" || strings.TrimSpace(input.StaffName) == "" {
		return nil, ErrInvalidInput
	}

	st, err := s.typeRepo.GetByName(ctx, strings.TrimSpace(input.ServiceType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := s.customerRepo.GetByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	serviceDate := input.ServiceDate
	if serviceDate.IsZero() {
		serviceDate = time.Now().UTC()
	}
	serviceDate = serviceDate.UTC().Truncate(24 * time.Hour)

	if input.PurchaseID == nil {
		event, err := s.usageRepo.Create(ctx, repository.CreateUsageEventInput{
			CustomerID:    input.CustomerID,
			ServiceDate:   serviceDate,
			ServiceTypeID: st.ID,
			SessionNumber: input.SessionNumber,
			Details:       input.Details,
			StaffName:     input.StaffName,
		})
		if err != nil {
			return nil, err
		}
		metrics.SessionsRecorded.WithLabelValues(st.Name, "pay_per_use").Inc()
		return event, nil
	}

	event, err := s.consumeTx(ctx, *input.PurchaseID, st, input, serviceDate)
	if err != nil {
		return nil, err
	}
	metrics.SessionsRecorded.WithLabelValues(st.Name, "package").Inc()
	return event, nil
}

func (s *UsageService) consumeTx(
	ctx context.Context,
	purchaseID int64,
	st *models.ServiceType,
	input RecordUsageInput,
	serviceDate time.Time,
) (*models.ServiceUsageEvent, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPurchaseRepo := repository.NewPurchaseRepository(tx)
	txAllocRepo := repository.NewAllocationRepository(tx)
	txUsageRepo := repository.NewUsageRepository(tx)

	purchase, err := txPurchaseRepo.GetByIDForUpdate(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if purchase.CustomerID != input.CustomerID {
		return nil, ErrNotFound
	}
	if err := checkConsumable(purchase, time.Now().UTC()); err != nil {
		metrics.ConsumeRejections.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	alloc, err := txAllocRepo.GetForUpdate(ctx, purchaseID, st.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if alloc.Remaining <= 0 {
		metrics.ConsumeRejections.WithLabelValues("exhausted").Inc()
		return nil, ErrAllocationExhausted
	}

	updated, err := txAllocRepo.IncrementUsedIfCurrent(ctx, alloc.ID, alloc.Used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.ConsumeRejections.WithLabelValues("conflict").Inc()
			return nil, ErrConcurrencyConflict
		}
		return nil, err
	}

	event, err := txUsageRepo.Create(ctx, repository.CreateUsageEventInput{
		CustomerID:    input.CustomerID,
		ServiceDate:   serviceDate,
		ServiceTypeID: st.ID,
		PurchaseID:    &purchaseID,
		AllocationID:  &updated.ID,
		SessionNumber: input.SessionNumber,
		Details:       input.Details,
		StaffName:     input.StaffName,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return event, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrPurchaseExpired):
		return "expired"
	case errors.Is(err, ErrPurchaseInactive):
		return "inactive"
	default:
		return "other"
	}
}

// Consume draws one session of the given service type from a purchase,
// dated today.
func (s *UsageService) Consume(ctx context.Context, customerID, purchaseID int64, serviceType, staffName string) (*models.ServiceUsageEvent, error) {
	return s.Record(ctx, RecordUsageInput{
		CustomerID:  customerID,
		ServiceType: serviceType,
		PurchaseID:  &purchaseID,
		StaffName:   staffName,
	})
}

type AllocationAdjustment struct {
	Used  int
	Total int
}

// ManualAdjust is the audited staff override: it may overwrite used and total
// directly, including into overdraw, but never without a memo.
func (s *UsageService) ManualAdjust(
	ctx context.Context,
	customerID int64,
	purchaseID int64,
	adjustments map[string]AllocationAdjustment,
	memo string,
	staffName string,
) ([]models.CreditAllocation, error) {
	if strings.TrimSpace(memo) == "" {
		return nil, ErrMemoRequired
	}
	if len(adjustments) == 0 {
		return nil, ErrInvalidInput
	}
	for _, adj := range adjustments {
		if adj.Used < 0 || adj.Total < 0 || adj.Used > adj.Total {
			return nil, ErrInvalidInput
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPurchaseRepo := repository.NewPurchaseRepository(tx)
	txAllocRepo := repository.NewAllocationRepository(tx)

	purchase, err := txPurchaseRepo.GetByIDForUpdate(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if purchase.CustomerID != customerID {
		return nil, ErrNotFound
	}

	// Iterate in name order so row locks and the audit note are
	// deterministic regardless of map order.
	names := make([]string, 0, len(adjustments))
	for name := range adjustments {
		names = append(names, name)
	}
	sort.Strings(names)

	noteParts := make([]string, 0, len(adjustments))
	for _, name := range names {
		adj := adjustments[name]
		st, err := s.typeRepo.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		alloc, err := txAllocRepo.GetForUpdate(ctx, purchaseID, st.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if _, err := txAllocRepo.SetCounts(ctx, alloc.ID, adj.Used, adj.Total); err != nil {
			return nil, err
		}
		noteParts = append(noteParts, fmt.Sprintf("%s %d/%d -> %d/%d", name, alloc.Used, alloc.Total, adj.Used, adj.Total))
	}

	auditNote := fmt.Sprintf("[adjust %s by %s] %s (%s)",
		time.Now().UTC().Format("2006-01-02"), staffName, memo, strings.Join(noteParts, ", "))
	if err := txPurchaseRepo.AppendStaffMemo(ctx, purchaseID, auditNote); err != nil {
		return nil, err
	}

	allocations, err := txAllocRepo.ListByPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return allocations, nil
}

func (s *UsageService) ListEvents(ctx context.Context, filter repository.UsageListFilter) ([]models.ServiceUsageEvent, error) {
	return s.usageRepo.List(ctx, filter)
}

// UpdateEventDetails edits the free-text fields of an event. Everything else
// on a logged session is immutable.
func (s *UsageService) UpdateEventDetails(ctx context.Context, eventID int64, details *string, sessionNumber *int) (*models.ServiceUsageEvent, error) {
	event, err := s.usageRepo.UpdateDetails(ctx, eventID, details, sessionNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return event, nil
}
