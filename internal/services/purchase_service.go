package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minjae-dev/WellCareBack/internal/metrics"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// expiringSoonWindow is how close to expiry a purchase must be before
// summaries flag it.
const expiringSoonWindow = 30 * 24 * time.Hour

type customerReader interface {
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
}

type packageReader interface {
	GetByID(ctx context.Context, id int64) (*models.Package, error)
}

type PurchaseService struct {
	db           *pgxpool.Pool
	purchaseRepo *repository.PurchaseRepository
	allocRepo    *repository.AllocationRepository
	customerRepo customerReader
	packageRepo  packageReader
}

func NewPurchaseService(
	db *pgxpool.Pool,
	purchaseRepo *repository.PurchaseRepository,
	allocRepo *repository.AllocationRepository,
	customerRepo customerReader,
	packageRepo packageReader,
) *PurchaseService {
	return &PurchaseService{
		db:           db,
		purchaseRepo: purchaseRepo,
		allocRepo:    allocRepo,
		customerRepo: customerRepo,
		packageRepo:  packageRepo,
	}
}

type CreatePurchaseInput struct {
	CustomerID    int64
	PackageID     int64
	PaymentAmount int64
	PaymentMethod string
	StaffMemo     *string
	PurchaseDate  *time.Time
	ExpiryDate    *time.Time
}

type allocationPlan struct {
	serviceTypeID int64
	total         int
}

// buildAllocationPlan decides how many sessions each covered service type
// gets at purchase time. Per-type totals on the package are authoritative
// when present. A package with only an undifferentiated total_sessions is
// split evenly across its covered types, remainder going one session each to
// the earliest-listed types.
func buildAllocationPlan(pkg *models.Package) ([]allocationPlan, error) {
	if len(pkg.Services) == 0 {
		return nil, ErrInvalidInput
	}

	plans := make([]allocationPlan, 0, len(pkg.Services))
	hasExplicit := pkg.Services[0].TotalSessions != nil
	for _, svc := range pkg.Services {
		if (svc.TotalSessions != nil) != hasExplicit {
			return nil, ErrInvalidInput
		}
	}

	if hasExplicit {
		sum := 0
		for _, svc := range pkg.Services {
			if *svc.TotalSessions < 0 {
				return nil, ErrInvalidInput
			}
			sum += *svc.TotalSessions
			plans = append(plans, allocationPlan{serviceTypeID: svc.ServiceTypeID, total: *svc.TotalSessions})
		}
		if sum != pkg.TotalSessions {
			return nil, ErrInvalidInput
		}
		return plans, nil
	}

	base := pkg.TotalSessions / len(pkg.Services)
	rem := pkg.TotalSessions % len(pkg.Services)
	for i, svc := range pkg.Services {
		total := base
		if i < rem {
			total++
		}
		plans = append(plans, allocationPlan{serviceTypeID: svc.ServiceTypeID, total: total})
	}
	return plans, nil
}

func (s *PurchaseService) Create(ctx context.Context, input CreatePurchaseInput) (*models.PurchaseDetail, error) {
	if input.CustomerID <= 0 || input.PackageID <= 0 || input.PaymentAmount < 0 {
		return nil, ErrInvalidInput
	}

	if _, err := s.customerRepo.GetByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	pkg, err := s.packageRepo.GetByID(ctx, input.PackageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	purchaseDate := time.Now().UTC().Truncate(24 * time.Hour)
	if input.PurchaseDate != nil {
		purchaseDate = input.PurchaseDate.UTC().Truncate(24 * time.Hour)
	}
	expiryDate := purchaseDate.AddDate(0, 0, pkg.ValidDays)
	if input.ExpiryDate != nil {
		expiryDate = input.ExpiryDate.UTC().Truncate(24 * time.Hour)
	}
	if expiryDate.Before(purchaseDate) {
		return nil, ErrInvalidInput
	}

	plans, err := buildAllocationPlan(pkg)
	if err != nil {
		return nil, err
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

	purchase, err := txPurchaseRepo.Create(ctx, repository.CreatePurchaseInput{
		CustomerID:    input.CustomerID,
		PackageID:     input.PackageID,
		Reference:     uuid.NewString(),
		PurchaseDate:  purchaseDate,
		ExpiryDate:    expiryDate,
		PaymentAmount: input.PaymentAmount,
		PaymentMethod: input.PaymentMethod,
		StaffMemo:     input.StaffMemo,
	})
	if err != nil {
		return nil, err
	}

	allocations := make([]models.CreditAllocation, 0, len(plans))
	for _, plan := range plans {
		alloc, err := txAllocRepo.Create(ctx, purchase.ID, plan.serviceTypeID, plan.total)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, *alloc)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.PurchasesCreated.Inc()
	return composePurchaseDetail(purchase, pkg.Name, allocations, time.Now().UTC()), nil
}

func (s *PurchaseService) GetDetail(ctx context.Context, customerID, purchaseID int64) (*models.PurchaseDetail, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if purchase.CustomerID != customerID {
		return nil, ErrNotFound
	}

	pkg, err := s.packageRepo.GetByID(ctx, purchase.PackageID)
	if err != nil {
		return nil, err
	}
	allocations, err := s.allocRepo.ListByPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	return composePurchaseDetail(purchase, pkg.Name, allocations, time.Now().UTC()), nil
}

// ListByCustomer is the customer package summary: every purchase with its
// per-type allocation breakdown and the expiring-soon flag.
func (s *PurchaseService) ListByCustomer(ctx context.Context, customerID int64) ([]models.PurchaseDetail, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	purchases, err := s.purchaseRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	details := make([]models.PurchaseDetail, 0, len(purchases))
	for i := range purchases {
		pkg, err := s.packageRepo.GetByID(ctx, purchases[i].PackageID)
		if err != nil {
			return nil, err
		}
		allocations, err := s.allocRepo.ListByPurchase(ctx, purchases[i].ID)
		if err != nil {
			return nil, err
		}
		details = append(details, *composePurchaseDetail(&purchases[i], pkg.Name, allocations, now))
	}
	return details, nil
}

// Suspend pauses an effectively active purchase. Expired and completed
// purchases cannot be suspended.
func (s *PurchaseService) Suspend(ctx context.Context, customerID, purchaseID int64) (*models.PackagePurchase, error) {
	purchase, err := s.getOwned(ctx, customerID, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.EffectiveStatus(time.Now().UTC()) != models.PurchaseStatusActive {
		return nil, ErrInvalidStateTransition
	}
	updated, err := s.purchaseRepo.UpdateStatusIfCurrent(ctx, purchaseID, models.PurchaseStatusActive, models.PurchaseStatusSuspended)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return updated, nil
}

func (s *PurchaseService) Reactivate(ctx context.Context, customerID, purchaseID int64) (*models.PackagePurchase, error) {
	purchase, err := s.getOwned(ctx, customerID, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.EffectiveStatus(time.Now().UTC()) != models.PurchaseStatusSuspended {
		return nil, ErrInvalidStateTransition
	}
	updated, err := s.purchaseRepo.UpdateStatusIfCurrent(ctx, purchaseID, models.PurchaseStatusSuspended, models.PurchaseStatusActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return updated, nil
}

// Complete closes a purchase once every allocation is drawn down. Manual and
// irreversible.
func (s *PurchaseService) Complete(ctx context.Context, customerID, purchaseID int64) (*models.PackagePurchase, error) {
	purchase, err := s.getOwned(ctx, customerID, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.EffectiveStatus(time.Now().UTC()) != models.PurchaseStatusActive {
		return nil, ErrInvalidStateTransition
	}

	allocations, err := s.allocRepo.ListByPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	for _, alloc := range allocations {
		if alloc.Remaining > 0 {
			return nil, ErrInvalidStateTransition
		}
	}

	updated, err := s.purchaseRepo.UpdateStatusIfCurrent(ctx, purchaseID, models.PurchaseStatusActive, models.PurchaseStatusCompleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return updated, nil
}

// SweepExpired reconciles the stored status column with the expiry date. The
// date check stays authoritative on every read path.
func (s *PurchaseService) SweepExpired(ctx context.Context) (int64, error) {
	return s.purchaseRepo.MarkExpired(ctx, time.Now().UTC())
}

func (s *PurchaseService) getOwned(ctx context.Context, customerID, purchaseID int64) (*models.PackagePurchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if purchase.CustomerID != customerID {
		return nil, ErrNotFound
	}
	return purchase, nil
}

// composePurchaseDetail builds the read model every view consumes. Negative
// remaining is preserved in the raw fields and clamped only inside the
// percentage, so overdrawn allocations render sanely without losing the
// audit trail.
func composePurchaseDetail(
	purchase *models.PackagePurchase,
	packageName string,
	allocations []models.CreditAllocation,
	now time.Time,
) *models.PurchaseDetail {
	detail := &models.PurchaseDetail{
		PackagePurchase: *purchase,
		PackageName:     packageName,
		EffectiveState:  purchase.EffectiveStatus(now),
		Allocations:     allocations,
	}
	for _, alloc := range allocations {
		detail.TotalSessions += alloc.Total
		detail.UsedSessions += alloc.Used
		detail.RemainSessions += alloc.Remaining
	}
	detail.UsedPercent = usedPercent(detail.UsedSessions, detail.TotalSessions)
	detail.ExpiringSoon = detail.EffectiveState == models.PurchaseStatusActive &&
		purchase.ExpiryDate.Sub(now) <= expiringSoonWindow
	return detail
}

// usedPercent never divides by zero and clamps to [0, 100] for display.
func usedPercent(used, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(used) / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
