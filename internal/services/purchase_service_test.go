package services

import (
	"errors"
	"testing"
	"time"

	"github.com/minjae-dev/WellCareBack/internal/models"
)

func intPtr(v int) *int {
	return &v
}

func buildPackage(totalSessions int, perType []*int) *models.Package {
	pkg := &models.Package{
		ID:            1,
		Name:          "Recovery 10",
		Price:         900000,
		ValidDays:     90,
		TotalSessions: totalSessions,
	}
	for i, total := range perType {
		pkg.Services = append(pkg.Services, models.PackageService{
			ServiceTypeID: int64(i + 1),
			TotalSessions: total,
		})
	}
	return pkg
}

func TestBuildAllocationPlanEvenSplit(t *testing.T) {
	pkg := buildPackage(10, []*int{nil, nil, nil})

	plans, err := buildAllocationPlan(pkg)
	if err != nil {
		t.Fatalf("buildAllocationPlan: %v", err)
	}
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
	// 10 over 3 types: remainder goes to the earliest-listed types.
	want := []int{4, 3, 3}
	sum := 0
	for i, plan := range plans {
		if plan.total != want[i] {
			t.Errorf("plan %d: expected %d sessions, got %d", i, want[i], plan.total)
		}
		sum += plan.total
	}
	if sum != 10 {
		t.Fatalf("expected totals to sum to 10, got %d", sum)
	}
}

func TestBuildAllocationPlanSparseEvenSplit(t *testing.T) {
	// Fewer sessions than service types: trailing types get a zero
	// allocation rather than an error.
	pkg := buildPackage(2, []*int{nil, nil, nil})

	plans, err := buildAllocationPlan(pkg)
	if err != nil {
		t.Fatalf("buildAllocationPlan: %v", err)
	}
	want := []int{1, 1, 0}
	sum := 0
	for i, plan := range plans {
		if plan.total != want[i] {
			t.Errorf("plan %d: expected %d sessions, got %d", i, want[i], plan.total)
		}
		if plan.total < 0 {
			t.Errorf("plan %d: negative total %d", i, plan.total)
		}
		sum += plan.total
	}
	if sum != 2 {
		t.Fatalf("expected totals to sum to 2, got %d", sum)
	}
}

func TestBuildAllocationPlanExplicitTotals(t *testing.T) {
	pkg := buildPackage(10, []*int{intPtr(6), intPtr(4)})

	plans, err := buildAllocationPlan(pkg)
	if err != nil {
		t.Fatalf("buildAllocationPlan: %v", err)
	}
	if plans[0].total != 6 || plans[1].total != 4 {
		t.Fatalf("expected 6/4 split, got %d/%d", plans[0].total, plans[1].total)
	}
}

func TestBuildAllocationPlanRejectsMismatchedSum(t *testing.T) {
	pkg := buildPackage(10, []*int{intPtr(6), intPtr(5)})

	if _, err := buildAllocationPlan(pkg); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBuildAllocationPlanRejectsMixedSpecs(t *testing.T) {
	pkg := buildPackage(10, []*int{intPtr(10), nil})

	if _, err := buildAllocationPlan(pkg); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBuildAllocationPlanRejectsEmptyServices(t *testing.T) {
	pkg := buildPackage(10, nil)

	if _, err := buildAllocationPlan(pkg); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUsedPercent(t *testing.T) {
	cases := []struct {
		name  string
		used  int
		total int
		want  float64
	}{
		{"zero total", 3, 0, 0},
		{"negative total", 3, -1, 0},
		{"half", 5, 10, 50},
		{"overdrawn clamps", 12, 10, 100},
		{"negative used clamps", -2, 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := usedPercent(tc.used, tc.total); got != tc.want {
				t.Fatalf("usedPercent(%d, %d) = %v, want %v", tc.used, tc.total, got, tc.want)
			}
		})
	}
}

func TestEffectiveStatusDateOverridesStoredStatus(t *testing.T) {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	purchase := &models.PackagePurchase{
		Status:     models.PurchaseStatusActive,
		ExpiryDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	if got := purchase.EffectiveStatus(now); got != models.PurchaseStatusExpired {
		t.Fatalf("expected expired, got %s", got)
	}

	purchase.Status = models.PurchaseStatusSuspended
	if got := purchase.EffectiveStatus(now); got != models.PurchaseStatusExpired {
		t.Fatalf("expected suspended purchase past expiry to read expired, got %s", got)
	}

	purchase.Status = models.PurchaseStatusCompleted
	if got := purchase.EffectiveStatus(now); got != models.PurchaseStatusCompleted {
		t.Fatalf("completed is terminal, got %s", got)
	}
}

func TestEffectiveStatusWithinValidity(t *testing.T) {
	purchase := &models.PackagePurchase{
		Status:     models.PurchaseStatusActive,
		ExpiryDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	// The expiry date itself is still consumable.
	onExpiry := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	if got := purchase.EffectiveStatus(onExpiry); got != models.PurchaseStatusActive {
		t.Fatalf("expected active on the expiry date, got %s", got)
	}

	// Checks later in the expiry day must not tip the purchase over: the
	// stored date is midnight, the whole day is within validity.
	noonOfExpiryDay := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	if got := purchase.EffectiveStatus(noonOfExpiryDay); got != models.PurchaseStatusActive {
		t.Fatalf("expected active at noon of the expiry day, got %s", got)
	}

	dayAfter := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	if got := purchase.EffectiveStatus(dayAfter); got != models.PurchaseStatusExpired {
		t.Fatalf("expected expired the day after, got %s", got)
	}
}

func TestComposePurchaseDetailAggregates(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	purchase := &models.PackagePurchase{
		ID:         7,
		CustomerID: 3,
		Status:     models.PurchaseStatusActive,
		ExpiryDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	allocations := []models.CreditAllocation{
		{ServiceTypeName: "Brain", Total: 10, Used: 4, Remaining: 6},
		{ServiceTypeName: "Pilates", Total: 10, Used: 10, Remaining: 0},
	}

	detail := composePurchaseDetail(purchase, "Recovery 20", allocations, now)
	if detail.TotalSessions != 20 || detail.UsedSessions != 14 || detail.RemainSessions != 6 {
		t.Fatalf("expected 20/14/6, got %d/%d/%d", detail.TotalSessions, detail.UsedSessions, detail.RemainSessions)
	}
	if detail.UsedPercent != 70 {
		t.Fatalf("expected 70%% used, got %v", detail.UsedPercent)
	}
	if detail.EffectiveState != models.PurchaseStatusActive {
		t.Fatalf("expected active, got %s", detail.EffectiveState)
	}
	if detail.ExpiringSoon {
		t.Fatal("expected not expiring soon two months out")
	}
}

func TestComposePurchaseDetailFlagsExpiringSoon(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	purchase := &models.PackagePurchase{
		Status:     models.PurchaseStatusActive,
		ExpiryDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	detail := composePurchaseDetail(purchase, "Recovery 10", nil, now)
	if !detail.ExpiringSoon {
		t.Fatal("expected expiring-soon flag within the window")
	}

	purchase.Status = models.PurchaseStatusSuspended
	detail = composePurchaseDetail(purchase, "Recovery 10", nil, now)
	if detail.ExpiringSoon {
		t.Fatal("only effectively active purchases report expiring soon")
	}
}

func TestComposePurchaseDetailOverdrawnAllocation(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	purchase := &models.PackagePurchase{
		Status:     models.PurchaseStatusActive,
		ExpiryDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	allocations := []models.CreditAllocation{
		{ServiceTypeName: "Brain", Total: 10, Used: 12, Remaining: -2},
	}

	detail := composePurchaseDetail(purchase, "Recovery 10", allocations, now)
	if detail.RemainSessions != -2 {
		t.Fatalf("raw remaining must keep the overdraw, got %d", detail.RemainSessions)
	}
	if detail.UsedPercent != 100 {
		t.Fatalf("expected percentage clamped to 100, got %v", detail.UsedPercent)
	}
}

func TestNinetyDayValidityWindow(t *testing.T) {
	purchaseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := purchaseDate.AddDate(0, 0, 90)

	if want := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC); !expiry.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want.Format("2006-01-02"), expiry.Format("2006-01-02"))
	}

	purchase := &models.PackagePurchase{Status: models.PurchaseStatusActive, ExpiryDate: expiry}
	if got := purchase.EffectiveStatus(expiry); got != models.PurchaseStatusActive {
		t.Fatalf("expected active on day 90, got %s", got)
	}
	if got := purchase.EffectiveStatus(expiry.AddDate(0, 0, 1)); got != models.PurchaseStatusExpired {
		t.Fatalf("expected expired on day 91, got %s", got)
	}
}
