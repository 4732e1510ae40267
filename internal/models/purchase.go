package models

import "time"

const (
	PurchaseStatusActive    = "active"
	PurchaseStatusSuspended = "suspended"
	PurchaseStatusExpired   = "expired"
	PurchaseStatusCompleted = "completed"
)

type PackagePurchase struct {
	ID            int64     `json:"id"`
	CustomerID    int64     `json:"customer_id"`
	PackageID     int64     `json:"package_id"`
	Reference     string    `json:"reference"`
	PurchaseDate  time.Time `json:"purchase_date"`
	ExpiryDate    time.Time `json:"expiry_date"`
	PaymentAmount int64     `json:"payment_amount"`
	PaymentMethod string    `json:"payment_method"`
	StaffMemo     *string   `json:"staff_memo,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EffectiveStatus computes the status read paths must report. The stored
// status column is advisory: a purchase past its expiry date is expired no
// matter what the row says. ExpiryDate is date-granular (midnight), so the
// purchase stays usable through the whole expiry day and flips strictly
// after it.
func (p *PackagePurchase) EffectiveStatus(now time.Time) string {
	if p.Status == PurchaseStatusCompleted {
		return PurchaseStatusCompleted
	}
	if !now.Before(p.ExpiryDate.AddDate(0, 0, 1)) {
		return PurchaseStatusExpired
	}
	return p.Status
}

type CreditAllocation struct {
	ID              int64  `json:"id"`
	PurchaseID      int64  `json:"purchase_id"`
	ServiceTypeID   int64  `json:"service_type_id"`
	ServiceTypeName string `json:"service_type_name"`
	Total           int    `json:"total"`
	Used            int    `json:"used"`
	Remaining       int    `json:"remaining"`
}

type PurchaseDetail struct {
	PackagePurchase
	PackageName    string             `json:"package_name"`
	EffectiveState string             `json:"effective_status"`
	ExpiringSoon   bool               `json:"expiring_soon"`
	Allocations    []CreditAllocation `json:"allocations"`
	TotalSessions  int                `json:"total_sessions"`
	UsedSessions   int                `json:"used_sessions"`
	RemainSessions int                `json:"remaining_sessions"`
	UsedPercent    float64            `json:"used_percent"`
}
