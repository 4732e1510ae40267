package repository

import (
	"context"

	"github.com/minjae-dev/WellCareBack/internal/models"
)

type AllocationRepository struct {
	db DBTX
}

func NewAllocationRepository(db DBTX) *AllocationRepository {
	return &AllocationRepository{db: db}
}

const allocationColumns = `a.id, a.purchase_id, a.service_type_id, st.name, a.total, a.used, a.total - a.used`

func scanAllocation(row interface{ Scan(dest ...any) error }, a *models.CreditAllocation) error {
	return row.Scan(&a.ID, &a.PurchaseID, &a.ServiceTypeID, &a.ServiceTypeName, &a.Total, &a.Used, &a.Remaining)
}

func (r *AllocationRepository) Create(ctx context.Context, purchaseID, serviceTypeID int64, total int) (*models.CreditAllocation, error) {
	query := `
		WITH inserted AS (
			INSERT INTO credit_allocations (purchase_id, service_type_id, total, used)
			VALUES ($1, $2, $3, 0)
			RETURNING id, purchase_id, service_type_id, total, used
		)
		SELECT a.id, a.purchase_id, a.service_type_id, st.name, a.total, a.used, a.total - a.used
		FROM inserted a
		JOIN service_types st ON st.id = a.service_type_id
	`
	var alloc models.CreditAllocation
	if err := scanAllocation(r.db.QueryRow(ctx, query, purchaseID, serviceTypeID, total), &alloc); err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (r *AllocationRepository) ListByPurchase(ctx context.Context, purchaseID int64) ([]models.CreditAllocation, error) {
	query := `
		SELECT ` + allocationColumns + `
		FROM credit_allocations a
		JOIN service_types st ON st.id = a.service_type_id
		WHERE a.purchase_id = $1
		ORDER BY a.service_type_id ASC
	`
	rows, err := r.db.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	allocations := make([]models.CreditAllocation, 0)
	for rows.Next() {
		var alloc models.CreditAllocation
		if err := scanAllocation(rows, &alloc); err != nil {
			return nil, err
		}
		allocations = append(allocations, alloc)
	}
	return allocations, rows.Err()
}

func (r *AllocationRepository) GetForUpdate(ctx context.Context, purchaseID, serviceTypeID int64) (*models.CreditAllocation, error) {
	query := `
		SELECT ` + allocationColumns + `
		FROM credit_allocations a
		JOIN service_types st ON st.id = a.service_type_id
		WHERE a.purchase_id = $1 AND a.service_type_id = $2
		FOR UPDATE OF a
	`
	var alloc models.CreditAllocation
	if err := scanAllocation(r.db.QueryRow(ctx, query, purchaseID, serviceTypeID), &alloc); err != nil {
		return nil, err
	}
	return &alloc, nil
}

// IncrementUsedIfCurrent adds one used session only when the row still holds
// the used count the caller observed. A miss means another writer got there
// first.
func (r *AllocationRepository) IncrementUsedIfCurrent(ctx context.Context, id int64, currentUsed int) (*models.CreditAllocation, error) {
	query := `
		WITH updated AS (
			UPDATE credit_allocations
			SET used = used + 1
			WHERE id = $1 AND used = $2
			RETURNING id, purchase_id, service_type_id, total, used
		)
		SELECT a.id, a.purchase_id, a.service_type_id, st.name, a.total, a.used, a.total - a.used
		FROM updated a
		JOIN service_types st ON st.id = a.service_type_id
	`
	var alloc models.CreditAllocation
	if err := scanAllocation(r.db.QueryRow(ctx, query, id, currentUsed), &alloc); err != nil {
		return nil, err
	}
	return &alloc, nil
}

// SetCounts overwrites used and total. Reserved for the audited staff
// override path.
func (r *AllocationRepository) SetCounts(ctx context.Context, id int64, used, total int) (*models.CreditAllocation, error) {
	query := `
		WITH updated AS (
			UPDATE credit_allocations
			SET used = $2, total = $3
			WHERE id = $1
			RETURNING id, purchase_id, service_type_id, total, used
		)
		SELECT a.id, a.purchase_id, a.service_type_id, st.name, a.total, a.used, a.total - a.used
		FROM updated a
		JOIN service_types st ON st.id = a.service_type_id
	`
	var alloc models.CreditAllocation
	if err := scanAllocation(r.db.QueryRow(ctx, query, id, used, total), &alloc); err != nil {
		return nil, err
	}
	return &alloc, nil
}
