package repository

import (
	"context"
	"time"

	"github.com/minjae-dev/WellCareBack/internal/models"
)

type CreatePurchaseInput struct {
	CustomerID    int64
	PackageID     int64
	Reference     string
	PurchaseDate  time.Time
	ExpiryDate    time.Time
	PaymentAmount int64
	PaymentMethod string
	StaffMemo     *string
}

type PurchaseRepository struct {
	db DBTX
}

func NewPurchaseRepository(db DBTX) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `id, customer_id, package_id, reference, purchase_date, expiry_date,
		payment_amount, payment_method, staff_memo, status, created_at, updated_at`

func scanPurchase(row interface{ Scan(dest ...any) error }, p *models.PackagePurchase) error {
	return row.Scan(
		&p.ID,
		&p.CustomerID,
		&p.PackageID,
		&p.Reference,
		&p.PurchaseDate,
		&p.ExpiryDate,
		&p.PaymentAmount,
		&p.PaymentMethod,
		&p.StaffMemo,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *PurchaseRepository) Create(ctx context.Context, input CreatePurchaseInput) (*models.PackagePurchase, error) {
	query := `
		INSERT INTO package_purchases
			(customer_id, package_id, reference, purchase_date, expiry_date, payment_amount, payment_method, staff_memo, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'active')
		RETURNING ` + purchaseColumns

	var purchase models.PackagePurchase
	err := scanPurchase(r.db.QueryRow(ctx, query,
		input.CustomerID,
		input.PackageID,
		input.Reference,
		input.PurchaseDate,
		input.ExpiryDate,
		input.PaymentAmount,
		input.PaymentMethod,
		input.StaffMemo,
	), &purchase)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id int64) (*models.PackagePurchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM package_purchases WHERE id = $1`

	var purchase models.PackagePurchase
	if err := scanPurchase(r.db.QueryRow(ctx, query, id), &purchase); err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.PackagePurchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM package_purchases WHERE id = $1 FOR UPDATE`

	var purchase models.PackagePurchase
	if err := scanPurchase(r.db.QueryRow(ctx, query, id), &purchase); err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.PackagePurchase, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM package_purchases
		WHERE customer_id = $1
		ORDER BY purchase_date DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]models.PackagePurchase, 0)
	for rows.Next() {
		var purchase models.PackagePurchase
		if err := scanPurchase(rows, &purchase); err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}
	return purchases, rows.Err()
}

func (r *PurchaseRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	id int64,
	currentStatus string,
	nextStatus string,
) (*models.PackagePurchase, error) {
	query := `
		UPDATE package_purchases
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + purchaseColumns

	var purchase models.PackagePurchase
	if err := scanPurchase(r.db.QueryRow(ctx, query, id, currentStatus, nextStatus), &purchase); err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) AppendStaffMemo(ctx context.Context, id int64, note string) error {
	query := `
		UPDATE package_purchases
		SET staff_memo = COALESCE(staff_memo || E'\n', '') || $2, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, note)
	return err
}

// MarkExpired stamps the stored status on purchases whose expiry date has
// passed. Read paths compute effective status from the date regardless; this
// keeps the column honest for reporting queries.
func (r *PurchaseRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE package_purchases
		SET status = 'expired', updated_at = NOW()
		WHERE expiry_date < $1::date AND status IN ('active', 'suspended')
	`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PurchaseRepository) SumPaymentsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(payment_amount), 0)
		FROM package_purchases
		WHERE purchase_date >= $1 AND purchase_date < $2
	`
	var total int64
	if err := r.db.QueryRow(ctx, query, from, to).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
