package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minjae-dev/WellCareBack/internal/models"
)

type CreateUsageEventInput struct {
	CustomerID    int64
	ServiceDate   time.Time
	ServiceTypeID int64
	PurchaseID    *int64
	AllocationID  *int64
	SessionNumber *int
	Details       *string
	StaffName     string
}

type UsageListFilter struct {
	CustomerID *int64
	PurchaseID *int64
	From       *time.Time
	To         *time.Time
}

type UsageRepository struct {
	db DBTX
}

func NewUsageRepository(db DBTX) *UsageRepository {
	return &UsageRepository{db: db}
}

const usageColumns = `e.id, e.customer_id, e.service_date, e.service_type_id, st.name,
		e.purchase_id, e.allocation_id, e.session_number, e.details, e.staff_name, e.created_at`

func scanUsageEvent(row interface{ Scan(dest ...any) error }, e *models.ServiceUsageEvent) error {
	return row.Scan(
		&e.ID,
		&e.CustomerID,
		&e.ServiceDate,
		&e.ServiceTypeID,
		&e.ServiceTypeName,
		&e.PurchaseID,
		&e.AllocationID,
		&e.SessionNumber,
		&e.Details,
		&e.StaffName,
		&e.CreatedAt,
	)
}

func (r *UsageRepository) Create(ctx context.Context, input CreateUsageEventInput) (*models.ServiceUsageEvent, error) {
	query := `
		WITH inserted AS (
			INSERT INTO service_usage_events
				(customer_id, service_date, service_type_id, purchase_id, allocation_id, session_number, details, staff_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, customer_id, service_date, service_type_id, purchase_id, allocation_id,
				session_number, details, staff_name, created_at
		)
		SELECT e.id, e.customer_id, e.service_date, e.service_type_id, st.name,
			e.purchase_id, e.allocation_id, e.session_number, e.details, e.staff_name, e.created_at
		FROM inserted e
		JOIN service_types st ON st.id = e.service_type_id
	`
	var event models.ServiceUsageEvent
	err := scanUsageEvent(r.db.QueryRow(ctx, query,
		input.CustomerID,
		input.ServiceDate,
		input.ServiceTypeID,
		input.PurchaseID,
		input.AllocationID,
		input.SessionNumber,
		input.Details,
		input.StaffName,
	), &event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateDetails edits the mutable fields of an event. Nil arguments leave
// the stored value untouched.
func (r *UsageRepository) UpdateDetails(ctx context.Context, id int64, details *string, sessionNumber *int) (*models.ServiceUsageEvent, error) {
	query := `
		WITH updated AS (
			UPDATE service_usage_events
			SET details = COALESCE($2, details), session_number = COALESCE($3, session_number)
			WHERE id = $1
			RETURNING id, customer_id, service_date, service_type_id, purchase_id, allocation_id,
				session_number, details, staff_name, created_at
		)
		SELECT e.id, e.customer_id, e.service_date, e.service_type_id, st.name,
			e.purchase_id, e.allocation_id, e.session_number, e.details, e.staff_name, e.created_at
		FROM updated e
		JOIN service_types st ON st.id = e.service_type_id
	`
	var event models.ServiceUsageEvent
	if err := scanUsageEvent(r.db.QueryRow(ctx, query, id, details, sessionNumber), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *UsageRepository) List(ctx context.Context, filter UsageListFilter) ([]models.ServiceUsageEvent, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		whereParts = append(whereParts, fmt.Sprintf("e.customer_id = $%d", len(args)))
	}
	if filter.PurchaseID != nil {
		args = append(args, *filter.PurchaseID)
		whereParts = append(whereParts, fmt.Sprintf("e.purchase_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		whereParts = append(whereParts, fmt.Sprintf("e.service_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		whereParts = append(whereParts, fmt.Sprintf("e.service_date < $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM service_usage_events e
		JOIN service_types st ON st.id = e.service_type_id
		WHERE %s
		ORDER BY e.service_date ASC, e.id ASC
	`, usageColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.ServiceUsageEvent, 0)
	for rows.Next() {
		var event models.ServiceUsageEvent
		if err := scanUsageEvent(rows, &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

type dailyServiceCount struct {
	Date        time.Time
	ServiceName string
	Count       int
}

// CalendarCounts returns, for every date of the given month that has events,
// the per-service-name counts plus the distinct customer count.
func (r *UsageRepository) CalendarCounts(ctx context.Context, from, to time.Time) (map[string]*models.CalendarDay, error) {
	query := `
		SELECT e.service_date, st.name, COUNT(*)
		FROM service_usage_events e
		JOIN service_types st ON st.id = e.service_type_id
		WHERE e.service_date >= $1 AND e.service_date < $2
		GROUP BY e.service_date, st.name
		ORDER BY e.service_date ASC
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make(map[string]*models.CalendarDay)
	for rows.Next() {
		var c dailyServiceCount
		if err := rows.Scan(&c.Date, &c.ServiceName, &c.Count); err != nil {
			return nil, err
		}
		key := c.Date.Format("2006-01-02")
		day, ok := days[key]
		if !ok {
			day = &models.CalendarDay{Date: key, Services: make(map[string]int)}
			days[key] = day
		}
		day.Services[c.ServiceName] += c.Count
		day.TotalServices += c.Count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	custQuery := `
		SELECT service_date, COUNT(DISTINCT customer_id)
		FROM service_usage_events
		WHERE service_date >= $1 AND service_date < $2
		GROUP BY service_date
	`
	custRows, err := r.db.Query(ctx, custQuery, from, to)
	if err != nil {
		return nil, err
	}
	defer custRows.Close()

	for custRows.Next() {
		var date time.Time
		var count int
		if err := custRows.Scan(&date, &count); err != nil {
			return nil, err
		}
		if day, ok := days[date.Format("2006-01-02")]; ok {
			day.UniqueCustomers = count
		}
	}
	return days, custRows.Err()
}

// MonthlyTotals returns the event count, distinct customer count, and the
// most frequent service name for the period. popular is empty when there are
// no events.
func (r *UsageRepository) MonthlyTotals(ctx context.Context, from, to time.Time) (total int, customers int, popular string, err error) {
	query := `
		SELECT COUNT(*), COUNT(DISTINCT customer_id)
		FROM service_usage_events
		WHERE service_date >= $1 AND service_date < $2
	`
	if err = r.db.QueryRow(ctx, query, from, to).Scan(&total, &customers); err != nil {
		return 0, 0, "", err
	}

	popQuery := `
		SELECT st.name
		FROM service_usage_events e
		JOIN service_types st ON st.id = e.service_type_id
		WHERE e.service_date >= $1 AND e.service_date < $2
		GROUP BY st.name
		ORDER BY COUNT(*) DESC, st.name ASC
		LIMIT 1
	`
	rows, err := r.db.Query(ctx, popQuery, from, to)
	if err != nil {
		return 0, 0, "", err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&popular); err != nil {
			return 0, 0, "", err
		}
	}
	return total, customers, popular, rows.Err()
}
