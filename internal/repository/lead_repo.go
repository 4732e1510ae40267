package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minjae-dev/WellCareBack/internal/models"
)

type CreateLeadInput struct {
	Name    string
	Phone   *string
	Channel string
	Memo    *string
}

type LeadListFilter struct {
	Status  string
	Channel string
	Page    int
	Limit   int
}

type LeadRepository struct {
	db DBTX
}

func NewLeadRepository(db DBTX) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = "id, name, phone, channel, status, memo, customer_id, converted_at, created_at, updated_at"

func scanLead(row interface{ Scan(dest ...any) error }, l *models.Lead) error {
	return row.Scan(&l.ID, &l.Name, &l.Phone, &l.Channel, &l.Status, &l.Memo, &l.CustomerID, &l.ConvertedAt, &l.CreatedAt, &l.UpdatedAt)
}

func (r *LeadRepository) Create(ctx context.Context, input CreateLeadInput) (*models.Lead, error) {
	query := fmt.Sprintf(`
		INSERT INTO leads (name, phone, channel, status, memo)
		VALUES ($1, $2, $3, 'new', $4)
		RETURNING %s
	`, leadColumns)

	var lead models.Lead
	if err := scanLead(r.db.QueryRow(ctx, query, input.Name, input.Phone, input.Channel, input.Memo), &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE id = $1`, leadColumns)

	var lead models.Lead
	if err := scanLead(r.db.QueryRow(ctx, query, id), &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) List(ctx context.Context, filter LeadListFilter) ([]models.Lead, int, error) {
	args := []any{}
	whereParts := []string{"TRUE"}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}
	if channel := strings.TrimSpace(filter.Channel); channel != "" {
		args = append(args, channel)
		whereParts = append(whereParts, fmt.Sprintf("channel = $%d", len(args)))
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM leads WHERE %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf(`
		SELECT %s FROM leads
		WHERE %s
		ORDER BY id DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]models.Lead, 0)
	for rows.Next() {
		var lead models.Lead
		if err := scanLead(rows, &lead); err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.Lead, error) {
	query := fmt.Sprintf(`
		UPDATE leads
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, leadColumns)

	var lead models.Lead
	if err := scanLead(r.db.QueryRow(ctx, query, id, status), &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) MarkConverted(ctx context.Context, id, customerID int64, at time.Time) (*models.Lead, error) {
	query := fmt.Sprintf(`
		UPDATE leads
		SET status = 'converted', customer_id = $2, converted_at = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, leadColumns)

	var lead models.Lead
	if err := scanLead(r.db.QueryRow(ctx, query, id, customerID, at), &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

type ChannelCount struct {
	Channel   string
	Total     int
	Converted int
}

func (r *LeadRepository) CountByChannel(ctx context.Context) ([]ChannelCount, error) {
	query := `
		SELECT channel, COUNT(*), COUNT(*) FILTER (WHERE status = 'converted')
		FROM leads
		GROUP BY channel
		ORDER BY channel ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]ChannelCount, 0)
	for rows.Next() {
		var c ChannelCount
		if err := rows.Scan(&c.Channel, &c.Total, &c.Converted); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
