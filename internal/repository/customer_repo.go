package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/minjae-dev/WellCareBack/internal/models"
)

type CreateCustomerInput struct {
	Name      string
	Phone     *string
	BirthDate *time.Time
	Gender    *string
	Channel   *string
	Memo      *string
}

type CustomerListFilter struct {
	Search string
	Page   int
	Limit  int
}

type CustomerRepository struct {
	db DBTX
}

func NewCustomerRepository(db DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = "id, name, phone, birth_date, gender, channel, memo, created_at, updated_at"

func scanCustomer(row interface{ Scan(dest ...any) error }, c *models.Customer) error {
	return row.Scan(&c.ID, &c.Name, &c.Phone, &c.BirthDate, &c.Gender, &c.Channel, &c.Memo, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CustomerRepository) Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error) {
	query := fmt.Sprintf(`
		INSERT INTO customers (name, phone, birth_date, gender, channel, memo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, customerColumns)

	var customer models.Customer
	err := scanCustomer(r.db.QueryRow(ctx, query,
		input.Name, input.Phone, input.BirthDate, input.Gender, input.Channel, input.Memo,
	), &customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)

	var customer models.Customer
	if err := scanCustomer(r.db.QueryRow(ctx, query, id), &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) List(ctx context.Context, filter CustomerListFilter) ([]models.Customer, int, error) {
	args := []any{}
	where := "TRUE"
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		where = "(name ILIKE $1 OR phone ILIKE $1)"
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM customers WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf(`
		SELECT %s FROM customers
		WHERE %s
		ORDER BY id DESC
		LIMIT $%d OFFSET $%d
	`, customerColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := make([]models.Customer, 0)
	for rows.Next() {
		var customer models.Customer
		if err := scanCustomer(rows, &customer); err != nil {
			return nil, 0, err
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *CustomerRepository) Update(ctx context.Context, id int64, input CreateCustomerInput) (*models.Customer, error) {
	query := fmt.Sprintf(`
		UPDATE customers
		SET name = $2, phone = $3, birth_date = $4, gender = $5, channel = $6, memo = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, customerColumns)

	var customer models.Customer
	err := scanCustomer(r.db.QueryRow(ctx, query,
		id, input.Name, input.Phone, input.BirthDate, input.Gender, input.Channel, input.Memo,
	), &customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
