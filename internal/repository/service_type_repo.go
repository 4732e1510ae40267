package repository

import (
	"context"

	"github.com/minjae-dev/WellCareBack/internal/models"
)

type ServiceTypeRepository struct {
	db DBTX
}

func NewServiceTypeRepository(db DBTX) *ServiceTypeRepository {
	return &ServiceTypeRepository{db: db}
}

func (r *ServiceTypeRepository) Create(ctx context.Context, st *models.ServiceType) error {
	query := `
		INSERT INTO service_types (name, duration_minutes, default_price, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, active, created_at
	`
	return r.db.QueryRow(ctx, query, st.Name, st.DurationMinutes, st.DefaultPrice).
		Scan(&st.ID, &st.Active, &st.CreatedAt)
}

func (r *ServiceTypeRepository) GetByID(ctx context.Context, id int64) (*models.ServiceType, error) {
	query := `
		SELECT id, name, duration_minutes, default_price, active, created_at
		FROM service_types
		WHERE id = $1
	`
	var st models.ServiceType
	err := r.db.QueryRow(ctx, query, id).
		Scan(&st.ID, &st.Name, &st.DurationMinutes, &st.DefaultPrice, &st.Active, &st.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *ServiceTypeRepository) GetByName(ctx context.Context, name string) (*models.ServiceType, error) {
	query := `
		SELECT id, name, duration_minutes, default_price, active, created_at
		FROM service_types
		WHERE name = $1
	`
	var st models.ServiceType
	err := r.db.QueryRow(ctx, query, name).
		Scan(&st.ID, &st.Name, &st.DurationMinutes, &st.DefaultPrice, &st.Active, &st.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *ServiceTypeRepository) List(ctx context.Context, activeOnly bool) ([]models.ServiceType, error) {
	query := `
		SELECT id, name, duration_minutes, default_price, active, created_at
		FROM service_types
		WHERE active OR NOT $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]models.ServiceType, 0)
	for rows.Next() {
		var st models.ServiceType
		if err := rows.Scan(&st.ID, &st.Name, &st.DurationMinutes, &st.DefaultPrice, &st.Active, &st.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, rows.Err()
}

func (r *ServiceTypeRepository) Update(ctx context.Context, st *models.ServiceType) error {
	query := `
		UPDATE service_types
		SET name = $2, duration_minutes = $3, default_price = $4, active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query, st.ID, st.Name, st.DurationMinutes, st.DefaultPrice, st.Active).
		Scan(&st.CreatedAt)
}
