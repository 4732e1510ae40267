package repository

import (
	"context"

	"github.com/minjae-dev/WellCareBack/internal/models"
)

type CreatePackageInput struct {
	Name          string
	Price         int64
	ValidDays     int
	TotalSessions int
	Services      []PackageServiceInput
}

type PackageServiceInput struct {
	ServiceTypeID int64
	TotalSessions *int
}

type PackageRepository struct {
	db DBTX
}

func NewPackageRepository(db DBTX) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) Create(ctx context.Context, input CreatePackageInput) (*models.Package, error) {
	query := `
		INSERT INTO packages (name, price, valid_days, total_sessions)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, price, valid_days, total_sessions, created_at
	`
	var pkg models.Package
	err := r.db.QueryRow(ctx, query, input.Name, input.Price, input.ValidDays, input.TotalSessions).
		Scan(&pkg.ID, &pkg.Name, &pkg.Price, &pkg.ValidDays, &pkg.TotalSessions, &pkg.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, svc := range input.Services {
		_, err := r.db.Exec(ctx, `
			INSERT INTO package_services (package_id, service_type_id, total_sessions)
			VALUES ($1, $2, $3)
		`, pkg.ID, svc.ServiceTypeID, svc.TotalSessions)
		if err != nil {
			return nil, err
		}
	}

	services, err := r.listServices(ctx, pkg.ID)
	if err != nil {
		return nil, err
	}
	pkg.Services = services
	return &pkg, nil
}

func (r *PackageRepository) GetByID(ctx context.Context, id int64) (*models.Package, error) {
	query := `
		SELECT id, name, price, valid_days, total_sessions, created_at
		FROM packages
		WHERE id = $1
	`
	var pkg models.Package
	err := r.db.QueryRow(ctx, query, id).
		Scan(&pkg.ID, &pkg.Name, &pkg.Price, &pkg.ValidDays, &pkg.TotalSessions, &pkg.CreatedAt)
	if err != nil {
		return nil, err
	}

	services, err := r.listServices(ctx, id)
	if err != nil {
		return nil, err
	}
	pkg.Services = services
	return &pkg, nil
}

func (r *PackageRepository) List(ctx context.Context) ([]models.Package, error) {
	query := `
		SELECT id, name, price, valid_days, total_sessions, created_at
		FROM packages
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packages := make([]models.Package, 0)
	for rows.Next() {
		var pkg models.Package
		if err := rows.Scan(&pkg.ID, &pkg.Name, &pkg.Price, &pkg.ValidDays, &pkg.TotalSessions, &pkg.CreatedAt); err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range packages {
		services, err := r.listServices(ctx, packages[i].ID)
		if err != nil {
			return nil, err
		}
		packages[i].Services = services
	}
	return packages, nil
}

func (r *PackageRepository) listServices(ctx context.Context, packageID int64) ([]models.PackageService, error) {
	query := `
		SELECT ps.service_type_id, st.name, ps.total_sessions
		FROM package_services ps
		JOIN service_types st ON st.id = ps.service_type_id
		WHERE ps.package_id = $1
		ORDER BY ps.service_type_id ASC
	`
	rows, err := r.db.Query(ctx, query, packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]models.PackageService, 0)
	for rows.Next() {
		var svc models.PackageService
		if err := rows.Scan(&svc.ServiceTypeID, &svc.ServiceTypeName, &svc.TotalSessions); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}
