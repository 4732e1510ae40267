package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
)

type CatalogService struct {
	db          *pgxpool.Pool
	typeRepo    *repository.ServiceTypeRepository
	packageRepo *repository.PackageRepository
}

func NewCatalogService(db *pgxpool.Pool, typeRepo *repository.ServiceTypeRepository, packageRepo *repository.PackageRepository) *CatalogService {
	return &CatalogService{db: db, typeRepo: typeRepo, packageRepo: packageRepo}
}

type CreateServiceTypeInput struct {
	Name            string
	DurationMinutes int
	DefaultPrice    int64
}

func (s *CatalogService) CreateServiceType(ctx context.Context, input CreateServiceTypeInput) (*models.ServiceType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.DurationMinutes <= 0 || input.DefaultPrice < 0 {
		return nil, ErrInvalidInput
	}
	st := &models.ServiceType{
		Name:            name,
		DurationMinutes: input.DurationMinutes,
		DefaultPrice:    input.DefaultPrice,
	}
	if err := s.typeRepo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *CatalogService) ListServiceTypes(ctx context.Context, activeOnly bool) ([]models.ServiceType, error) {
	return s.typeRepo.List(ctx, activeOnly)
}

// UpdateServiceType edits reference data. Retiring a type means clearing its
// active flag; rows are never deleted.
func (s *CatalogService) UpdateServiceType(ctx context.Context, id int64, input CreateServiceTypeInput, active bool) (*models.ServiceType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.DurationMinutes <= 0 || input.DefaultPrice < 0 {
		return nil, ErrInvalidInput
	}
	st, err := s.typeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	st.Name = name
	st.DurationMinutes = input.DurationMinutes
	st.DefaultPrice = input.DefaultPrice
	st.Active = active
	if err := s.typeRepo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

type CreatePackageInput struct {
	Name          string
	Price         int64
	ValidDays     int
	TotalSessions int
	Services      []PackageServiceSpec
}

type PackageServiceSpec struct {
	ServiceTypeID int64
	TotalSessions *int
}

// CreatePackage validates the one structural invariant of the catalog: when
// per-type totals are given, every covered type must carry one and they must
// sum to total_sessions. Mixed specs are rejected rather than guessed at.
func (s *CatalogService) CreatePackage(ctx context.Context, input CreatePackageInput) (*models.Package, error) {
	if strings.TrimSpace(input.Name) == "" || input.Price < 0 || input.ValidDays <= 0 ||
		input.TotalSessions <= 0 || len(input.Services) == 0 {
		return nil, ErrInvalidInput
	}

	hasExplicit := input.Services[0].TotalSessions != nil
	sum := 0
	seen := make(map[int64]bool, len(input.Services))
	for _, svc := range input.Services {
		if seen[svc.ServiceTypeID] {
			return nil, ErrInvalidInput
		}
		seen[svc.ServiceTypeID] = true

		if (svc.TotalSessions != nil) != hasExplicit {
			return nil, ErrInvalidInput
		}
		if svc.TotalSessions != nil {
			if *svc.TotalSessions < 0 {
				return nil, ErrInvalidInput
			}
			sum += *svc.TotalSessions
		}

		st, err := s.typeRepo.GetByID(ctx, svc.ServiceTypeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if !st.Active {
			return nil, ErrInvalidInput
		}
	}
	if hasExplicit && sum != input.TotalSessions {
		return nil, ErrInvalidInput
	}

	services := make([]repository.PackageServiceInput, 0, len(input.Services))
	for _, svc := range input.Services {
		services = append(services, repository.PackageServiceInput{
			ServiceTypeID: svc.ServiceTypeID,
			TotalSessions: svc.TotalSessions,
		})
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	pkg, err := repository.NewPackageRepository(tx).Create(ctx, repository.CreatePackageInput{
		Name:          strings.TrimSpace(input.Name),
		Price:         input.Price,
		ValidDays:     input.ValidDays,
		TotalSessions: input.TotalSessions,
		Services:      services,
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *CatalogService) GetPackage(ctx context.Context, id int64) (*models.Package, error) {
	pkg, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return pkg, nil
}

func (s *CatalogService) ListPackages(ctx context.Context) ([]models.Package, error) {
	return s.packageRepo.List(ctx)
}
