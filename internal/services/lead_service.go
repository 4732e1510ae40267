package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
)

type customerCreator interface {
	Create(ctx context.Context, input repository.CreateCustomerInput) (*models.Customer, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
}

type LeadService struct {
	db           *pgxpool.Pool
	leadRepo     *repository.LeadRepository
	customerRepo customerCreator
}

func NewLeadService(db *pgxpool.Pool, leadRepo *repository.LeadRepository, customerRepo customerCreator) *LeadService {
	return &LeadService{db: db, leadRepo: leadRepo, customerRepo: customerRepo}
}

func (s *LeadService) Create(ctx context.Context, input repository.CreateLeadInput) (*models.Lead, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Channel) == "" {
		return nil, ErrInvalidInput
	}
	return s.leadRepo.Create(ctx, input)
}

func (s *LeadService) List(ctx context.Context, filter repository.LeadListFilter) ([]models.Lead, int, error) {
	return s.leadRepo.List(ctx, filter)
}

func validLeadStatus(status string) bool {
	switch status {
	case models.LeadStatusNew, models.LeadStatusContacted, models.LeadStatusConsulted, models.LeadStatusLost:
		return true
	}
	return false
}

// UpdateStatus moves a lead along the funnel. Converted is terminal and is
// only reachable through Convert.
func (s *LeadService) UpdateStatus(ctx context.Context, leadID int64, status string) (*models.Lead, error) {
	if !validLeadStatus(status) {
		return nil, ErrInvalidInput
	}
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if lead.Status == models.LeadStatusConverted {
		return nil, ErrInvalidStateTransition
	}
	return s.leadRepo.UpdateStatus(ctx, leadID, status)
}

// Convert turns a lead into a customer. With no existing customer id a new
// customer record is created from the lead's fields, in the same
// transaction as the status change.
func (s *LeadService) Convert(ctx context.Context, leadID int64, customerID *int64) (*models.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if lead.Status == models.LeadStatusConverted {
		return nil, ErrInvalidStateTransition
	}

	if customerID != nil {
		if _, err := s.customerRepo.GetByID(ctx, *customerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return s.leadRepo.MarkConverted(ctx, leadID, *customerID, time.Now().UTC())
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txCustomerRepo := repository.NewCustomerRepository(tx)
	txLeadRepo := repository.NewLeadRepository(tx)

	customer, err := txCustomerRepo.Create(ctx, repository.CreateCustomerInput{
		Name:    lead.Name,
		Phone:   lead.Phone,
		Channel: &lead.Channel,
		Memo:    lead.Memo,
	})
	if err != nil {
		return nil, err
	}

	converted, err := txLeadRepo.MarkConverted(ctx, leadID, customer.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return converted, nil
}
