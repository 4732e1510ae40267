package services

import (
	"context"
	"errors"
	"testing"

	"github.com/minjae-dev/WellCareBack/internal/models"
	"github.com/minjae-dev/WellCareBack/internal/repository"
)

func TestValidLeadStatus(t *testing.T) {
	for _, status := range []string{
		models.LeadStatusNew,
		models.LeadStatusContacted,
		models.LeadStatusConsulted,
		models.LeadStatusLost,
	} {
		if !validLeadStatus(status) {
			t.Errorf("expected %q to be settable", status)
		}
	}
	// Converted is only reachable through Convert.
	if validLeadStatus(models.LeadStatusConverted) {
		t.Error("converted must not be settable directly")
	}
	if validLeadStatus("archived") {
		t.Error("unknown status must be rejected")
	}
}

func TestLeadCreateRejectsBlankFields(t *testing.T) {
	service := &LeadService{}

	cases := []struct {
		name  string
		input repository.CreateLeadInput
	}{
		{"missing name", repository.CreateLeadInput{Channel: "instagram"}},
		{"blank name", repository.CreateLeadInput{Name: "  ", Channel: "instagram"}},
		{"missing channel", repository.CreateLeadInput{Name: "Lee"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Create(context.Background(), tc.input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	service := &LeadService{}

	if _, err := service.UpdateStatus(context.Background(), 1, "converted"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for direct conversion, got %v", err)
	}
	if _, err := service.UpdateStatus(context.Background(), 1, "bogus"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
