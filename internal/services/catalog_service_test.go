package services

import (
	"context"
	"errors"
	"testing"
)

func TestCreateServiceTypeRejectsInvalidInput(t *testing.T) {
	service := &CatalogService{}

	cases := []struct {
		name  string
		input CreateServiceTypeInput
	}{
		{"blank name", CreateServiceTypeInput{Name: "  ", DurationMinutes: 50, DefaultPrice: 80000}},
		{"zero duration", CreateServiceTypeInput{Name: "Brain", DefaultPrice: 80000}},
		{"negative price", CreateServiceTypeInput{Name: "Brain", DurationMinutes: 50, DefaultPrice: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.CreateServiceType(context.Background(), tc.input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreatePackageRejectsInvalidShape(t *testing.T) {
	service := &CatalogService{}

	valid := CreatePackageInput{
		Name:          "Recovery 10",
		Price:         900000,
		ValidDays:     90,
		TotalSessions: 10,
		Services:      []PackageServiceSpec{{ServiceTypeID: 1}},
	}

	cases := []struct {
		name   string
		mutate func(in *CreatePackageInput)
	}{
		{"blank name", func(in *CreatePackageInput) { in.Name = " " }},
		{"negative price", func(in *CreatePackageInput) { in.Price = -1 }},
		{"zero valid days", func(in *CreatePackageInput) { in.ValidDays = 0 }},
		{"zero sessions", func(in *CreatePackageInput) { in.TotalSessions = 0 }},
		{"no services", func(in *CreatePackageInput) { in.Services = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			input.Services = append([]PackageServiceSpec(nil), valid.Services...)
			tc.mutate(&input)
			if _, err := service.CreatePackage(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
