package models

import "time"

type ServiceType struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	DefaultPrice    int64     `json:"default_price"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// PackageService is one covered service type inside a package. TotalSessions
// is nil when the package does not break its session count down per type; the
// split is then computed at purchase time.
type PackageService struct {
	ServiceTypeID   int64  `json:"service_type_id"`
	ServiceTypeName string `json:"service_type_name"`
	TotalSessions   *int   `json:"total_sessions"`
}

type Package struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Price         int64            `json:"price"`
	ValidDays     int              `json:"valid_days"`
	TotalSessions int              `json:"total_sessions"`
	Services      []PackageService `json:"services,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}
