package models

import "time"

type ServiceUsageEvent struct {
	ID              int64     `json:"id"`
	CustomerID      int64     `json:"customer_id"`
	ServiceDate     time.Time `json:"service_date"`
	ServiceTypeID   int64     `json:"service_type_id"`
	ServiceTypeName string    `json:"service_type_name"`
	PurchaseID      *int64    `json:"purchase_id,omitempty"`
	AllocationID    *int64    `json:"allocation_id,omitempty"`
	SessionNumber   *int      `json:"session_number,omitempty"`
	Details         *string   `json:"details,omitempty"`
	StaffName       string    `json:"staff_name"`
	CreatedAt       time.Time `json:"created_at"`
}

// CalendarDay is one date cell of the monthly rollup.
type CalendarDay struct {
	Date            string         `json:"date"`
	TotalServices   int            `json:"total_services"`
	UniqueCustomers int            `json:"unique_customers"`
	Services        map[string]int `json:"services"`
}

type MonthlyStats struct {
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	TotalSessions   int    `json:"total_sessions"`
	UniqueCustomers int    `json:"unique_customers"`
	Revenue         int64  `json:"revenue"`
	PopularService  string `json:"popular_service"`
}
