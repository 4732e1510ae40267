package models

import "time"

const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusConsulted = "consulted"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

type Lead struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Phone       *string    `json:"phone"`
	Channel     string     `json:"channel"`
	Status      string     `json:"status"`
	Memo        *string    `json:"memo,omitempty"`
	CustomerID  *int64     `json:"customer_id,omitempty"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type LeadFunnelStats struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"by_status"`
	Converted      int            `json:"converted"`
	ConversionRate float64        `json:"conversion_rate"`
}

type ChannelConversionStat struct {
	Channel        string  `json:"channel"`
	Total          int     `json:"total"`
	Converted      int     `json:"converted"`
	ConversionRate float64 `json:"conversion_rate"`
}
