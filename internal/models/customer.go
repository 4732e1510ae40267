package models

import "time"

type Customer struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Phone     *string    `json:"phone"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Gender    *string    `json:"gender,omitempty"`
	Channel   *string    `json:"channel,omitempty"`
	Memo      *string    `json:"memo,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
