package model

import "time"

// EventCheckin is an ad-hoc event check-in keyed by (event date, CPF),
// for attendees without a pre-existing enrollment. The database enforces
// uniqueness per day with uq_event_checkins_event_date_cpf.
type EventCheckin struct {
	ID        int64     `json:"id"`
	EventDate time.Time `json:"event_date"`
	CPF       string    `json:"cpf"`
	Name      string    `json:"name,omitempty"`
	BirthDate string    `json:"birth_date,omitempty"` // ISO date
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
