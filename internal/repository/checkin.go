package repository

import (
	"context"
	"time"

	"multiplicadores/internal/model"
)

// CheckinRepository defines data access for event check-ins.
type CheckinRepository interface {
	// Create inserts a check-in row. A unique-constraint violation on
	// (event_date, cpf) is returned as-is.
	Create(ctx context.Context, c *model.EventCheckin) (*model.EventCheckin, error)

	// FindByEventCPF returns the check-in for the given day and CPF.
	FindByEventCPF(ctx context.Context, eventDate time.Time, cpf string) (*model.EventCheckin, error)

	// Update refreshes name and birth_date of an existing check-in.
	Update(ctx context.Context, c *model.EventCheckin) error

	// ListByEvent returns the day's check-ins ordered by creation time.
	ListByEvent(ctx context.Context, eventDate time.Time) ([]model.EventCheckin, error)
}
