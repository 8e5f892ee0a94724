package repository

import (
	"context"

	"multiplicadores/internal/model"
)

// MatriculaRepository defines data access for enrollments using SQL queries
// only. No business logic here — strictly persistence operations.
type MatriculaRepository interface {
	// Create inserts a new enrollment and returns the stored record.
	Create(ctx context.Context, m *model.Matricula) (*model.Matricula, error)

	// FindByCode returns an enrollment by its public code.
	FindByCode(ctx context.Context, code string) (*model.Matricula, error)

	// FindByCPF returns an enrollment by national ID.
	FindByCPF(ctx context.Context, cpf string) (*model.Matricula, error)

	// List returns all enrollments ordered by creation time, newest first.
	List(ctx context.Context) ([]model.Matricula, error)

	// UpdateStatus sets the status of the enrollment with the given code.
	UpdateStatus(ctx context.Context, code, status string) error
}
