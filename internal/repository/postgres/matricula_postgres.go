package postgres

import (
	"context"
	"database/sql"

	"multiplicadores/internal/model"
	"multiplicadores/internal/repository"
)

// MatriculaPostgres is a PostgreSQL implementation of
// repository.MatriculaRepository. It uses database/sql with parameterized
// queries and contains no business logic.
type MatriculaPostgres struct {
	db *sql.DB
}

// NewMatriculaPostgres creates a new MatriculaPostgres repository.
func NewMatriculaPostgres(db *sql.DB) *MatriculaPostgres {
	return &MatriculaPostgres{db: db}
}

var _ repository.MatriculaRepository = (*MatriculaPostgres)(nil)

const matriculaColumns = `id, code, COALESCE(holder_name, ''), COALESCE(cpf, ''), COALESCE(birth_date, ''), status, created_at`

func scanMatricula(row interface{ Scan(...any) error }) (*model.Matricula, error) {
	var m model.Matricula
	if err := row.Scan(
		&m.ID,
		&m.Code,
		&m.HolderName,
		&m.CPF,
		&m.BirthDate,
		&m.Status,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new enrollment row and returns the stored record.
func (r *MatriculaPostgres) Create(ctx context.Context, m *model.Matricula) (*model.Matricula, error) {
	const q = `
		INSERT INTO matriculas (code, holder_name, cpf, birth_date, status)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5)
		RETURNING ` + matriculaColumns + `
	`
	row := r.db.QueryRowContext(ctx, q,
		m.Code,
		m.HolderName,
		m.CPF,
		m.BirthDate,
		m.Status,
	)
	return scanMatricula(row)
}

// FindByCode fetches a single enrollment by its public code.
func (r *MatriculaPostgres) FindByCode(ctx context.Context, code string) (*model.Matricula, error) {
	const q = `
		SELECT ` + matriculaColumns + `
		FROM matriculas
		WHERE code = $1
	`
	return scanMatricula(r.db.QueryRowContext(ctx, q, code))
}

// FindByCPF fetches a single enrollment by national ID.
func (r *MatriculaPostgres) FindByCPF(ctx context.Context, cpf string) (*model.Matricula, error) {
	const q = `
		SELECT ` + matriculaColumns + `
		FROM matriculas
		WHERE cpf = $1
	`
	return scanMatricula(r.db.QueryRowContext(ctx, q, cpf))
}

// List returns every enrollment, newest first.
func (r *MatriculaPostgres) List(ctx context.Context) ([]model.Matricula, error) {
	const q = `
		SELECT ` + matriculaColumns + `
		FROM matriculas
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Matricula, 0)
	for rows.Next() {
		m, err := scanMatricula(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus sets the status of the enrollment with the given code.
// Returns sql.ErrNoRows when the code is unknown.
func (r *MatriculaPostgres) UpdateStatus(ctx context.Context, code, status string) error {
	const q = `UPDATE matriculas SET status = $2 WHERE code = $1`
	res, err := r.db.ExecContext(ctx, q, code, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
