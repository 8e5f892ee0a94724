package postgres

import (
	"context"
	"database/sql"
	"time"

	"multiplicadores/internal/model"
	"multiplicadores/internal/repository"
)

// CheckinPostgres is a PostgreSQL implementation of
// repository.CheckinRepository.
type CheckinPostgres struct {
	db *sql.DB
}

// NewCheckinPostgres creates a new CheckinPostgres repository.
func NewCheckinPostgres(db *sql.DB) *CheckinPostgres {
	return &CheckinPostgres{db: db}
}

var _ repository.CheckinRepository = (*CheckinPostgres)(nil)

const checkinColumns = `id, event_date, cpf, COALESCE(name, ''), COALESCE(birth_date, ''), created_at, updated_at`

func scanCheckin(row interface{ Scan(...any) error }) (*model.EventCheckin, error) {
	var c model.EventCheckin
	if err := row.Scan(
		&c.ID,
		&c.EventDate,
		&c.CPF,
		&c.Name,
		&c.BirthDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a check-in row. Unique-constraint violations on
// (event_date, cpf) propagate untouched.
func (r *CheckinPostgres) Create(ctx context.Context, c *model.EventCheckin) (*model.EventCheckin, error) {
	const q = `
		INSERT INTO event_checkins (event_date, cpf, name, birth_date)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		RETURNING ` + checkinColumns + `
	`
	row := r.db.QueryRowContext(ctx, q, c.EventDate, c.CPF, c.Name, c.BirthDate)
	return scanCheckin(row)
}

// FindByEventCPF fetches the check-in for the given day and CPF.
func (r *CheckinPostgres) FindByEventCPF(ctx context.Context, eventDate time.Time, cpf string) (*model.EventCheckin, error) {
	const q = `
		SELECT ` + checkinColumns + `
		FROM event_checkins
		WHERE event_date = $1 AND cpf = $2
	`
	return scanCheckin(r.db.QueryRowContext(ctx, q, eventDate, cpf))
}

// Update refreshes name and birth_date of an existing check-in.
func (r *CheckinPostgres) Update(ctx context.Context, c *model.EventCheckin) error {
	const q = `
		UPDATE event_checkins
		SET name = NULLIF($2, ''), birth_date = NULLIF($3, ''), updated_at = now()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.BirthDate)
	return err
}

// ListByEvent returns the day's check-ins ordered by creation time.
func (r *CheckinPostgres) ListByEvent(ctx context.Context, eventDate time.Time) ([]model.EventCheckin, error) {
	const q = `
		SELECT ` + checkinColumns + `
		FROM event_checkins
		WHERE event_date = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, q, eventDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.EventCheckin, 0)
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
