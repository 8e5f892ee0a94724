package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"multiplicadores/internal/model"
	"multiplicadores/internal/repository"
)

// PresencaPostgres is a PostgreSQL implementation of
// repository.PresencaRepository.
type PresencaPostgres struct {
	db *sql.DB
}

// NewPresencaPostgres creates a new PresencaPostgres repository.
func NewPresencaPostgres(db *sql.DB) *PresencaPostgres {
	return &PresencaPostgres{db: db}
}

var _ repository.PresencaRepository = (*PresencaPostgres)(nil)

// Create inserts an attendance row. Unique-constraint violations on
// (matricula_id, date_key) propagate to the caller untouched.
func (r *PresencaPostgres) Create(ctx context.Context, p *model.Presenca) (*model.Presenca, error) {
	const q = `
		INSERT INTO presencas (matricula_id, date_key, timestamp, ip, user_agent, source)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		RETURNING id
	`
	out := *p
	err := r.db.QueryRowContext(ctx, q,
		p.MatriculaID,
		p.DateKey,
		p.Timestamp,
		p.IP,
		p.UserAgent,
		p.Source,
	).Scan(&out.ID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// filterClause builds the WHERE fragment shared by List and Export.
// Placeholders start at $1; args are returned in order.
func filterClause(f repository.PresencaFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Code != "" {
		args = append(args, f.Code)
		conds = append(conds, fmt.Sprintf("m.code = $%d", len(args)))
	}
	if f.Start != nil {
		args = append(args, *f.Start)
		conds = append(conds, fmt.Sprintf("p.date_key >= $%d", len(args)))
	}
	if f.End != nil {
		args = append(args, *f.End)
		conds = append(conds, fmt.Sprintf("p.date_key <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const presencaJoin = `
		FROM presencas p
		JOIN matriculas m ON m.id = p.matricula_id`

const presencaDetailColumns = `p.id, p.date_key, p.timestamp, m.code, COALESCE(m.holder_name, ''), COALESCE(m.cpf, ''), m.status, COALESCE(p.ip, ''), COALESCE(p.source, '')`

func scanPresencaDetail(rows *sql.Rows) (*model.PresencaDetail, error) {
	var d model.PresencaDetail
	if err := rows.Scan(
		&d.ID,
		&d.DateKey,
		&d.Timestamp,
		&d.Code,
		&d.HolderName,
		&d.CPF,
		&d.Status,
		&d.IP,
		&d.Source,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns a filtered, paginated page of attendance rows joined with
// their enrollment, plus the total row count for the filter.
func (r *PresencaPostgres) List(ctx context.Context, f repository.PresencaFilter, pq repository.PageQuery) (*repository.PageResult[model.PresencaDetail], error) {
	where, args := filterClause(f)

	qCount := `SELECT COUNT(*)` + presencaJoin + where
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT ` + presencaDetailColumns + presencaJoin + where +
		fmt.Sprintf(`
		ORDER BY p.date_key DESC, p.timestamp DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.PresencaDetail, 0)
	for rows.Next() {
		d, err := scanPresencaDetail(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.PresencaDetail]{Items: items, Total: total}, nil
}

// Export returns all attendance rows matching the filter, without pagination.
func (r *PresencaPostgres) Export(ctx context.Context, f repository.PresencaFilter) ([]model.PresencaDetail, error) {
	where, args := filterClause(f)

	q := `SELECT ` + presencaDetailColumns + presencaJoin + where + `
		ORDER BY p.date_key DESC, p.timestamp DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.PresencaDetail, 0)
	for rows.Next() {
		d, err := scanPresencaDetail(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
