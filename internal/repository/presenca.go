package repository

import (
	"context"
	"time"

	"multiplicadores/internal/model"
)

// PresencaFilter narrows attendance listing and export queries.
// Zero values mean "no filter".
type PresencaFilter struct {
	Code  string
	Start *time.Time
	End   *time.Time
}

// PresencaRepository defines data access for daily attendance records.
type PresencaRepository interface {
	// Create inserts an attendance row. A unique-constraint violation on
	// (matricula_id, date_key) is returned as-is; callers decide how to
	// interpret it.
	Create(ctx context.Context, p *model.Presenca) (*model.Presenca, error)

	// List returns attendance rows joined with their enrollment, filtered
	// and paginated, ordered by date_key desc then timestamp desc.
	List(ctx context.Context, f PresencaFilter, pq PageQuery) (*PageResult[model.PresencaDetail], error)

	// Export returns all attendance rows matching the filter, same order
	// as List but without pagination.
	Export(ctx context.Context, f PresencaFilter) ([]model.PresencaDetail, error)
}
