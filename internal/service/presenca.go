package service

import (
	"context"
	"time"

	"multiplicadores/internal/database"
	"multiplicadores/internal/model"
	"multiplicadores/internal/repository"
)

// RequestMeta carries the request metadata stored with each attendance row.
type RequestMeta struct {
	IP        string
	UserAgent string
	Source    string
}

// maxUserAgentLen caps the stored user agent.
const maxUserAgentLen = 300

// RegisterResult is the outcome of an attendance registration. Already is
// true when a row for (matricula, day) existed; that is a success, not an
// error.
type RegisterResult struct {
	ID      int64
	Code    string
	Already bool
}

// PresencaListResult is the paginated listing DTO.
type PresencaListResult struct {
	Items   []model.PresencaDetail
	Total   int
	Page    int
	Pages   int
	PerPage int
}

// PresencaService defines the daily attendance use cases.
type PresencaService interface {
	// Check validates format, existence and active status of a code.
	Check(ctx context.Context, code string) (*model.Matricula, error)

	// Register records today's attendance for the code, idempotently.
	Register(ctx context.Context, code string, meta RequestMeta) (*RegisterResult, error)

	// List returns attendance rows with pagination, newest first.
	List(ctx context.Context, f repository.PresencaFilter, page, perPage int) (*PresencaListResult, error)

	// Export returns all attendance rows matching the filter.
	Export(ctx context.Context, f repository.PresencaFilter) ([]model.PresencaDetail, error)
}

type presencaService struct {
	matriculas MatriculaService
	repo       repository.PresencaRepository
}

func NewPresencaService(matriculas MatriculaService, repo repository.PresencaRepository) PresencaService {
	return &presencaService{matriculas: matriculas, repo: repo}
}

func (s *presencaService) Check(ctx context.Context, code string) (*model.Matricula, error) {
	m, err := s.matriculas.Validate(ctx, code)
	if err != nil {
		return nil, err
	}
	if !m.Active() {
		return m, ErrInactive
	}
	return m, nil
}

func (s *presencaService) Register(ctx context.Context, code string, meta RequestMeta) (*RegisterResult, error) {
	m, err := s.Check(ctx, code)
	if err != nil {
		return nil, err
	}

	ua := meta.UserAgent
	if len(ua) > maxUserAgentLen {
		ua = ua[:maxUserAgentLen]
	}
	now := time.Now().UTC()
	p := &model.Presenca{
		MatriculaID: m.ID,
		DateKey:     now.Truncate(24 * time.Hour),
		Timestamp:   now,
		IP:          meta.IP,
		UserAgent:   ua,
		Source:      meta.Source,
	}

	stored, err := s.repo.Create(ctx, p)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return &RegisterResult{Code: m.Code, Already: true}, nil
		}
		return nil, err
	}
	return &RegisterResult{ID: stored.ID, Code: m.Code, Already: false}, nil
}

func (s *presencaService) List(ctx context.Context, f repository.PresencaFilter, page, perPage int) (*PresencaListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 50
	}
	if f.Code != "" {
		f.Code = s.matriculas.NormalizeCode(f.Code)
		if !s.matriculas.ValidFormat(f.Code) {
			return nil, ErrInvalidFormat
		}
	}

	res, err := s.repo.List(ctx, f, repository.PageQuery{Limit: perPage, Offset: (page - 1) * perPage})
	if err != nil {
		return nil, err
	}
	pages := (res.Total + perPage - 1) / perPage
	return &PresencaListResult{
		Items:   res.Items,
		Total:   res.Total,
		Page:    page,
		Pages:   pages,
		PerPage: perPage,
	}, nil
}

func (s *presencaService) Export(ctx context.Context, f repository.PresencaFilter) ([]model.PresencaDetail, error) {
	if f.Code != "" {
		f.Code = s.matriculas.NormalizeCode(f.Code)
		if !s.matriculas.ValidFormat(f.Code) {
			return nil, ErrInvalidFormat
		}
	}
	return s.repo.Export(ctx, f)
}
