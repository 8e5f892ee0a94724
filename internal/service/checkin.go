package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"multiplicadores/internal/cpf"
	"multiplicadores/internal/database"
	"multiplicadores/internal/model"
	"multiplicadores/internal/repository"
)

var (
	ErrInvalidBirthDate  = errors.New("invalid birth date")
	ErrBirthDateMismatch = errors.New("birth date does not match enrollment record")
)

// birthDateLayouts accepted on check-in forms.
var birthDateLayouts = []string{"2006-01-02", "02/01/2006"}

// parseBirthDateISO normalizes a birth date to ISO (YYYY-MM-DD). Accepts
// ISO and BR (DD/MM/YYYY) input.
func parseBirthDateISO(s string) (string, bool) {
	for _, layout := range birthDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("2006-01-02"), true
		}
	}
	return "", false
}

// CheckinInput is one event check-in submission.
type CheckinInput struct {
	EventDate time.Time
	CPF       string
	Name      string
	BirthDate string
}

// CheckinResult reports the upsert outcome. Updated is true when a row for
// (event date, cpf) already existed and was refreshed.
type CheckinResult struct {
	Checkin *model.EventCheckin
	Updated bool
}

// CheckinService defines the ad-hoc event check-in use cases.
type CheckinService interface {
	// Submit validates the CPF and birth date, cross-checks the
	// enrollment base, and upserts the check-in for the event day.
	Submit(ctx context.Context, in CheckinInput) (*CheckinResult, error)

	// ListByEvent returns the day's check-ins in creation order.
	ListByEvent(ctx context.Context, eventDate time.Time) ([]model.EventCheckin, error)
}

type checkinService struct {
	repo    repository.CheckinRepository
	matRepo repository.MatriculaRepository
}

func NewCheckinService(repo repository.CheckinRepository, matRepo repository.MatriculaRepository) CheckinService {
	return &checkinService{repo: repo, matRepo: matRepo}
}

func (s *checkinService) Submit(ctx context.Context, in CheckinInput) (*CheckinResult, error) {
	clean := cpf.OnlyDigits(in.CPF)
	if !cpf.Valid(clean) {
		return nil, ErrInvalidCPF
	}
	birthISO, ok := parseBirthDateISO(in.BirthDate)
	if !ok {
		return nil, ErrInvalidBirthDate
	}

	// when the CPF is enrolled and has a birth date on record, they must match
	if m, err := s.matRepo.FindByCPF(ctx, clean); err == nil {
		if m.BirthDate != "" && m.BirthDate != birthISO {
			return nil, ErrBirthDateMismatch
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	day := in.EventDate.Truncate(24 * time.Hour)

	if existing, err := s.repo.FindByEventCPF(ctx, day, clean); err == nil {
		existing.BirthDate = birthISO
		if in.Name != "" {
			existing.Name = in.Name
		}
		existing.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return &CheckinResult{Checkin: existing, Updated: true}, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now().UTC()
	stored, err := s.repo.Create(ctx, &model.EventCheckin{
		EventDate: day,
		CPF:       clean,
		Name:      in.Name,
		BirthDate: birthISO,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			// lost the race to a concurrent submit; treat as success
			existing, ferr := s.repo.FindByEventCPF(ctx, day, clean)
			if ferr != nil {
				return nil, ferr
			}
			return &CheckinResult{Checkin: existing, Updated: true}, nil
		}
		return nil, err
	}
	return &CheckinResult{Checkin: stored, Updated: false}, nil
}

func (s *checkinService) ListByEvent(ctx context.Context, eventDate time.Time) ([]model.EventCheckin, error) {
	return s.repo.ListByEvent(ctx, eventDate.Truncate(24*time.Hour))
}
