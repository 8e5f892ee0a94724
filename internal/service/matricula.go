package service

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"multiplicadores/internal/config"
	"multiplicadores/internal/cpf"
	"multiplicadores/internal/database"
	"multiplicadores/internal/model"
	"multiplicadores/internal/repository"
)

var (
	ErrCodeRequired    = errors.New("code is required")
	ErrInvalidFormat   = errors.New("invalid code format")
	ErrNotFound        = errors.New("matricula not found")
	ErrInactive        = errors.New("matricula is not active")
	ErrInvalidCPF      = errors.New("invalid cpf")
	ErrAlreadyEnrolled = errors.New("cpf already enrolled")

	// errCodeExhausted means every disambiguation attempt collided.
	errCodeExhausted = errors.New("could not allocate a free code")
)

// maxCodeAttempts bounds the collision-disambiguation loop in Enroll.
const maxCodeAttempts = 10

// MatriculaService defines the enrollment use cases.
type MatriculaService interface {
	// CodeFromCPF computes the deterministic code for a CPF without
	// touching the database. The CPF only needs 11 digits here; check
	// digits are not enforced for the compute-only path.
	CodeFromCPF(rawCPF string) (cleanCPF, code string, err error)

	// Enroll creates an enrollment with a generated code, rehashing on
	// code collisions with other CPFs.
	Enroll(ctx context.Context, rawCPF, holderName, birthDate string) (*model.Matricula, error)

	// Validate checks the code format before any lookup, then fetches
	// the enrollment.
	Validate(ctx context.Context, code string) (*model.Matricula, error)

	// List returns all enrollments, newest first.
	List(ctx context.Context) ([]model.Matricula, error)

	// NormalizeCode trims and uppercases a user-supplied code.
	NormalizeCode(code string) string

	// ValidFormat reports whether the code matches prefix + N digits.
	ValidFormat(code string) bool

	// FormatHint describes the expected code shape for error messages.
	FormatHint() string
}

type matriculaService struct {
	cfg    config.MatriculaConfig
	repo   repository.MatriculaRepository
	format *regexp.Regexp
}

// NewMatriculaService compiles the code-format regex once from config.
func NewMatriculaService(cfg config.MatriculaConfig, repo repository.MatriculaRepository) MatriculaService {
	format := regexp.MustCompile(fmt.Sprintf(`^%s\d{%d}$`, regexp.QuoteMeta(cfg.Prefix), cfg.Digits))
	return &matriculaService{cfg: cfg, repo: repo, format: format}
}

func (s *matriculaService) NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *matriculaService) ValidFormat(code string) bool {
	return s.format.MatchString(code)
}

func (s *matriculaService) FormatHint() string {
	return fmt.Sprintf("%s + %d dígitos", s.cfg.Prefix, s.cfg.Digits)
}

// codeFor hashes cpf and salt into the digit range. attempt > 0 appends a
// disambiguating suffix so collisions between different CPFs can be
// resolved while staying deterministic.
func (s *matriculaService) codeFor(cleanCPF string, attempt int) string {
	base := cleanCPF + ":" + s.cfg.Salt
	if attempt > 0 {
		base = fmt.Sprintf("%s#%d", base, attempt)
	}
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(base))
	n := binary.BigEndian.Uint64(h.Sum(nil))

	low := uint64(math.Pow10(s.cfg.Digits - 1))
	high := uint64(math.Pow10(s.cfg.Digits)) - 1
	span := high - low + 1
	return fmt.Sprintf("%s%d", s.cfg.Prefix, (n%span)+low)
}

func (s *matriculaService) CodeFromCPF(rawCPF string) (string, string, error) {
	clean := cpf.OnlyDigits(rawCPF)
	if len(clean) != 11 {
		return "", "", ErrInvalidCPF
	}
	return clean, s.codeFor(clean, 0), nil
}

func (s *matriculaService) Enroll(ctx context.Context, rawCPF, holderName, birthDate string) (*model.Matricula, error) {
	clean := cpf.OnlyDigits(rawCPF)
	if !cpf.Valid(clean) {
		return nil, ErrInvalidCPF
	}

	birthISO := ""
	if strings.TrimSpace(birthDate) != "" {
		iso, ok := parseBirthDateISO(strings.TrimSpace(birthDate))
		if !ok {
			return nil, ErrInvalidBirthDate
		}
		birthISO = iso
	}

	if _, err := s.repo.FindByCPF(ctx, clean); err == nil {
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.codeFor(clean, attempt)

		existing, err := s.repo.FindByCode(ctx, code)
		if err == nil {
			if existing.CPF == clean {
				return nil, ErrAlreadyEnrolled
			}
			continue // code taken by another CPF, rehash
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		stored, err := s.repo.Create(ctx, &model.Matricula{
			Code:       code,
			HolderName: strings.TrimSpace(holderName),
			CPF:        clean,
			BirthDate:  birthISO,
			Status:     model.StatusActive,
			CreatedAt:  time.Now().UTC(),
		})
		if err != nil {
			if database.IsUniqueViolation(err) {
				// concurrent insert took either the code or the cpf;
				// re-check the cpf and otherwise try the next code
				if _, ferr := s.repo.FindByCPF(ctx, clean); ferr == nil {
					return nil, ErrAlreadyEnrolled
				}
				continue
			}
			return nil, err
		}
		return stored, nil
	}
	return nil, errCodeExhausted
}

func (s *matriculaService) Validate(ctx context.Context, code string) (*model.Matricula, error) {
	code = s.NormalizeCode(code)
	if code == "" {
		return nil, ErrCodeRequired
	}
	if !s.ValidFormat(code) {
		return nil, ErrInvalidFormat
	}
	m, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *matriculaService) List(ctx context.Context) ([]model.Matricula, error) {
	return s.repo.List(ctx)
}
