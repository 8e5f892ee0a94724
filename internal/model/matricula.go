package model

import "time"

// Matricula status values.
const (
	StatusActive  = "active"
	StatusRevoked = "revoked"
	StatusExpired = "expired"
)

// Matricula is an enrollment in the multipliers program. The code is the
// public identifier (prefix + N digits, e.g. MR25684); the CPF is unique
// across enrollments. This is a pure domain model with no database tags.
type Matricula struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	HolderName string    `json:"holder_name"`
	CPF        string    `json:"cpf"`
	BirthDate  string    `json:"birth_date,omitempty"` // ISO date, optional
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Active reports whether the enrollment may register attendance.
func (m *Matricula) Active() bool {
	return m.Status == "" || m.Status == StatusActive
}
