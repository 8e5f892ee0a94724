package model

import "time"

// Presenca is a daily attendance record for an enrollment. At most one row
// exists per (matricula, date) pair; the database enforces this with the
// uq_presenca_por_dia unique constraint.
type Presenca struct {
	ID          int64     `json:"id"`
	MatriculaID int64     `json:"matricula_id"`
	DateKey     time.Time `json:"date_key"` // calendar day, UTC
	Timestamp   time.Time `json:"timestamp"`
	IP          string    `json:"ip,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	Source      string    `json:"source,omitempty"` // 'web', 'api', 'mobile'
}

// PresencaDetail is a presenca joined with its enrollment, as returned by
// listing and export queries.
type PresencaDetail struct {
	ID         int64     `json:"id"`
	DateKey    time.Time `json:"date_key"`
	Timestamp  time.Time `json:"timestamp_utc"`
	Code       string    `json:"code"`
	HolderName string    `json:"holder_name"`
	CPF        string    `json:"cpf,omitempty"`
	Status     string    `json:"status"`
	IP         string    `json:"ip"`
	Source     string    `json:"source"`
}
