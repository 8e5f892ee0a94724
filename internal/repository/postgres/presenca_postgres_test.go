package postgres

import (
	"context"
	"testing"
	"time"

	"multiplicadores/internal/database"
	"multiplicadores/internal/model"
	"multiplicadores/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPresencaPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPresencaPostgres(db)
	ctx := context.Background()

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	p := &model.Presenca{
		MatriculaID: 7,
		DateKey:     day,
		Timestamp:   day.Add(14 * time.Hour),
		IP:          "203.0.113.9",
		UserAgent:   "Mozilla/5.0",
		Source:      "web",
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO presencas").
			WithArgs(p.MatriculaID, p.DateKey, p.Timestamp, p.IP, p.UserAgent, p.Source).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

		stored, err := repo.Create(ctx, p)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), stored.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("same day duplicate is a unique violation", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO presencas").
			WithArgs(p.MatriculaID, p.DateKey, p.Timestamp, p.IP, p.UserAgent, p.Source).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_presenca_por_dia"})

		stored, err := repo.Create(ctx, p)

		assert.Nil(t, stored)
		assert.True(t, database.IsUniqueViolation(err))
	})
}

func TestPresencaPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPresencaPostgres(db)
	ctx := context.Background()

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	t.Run("no filters", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM presencas p JOIN matriculas m`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows([]string{"id", "date_key", "timestamp", "code", "holder_name", "cpf", "status", "ip", "source"}).
			AddRow(1, day, day.Add(10*time.Hour), "MR25684", "Ana Silva", "10688046967", "active", "203.0.113.9", "web")

		mock.ExpectQuery("SELECT (.+) FROM presencas p JOIN matriculas m (.+) ORDER BY").
			WithArgs(50, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PresencaFilter{}, repository.PageQuery{Limit: 50, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
		assert.Equal(t, "MR25684", res.Items[0].Code)
	})

	t.Run("code and range filters", func(t *testing.T) {
		start := day.AddDate(0, -1, 0)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM presencas p JOIN matriculas m`).
			WithArgs("MR25684", start, day).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery("SELECT (.+) FROM presencas p JOIN matriculas m (.+) ORDER BY").
			WithArgs("MR25684", start, day, 10, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "date_key", "timestamp", "code", "holder_name", "cpf", "status", "ip", "source"}))

		res, err := repo.List(ctx,
			repository.PresencaFilter{Code: "MR25684", Start: &start, End: &day},
			repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Items)
	})
}

func TestPresencaPostgres_Export(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPresencaPostgres(db)
	ctx := context.Background()

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "date_key", "timestamp", "code", "holder_name", "cpf", "status", "ip", "source"}).
		AddRow(2, day, day.Add(11*time.Hour), "MR41081", "Bruno Costa", "", "active", "", "api").
		AddRow(1, day, day.Add(10*time.Hour), "MR25684", "Ana Silva", "10688046967", "active", "203.0.113.9", "web")

	mock.ExpectQuery("SELECT (.+) FROM presencas p JOIN matriculas m (.+) ORDER BY").
		WillReturnRows(rows)

	items, err := repo.Export(ctx, repository.PresencaFilter{})

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
