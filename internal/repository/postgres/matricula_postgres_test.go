package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"multiplicadores/internal/model"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func matriculaRows(m *model.Matricula) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "holder_name", "cpf", "birth_date", "status", "created_at"}).
		AddRow(m.ID, m.Code, m.HolderName, m.CPF, m.BirthDate, m.Status, m.CreatedAt)
}

func TestMatriculaPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMatriculaPostgres(db)
	ctx := context.Background()

	m := &model.Matricula{
		ID:         1,
		Code:       "MR25684",
		HolderName: "Ana Silva",
		CPF:        "10688046967",
		Status:     "active",
		CreatedAt:  time.Now().UTC(),
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO matriculas").
			WithArgs(m.Code, m.HolderName, m.CPF, m.BirthDate, m.Status).
			WillReturnRows(matriculaRows(m))

		result, err := repo.Create(ctx, m)

		assert.NoError(t, err)
		assert.Equal(t, "MR25684", result.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate cpf surfaces pg error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO matriculas").
			WithArgs(m.Code, m.HolderName, m.CPF, m.BirthDate, m.Status).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_matriculas_cpf"})

		_, err := repo.Create(ctx, m)

		var pgErr *pgconn.PgError
		assert.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "23505", pgErr.Code)
	})
}

func TestMatriculaPostgres_FindByCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMatriculaPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		m := &model.Matricula{ID: 1, Code: "MR25684", Status: "active", CreatedAt: time.Now()}
		mock.ExpectQuery("SELECT (.+) FROM matriculas WHERE code = ?").
			WithArgs("MR25684").
			WillReturnRows(matriculaRows(m))

		got, err := repo.FindByCode(ctx, "MR25684")

		assert.NoError(t, err)
		assert.Equal(t, "MR25684", got.Code)
		assert.True(t, got.Active())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM matriculas WHERE code = ?").
			WithArgs("MR00000").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByCode(ctx, "MR00000")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, got)
	})
}

func TestMatriculaPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMatriculaPostgres(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "code", "holder_name", "cpf", "birth_date", "status", "created_at"}).
		AddRow(2, "MR41081", "Bruno Costa", "74682451330", "", "active", time.Now()).
		AddRow(1, "MR25684", "Ana Silva", "10688046967", "", "revoked", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM matriculas ORDER BY created_at DESC").
		WillReturnRows(rows)

	items, err := repo.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "MR41081", items[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatriculaPostgres_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMatriculaPostgres(db)
	ctx := context.Background()

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE matriculas SET status").
			WithArgs("MR25684", "revoked").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateStatus(ctx, "MR25684", "revoked"))
	})

	t.Run("unknown code", func(t *testing.T) {
		mock.ExpectExec("UPDATE matriculas SET status").
			WithArgs("MR00000", "revoked").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateStatus(ctx, "MR00000", "revoked"), sql.ErrNoRows)
	})
}
