package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_matriculas",
		SQL: `CREATE TABLE IF NOT EXISTS matriculas (
  id          BIGSERIAL    PRIMARY KEY,
  code        VARCHAR(16)  NOT NULL,
  holder_name VARCHAR(120),
  cpf         VARCHAR(11),
  birth_date  VARCHAR(10),
  status      VARCHAR(16)  NOT NULL DEFAULT 'active',
  created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
  CONSTRAINT uq_matriculas_code UNIQUE (code),
  CONSTRAINT uq_matriculas_cpf UNIQUE (cpf)
);`,
	},
	{
		Name: "create_index_matriculas_code",
		SQL:  `CREATE INDEX IF NOT EXISTS ix_matriculas_code ON matriculas (code);`,
	},
	{
		Name: "create_index_matriculas_cpf",
		SQL:  `CREATE INDEX IF NOT EXISTS ix_matriculas_cpf ON matriculas (cpf);`,
	},
	{
		Name: "create_table_presencas",
		SQL: `CREATE TABLE IF NOT EXISTS presencas (
  id           BIGSERIAL    PRIMARY KEY,
  matricula_id BIGINT       NOT NULL REFERENCES matriculas (id),
  date_key     DATE         NOT NULL,
  timestamp    TIMESTAMPTZ  NOT NULL DEFAULT now(),
  ip           VARCHAR(64),
  user_agent   VARCHAR(300),
  source       VARCHAR(80),
  CONSTRAINT uq_presenca_por_dia UNIQUE (matricula_id, date_key)
);`,
	},
	{
		Name: "create_index_presencas_matricula_id",
		SQL:  `CREATE INDEX IF NOT EXISTS ix_presencas_matricula_id ON presencas (matricula_id);`,
	},
	{
		Name: "create_index_presencas_date_key",
		SQL:  `CREATE INDEX IF NOT EXISTS ix_presencas_date_key ON presencas (date_key);`,
	},
	{
		Name: "create_table_event_checkins",
		SQL: `CREATE TABLE IF NOT EXISTS event_checkins (
  id         BIGSERIAL    PRIMARY KEY,
  event_date DATE         NOT NULL,
  cpf        VARCHAR(11)  NOT NULL,
  name       VARCHAR(120),
  birth_date VARCHAR(10),
  created_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
  CONSTRAINT uq_event_checkins_event_date_cpf UNIQUE (event_date, cpf)
);`,
	},
	{
		Name: "create_index_event_checkins_event_date",
		SQL:  `CREATE INDEX IF NOT EXISTS ix_event_checkins_event_date ON event_checkins (event_date);`,
	},
	{
		Name: "create_index_event_checkins_cpf",
		SQL:  `CREATE INDEX IF NOT EXISTS ix_event_checkins_cpf ON event_checkins (cpf);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            BIGSERIAL    PRIMARY KEY,
  username      VARCHAR(80)  NOT NULL,
  password_hash VARCHAR(255) NOT NULL,
  role          VARCHAR(20)  NOT NULL DEFAULT 'admin',
  created_at    TIMESTAMPTZ  NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ  NOT NULL DEFAULT now(),
  CONSTRAINT uq_users_username UNIQUE (username)
);`,
	},
	{
		Name: "create_index_users_username_lower",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_users_username_lower ON users (lower(username));`,
	},
}

// EnsureMigrated checks if the 'matriculas' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.matriculas') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
