package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	_ "github.com/lib/pq"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/migrations"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			logging.Fatal().Err(err).Msg("DATABASE_URL is not set and configuration failed to load")
		}
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
		dsn = cfg.DSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + database.MigrationsTable + ` (
		name VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		logging.Fatal().Err(err).Msg("failed to create migrations table")
	}

	if *rollback {
		name, err := rollbackLast(db, migrations.FS)
		if err != nil {
			logging.Fatal().Err(err).Msg("rollback failed")
		}
		logging.Info().Str("migration", name).Msg("rolled back migration")
		return
	}

	names, err := database.UpMigrations(migrations.FS)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to list migrations")
	}
	for _, name := range names {
		var applied bool
		err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM `+database.MigrationsTable+` WHERE name = $1)`, name).Scan(&applied)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to check migration status")
		}
		if applied {
			logging.Info().Str("migration", name).Msg("migration already applied")
			continue
		}
		if err := apply(db, migrations.FS, name, name, true); err != nil {
			logging.Fatal().Err(err).Str("migration", name).Msg("failed to apply migration")
		}
		logging.Info().Str("migration", name).Msg("applied migration")
	}
	logging.Info().Msg("all migrations applied")
}

// rollbackLast runs the .down.sql of the most recently applied migration
func rollbackLast(db *sql.DB, fsys fs.FS) (string, error) {
	var name string
	err := db.QueryRow(`SELECT name FROM ` + database.MigrationsTable + ` ORDER BY applied_at DESC, name DESC LIMIT 1`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("no migrations to rollback")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
	if err := apply(db, fsys, down, name, false); err != nil {
		return "", err
	}
	return name, nil
}

// apply executes one migration file and records (or forgets) name in one transaction
func apply(db *sql.DB, fsys fs.FS, file, name string, up bool) error {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(string(content)); err != nil {
		return fmt.Errorf("failed to execute %s: %w", file, err)
	}

	record := `INSERT INTO ` + database.MigrationsTable + ` (name) VALUES ($1)`
	if !up {
		record = `DELETE FROM ` + database.MigrationsTable + ` WHERE name = $1`
	}
	if _, err := tx.Exec(record, name); err != nil {
		return fmt.Errorf("failed to record %s: %w", name, err)
	}
	return tx.Commit()
}
