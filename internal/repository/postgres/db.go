package postgres

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"github.com/signalforge/signalforge/internal/config"
	ierr "github.com/signalforge/signalforge/internal/errors"
)

// NewDB opens the relational mirror database.
func NewDB(cfg *config.Configuration) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to open postgres connection").
			Mark(ierr.ErrConfiguration)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to reach postgres").
			Mark(ierr.ErrDatabase)
	}
	return db, nil
}
