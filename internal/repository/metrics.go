package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// MetricsRepository keeps best-effort usage counters. Callers treat every
// failure as ignorable; a metric must never affect a response.
type MetricsRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewMetricsRepository(db *sqlx.DB, logger zerolog.Logger) *MetricsRepository {
	return &MetricsRepository{db: db, logger: logger}
}

func (r *MetricsRepository) Increment(ctx context.Context, name string) error {
	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate nanoid: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO metrics (id, name, count) VALUES (?, ?, 1)
		ON CONFLICT (name) DO UPDATE SET count = count + 1`,
		id, name,
	)
	if err != nil {
		return fmt.Errorf("failed to increment metric %s: %w", name, err)
	}
	return nil
}

func (r *MetricsRepository) Get(ctx context.Context, name string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count FROM metrics WHERE name = ?`, name)
	if err != nil {
		return 0, err
	}
	return count, nil
}
