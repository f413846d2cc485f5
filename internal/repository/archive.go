package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/pkg/clickhouse"
)

// observationsSchema creates the long-term observation table. ReplacingMergeTree
// keyed by (series, month) keeps re-archived refreshes idempotent.
var observationsSchema = []string{
	`CREATE TABLE IF NOT EXISTS observations (
		series      String,
		month       String,
		value       Float64,
		archived_at DateTime
	) ENGINE = ReplacingMergeTree(archived_at)
	ORDER BY (series, month)`,
}

// ClickHouseArchive implements ObservationArchive on ClickHouse. Writes are
// best-effort; the caller decides whether a failure matters.
type ClickHouseArchive struct {
	client *clickhouse.Client
}

// NewClickHouseArchive creates the archive and ensures its schema exists.
func NewClickHouseArchive(ctx context.Context, client *clickhouse.Client) (drepo.ObservationArchive, error) {
	if err := client.InitSchema(ctx, observationsSchema); err != nil {
		return nil, fmt.Errorf("archive schema: %w", err)
	}
	return &ClickHouseArchive{client: client}, nil
}

// Archive stores one refreshed observation set.
func (a *ClickHouseArchive) Archive(ctx context.Context, id string, obs []models.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	now := time.Now()
	values := make([]string, 0, len(obs))
	args := make([]interface{}, 0, len(obs)*4)
	for _, o := range obs {
		values = append(values, "(?, ?, ?, ?)")
		args = append(args, id, o.Month, o.Value, now)
	}

	q := "INSERT INTO observations (series, month, value, archived_at) VALUES " + strings.Join(values, ",")
	if _, err := a.client.DB().ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("archive %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (a *ClickHouseArchive) Close() error {
	return a.client.Close()
}

// NopArchive is used when archiving is disabled.
type NopArchive struct{}

func (NopArchive) Archive(context.Context, string, []models.Observation) error { return nil }

func (NopArchive) Close() error { return nil }
