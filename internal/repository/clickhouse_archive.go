package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"IntelPull/internal/domain/models"
	drepo "IntelPull/internal/domain/repository"
	"IntelPull/pkg/clickhouse"
)

var archiveSchema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_history (
		tier         LowCardinality(String),
		model        LowCardinality(String),
		produced_at  DateTime64(3, 'UTC'),
		threat_level Float64,
		payload      String
	) ENGINE = MergeTree()
	ORDER BY (tier, produced_at)
	TTL toDateTime(produced_at) + INTERVAL 90 DAY`,
}

// ClickHouseArchive appends every committed analysis to an analysis_history
// table. It is an optional sink: callers log and continue on error.
type ClickHouseArchive struct {
	client *clickhouse.Client
}

var _ drepo.Archive = (*ClickHouseArchive)(nil)

// NewClickHouseArchive ensures the history table exists and returns the sink.
func NewClickHouseArchive(ctx context.Context, client *clickhouse.Client) (*ClickHouseArchive, error) {
	if err := client.InitSchema(ctx, archiveSchema); err != nil {
		return nil, fmt.Errorf("archive schema: %w", err)
	}
	return &ClickHouseArchive{client: client}, nil
}

// Store appends one committed result.
func (a *ClickHouseArchive) Store(ctx context.Context, res *models.AnalysisResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = a.client.DB().ExecContext(ctx,
		`INSERT INTO analysis_history (tier, model, produced_at, threat_level, payload) VALUES (?, ?, ?, ?, ?)`,
		string(res.Tier), res.Model, res.ProducedAt, res.ThreatLevel, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (a *ClickHouseArchive) Close() error {
	return a.client.Close()
}
