package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"valorant-hub/internal/domain"
)

// SettlementRepository is the outbox for finished-match outcomes. A row
// is written when both score reports agree; the reconciliation worker
// re-applies unprocessed rows until each is marked done.
type SettlementRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSettlementRepository(sqlDB *sql.DB, logger zerolog.Logger) *SettlementRepository {
	return &SettlementRepository{db: sqlDB, logger: logger}
}

func (r *SettlementRepository) Upsert(ctx context.Context, s *domain.Settlement) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settlements (match_id, changes, result_reported, result_processed, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (match_id) DO UPDATE SET
			changes = excluded.changes,
			result_reported = excluded.result_reported`,
		s.MatchID, marshalJSON(s.Changes), s.ResultReported, s.ResultProcessed, s.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("match_id", s.MatchID).Msg("failed to upsert settlement")
		return fmt.Errorf("failed to upsert settlement %s: %w", s.MatchID, err)
	}
	return nil
}

func (r *SettlementRepository) Get(ctx context.Context, matchID string) (*domain.Settlement, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT match_id, changes, result_reported, result_processed, created_at, processed_at
		FROM settlements WHERE match_id = ?`, matchID)
	return scanSettlement(row)
}

// ListUnprocessed returns settlements whose results were reported but
// not yet applied.
func (r *SettlementRepository) ListUnprocessed(ctx context.Context) ([]domain.Settlement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT match_id, changes, result_reported, result_processed, created_at, processed_at
		FROM settlements WHERE result_reported = 1 AND result_processed = 0`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list unprocessed settlements")
		return nil, err
	}
	defer rows.Close()

	var out []domain.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// MarkProcessed flips the processed flag; once set, re-invocation of
// the worker on this match is a no-op.
func (r *SettlementRepository) MarkProcessed(ctx context.Context, matchID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE settlements SET result_processed = 1, processed_at = ? WHERE match_id = ?`,
		time.Now(), matchID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to mark settlement processed")
		return fmt.Errorf("failed to mark settlement %s processed: %w", matchID, err)
	}
	return nil
}

func scanSettlement(row interface{ Scan(...any) error }) (*domain.Settlement, error) {
	var s domain.Settlement
	var changes string
	var processedAt sql.NullTime
	if err := row.Scan(&s.MatchID, &changes, &s.ResultReported, &s.ResultProcessed, &s.CreatedAt, &processedAt); err != nil {
		return nil, err
	}
	json.Unmarshal([]byte(changes), &s.Changes)
	if processedAt.Valid {
		s.ProcessedAt = processedAt.Time
	}
	return &s, nil
}
