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

type MatchRecordRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRecordRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRecordRepository {
	return &MatchRecordRepository{db: sqlDB, logger: logger}
}

// Append writes the immutable history row for a finished match. Replays
// of the same match id are absorbed without touching the original row.
func (r *MatchRecordRepository) Append(ctx context.Context, record *domain.MatchRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO match_records (id, date, map, captain_a, captain_b, winner,
			team_a_ids, team_b_ids, team_a_snapshot, team_b_snapshot, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		record.ID, record.Date, record.Map, record.CaptainA, record.CaptainB, record.Winner,
		marshalJSON(record.TeamAIDs), marshalJSON(record.TeamBIDs),
		marshalJSON(record.TeamASnapshot), marshalJSON(record.TeamBSnapshot),
		record.Score, time.Now(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("match_id", record.ID).Msg("failed to append match record")
		return fmt.Errorf("failed to append match record %s: %w", record.ID, err)
	}
	return nil
}

// List returns match history newest-first.
func (r *MatchRecordRepository) List(ctx context.Context, limit int) ([]domain.MatchRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, map, captain_a, captain_b, winner,
			team_a_ids, team_b_ids, team_a_snapshot, team_b_snapshot, score
		FROM match_records ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list match records")
		return nil, err
	}
	defer rows.Close()

	var records []domain.MatchRecord
	for rows.Next() {
		var rec domain.MatchRecord
		var teamAIDs, teamBIDs, teamASnap, teamBSnap string
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.Map, &rec.CaptainA, &rec.CaptainB, &rec.Winner,
			&teamAIDs, &teamBIDs, &teamASnap, &teamBSnap, &rec.Score); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(teamAIDs), &rec.TeamAIDs)
		json.Unmarshal([]byte(teamBIDs), &rec.TeamBIDs)
		json.Unmarshal([]byte(teamASnap), &rec.TeamASnapshot)
		json.Unmarshal([]byte(teamBSnap), &rec.TeamBSnapshot)
		records = append(records, rec)
	}
	return records, rows.Err()
}
