package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"valorant-hub/internal/domain"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: sqlDB, logger: logger}
}

const playerColumns = `id, email, username, avatar_url, riot_id, riot_tag,
	rating, last_rating_delta, xp, level, reputation, wins, losses, winstreak,
	primary_role, secondary_role, top_agents, is_bot, is_admin,
	friends, friend_requests, active_quests, friend_quest_counted_ids,
	last_daily_quest_gen, last_monthly_quest_gen, created_at, updated_at`

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func scanPlayer(row interface{ Scan(...any) error }) (*domain.Player, error) {
	var p domain.Player
	var topAgents, friends, friendRequests, activeQuests, countedIDs string
	var lastDaily, lastMonthly sql.NullTime

	err := row.Scan(
		&p.ID, &p.Email, &p.Username, &p.AvatarURL, &p.RiotID, &p.RiotTag,
		&p.Rating, &p.LastRatingDelta, &p.XP, &p.Level, &p.Reputation, &p.Wins, &p.Losses, &p.Winstreak,
		&p.PrimaryRole, &p.SecondaryRole, &topAgents, &p.IsBot, &p.IsAdmin,
		&friends, &friendRequests, &activeQuests, &countedIDs,
		&lastDaily, &lastMonthly, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(topAgents), &p.TopAgents)
	json.Unmarshal([]byte(friends), &p.Friends)
	json.Unmarshal([]byte(friendRequests), &p.FriendRequests)
	json.Unmarshal([]byte(activeQuests), &p.ActiveQuests)
	json.Unmarshal([]byte(countedIDs), &p.FriendQuestCountedIDs)
	if lastDaily.Valid {
		p.LastDailyQuestGen = lastDaily.Time
	}
	if lastMonthly.Valid {
		p.LastMonthlyQuestGen = lastMonthly.Time
	}
	return &p, nil
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", id).Msg("failed to get player")
		return nil, err
	}
	return p, nil
}

func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE username = ?`, username)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("username", username).Msg("failed to get player by username")
		return nil, err
	}
	return p, nil
}

// List returns all players ordered by rating descending, the order the
// leaderboard and captain selection want.
func (r *PlayerRepository) List(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY rating DESC`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list players")
		return nil, err
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (r *PlayerRepository) Upsert(ctx context.Context, p *domain.Player) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	var lastDaily, lastMonthly any
	if !p.LastDailyQuestGen.IsZero() {
		lastDaily = p.LastDailyQuestGen
	}
	if !p.LastMonthlyQuestGen.IsZero() {
		lastMonthly = p.LastMonthlyQuestGen
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			username = excluded.username,
			avatar_url = excluded.avatar_url,
			riot_id = excluded.riot_id,
			riot_tag = excluded.riot_tag,
			rating = excluded.rating,
			last_rating_delta = excluded.last_rating_delta,
			xp = excluded.xp,
			level = excluded.level,
			reputation = excluded.reputation,
			wins = excluded.wins,
			losses = excluded.losses,
			winstreak = excluded.winstreak,
			primary_role = excluded.primary_role,
			secondary_role = excluded.secondary_role,
			top_agents = excluded.top_agents,
			is_bot = excluded.is_bot,
			is_admin = excluded.is_admin,
			friends = excluded.friends,
			friend_requests = excluded.friend_requests,
			active_quests = excluded.active_quests,
			friend_quest_counted_ids = excluded.friend_quest_counted_ids,
			last_daily_quest_gen = excluded.last_daily_quest_gen,
			last_monthly_quest_gen = excluded.last_monthly_quest_gen,
			updated_at = excluded.updated_at`,
		p.ID, p.Email, p.Username, p.AvatarURL, p.RiotID, p.RiotTag,
		p.Rating, p.LastRatingDelta, p.XP, p.Level, p.Reputation, p.Wins, p.Losses, p.Winstreak,
		p.PrimaryRole, p.SecondaryRole, marshalJSON(p.TopAgents), p.IsBot, p.IsAdmin,
		marshalJSON(p.Friends), marshalJSON(p.FriendRequests), marshalJSON(p.ActiveQuests), marshalJSON(p.FriendQuestCountedIDs),
		lastDaily, lastMonthly, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", p.ID).Msg("failed to upsert player")
		return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
	}
	return nil
}

// ResetSeason zeroes competitive stats for every player and sets rating
// back to the baseline.
func (r *PlayerRepository) ResetSeason(ctx context.Context, baseRating int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE players
		SET rating = ?, last_rating_delta = 0, wins = 0, losses = 0, winstreak = 0, updated_at = ?`,
		baseRating, time.Now(),
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to reset season")
		return fmt.Errorf("failed to reset season: %w", err)
	}
	return nil
}
