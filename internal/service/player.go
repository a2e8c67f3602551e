package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"valorant-hub/internal/constants"
	"valorant-hub/internal/domain"
	"valorant-hub/internal/quest"
	"valorant-hub/internal/rating"
	"valorant-hub/internal/repository"
)

var (
	ErrCannotFriendSelf = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends   = errors.New("players are already friends")
	ErrRequestPending   = errors.New("a friend request is already pending")
	ErrNoSuchRequest    = errors.New("no pending friend request from that player")
)

type PlayerService struct {
	players *repository.PlayerRepository
	records *repository.MatchRecordRepository
	reports *repository.ConductReportRepository
	logger  zerolog.Logger
}

func NewPlayerService(
	players *repository.PlayerRepository,
	records *repository.MatchRecordRepository,
	reports *repository.ConductReportRepository,
	logger zerolog.Logger,
) *PlayerService {
	return &PlayerService{players: players, records: records, reports: reports, logger: logger}
}

// GetPlayer loads a profile. The cached level is always resynced from
// XP on the way out.
func (s *PlayerService) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	p, err := s.players.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if level := rating.Level(p.XP); level != p.Level {
		p.Level = level
		if err := s.players.Upsert(ctx, p); err != nil {
			s.logger.Warn().Err(err).Str("player_id", id).Msg("failed to resync cached level")
		}
	}
	return p, nil
}

// ListPlayers is the leaderboard view, ordered rating descending.
func (s *PlayerService) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.players.List(ctx)
}

// ProfileUpdate carries the editable profile fields; nil means leave
// unchanged.
type ProfileUpdate struct {
	Username      *string
	AvatarURL     *string
	RiotID        *string
	RiotTag       *string
	PrimaryRole   *domain.Role
	SecondaryRole *domain.Role
	TopAgents     []string
}

// UpdateProfile applies the edits to the stored profile. A token whose
// subject has no record yet gets one created here, so a first sign-in
// lands on the profile screen instead of a not-found.
func (s *PlayerService) UpdateProfile(ctx context.Context, id, username string, update ProfileUpdate) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	p, err := s.players.Get(ctx, id)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		p = &domain.Player{
			ID:            id,
			Username:      username,
			Rating:        constants.InitialRating,
			Level:         1,
			PrimaryRole:   domain.RoleFlex,
			SecondaryRole: domain.RoleFlex,
		}
		s.logger.Info().Str("player_id", id).Str("username", username).Msg("created player record on first profile update")
	} else if err != nil {
		return nil, err
	}

	if update.Username != nil {
		p.Username = *update.Username
	}
	if update.AvatarURL != nil {
		p.AvatarURL = *update.AvatarURL
	}
	if update.RiotID != nil {
		p.RiotID = *update.RiotID
	}
	if update.RiotTag != nil {
		p.RiotTag = *update.RiotTag
	}
	if update.PrimaryRole != nil {
		p.PrimaryRole = *update.PrimaryRole
	}
	if update.SecondaryRole != nil {
		p.SecondaryRole = *update.SecondaryRole
	}
	if update.TopAgents != nil {
		p.TopAgents = update.TopAgents
	}

	// completing the profile is itself quest progress
	if p.Username != "" && len(p.TopAgents) == 3 {
		one := 1
		p.ActiveQuests = quest.RecordProgress(p.ActiveQuests, domain.QuestCompleteProfile, 0, &one)
	}

	if err := s.players.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("player_id", id).Msg("profile updated")
	return p, nil
}

// ListHistory returns match records newest-first.
func (s *PlayerService) ListHistory(ctx context.Context) ([]domain.MatchRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.records.List(ctx, constants.HistoryLimit)
}

// Commend bumps the target's reputation and the commender's
// GIVE_COMMENDS quest.
func (s *PlayerService) Commend(ctx context.Context, actorID, targetID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	target, err := s.players.Get(ctx, targetID)
	if err != nil {
		return err
	}
	target.Reputation++
	if err := s.players.Upsert(ctx, target); err != nil {
		return err
	}

	actor, err := s.players.Get(ctx, actorID)
	if err != nil {
		return err
	}
	actor.ActiveQuests = quest.RecordProgress(actor.ActiveQuests, domain.QuestGiveCommends, 1, nil)
	if err := s.players.Upsert(ctx, actor); err != nil {
		return err
	}

	s.logger.Info().Str("from", actorID).Str("to", targetID).Msg("player commended")
	return nil
}

func (s *PlayerService) SubmitReport(ctx context.Context, actorUsername, targetID, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	target, err := s.players.Get(ctx, targetID)
	if err != nil {
		return err
	}

	return s.reports.Append(ctx, &domain.ConductReport{
		Reporter:     actorUsername,
		ReportedUser: target.Username,
		Reason:       reason,
		Timestamp:    time.Now(),
	})
}

func (s *PlayerService) ListReports(ctx context.Context) ([]domain.ConductReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.reports.List(ctx)
}

// ResetSeason zeroes competitive stats for everyone.
func (s *PlayerService) ResetSeason(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.players.ResetSeason(ctx, constants.InitialRating); err != nil {
		return err
	}
	s.logger.Info().Int("base_rating", constants.InitialRating).Msg("season reset")
	return nil
}
