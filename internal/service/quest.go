package service

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"valorant-hub/internal/constants"
	"valorant-hub/internal/domain"
	"valorant-hub/internal/quest"
	"valorant-hub/internal/repository"
)

type QuestService struct {
	players *repository.PlayerRepository
	logger  zerolog.Logger
	now     func() time.Time
}

func NewQuestService(players *repository.PlayerRepository, logger zerolog.Logger) *QuestService {
	return &QuestService{players: players, logger: logger, now: time.Now}
}

// QuestsView pairs the static quest pool with one player's progress
// rows, the shape the quest screen renders from.
type QuestsView struct {
	Catalog []domain.Quest     `json:"catalog"`
	Active  []domain.UserQuest `json:"active"`
}

// ListFor returns the player's quest view, regenerating expired daily
// and monthly slots first.
func (s *QuestService) ListFor(ctx context.Context, playerID string) (QuestsView, error) {
	p, _, err := s.refresh(ctx, playerID, false)
	if err != nil {
		return QuestsView{}, err
	}
	return QuestsView{Catalog: quest.Catalog(), Active: p.ActiveQuests}, nil
}

// Claim grants a completed quest's XP reward once. Claiming an
// unknown, incomplete or already claimed quest is a no-op.
func (s *QuestService) Claim(ctx context.Context, playerID, questID string) (quest.ClaimResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	p, err := s.players.Get(ctx, playerID)
	if err != nil {
		return quest.ClaimResult{}, err
	}

	res := quest.Claim(p.ActiveQuests, questID, p.XP, p.Level)
	if !res.Claimed {
		return res, nil
	}

	p.ActiveQuests = res.Quests
	p.XP = res.NewXP
	p.Level = res.NewLevel
	if err := s.players.Upsert(ctx, p); err != nil {
		return quest.ClaimResult{}, err
	}

	s.logger.Info().
		Str("player_id", playerID).
		Str("quest_id", questID).
		Int("xp", res.NewXP).
		Int("level", res.NewLevel).
		Msg("quest reward claimed")
	return res, nil
}

// ForceReset regenerates daily and monthly quests immediately,
// discarding their progress. Admin only at the transport layer.
func (s *QuestService) ForceReset(ctx context.Context, playerID string) ([]domain.UserQuest, error) {
	p, _, err := s.refresh(ctx, playerID, true)
	if err != nil {
		return nil, err
	}
	return p.ActiveQuests, nil
}

func (s *QuestService) refresh(ctx context.Context, playerID string, force bool) (*domain.Player, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	p, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, false, err
	}

	state, changed := quest.GenerateIfNeeded(quest.State{
		Quests:         p.ActiveQuests,
		LastDailyGen:   p.LastDailyQuestGen,
		LastMonthlyGen: p.LastMonthlyQuestGen,
	}, s.now(), force)

	// a finished profile completes COMPLETE_PROFILE on sight; the bump
	// counts as a change so it reaches storage before any claim
	if p.Username != "" && len(p.TopAgents) == 3 {
		one := 1
		bumped := quest.RecordProgress(state.Quests, domain.QuestCompleteProfile, 0, &one)
		if !slices.Equal(bumped, state.Quests) {
			changed = true
		}
		state.Quests = bumped
	}

	if !changed {
		p.ActiveQuests = state.Quests
		return p, false, nil
	}

	p.ActiveQuests = state.Quests
	p.LastDailyQuestGen = state.LastDailyGen
	p.LastMonthlyQuestGen = state.LastMonthlyGen
	if err := s.players.Upsert(ctx, p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}
