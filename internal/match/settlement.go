package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"valorant-hub/internal/domain"
	"valorant-hub/internal/quest"
	"valorant-hub/internal/rating"
	"valorant-hub/internal/repository"
)

var (
	ErrNotReported  = errors.New("match result not reported yet")
	ErrUnknownMatch = errors.New("unknown match")
)

// Settler owns the one-time application of rating, stat and quest
// changes for a finished match. Changes are computed once, persisted to
// the settlement outbox, then applied per player; each player write is
// idempotent so duplicate triggers and worker retries are harmless.
type Settler struct {
	players *repository.PlayerRepository
	records *repository.MatchRecordRepository
	outbox  *repository.SettlementRepository
	logger  zerolog.Logger
}

func NewSettler(
	players *repository.PlayerRepository,
	records *repository.MatchRecordRepository,
	outbox *repository.SettlementRepository,
	logger zerolog.Logger,
) *Settler {
	return &Settler{players: players, records: records, outbox: outbox, logger: logger}
}

// Enqueue computes every participant's rating outcome from the frozen
// team rosters and persists the outbox row. Ratings are read fresh so a
// profile change during the match cannot desync the arithmetic; the
// roster itself never changes after ready check.
func (s *Settler) Enqueue(ctx context.Context, matchID string, teamA, teamB []domain.Player, winner domain.Side) (*domain.Settlement, error) {
	winners, losers := teamA, teamB
	if winner == domain.SideB {
		winners, losers = teamB, teamA
	}

	var changes []domain.PlayerChange
	for _, p := range winners {
		changes = append(changes, s.changeFor(ctx, p, true))
	}
	for _, p := range losers {
		changes = append(changes, s.changeFor(ctx, p, false))
	}

	settlement := &domain.Settlement{
		MatchID:        matchID,
		Changes:        changes,
		ResultReported: true,
	}
	if err := s.outbox.Upsert(ctx, settlement); err != nil {
		return nil, err
	}
	return settlement, nil
}

func (s *Settler) changeFor(ctx context.Context, snapshot domain.Player, won bool) domain.PlayerChange {
	current := snapshot.Rating
	streak := snapshot.Winstreak
	if p, err := s.players.Get(ctx, snapshot.ID); err == nil {
		current = p.Rating
		streak = p.Winstreak
	}

	delta := rating.Delta(current, won, streak, nil)
	return domain.PlayerChange{
		PlayerID:    snapshot.ID,
		RatingDelta: delta,
		NewRating:   rating.Apply(current, delta),
		IsWinner:    won,
	}
}

// Apply writes every queued change to its player record and marks the
// settlement processed. Writes run in parallel; each is skipped when
// the stored last delta and rating already equal the computed outcome,
// which makes at-least-once delivery safe.
func (s *Settler) Apply(ctx context.Context, settlement *domain.Settlement) error {
	if settlement.ResultProcessed {
		s.logger.Debug().Str("match_id", settlement.MatchID).Msg("settlement already processed")
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, change := range settlement.Changes {
		change := change
		g.Go(func() error {
			return s.applyChange(gCtx, change)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to apply settlement %s: %w", settlement.MatchID, err)
	}

	if err := s.outbox.MarkProcessed(ctx, settlement.MatchID); err != nil {
		return err
	}
	settlement.ResultProcessed = true
	s.logger.Info().Str("match_id", settlement.MatchID).Int("players", len(settlement.Changes)).Msg("settlement applied")
	return nil
}

func (s *Settler) applyChange(ctx context.Context, change domain.PlayerChange) error {
	p, err := s.players.Get(ctx, change.PlayerID)
	if err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			s.logger.Warn().Str("player_id", change.PlayerID).Msg("settlement target not found, skipping")
			return nil
		}
		return err
	}

	if p.LastRatingDelta == change.RatingDelta && p.Rating == change.NewRating {
		s.logger.Debug().Str("player_id", p.ID).Msg("change already applied, skipping")
		return nil
	}

	p.Rating = change.NewRating
	p.LastRatingDelta = change.RatingDelta
	if change.IsWinner {
		p.Wins++
		p.Winstreak++
	} else {
		p.Losses++
		p.Winstreak = 0
	}

	if !p.IsBot {
		p.ActiveQuests = quest.RecordProgress(p.ActiveQuests, domain.QuestPlayMatches, 1, nil)
		if change.IsWinner {
			p.ActiveQuests = quest.RecordProgress(p.ActiveQuests, domain.QuestWinMatches, 1, nil)
			streak := p.Winstreak
			p.ActiveQuests = quest.RecordProgress(p.ActiveQuests, domain.QuestGetWinstreak, 0, &streak)
		}
	}

	if err := s.players.Upsert(ctx, p); err != nil {
		return err
	}

	s.logger.Debug().
		Str("player_id", p.ID).
		Int("rating", p.Rating).
		Int("delta", change.RatingDelta).
		Bool("winner", change.IsWinner).
		Msg("settlement change applied")
	return nil
}

// ForceApply re-runs settlement for a match on demand. Only a
// participant of that match may trigger it; once processed it is a
// no-op.
func (s *Settler) ForceApply(ctx context.Context, matchID, actorID string) error {
	settlement, err := s.outbox.Get(ctx, matchID)
	if err != nil {
		return ErrUnknownMatch
	}
	if !settlement.ResultReported {
		return ErrNotReported
	}

	participant := false
	for _, c := range settlement.Changes {
		if c.PlayerID == actorID {
			participant = true
			break
		}
	}
	if !participant {
		return ErrNotParticipant
	}

	if settlement.ResultProcessed {
		return nil
	}
	return s.Apply(ctx, settlement)
}
