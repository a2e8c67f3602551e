package match

import (
	"context"
	"errors"
	"fmt"

	"valorant-hub/internal/domain"
)

var (
	ErrInvalidScore = errors.New("invalid score")
	ErrDrawScore    = errors.New("a match cannot end in a draw")
)

// ReportResult records one side's claim about the final score. A
// participant writes only their own side's slot; an administrator who
// is not playing force-writes both. The match finalizes when both slots
// are populated and agree exactly; on disagreement reporting stays open
// and either side may correct their claim.
func (l *Lifecycle) ReportResult(ctx context.Context, actor Actor, scoreA, scoreB int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	inst := l.current
	if inst == nil {
		return false, ErrNoActiveMatch
	}
	if inst.Phase != domain.PhaseLive {
		return false, ErrWrongPhase
	}
	if scoreA < 0 || scoreB < 0 {
		return false, ErrInvalidScore
	}
	if scoreA == scoreB {
		return false, ErrDrawScore
	}

	claim := domain.Score{ScoreA: scoreA, ScoreB: scoreB}
	onA := inst.onTeam(inst.TeamA, actor.ID)
	onB := inst.onTeam(inst.TeamB, actor.ID)

	switch {
	case onA:
		inst.ReportA = &claim
	case onB:
		inst.ReportB = &claim
	case actor.Admin:
		inst.ReportA = &claim
		inst.ReportB = &claim
	default:
		return false, ErrNotParticipant
	}

	l.logger.Info().
		Str("match_id", inst.ID).
		Str("reporter", actor.Username).
		Int("score_a", scoreA).
		Int("score_b", scoreB).
		Bool("forced", !onA && !onB).
		Msg("score reported")

	if inst.ReportA == nil || inst.ReportB == nil {
		return false, nil
	}
	if *inst.ReportA != *inst.ReportB {
		return false, ErrReportsDisagree
	}
	if err := l.finalizeLocked(ctx, *inst.ReportA); err != nil {
		return false, err
	}
	return true, nil
}

// finalizeLocked runs the one-time FINISHED transition: the history
// record and the settlement outbox are persisted before the phase
// flips, so a persistence failure leaves the match LIVE and
// re-reportable.
func (l *Lifecycle) finalizeLocked(ctx context.Context, final domain.Score) error {
	inst := l.current

	winner := domain.SideB
	if final.ScoreA > final.ScoreB {
		winner = domain.SideA
	}

	record := l.buildRecordLocked(winner, final)
	if err := l.settler.records.Append(ctx, record); err != nil {
		return fmt.Errorf("failed to persist match record: %w", err)
	}

	settlement, err := l.settler.Enqueue(ctx, inst.ID, inst.TeamA, inst.TeamB, winner)
	if err != nil {
		return fmt.Errorf("failed to enqueue settlement: %w", err)
	}

	inst.Phase = domain.PhaseFinished
	inst.Winner = winner
	l.systemMessage(inst, fmt.Sprintf("Match finished %d-%d. Team %s wins!", final.ScoreA, final.ScoreB, winner))
	l.stopTicker()

	l.logger.Info().
		Str("match_id", inst.ID).
		Str("winner", string(winner)).
		Str("score", record.Score).
		Msg("match finished")

	// Settlement is applied inline; the reconciliation worker retries
	// from the outbox if this fails or the process dies here.
	if err := l.settler.Apply(ctx, settlement); err != nil {
		l.logger.Error().Err(err).Str("match_id", inst.ID).Msg("inline settlement failed, left for reconciliation")
	}
	return nil
}

func (l *Lifecycle) buildRecordLocked(winner domain.Side, final domain.Score) *domain.MatchRecord {
	inst := l.current

	snapshot := func(team []domain.Player) ([]string, []domain.PlayerSnapshot) {
		ids := make([]string, 0, len(team))
		snaps := make([]domain.PlayerSnapshot, 0, len(team))
		for _, p := range team {
			ids = append(ids, p.ID)
			snaps = append(snaps, domain.PlayerSnapshot{
				ID:        p.ID,
				Username:  p.Username,
				AvatarURL: p.AvatarURL,
				Role:      p.PrimaryRole,
			})
		}
		return ids, snaps
	}

	aIDs, aSnaps := snapshot(inst.TeamA)
	bIDs, bSnaps := snapshot(inst.TeamB)

	return &domain.MatchRecord{
		ID:            inst.ID,
		Date:          l.now(),
		Map:           inst.Selected,
		CaptainA:      inst.CaptainA.Username,
		CaptainB:      inst.CaptainB.Username,
		Winner:        winner,
		TeamAIDs:      aIDs,
		TeamBIDs:      bIDs,
		TeamASnapshot: aSnaps,
		TeamBSnapshot: bSnaps,
		Score:         fmt.Sprintf("%d-%d", final.ScoreA, final.ScoreB),
	}
}
