package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valorant-hub/internal/domain"
)

// finishMatch plays a seeded lobby to FINISHED with a 13-7 win for
// side A and returns the final snapshot.
func finishMatch(t *testing.T, f *fixture) *Instance {
	t.Helper()
	liveMatch(t, f)
	snap := f.lifecycle.Snapshot()

	_, err := f.lifecycle.ReportResult(context.Background(), actorFor(snap.TeamA[0]), 13, 7)
	require.NoError(t, err)
	finished, err := f.lifecycle.ReportResult(context.Background(), actorFor(snap.TeamB[0]), 13, 7)
	require.NoError(t, err)
	require.True(t, finished)
	return f.lifecycle.Snapshot()
}

func TestSettlementIsIdempotent(t *testing.T) {
	f := newFixture(t)
	snap := finishMatch(t, f)

	before := make(map[string]*domain.Player)
	for _, p := range append(snap.TeamA, snap.TeamB...) {
		stored, err := f.players.Get(context.Background(), p.ID)
		require.NoError(t, err)
		before[p.ID] = stored
	}

	// replaying the stored settlement must not move anything twice
	settlement, err := f.outbox.Get(context.Background(), snap.ID)
	require.NoError(t, err)
	require.True(t, settlement.ResultProcessed)
	settlement.ResultProcessed = false
	require.NoError(t, f.settler.Apply(context.Background(), settlement))

	for id, prev := range before {
		stored, err := f.players.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, prev.Rating, stored.Rating, id)
		assert.Equal(t, prev.Wins, stored.Wins, id)
		assert.Equal(t, prev.Losses, stored.Losses, id)
		assert.Equal(t, prev.Winstreak, stored.Winstreak, id)
	}
}

func TestSettlementRecordsQuestProgress(t *testing.T) {
	f := newFixture(t)
	players := tenPlayers()
	for i := range players {
		players[i].ActiveQuests = []domain.UserQuest{
			{QuestID: "daily-play-2"},
			{QuestID: "daily-win-1"},
		}
	}
	seed(t, f, players)
	require.NoError(t, f.lifecycle.StartReadyCheck(players))
	readyUp(t, f, players)
	draftAll(t, f)
	vetoAll(t, f)

	snap := f.lifecycle.Snapshot()
	_, err := f.lifecycle.ReportResult(context.Background(), actorFor(snap.TeamA[0]), 13, 7)
	require.NoError(t, err)
	finished, err := f.lifecycle.ReportResult(context.Background(), actorFor(snap.TeamB[0]), 13, 7)
	require.NoError(t, err)
	require.True(t, finished)

	winner, err := f.players.Get(context.Background(), snap.TeamA[0].ID)
	require.NoError(t, err)
	loser, err := f.players.Get(context.Background(), snap.TeamB[0].ID)
	require.NoError(t, err)

	assert.Equal(t, 1, questProgress(winner, "daily-play-2"))
	assert.Equal(t, 1, questProgress(winner, "daily-win-1"))
	assert.Equal(t, 1, questProgress(loser, "daily-play-2"))
	assert.Equal(t, 0, questProgress(loser, "daily-win-1"))
}

func questProgress(p *domain.Player, questID string) int {
	for _, q := range p.ActiveQuests {
		if q.QuestID == questID {
			return q.Progress
		}
	}
	return 0
}

func TestSettlementSkipsBots(t *testing.T) {
	f := newFixture(t)
	bots := tenBots()
	seed(t, f, bots)
	require.NoError(t, f.lifecycle.StartReadyCheck(bots))
	readyUp(t, f, bots)
	draftAll(t, f)
	vetoAll(t, f)

	finished, err := f.lifecycle.ReportResult(context.Background(), Actor{ID: "ops", Admin: true}, 13, 2)
	require.NoError(t, err)
	require.True(t, finished)

	snap := f.lifecycle.Snapshot()
	winner, err := f.players.Get(context.Background(), snap.TeamA[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, winner.Wins)
	assert.Empty(t, winner.ActiveQuests)
}

func TestForceApplyAuthorization(t *testing.T) {
	f := newFixture(t)
	snap := finishMatch(t, f)

	require.ErrorIs(t, f.settler.ForceApply(context.Background(), "match-nope", snap.TeamA[0].ID), ErrUnknownMatch)
	require.ErrorIs(t, f.settler.ForceApply(context.Background(), snap.ID, "stranger"), ErrNotParticipant)

	// already processed settlements are a silent no-op
	require.NoError(t, f.settler.ForceApply(context.Background(), snap.ID, snap.TeamA[0].ID))
}

func TestSettlementResetsLoserStreak(t *testing.T) {
	f := newFixture(t)
	players := tenPlayers()
	players[1].Winstreak = 3
	seed(t, f, players)
	require.NoError(t, f.lifecycle.StartReadyCheck(players))
	readyUp(t, f, players)
	draftAll(t, f)
	vetoAll(t, f)

	snap := f.lifecycle.Snapshot()
	_, err := f.lifecycle.ReportResult(context.Background(), actorFor(snap.TeamA[0]), 13, 7)
	require.NoError(t, err)
	finished, err := f.lifecycle.ReportResult(context.Background(), actorFor(snap.TeamB[0]), 13, 7)
	require.NoError(t, err)
	require.True(t, finished)

	// p2 captains side B, which just lost
	loser, err := f.players.Get(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, 0, loser.Winstreak)
	assert.Equal(t, 1, loser.Losses)
}
