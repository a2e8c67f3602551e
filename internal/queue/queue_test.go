package queue

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valorant-hub/internal/config"
	"valorant-hub/internal/constants"
	"valorant-hub/internal/database"
	"valorant-hub/internal/domain"
	"valorant-hub/internal/match"
	"valorant-hub/internal/repository"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:queue_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := database.New(&config.Config{DBPath: dsn}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newManager(t *testing.T) (*Manager, *match.Lifecycle, *repository.PlayerRepository) {
	t.Helper()
	db := newTestDB(t)
	log := zerolog.Nop()

	players := repository.NewPlayerRepository(db, log)
	records := repository.NewMatchRecordRepository(db, log)
	outbox := repository.NewSettlementRepository(db, log)
	settler := match.NewSettler(players, records, outbox, log)
	lifecycle := match.NewLifecycle(settler, log)
	manager := NewManager(lifecycle, players, log)
	lifecycle.SetOnAbort(manager.Requeue)

	t.Cleanup(func() {
		_ = lifecycle.Reset(match.Actor{ID: "cleanup", Admin: true})
	})
	return manager, lifecycle, players
}

func queuePlayer(i int) domain.Player {
	return domain.Player{
		ID:       fmt.Sprintf("q%d", i),
		Username: fmt.Sprintf("Queued%d", i),
		RiotID:   fmt.Sprintf("Queued%d", i),
		RiotTag:  "EUW",
		Rating:   constants.InitialRating + i,
	}
}

func TestJoinRequiresGameIdentity(t *testing.T) {
	manager, _, _ := newManager(t)

	err := manager.Join(domain.Player{ID: "nolink", Username: "NoLink"})
	require.ErrorIs(t, err, ErrNoGameIdentity)
	require.Zero(t, manager.Snapshot().Size)
}

func TestJoinIsIdempotent(t *testing.T) {
	manager, _, _ := newManager(t)

	require.NoError(t, manager.Join(queuePlayer(1)))
	require.NoError(t, manager.Join(queuePlayer(1)))
	require.Equal(t, 1, manager.Snapshot().Size)
}

func TestLeaveIsSilentForAbsentPlayers(t *testing.T) {
	manager, _, _ := newManager(t)

	require.NoError(t, manager.Join(queuePlayer(1)))
	require.NoError(t, manager.Join(queuePlayer(2)))

	manager.Leave("q1")
	manager.Leave("q1")
	manager.Leave("never-queued")

	snap := manager.Snapshot()
	require.Equal(t, 1, snap.Size)
	require.Equal(t, "q2", snap.Players[0].ID)
}

func TestFullQueueStartsReadyCheck(t *testing.T) {
	manager, lifecycle, _ := newManager(t)

	for i := 1; i <= constants.MatchSize; i++ {
		require.NoError(t, manager.Join(queuePlayer(i)))
	}

	require.Zero(t, manager.Snapshot().Size)
	inst := lifecycle.Snapshot()
	require.NotNil(t, inst)
	assert.Equal(t, domain.PhaseReadyCheck, inst.Phase)
	assert.Len(t, inst.Players, constants.MatchSize)
}

func TestQueueHoldsPoolWhileMatchRuns(t *testing.T) {
	manager, lifecycle, _ := newManager(t)

	for i := 1; i <= constants.MatchSize; i++ {
		require.NoError(t, manager.Join(queuePlayer(i)))
	}
	require.NotNil(t, lifecycle.Snapshot())

	// a second full pool cannot start while the first match is active
	for i := 11; i <= 10+constants.MatchSize; i++ {
		require.NoError(t, manager.Join(queuePlayer(i)))
	}
	require.Equal(t, constants.MatchSize, manager.Snapshot().Size)
}

func TestRequeuePutsReturnedPlayersFirst(t *testing.T) {
	manager, _, _ := newManager(t)

	require.NoError(t, manager.Join(queuePlayer(1)))
	manager.Requeue([]domain.Player{queuePlayer(2), queuePlayer(3)})

	snap := manager.Snapshot()
	require.Equal(t, 3, snap.Size)
	assert.Equal(t, "q2", snap.Players[0].ID)
	assert.Equal(t, "q3", snap.Players[1].ID)
	assert.Equal(t, "q1", snap.Players[2].ID)
}

func TestFillWithBotsStartsMatch(t *testing.T) {
	manager, lifecycle, players := newManager(t)

	require.NoError(t, manager.Join(queuePlayer(1)))
	require.NoError(t, manager.FillWithBots(context.Background()))

	inst := lifecycle.Snapshot()
	require.NotNil(t, inst)
	assert.Len(t, inst.Players, constants.MatchSize)

	bots := 0
	for _, p := range inst.Players {
		if p.IsBot {
			bots++
		}
	}
	assert.Equal(t, constants.MatchSize-1, bots)

	// bots are persisted so settlement can write them later
	stored, err := players.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, constants.MatchSize-1)
}

func TestGeneratedBotUsernamesNeverCollide(t *testing.T) {
	manager, _, players := newManager(t)

	// identical rng draws pick the same display name; the persisted
	// username must still differ per bot
	manager.rng = rand.New(rand.NewSource(3))
	first := manager.generateBot("1700000000000000000-0")
	manager.rng = rand.New(rand.NewSource(3))
	second := manager.generateBot("1700000000000000000-1")

	require.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Username, second.Username)

	// both rows survive the unique username index
	require.NoError(t, players.Upsert(context.Background(), &first))
	require.NoError(t, players.Upsert(context.Background(), &second))
}
