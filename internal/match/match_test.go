package match

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"valorant-hub/internal/config"
	"valorant-hub/internal/constants"
	"valorant-hub/internal/database"
	"valorant-hub/internal/domain"
	"valorant-hub/internal/repository"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:match_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := database.New(&config.Config{DBPath: dsn}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	lifecycle *Lifecycle
	settler   *Settler
	players   *repository.PlayerRepository
	records   *repository.MatchRecordRepository
	outbox    *repository.SettlementRepository
	clock     *fakeClock
}

// newFixture wires a lifecycle against a real in-memory database with
// the background ticker disabled; tests drive time explicitly.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zerolog.Nop()

	players := repository.NewPlayerRepository(db, log)
	records := repository.NewMatchRecordRepository(db, log)
	outbox := repository.NewSettlementRepository(db, log)
	settler := NewSettler(players, records, outbox, log)

	clock := newFakeClock()
	lifecycle := NewLifecycle(settler, log)
	lifecycle.manualTick = true
	lifecycle.now = clock.Now
	lifecycle.rng = rand.New(rand.NewSource(1))

	return &fixture{
		lifecycle: lifecycle,
		settler:   settler,
		players:   players,
		records:   records,
		outbox:    outbox,
		clock:     clock,
	}
}

// tenPlayers returns a full lobby with strictly descending ratings, so
// the two captains are always players[0] and players[1].
func tenPlayers() []domain.Player {
	players := make([]domain.Player, 0, constants.MatchSize)
	for i := 0; i < constants.MatchSize; i++ {
		players = append(players, domain.Player{
			ID:       fmt.Sprintf("p%d", i+1),
			Username: fmt.Sprintf("Player%d", i+1),
			RiotID:   fmt.Sprintf("Player%d", i+1),
			RiotTag:  "EUW",
			Rating:   1200 - 30*i,
			Level:    1,
		})
	}
	return players
}

func tenBots() []domain.Player {
	players := tenPlayers()
	for i := range players {
		players[i].IsBot = true
	}
	return players
}

func seed(t *testing.T, f *fixture, players []domain.Player) {
	t.Helper()
	for i := range players {
		require.NoError(t, f.players.Upsert(context.Background(), &players[i]))
	}
}

func actorFor(p domain.Player) Actor {
	return Actor{ID: p.ID, Username: p.Username}
}

// readyUp confirms every player and ticks through the grace delay into
// the draft.
func readyUp(t *testing.T, f *fixture, players []domain.Player) {
	t.Helper()
	for _, p := range players {
		if !p.IsBot {
			require.NoError(t, f.lifecycle.Accept(actorFor(p)))
		}
	}
	f.lifecycle.tick()
	f.clock.Advance(constants.DraftGraceDelay + time.Second)
	f.lifecycle.tick()
	require.Equal(t, domain.PhaseDraft, f.lifecycle.Snapshot().Phase)
}

// draftAll has the captain on turn take the first pool player until the
// pool empties, checking the headcount invariant after every pick.
func draftAll(t *testing.T, f *fixture) {
	t.Helper()
	for {
		snap := f.lifecycle.Snapshot()
		if snap.Phase != domain.PhaseDraft {
			return
		}
		captain := snap.captainOnTurn()
		require.NotNil(t, captain)
		require.NoError(t, f.lifecycle.DraftPlayer(actorFor(*captain), snap.Pool[0].ID))

		after := f.lifecycle.Snapshot()
		require.Equal(t, constants.MatchSize, len(after.TeamA)+len(after.TeamB)+len(after.Pool))
	}
}

// vetoAll alternates bans on the first remaining map until the match
// goes live.
func vetoAll(t *testing.T, f *fixture) {
	t.Helper()
	for {
		snap := f.lifecycle.Snapshot()
		if snap.Phase != domain.PhaseVeto {
			return
		}
		captain := snap.captainOnTurn()
		require.NotNil(t, captain)
		require.NoError(t, f.lifecycle.VetoMap(actorFor(*captain), snap.Maps[0]))
	}
}

// liveMatch drives a freshly seeded lobby all the way to LIVE.
func liveMatch(t *testing.T, f *fixture) []domain.Player {
	t.Helper()
	players := tenPlayers()
	seed(t, f, players)
	require.NoError(t, f.lifecycle.StartReadyCheck(players))
	readyUp(t, f, players)
	draftAll(t, f)
	vetoAll(t, f)
	require.Equal(t, domain.PhaseLive, f.lifecycle.Snapshot().Phase)
	return players
}
