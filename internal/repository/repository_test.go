package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valorant-hub/internal/config"
	"valorant-hub/internal/database"
	"valorant-hub/internal/domain"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := database.New(&config.Config{DBPath: dsn}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPlayerRoundTrip(t *testing.T) {
	repo := NewPlayerRepository(newTestDB(t), zerolog.Nop())

	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	p := &domain.Player{
		ID:              "p1",
		Email:           "p1@example.com",
		Username:        "Shiro",
		RiotID:          "Shiro",
		RiotTag:         "EUW",
		Rating:          1234,
		LastRatingDelta: 21,
		XP:              450,
		Level:           2,
		Reputation:      7,
		Wins:            12,
		Losses:          8,
		Winstreak:       3,
		PrimaryRole:     domain.RoleDuelist,
		SecondaryRole:   domain.RoleFlex,
		TopAgents:       []string{"Jett", "Raze", "Omen"},
		IsAdmin:         true,
		Friends:         []string{"p2", "p3"},
		FriendRequests: []domain.FriendRequest{
			{FromID: "p4", ToID: "p1", Timestamp: now},
		},
		ActiveQuests: []domain.UserQuest{
			{QuestID: "daily-play-2", Progress: 1},
		},
		FriendQuestCountedIDs: []string{"p2"},
		LastDailyQuestGen:     now,
		LastMonthlyQuestGen:   now,
	}
	require.NoError(t, repo.Upsert(context.Background(), p))

	got, err := repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, p.Username, got.Username)
	assert.Equal(t, p.Rating, got.Rating)
	assert.Equal(t, p.TopAgents, got.TopAgents)
	assert.Equal(t, p.Friends, got.Friends)
	assert.Equal(t, p.ActiveQuests, got.ActiveQuests)
	assert.Equal(t, p.FriendQuestCountedIDs, got.FriendQuestCountedIDs)
	assert.True(t, got.IsAdmin)
	require.Len(t, got.FriendRequests, 1)
	assert.Equal(t, "p4", got.FriendRequests[0].FromID)
	assert.True(t, p.LastDailyQuestGen.Equal(got.LastDailyQuestGen))

	// upsert over the same id updates in place
	p.Rating = 1300
	require.NoError(t, repo.Upsert(context.Background(), p))
	got, err = repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1300, got.Rating)

	byName, err := repo.GetByUsername(context.Background(), "Shiro")
	require.NoError(t, err)
	assert.Equal(t, "p1", byName.ID)

	_, err = repo.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestMatchRecordAppendIsReplaySafe(t *testing.T) {
	repo := NewMatchRecordRepository(newTestDB(t), zerolog.Nop())

	record := &domain.MatchRecord{
		ID:       "match-1",
		Date:     time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
		Map:      "Ascent",
		CaptainA: "Shiro",
		CaptainB: "Kuro",
		Winner:   domain.SideA,
		TeamAIDs: []string{"p1"},
		TeamBIDs: []string{"p2"},
		Score:    "13-7",
	}
	require.NoError(t, repo.Append(context.Background(), record))
	require.NoError(t, repo.Append(context.Background(), record))

	records, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "13-7", records[0].Score)
	assert.Equal(t, domain.SideA, records[0].Winner)
}

func TestSettlementOutboxFlow(t *testing.T) {
	repo := NewSettlementRepository(newTestDB(t), zerolog.Nop())

	settlement := &domain.Settlement{
		MatchID:        "match-1",
		ResultReported: true,
		Changes: []domain.PlayerChange{
			{PlayerID: "p1", RatingDelta: 20, NewRating: 1220, IsWinner: true},
			{PlayerID: "p2", RatingDelta: -20, NewRating: 1150},
		},
	}
	require.NoError(t, repo.Upsert(context.Background(), settlement))

	pending, err := repo.ListUnprocessed(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, settlement.Changes, pending[0].Changes)

	require.NoError(t, repo.MarkProcessed(context.Background(), "match-1"))

	pending, err = repo.ListUnprocessed(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := repo.Get(context.Background(), "match-1")
	require.NoError(t, err)
	assert.True(t, got.ResultProcessed)
}

func TestConductReportList(t *testing.T) {
	repo := NewConductReportRepository(newTestDB(t), zerolog.Nop())

	older := &domain.ConductReport{Reporter: "a", ReportedUser: "x", Reason: "afk", Timestamp: time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)}
	newer := &domain.ConductReport{Reporter: "b", ReportedUser: "y", Reason: "griefing", Timestamp: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Append(context.Background(), older))
	require.NoError(t, repo.Append(context.Background(), newer))

	reports, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "griefing", reports[0].Reason)
	assert.NotEmpty(t, reports[0].ID)
}
