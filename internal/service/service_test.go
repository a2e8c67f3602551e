package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"valorant-hub/internal/config"
	"valorant-hub/internal/database"
	"valorant-hub/internal/domain"
	"valorant-hub/internal/repository"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := database.New(&config.Config{DBPath: dsn}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newServices(t *testing.T) (*PlayerService, *QuestService, *repository.PlayerRepository) {
	t.Helper()
	db := newTestDB(t)
	log := zerolog.Nop()

	players := repository.NewPlayerRepository(db, log)
	records := repository.NewMatchRecordRepository(db, log)
	reports := repository.NewConductReportRepository(db, log)

	return NewPlayerService(players, records, reports, log),
		NewQuestService(players, log),
		players
}

func seedPlayer(t *testing.T, players *repository.PlayerRepository, p domain.Player) {
	t.Helper()
	if p.Username == "" {
		p.Username = p.ID
	}
	require.NoError(t, players.Upsert(context.Background(), &p))
}
