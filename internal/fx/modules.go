package fx

import (
	"github.com/rs/zerolog"

	"go.uber.org/fx"

	"valorant-hub/internal/config"
	"valorant-hub/internal/database"
	"valorant-hub/internal/logger"
	"valorant-hub/internal/match"
	"valorant-hub/internal/queue"
	"valorant-hub/internal/repository"
	"valorant-hub/internal/server"
	"valorant-hub/internal/service"
	"valorant-hub/internal/worker"
)

func provideSettlementWorker(
	settler *match.Settler,
	outbox *repository.SettlementRepository,
	cfg *config.Config,
	log zerolog.Logger,
) (*worker.SettlementWorker, error) {
	return worker.NewSettlementWorker(settler, outbox, cfg.SettlementInterval, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRecordRepository),
	fx.Provide(repository.NewSettlementRepository),
	fx.Provide(repository.NewConductReportRepository),
	// match flow
	fx.Provide(match.NewSettler),
	fx.Provide(match.NewLifecycle),
	fx.Provide(queue.NewManager),
	fx.Provide(provideSettlementWorker),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewQuestService),
	// server
	fx.Provide(server.New),
	// a failed ready check sends confirmed players back to the queue
	fx.Invoke(func(lifecycle *match.Lifecycle, queueManager *queue.Manager) {
		lifecycle.SetOnAbort(queueManager.Requeue)
	}),
)
