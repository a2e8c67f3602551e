package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"valorant-hub/internal/constants"
	"valorant-hub/internal/match"
	"valorant-hub/internal/repository"
)

// SettlementWorker periodically re-applies settlements whose inline
// application failed, so every reported match eventually lands on
// player records.
type SettlementWorker struct {
	scheduler gocron.Scheduler
	settler   *match.Settler
	outbox    *repository.SettlementRepository
	interval  time.Duration
	logger    zerolog.Logger
}

func NewSettlementWorker(
	settler *match.Settler,
	outbox *repository.SettlementRepository,
	interval time.Duration,
	logger zerolog.Logger,
) (*SettlementWorker, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &SettlementWorker{
		scheduler: scheduler,
		settler:   settler,
		outbox:    outbox,
		interval:  interval,
		logger:    logger,
	}, nil
}

func (w *SettlementWorker) Start() error {
	_, err := w.scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.Reconcile),
	)
	if err != nil {
		return err
	}
	w.scheduler.Start()
	w.logger.Info().Dur("interval", w.interval).Msg("settlement worker started")
	return nil
}

func (w *SettlementWorker) Stop() error {
	return w.scheduler.Shutdown()
}

// Reconcile drains the reported-but-unprocessed settlements. Each one
// is applied independently so a single bad row does not block the rest.
func (w *SettlementWorker) Reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
	defer cancel()

	pending, err := w.outbox.ListUnprocessed(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to list pending settlements")
		return
	}
	if len(pending) == 0 {
		return
	}

	w.logger.Info().Int("count", len(pending)).Msg("reconciling pending settlements")
	for i := range pending {
		if err := w.settler.Apply(ctx, &pending[i]); err != nil {
			w.logger.Error().Err(err).Str("match_id", pending[i].MatchID).Msg("settlement retry failed")
		}
	}
}
