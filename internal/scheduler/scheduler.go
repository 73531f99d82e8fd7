package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/config"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/domain/models"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/service/portfolio"
	"github.com/StockmansWallet/StockmansWallet-sub006/internal/service/pricesync"
)

const jobTimeout = 2 * time.Minute

// SnapshotSaver persists the daily portfolio point.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snap models.PortfolioSnapshot) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	portfolioSvc *portfolio.Service
	snapshots    SnapshotSaver
	priceSync    *pricesync.Service
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. The cron runs in the
// configured timezone so "daily" means the property's day, not the host's.
func NewScheduler(cfg config.Config, portfolioSvc *portfolio.Service, snapshots SnapshotSaver, priceSync *pricesync.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Warn("invalid scheduler timezone, using local time",
			zap.String("timezone", cfg.Scheduler.Timezone),
			zap.Error(err))
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:         c,
		portfolioSvc: portfolioSvc,
		snapshots:    snapshots,
		priceSync:    priceSync,
		cfg:          cfg,
		logger:       logger.Named("scheduler"),
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.Scheduler.SnapshotCron, s.runDailySnapshot); err != nil {
		s.logger.Error("failed to schedule daily snapshot", zap.Error(err))
	}

	if s.priceSync != nil {
		if _, err := s.cron.AddFunc(s.cfg.Scheduler.PriceSyncCron, s.runPriceSync); err != nil {
			s.logger.Error("failed to schedule price sync", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

// runDailySnapshot applies due calving transitions, values the portfolio and
// persists the day's point.
func (s *Scheduler) runDailySnapshot() {
	s.logger.Info("running daily portfolio snapshot")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	snap, err := s.portfolioSvc.Refresh(ctx)
	if err != nil {
		s.logger.Error("daily snapshot valuation failed", zap.Error(err))
		return
	}

	if err := s.snapshots.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Error("failed to persist daily snapshot", zap.Error(err))
		return
	}

	s.logger.Info("daily snapshot stored",
		zap.Time("date", snap.Date),
		zap.String("total_value", snap.TotalValue.String()),
		zap.Int("groups", snap.GroupCount),
		zap.Int("failed_groups", len(snap.GroupErrors)))
}

func (s *Scheduler) runPriceSync() {
	s.logger.Info("running market feed refresh")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.priceSync.Sync(ctx); err != nil {
		s.logger.Error("market feed refresh failed", zap.Error(err))
	}
}
