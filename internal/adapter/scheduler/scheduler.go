package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/titanshop/storefront/internal/core/port"
)

// A CatalogScheduler reloads the catalog on a fixed interval. The first
// load runs inline so the shop never serves an unsynced catalog.
type CatalogScheduler struct {
	ctx    context.Context
	cron   *cron.Cron
	syncer port.CatalogSyncer
}

func NewCatalogScheduler(
	ctx context.Context, syncer port.CatalogSyncer, interval time.Duration,
) (*CatalogScheduler, error) {
	const op = "NewCatalogScheduler"

	s := &CatalogScheduler{ctx: ctx, cron: cron.New(), syncer: syncer}

	expr := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(expr, s.syncOnce); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (s *CatalogScheduler) Run() {
	const op = "CatalogScheduler.Run"
	log := slog.With("op", op)

	s.syncOnce()
	s.cron.Start()
	log.Info("running")
}

func (s *CatalogScheduler) Close(ctx context.Context) {
	const op = "CatalogScheduler.Close"
	log := slog.With("op", op)

	log.Info("closing scheduler...")
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	log.Info("scheduler is closed")
}

// syncOnce delegates to the syncer, which logs its own stats.
func (s *CatalogScheduler) syncOnce() {
	const op = "CatalogScheduler.syncOnce"

	if _, err := s.syncer.Sync(s.ctx); err != nil {
		slog.With("op", op).Error("catalog sync failed", "err", err)
	}
}
