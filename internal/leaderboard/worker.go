// Package leaderboard keeps a periodically refreshed copy of the points
// ranking so the read endpoint never runs the ranking query per request.
package leaderboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	aggregatedomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate/domain"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Aggregates aggregatedomain.Service
	Config     Config `optional:"true"`
}

type Worker struct {
	log        *zap.Logger
	aggregates aggregatedomain.Service
	cfg        Config

	mu          sync.RWMutex
	board       []aggregatedomain.LeaderboardRow
	refreshedAt time.Time
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:        p.Log.Named("leaderboard.worker"),
		aggregates: p.Aggregates,
		cfg:        p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(); err != nil {
			w.log.Warn("leaderboard refresh failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	board, err := w.aggregates.Leaderboard(ctx, w.cfg.Size)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.board = board
	w.refreshedAt = time.Now().UTC()
	w.mu.Unlock()
	return nil
}

// Top returns the cached ranking. Before the first successful refresh it
// falls through to the live query so a fresh deployment is never empty.
func (w *Worker) Top(ctx context.Context) ([]aggregatedomain.LeaderboardRow, error) {
	w.mu.RLock()
	board, refreshedAt := w.board, w.refreshedAt
	w.mu.RUnlock()

	if refreshedAt.IsZero() {
		return w.aggregates.Leaderboard(ctx, w.cfg.Size)
	}
	return board, nil
}

// RefreshedAt reports when the cached ranking was last rebuilt.
func (w *Worker) RefreshedAt() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.refreshedAt
}
