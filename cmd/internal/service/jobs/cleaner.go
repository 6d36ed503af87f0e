package jobs

import (
	"context"
	"time"

	"drgroup/cmd/internal/utils"

	"github.com/labstack/gommon/log"
)

const CleanInterval = 5 * time.Minute

type ConnectionSweeper interface {
	SweepStale(ctx context.Context, now int64) int
}

type ConnectionCleaner struct {
	sweeper ConnectionSweeper
}

func NewConnectionCleaner(sweeper ConnectionSweeper) *ConnectionCleaner {
	return &ConnectionCleaner{sweeper: sweeper}
}

func (c *ConnectionCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(CleanInterval)
	defer ticker.Stop()

	log.Info("Connection cleaner started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping connection cleaner...")
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *ConnectionCleaner) cleanup() {
	// Detached from the ticker, the gateway calls may outlive a shutdown signal
	dropped := c.sweeper.SweepStale(context.Background(), utils.NowUTC())
	if dropped > 0 {
		log.Infof("Cleaner: dropped %d stale connections", dropped)
	}
}
