package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CheckpointWriter is the part of LedgerService the Checkpointer drives.
type CheckpointWriter interface {
	Checkpoint(ctx context.Context) (bool, error)
}

// Checkpointer periodically writes ledger snapshots in the background.
type Checkpointer struct {
	ledger     CheckpointWriter
	interval   time.Duration
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
	startOnce  sync.Once
	stopOnce   sync.Once
}

// NewCheckpointer creates a Checkpointer. A non-positive interval disables
// the periodic loop; Stop still writes a final snapshot.
func NewCheckpointer(ledger CheckpointWriter, interval time.Duration, logger *slog.Logger) *Checkpointer {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Checkpointer{
		ledger:     ledger,
		interval:   interval,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger.With(slog.String("component", "checkpointer")),
	}
}

// Start launches the background loop. Calling it more than once has no effect.
func (c *Checkpointer) Start() {
	c.startOnce.Do(func() {
		if c.interval <= 0 {
			c.logger.Info("periodic checkpoints disabled")
			return
		}

		c.wg.Add(1)
		go c.run()
		c.logger.Info("checkpointer started", slog.Duration("interval", c.interval))
	})
}

// Stop halts the loop, waits for an in-flight checkpoint and then writes a
// final one using ctx. Only the first call does any work.
func (c *Checkpointer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		c.cancelFunc()
		c.wg.Wait()

		var wrote bool
		wrote, err = c.ledger.Checkpoint(ctx)
		if err != nil {
			c.logger.Error("final checkpoint failed", slog.String("error", err.Error()))
			return
		}
		c.logger.Info("checkpointer stopped", slog.Bool("final_checkpoint_written", wrote))
	})
	return err
}

func (c *Checkpointer) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.ledger.Checkpoint(c.ctx); err != nil {
				// The ledger stays dirty, so the next tick retries.
				c.logger.Warn("periodic checkpoint failed", slog.String("error", err.Error()))
			}
		}
	}
}
