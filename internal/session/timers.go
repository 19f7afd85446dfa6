package session

import (
	"context"
	"log"
	"time"

	"github.com/shubh-37/idea-processor/internal/models"
)

func (c *Controller) startTimerLocked(fn func(ctx context.Context)) {
	c.stopTimerLocked()
	ctx, cancel := context.WithCancel(c.lifeCtx)
	c.timerCancel = cancel
	go fn(ctx)
}

func (c *Controller) stopTimerLocked() {
	if c.timerCancel != nil {
		c.timerCancel()
		c.timerCancel = nil
	}
}

func (c *Controller) stopScoreLocked() {
	if c.scoreCancel != nil {
		c.scoreCancel()
		c.scoreCancel = nil
	}
}

// runDuration counts seconds for as long as the run stays LIVE
func (c *Controller) runDuration(ctx context.Context, epoch uint64) {
	ticker := time.NewTicker(c.cfg.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.epoch != epoch || c.phase != models.PhaseLive {
			c.mu.Unlock()
			return
		}
		c.duration++
		c.mu.Unlock()
		c.publish()
	}
}

// runCountdown ticks CLOSING down to zero and then enters ANALYSIS
func (c *Controller) runCountdown(ctx context.Context, epoch uint64) {
	ticker := time.NewTicker(c.cfg.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.epoch != epoch || c.phase != models.PhaseClosing {
			c.mu.Unlock()
			return
		}
		c.countdown--
		done := c.countdown <= 0
		if done {
			c.countdown = 0
			c.enterAnalysisLocked()
		}
		c.mu.Unlock()
		c.publish()

		if done {
			log.Printf("🔍 Session %s entering analysis", c.sessionID)
			c.runAnalysis(epoch)
			return
		}
	}
}

// startScoreLocked counts the displayed score up to target
func (c *Controller) startScoreLocked(epoch uint64, target int) {
	c.stopScoreLocked()
	c.score = 0
	if target <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(c.lifeCtx)
	c.scoreCancel = cancel

	go func() {
		ticker := time.NewTicker(c.cfg.scoreTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			c.mu.Lock()
			if c.epoch != epoch || c.analysis == nil {
				c.mu.Unlock()
				return
			}
			c.score = min(c.score+c.cfg.scoreStep, target)
			done := c.score >= target
			c.mu.Unlock()
			c.publish()
			if done {
				return
			}
		}
	}()
}
