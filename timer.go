package boxy

import (
	"log/slog"
	"time"
)

// stepClock accumulates elapsed time and reports how many
// fixed steps of the configured interval are due.
type stepClock struct {
	interval time.Duration
	overstep time.Duration
}

// Tick adds the given amount of time and returns the number of
// intervals that finished. The remainder is kept for the next tick.
func (c *stepClock) Tick(delta time.Duration) int {
	if c.interval <= 0 || delta <= 0 {
		return 0
	}

	c.overstep += delta

	steps := c.overstep / c.interval
	c.overstep = c.overstep % c.interval

	return int(steps)
}

// Reset drops any accumulated time.
func (c *stepClock) Reset() {
	c.overstep = 0
}

// Advance runs as many fixed steps of Config.FrameRate as fit into the elapsed time,
// carrying the remainder over to the next call. At most Config.MaxSteps steps are run per
// call, additional steps are dropped. Returns the number of steps run.
func (w *World) Advance(elapsed time.Duration) int {
	if w.paused {
		return 0
	}

	w.clock.interval = w.config.FrameRate

	steps := w.clock.Tick(elapsed)

	if w.config.MaxSteps > 0 && steps > w.config.MaxSteps {
		w.logger.Debug("Dropping simulation steps",
			slog.Int("due", steps),
			slog.Int("max", w.config.MaxSteps),
		)

		steps = w.config.MaxSteps
	}

	for range steps {
		w.Update(w.config.FrameRate)
	}

	return steps
}
