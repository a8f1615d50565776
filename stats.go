package boxy

import (
	"time"
)

// Timings aggregates the durations of repeated measurements.
type Timings struct {
	Count         int
	Latest        time.Duration
	MovingAverage time.Duration
	Min, Max      time.Duration
}

func (t Timings) Add(d time.Duration) Timings {
	t.Latest = d

	if t.Count == 0 {
		t.Min = d
		t.Max = d
		t.MovingAverage = d
	} else {
		t.Min = min(t.Min, d)
		t.Max = max(t.Max, d)
		t.MovingAverage = (95*t.MovingAverage + 5*d) / 100
	}

	t.Count += 1

	return t
}

// StepStats holds timing statistics of a World.
type StepStats struct {
	// time spent inside the simulator step, including contact callbacks
	Step Timings

	// time spent applying deferred changes in PreStep
	Flush Timings
}

func (w *World) Stats() StepStats {
	return w.stats
}

func (w *World) ResetStats() {
	w.stats = StepStats{}
}
