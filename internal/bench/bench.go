// Package bench times repeated runs of an operation and reports mean and
// standard deviation, the way the scheme experiments are measured.
package bench

import (
	"context"
	"fmt"
	"math"
	"time"

	"cosmossdk.io/log"
)

type Stats struct {
	Name   string
	Reps   int
	Mean   time.Duration
	StdDev time.Duration
	Min    time.Duration
	Max    time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("%s: reps=%d mean=%s stddev=%s min=%s max=%s", s.Name, s.Reps, s.Mean, s.StdDev, s.Min, s.Max)
}

// Run calls fn reps times and summarizes the durations. The context is
// checked between repetitions; a cancelled run returns the context error.
// The first error from fn stops the run.
func Run(ctx context.Context, logger log.Logger, name string, reps int, fn func() error) (Stats, error) {
	if reps < 1 {
		return Stats{}, fmt.Errorf("reps must be >= 1, got %d", reps)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = logger.With("module", "bench", "op", name)

	samples := make([]time.Duration, 0, reps)
	for i := 0; i < reps; i++ {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		start := time.Now()
		if err := fn(); err != nil {
			return Stats{}, fmt.Errorf("%s rep %d: %w", name, i, err)
		}
		d := time.Since(start)
		samples = append(samples, d)
		logger.Debug("rep done", "rep", i, "elapsed", d)
	}

	st := Summarize(name, samples)
	logger.Info("bench done", "reps", st.Reps, "mean", st.Mean, "stddev", st.StdDev)
	return st, nil
}

// Summarize computes population statistics over samples.
func Summarize(name string, samples []time.Duration) Stats {
	st := Stats{Name: name, Reps: len(samples)}
	if len(samples) == 0 {
		return st
	}
	st.Min, st.Max = samples[0], samples[0]
	var sum float64
	for _, d := range samples {
		sum += float64(d)
		st.Min = min(st.Min, d)
		st.Max = max(st.Max, d)
	}
	mean := sum / float64(len(samples))
	var sq float64
	for _, d := range samples {
		diff := float64(d) - mean
		sq += diff * diff
	}
	st.Mean = time.Duration(mean)
	st.StdDev = time.Duration(math.Sqrt(sq / float64(len(samples))))
	return st
}
