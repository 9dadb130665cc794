package lonelypoint

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordStage is called after each pipeline stage.
	// duration is the time spent in the stage, err is nil if successful.
	RecordStage(stage Stage, duration time.Duration, err error)

	// RecordSearch is called after the nearest-neighbour batch query.
	// points is the number of grid points, atoms the number of indexed atoms.
	RecordSearch(points, atoms int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStage(Stage, time.Duration, error) {}
func (NoopMetricsCollector) RecordSearch(int, int, time.Duration)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount         atomic.Int64
	StageErrors      atomic.Int64
	SearchCount      atomic.Int64
	SearchPoints     atomic.Int64
	SearchTotalNanos atomic.Int64

	mu          sync.Mutex
	stageNanos  map[Stage]int64
	stageCounts map[Stage]int64
}

// RecordStage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStage(stage Stage, duration time.Duration, err error) {
	if stage == StageSample {
		b.RunCount.Add(1)
	}
	if err != nil {
		b.StageErrors.Add(1)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stageNanos == nil {
		b.stageNanos = make(map[Stage]int64)
		b.stageCounts = make(map[Stage]int64)
	}
	b.stageNanos[stage] += duration.Nanoseconds()
	b.stageCounts[stage]++
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(points, _ int, duration time.Duration) {
	b.SearchCount.Add(1)
	b.SearchPoints.Add(int64(points))
	b.SearchTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		RunCount:       b.RunCount.Load(),
		StageErrors:    b.StageErrors.Load(),
		SearchCount:    b.SearchCount.Load(),
		SearchPoints:   b.SearchPoints.Load(),
		SearchAvgNanos: b.getAvgSearchNanos(),
		StageAvgNanos:  make(map[Stage]int64),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for stage, total := range b.stageNanos {
		stats.StageAvgNanos[stage] = total / b.stageCounts[stage]
	}
	return stats
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RunCount       int64
	StageErrors    int64
	SearchCount    int64
	SearchPoints   int64
	SearchAvgNanos int64
	StageAvgNanos  map[Stage]int64
}
