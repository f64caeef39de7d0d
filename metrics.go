package itemscan

import (
	"sync"
	"time"
)

// Metrics is cumulative detection telemetry for diagnostics.
type Metrics struct {
	Enabled    bool              `json:"enabled"`
	Runs       int               `json:"runs"`
	CacheHits  int               `json:"cache_hits"`
	Aggregated AggregatedMetrics `json:"aggregated"`
}

// AggregatedMetrics summarizes all cold (non-cached) runs so far.
type AggregatedMetrics struct {
	AvgDurationMs   float64 `json:"avg_duration_ms"`
	TotalDetections int     `json:"total_detections"`
	AvgConfidence   float64 `json:"avg_confidence"`
	CellsScored     int     `json:"cells_scored"`
}

// metricsCollector accumulates run statistics. Safe for concurrent use.
type metricsCollector struct {
	mu            sync.Mutex
	runs          int
	hits          int
	cells         int
	detections    int
	totalDuration time.Duration
	confidenceSum float64
}

func (m *metricsCollector) recordRun(d time.Duration, cellsScored int, detections []Detection) {
	m.mu.Lock()
	m.runs++
	m.cells += cellsScored
	m.detections += len(detections)
	m.totalDuration += d
	for _, det := range detections {
		m.confidenceSum += det.Confidence
	}
	m.mu.Unlock()
}

func (m *metricsCollector) recordHit() {
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
}

func (m *metricsCollector) snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	agg := AggregatedMetrics{
		TotalDetections: m.detections,
		CellsScored:     m.cells,
	}
	if m.runs > 0 {
		agg.AvgDurationMs = float64(m.totalDuration.Milliseconds()) / float64(m.runs)
	}
	if m.detections > 0 {
		agg.AvgConfidence = m.confidenceSum / float64(m.detections)
	}
	return Metrics{
		Enabled:    true,
		Runs:       m.runs,
		CacheHits:  m.hits,
		Aggregated: agg,
	}
}
