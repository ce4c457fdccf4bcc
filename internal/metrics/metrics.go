package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Indexing metrics
	CursorBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chainindexer_cursor_block",
			Help: "The last block whose logs are committed",
		},
		[]string{"chain_id"},
	)

	HeadBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chainindexer_head_block",
			Help: "The latest block reported by the node",
		},
		[]string{"chain_id"},
	)

	Batches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainindexer_batches_total",
			Help: "Total number of batches by phase and outcome",
		},
		[]string{"chain_id", "phase", "outcome"},
	)

	BlocksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainindexer_blocks_processed_total",
			Help: "Total number of blocks covered by committed batches",
		},
		[]string{"chain_id"},
	)

	LogsCommitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainindexer_logs_committed_total",
			Help: "Total number of chain_logs rows written",
		},
		[]string{"chain_id"},
	)

	LogsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainindexer_logs_skipped_total",
			Help: "Total number of logs not committed because their fields were unreadable",
		},
		[]string{"chain_id", "reason"},
	)

	BatchProcessingTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chainindexer_batch_duration_seconds",
			Help:    "Time taken to fetch and commit one batch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain_id", "phase"},
	)

	IndexingRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chainindexer_indexing_rate_blocks_per_second",
			Help: "Blocks per second of the last committed batch",
		},
		[]string{"chain_id"},
	)

	ProjectorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainindexer_projector_errors_total",
			Help: "Total number of failed projector dispatches",
		},
		[]string{"projector"},
	)

	ProjectedLogs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainindexer_projected_logs_total",
			Help: "Total number of logs handed to projectors",
		},
		[]string{"projector"},
	)

	// System metrics
	Uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chainindexer_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)

	ComponentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chainindexer_component_health",
			Help: "Component health status (1=healthy, 0=unhealthy)",
		},
		[]string{"component"},
	)

	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chainindexer_goroutines",
			Help: "Number of active goroutines",
		},
	)

	MemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chainindexer_memory_usage_bytes",
			Help: "Memory usage statistics",
		},
		[]string{"type"},
	)

	startTime = time.Now()
)

func chainLabel(chainID int64) string {
	return strconv.FormatInt(chainID, 10)
}

func CursorBlockSet(chainID, block int64) {
	CursorBlock.WithLabelValues(chainLabel(chainID)).Set(float64(block))
}

func HeadBlockSet(chainID, block int64) {
	HeadBlock.WithLabelValues(chainLabel(chainID)).Set(float64(block))
}

func BatchInc(chainID int64, phase, outcome string) {
	Batches.WithLabelValues(chainLabel(chainID), phase, outcome).Inc()
}

func BatchProcessingTimeLog(chainID int64, phase string, duration time.Duration) {
	BatchProcessingTime.WithLabelValues(chainLabel(chainID), phase).Observe(duration.Seconds())
}

func LogsCommittedInc(chainID int64, count int) {
	LogsCommitted.WithLabelValues(chainLabel(chainID)).Add(float64(count))
}

func LogsSkippedInc(chainID int64, reason string) {
	LogsSkipped.WithLabelValues(chainLabel(chainID), reason).Inc()
}

// BatchCommitted records the block count and rate of a committed (from, to] batch.
func BatchCommitted(chainID, from, to int64, processingStart time.Time) {
	blocks := to - from
	BlocksProcessed.WithLabelValues(chainLabel(chainID)).Add(float64(blocks))

	elapsed := time.Since(processingStart).Seconds()
	if elapsed == 0 {
		elapsed = 1 // prevent division by zero
	}
	IndexingRate.WithLabelValues(chainLabel(chainID)).Set(float64(blocks) / elapsed)
}

func ProjectorErrorInc(projector string) {
	ProjectorErrors.WithLabelValues(projector).Inc()
}

func ProjectedLogsInc(projector string, count int) {
	ProjectedLogs.WithLabelValues(projector).Add(float64(count))
}

func ComponentHealthSet(component string, healthy bool) {
	boolAsFloat := float64(1)
	if !healthy {
		boolAsFloat = 0
	}

	ComponentHealth.WithLabelValues(component).Set(boolAsFloat)
}

// UpdateSystemMetrics updates runtime system metrics.
// This should be called periodically (e.g., every 15 seconds).
func UpdateSystemMetrics() {
	Uptime.Set(time.Since(startTime).Seconds())
	Goroutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsage.WithLabelValues("alloc").Set(float64(m.Alloc))
	MemoryUsage.WithLabelValues("total_alloc").Set(float64(m.TotalAlloc))
	MemoryUsage.WithLabelValues("sys").Set(float64(m.Sys))
	MemoryUsage.WithLabelValues("heap_inuse").Set(float64(m.HeapInuse))
}
