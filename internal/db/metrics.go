package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCommit   = "commit"
	outcomeRollback = "rollback"
)

var (
	txOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainindexer_db_transactions_total",
			Help: "Total number of database transactions by outcome",
		},
		[]string{"outcome"},
	)

	txDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chainindexer_db_transaction_duration_seconds",
			Help:    "Duration of database transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	migrationsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chainindexer_db_migrations_applied_total",
			Help: "Total number of schema migrations applied",
		},
	)
)

func TxOutcomeInc(outcome string) {
	txOutcomes.WithLabelValues(outcome).Inc()
}

func TxDurationLog(duration time.Duration) {
	txDuration.Observe(duration.Seconds())
}

func MigrationsAppliedAdd(n int) {
	migrationsApplied.Add(float64(n))
}
