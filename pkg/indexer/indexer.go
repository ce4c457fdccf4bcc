package indexer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Projector derives domain rows from committed chain logs.
// Projectors are called after the batch carrying the logs has been committed; a
// projector error is reported but never causes the logs to be indexed again, so
// implementations must be able to re-derive their rows from chain_logs at any time.
//
// A log is delivered at most once: when a range is replayed, only the logs that were
// not yet in chain_logs are delivered. A crash between commit and delivery loses the
// delivery, not the log.
type Projector interface {
	// Name identifies the projector in logs and metrics.
	Name() string

	// Topics returns the primary topics this projector consumes.
	// An empty result means every committed log is delivered.
	Topics() []common.Hash

	// Project handles one batch of committed logs, ordered by block number and log index.
	Project(ctx context.Context, logs []ChainLog) error
}
