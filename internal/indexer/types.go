package indexer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAddresses is returned for a batch attempted before any contract addresses were resolved.
	ErrNoAddresses = errors.New("contract addresses not resolved")

	// ErrChainIDMismatch is returned when the node serves a different chain than configured.
	ErrChainIDMismatch = errors.New("chain id mismatch")
)

// Phase is the mode a batch runs in.
type Phase string

const (
	// PhaseBackfill catches up from the cursor to the confirmed tip with large batches.
	PhaseBackfill Phase = "backfill"

	// PhaseIncremental follows the confirmed tip on every tick with small batches.
	PhaseIncremental Phase = "incremental"
)

// String returns the string representation of Phase.
func (p Phase) String() string {
	return string(p)
}

// State is what the indexer is doing right now.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StatePersisting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StatePersisting:
		return "persisting"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Batch is the block range (From, To]: From is the last committed block and To the
// last block the batch commits.
type Batch struct {
	From int64
	To   int64
}

// FirstBlock is the first block the batch fetches.
func (b Batch) FirstBlock() int64 {
	return b.From + 1
}

func (b Batch) String() string {
	return fmt.Sprintf("(%d, %d]", b.From, b.To)
}
