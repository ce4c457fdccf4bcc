package cursor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/onticket/chainindexer/internal/common"
	"github.com/onticket/chainindexer/internal/db"
	"github.com/onticket/chainindexer/internal/logger"
)

var (
	// ErrCursorNotFound is returned when no cursor row exists for the chain.
	ErrCursorNotFound = errors.New("cursor not found")

	// ErrCursorRegression is returned when a save would move the cursor backwards.
	ErrCursorRegression = errors.New("cursor would move backwards")
)

// Cursor is the persisted progress of one chain.
type Cursor struct {
	ChainID   int64 `meddler:"chain_id"`
	LastBlock int64 `meddler:"last_block"`
}

// Store is the durable per-chain cursor.
type Store struct {
	db  *db.DB
	log *logger.Logger
}

// NewStore creates a cursor store on top of database.
func NewStore(database *db.DB, log *logger.Logger) *Store {
	return &Store{
		db:  database,
		log: log.WithComponent(common.ComponentCursor),
	}
}

// Ensure creates the cursor row for chainID at block 0 if it does not exist yet.
func (s *Store) Ensure(ctx context.Context, chainID int64) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO indexer_cursors (chain_id, last_block)
		VALUES ($1, 0)
		ON CONFLICT (chain_id) DO NOTHING
	`, chainID)
	if err != nil {
		return fmt.Errorf("failed to ensure cursor for chain %d: %w", chainID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.log.Infow("cursor created", "chain_id", chainID)
	}

	return nil
}

// Load returns the last committed block of chainID.
func (s *Store) Load(ctx context.Context, chainID int64) (int64, error) {
	return s.load(ctx, s.db, chainID)
}

func (s *Store) load(ctx context.Context, q db.Querier, chainID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var c Cursor
	err := s.db.Meddler.QueryRow(q, &c, `SELECT chain_id, last_block FROM indexer_cursors WHERE chain_id = $1`, chainID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("chain %d: %w", chainID, ErrCursorNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load cursor for chain %d: %w", chainID, err)
	}

	return c.LastBlock, nil
}

// Save moves the cursor of chainID to newBlock using q, which is normally the
// transaction that also carries the batch's logs. The update only applies while the
// stored value does not exceed newBlock. When another writer has already moved
// past newBlock, Save reports advanced=false and no error.
func (s *Store) Save(ctx context.Context, q db.Querier, chainID, newBlock int64) (advanced bool, err error) {
	if newBlock < 0 {
		return false, fmt.Errorf("chain %d to block %d: %w", chainID, newBlock, ErrCursorRegression)
	}

	res, err := q.ExecContext(ctx, `
		UPDATE indexer_cursors SET last_block = $1
		WHERE chain_id = $2 AND last_block <= $1
	`, newBlock, chainID)
	if err != nil {
		return false, fmt.Errorf("failed to save cursor for chain %d: %w", chainID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to save cursor for chain %d: %w", chainID, err)
	}
	if n > 0 {
		s.log.Debugw("cursor saved", "chain_id", chainID, "last_block", newBlock)
		return true, nil
	}

	current, err := s.load(ctx, q, chainID)
	if err != nil {
		return false, err
	}

	s.log.Warnw("cursor already advanced by another writer",
		"chain_id", chainID, "requested", newBlock, "current", current)
	return false, nil
}
