package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/onticket/chainindexer/internal/db"
	"github.com/onticket/chainindexer/internal/logger"
)

// SeedChainID is the chain the placeholder entries are written under.
const SeedChainID = int64(0)

// Entry is one contract_registry row.
type Entry struct {
	ChainID   int64     `meddler:"chain_id"`
	Name      string    `meddler:"name"`
	Address   string    `meddler:"address"`
	UpdatedAt time.Time `meddler:"updated_at"`
}

// Repository reads and writes the contract_registry table.
type Repository struct {
	db  *db.DB
	log *logger.Logger
	now func() time.Time
}

// NewRepository creates a registry repository.
func NewRepository(database *db.DB, log *logger.Logger) *Repository {
	return &Repository{
		db:  database,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Entries returns every row of chainID keyed by name, read in a single statement.
func (r *Repository) Entries(ctx context.Context, chainID int64) (map[string]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []*Entry
	err := r.db.Meddler.QueryAll(r.db, &rows,
		`SELECT chain_id, name, address, updated_at FROM contract_registry WHERE chain_id = $1`, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract registry of chain %d: %w", chainID, err)
	}

	entries := make(map[string]Entry, len(rows))
	for _, row := range rows {
		entries[row.Name] = *row
	}
	return entries, nil
}

// Get returns the entry for (chainID, name).
func (r *Repository) Get(ctx context.Context, chainID int64, name string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	var e Entry
	err := r.db.Meddler.QueryRow(r.db, &e,
		`SELECT chain_id, name, address, updated_at FROM contract_registry WHERE chain_id = $1 AND name = $2`,
		chainID, name)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read %s of chain %d: %w", name, chainID, err)
	}
	return e, nil
}

// Upsert stores address for (chainID, name) and refreshes updated_at.
func (r *Repository) Upsert(ctx context.Context, chainID int64, name string, address common.Address) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	return r.upsert(ctx, r.db, chainID, name, address, true)
}

func (r *Repository) upsert(ctx context.Context, q db.Querier, chainID int64, name string,
	address common.Address, overwrite bool) error {
	query := `
		INSERT INTO contract_registry (chain_id, name, address, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chain_id, name) DO UPDATE SET address = excluded.address, updated_at = excluded.updated_at
	`
	if !overwrite {
		query = `
		INSERT INTO contract_registry (chain_id, name, address, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chain_id, name) DO NOTHING
	`
	}

	if _, err := q.ExecContext(ctx, query, chainID, name, db.LowerHex(address), r.now()); err != nil {
		return fmt.Errorf("failed to upsert %s of chain %d: %w", name, chainID, err)
	}

	r.log.Infow("contract registry updated", "chain_id", chainID, "name", name, "address", db.LowerHex(address))
	return nil
}

// Seed writes zero-address placeholders for every name under SeedChainID when the
// table is empty. It reports whether anything was written.
func (r *Repository) Seed(ctx context.Context) (bool, error) {
	seeded := false
	err := db.WithTx(ctx, r.db.DB, r.log, func(tx *sql.Tx) error {
		var n int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM contract_registry`).Scan(&n); err != nil {
			return fmt.Errorf("failed to count registry entries: %w", err)
		}
		if n > 0 {
			return nil
		}

		for _, name := range Names {
			if err := r.upsert(ctx, tx, SeedChainID, name, common.Address{}, false); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})

	return seeded, err
}
