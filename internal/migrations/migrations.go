package migrations

import (
	_ "embed"

	"github.com/onticket/chainindexer/internal/db"
	"github.com/onticket/chainindexer/internal/logger"
)

//go:embed 001_chain_indexer.sql
var mig001 string

// All returns the schema migrations in the order they must be applied.
func All() []db.Migration {
	return []db.Migration{
		{
			ID:  "001_chain_indexer.sql",
			SQL: mig001,
		},
	}
}

func RunMigrations(log *logger.Logger, database *db.DB) error {
	return db.RunMigrations(log, database, All())
}
