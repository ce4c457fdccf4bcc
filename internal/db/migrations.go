package db

import (
	"fmt"
	"strings"

	"github.com/onticket/chainindexer/internal/logger"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	UpDownSeparator     = "-- +migrate Up"
	downMarker          = "-- +migrate Down"
	NoLimitMigrations   = 0 // indicate that there is no limit on the number of migrations to run
	migrationDirections = 2
)

// Column types that differ between dialects are written as placeholders in migration files.
var dialectTypes = map[string]map[string]string{
	DriverPostgres: {
		"/*timestamp*/": "TIMESTAMPTZ",
		"/*json*/":      "JSON",
	},
	DriverSQLite: {
		"/*timestamp*/": "TIMESTAMP",
		"/*json*/":      "TEXT",
	},
}

var migrateDialects = map[string]string{
	DriverPostgres: "postgres",
	DriverSQLite:   "sqlite3",
}

type Migration struct {
	ID  string
	SQL string
}

// RunMigrations will execute pending migrations if needed to keep
// the database updated with the latest changes.
func RunMigrations(log *logger.Logger, db *DB, migrations []Migration) error {
	return RunMigrationsExtended(log, db, migrations, migrate.Up, NoLimitMigrations)
}

// RunMigrationsExtended is an extended version of RunMigrations that allows
// dir: can be migrate.Up or migrate.Down
// maxMigrations: Will apply at most `max` migrations. Pass 0 for no limit (or use Exec)
func RunMigrationsExtended(log *logger.Logger,
	db *DB,
	migrationsParam []Migration,
	dir migrate.MigrationDirection,
	maxMigrations int) error {
	dialect, ok := migrateDialects[db.Driver]
	if !ok {
		return fmt.Errorf("no migration dialect for driver %s", db.Driver)
	}

	migs := &migrate.MemoryMigrationSource{Migrations: []*migrate.Migration{}}
	for _, m := range migrationsParam {
		upSQL, downSQL, err := splitMigration(m, db.Driver)
		if err != nil {
			return err
		}

		migs.Migrations = append(migs.Migrations, &migrate.Migration{
			Id:   m.ID,
			Up:   []string{upSQL},
			Down: []string{downSQL},
		})
	}

	ids := make([]string, 0, len(migs.Migrations))
	for _, m := range migs.Migrations {
		ids = append(ids, m.Id)
	}
	list := strings.Join(ids, ", ")

	log.Debugf("running migrations: (max %d/%d) migrations: %s", maxMigrations, len(ids), list)
	nMigrations, err := migrate.ExecMax(db.DB, dialect, migs, dir, maxMigrations)
	if err != nil {
		return fmt.Errorf("error executing migration (max %d/%d) migrations: %s . Err: %w",
			maxMigrations, len(ids), list, err)
	}
	MigrationsAppliedAdd(nMigrations)

	log.Infof("successfully ran %d migrations from migrations: %s", nMigrations, list)
	return nil
}

// splitMigration returns the Up and Down sections of m with dialect placeholders resolved.
func splitMigration(m Migration, driver string) (upSQL, downSQL string, err error) {
	sql := m.SQL
	for placeholder, typ := range dialectTypes[driver] {
		sql = strings.ReplaceAll(sql, placeholder, typ)
	}

	splitted := strings.Split(sql, UpDownSeparator)
	if len(splitted) < migrationDirections {
		return "", "", fmt.Errorf("migration %s missing '%s' separator", m.ID, UpDownSeparator)
	}

	downSQL = splitted[0]
	if idx := strings.Index(downSQL, downMarker); idx != -1 {
		downSQL = downSQL[idx+len(downMarker):]
	}

	return strings.TrimSpace(splitted[1]), strings.TrimSpace(downSQL), nil
}
