package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/onticket/chainindexer/internal/common"
	"github.com/onticket/chainindexer/internal/config"
	"github.com/onticket/chainindexer/internal/db"
	"github.com/onticket/chainindexer/internal/logger"
	"github.com/onticket/chainindexer/internal/migrations"
	"github.com/onticket/chainindexer/internal/registry"
	pkgconfig "github.com/onticket/chainindexer/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newUpdateRegistryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "update-contract-registry <chain_id> <Name> <address>",
		Short: "Set a contract address and notify running indexers",
		Long: fmt.Sprintf(`Upserts the contract_registry row keyed by (chain_id, Name), refreshing updated_at,
and publishes "<chain_id>:<Name>" on the %s channel.

Name is one of: TicketManager, EventManager, Marketplace, TokenSwap.
Exit codes: 0 on success, 1 on malformed arguments, 2 when the database or redis fails.`,
			registry.UpdateChannel),
		Example: "  indexer update-contract-registry 137 TicketManager 0xAbC...123",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 3 {
				return usageError("expected <chain_id> <Name> <address>, got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			chainID, name, address, err := parseRegistryArgs(args)
			if err != nil {
				return err
			}

			cfg, err := config.LoadWith(*configPath, (*pkgconfig.Config).ValidateStores)
			if err != nil {
				return downstreamError(err)
			}

			return updateContractRegistry(cmd.Context(), cfg, chainID, name, address, cmd.OutOrStdout())
		},
	}
}

func parseRegistryArgs(args []string) (int64, string, common.Address, error) {
	chainID, err := internalcommon.ParseChainID(args[0])
	if err != nil {
		return 0, "", common.Address{}, &exitError{code: exitUsage, err: err}
	}

	name := args[1]
	if err := registry.ValidateName(name); err != nil {
		return 0, "", common.Address{}, &exitError{code: exitUsage, err: err}
	}

	address, err := registry.ParseAddress(args[2])
	if err != nil {
		return 0, "", common.Address{}, &exitError{code: exitUsage, err: err}
	}

	return chainID, name, address, nil
}

func updateContractRegistry(ctx context.Context, cfg *pkgconfig.Config, chainID int64, name string,
	address common.Address, out io.Writer) error {
	log := logger.NewComponentLoggerFromConfig(internalcommon.ComponentOps, cfg.Logging)

	database, err := openMigrated(cfg, log)
	if err != nil {
		return downstreamError(err)
	}
	defer database.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return downstreamError(fmt.Errorf("invalid redis_url: %w", err))
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	repo := registry.NewRepository(database, log)

	previous := "unset"
	switch entry, err := repo.Get(ctx, chainID, name); {
	case err == nil:
		previous = entry.Address
	case !errors.Is(err, sql.ErrNoRows):
		return downstreamError(err)
	}

	if err := repo.Upsert(ctx, chainID, name, address); err != nil {
		return downstreamError(err)
	}
	if err := registry.NewNotifier(rdb).Publish(ctx, chainID, name); err != nil {
		return downstreamError(err)
	}

	fmt.Fprintf(out, "updated %s on chain %d from %s to %s and published %q\n",
		name, chainID, previous, db.LowerHex(address), registry.Payload(chainID, name))
	return nil
}

func newSeedRegistryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-contract-registry",
		Short: "Insert zero-address placeholders when the registry is empty",
		Long: `Writes one zero-address row per contract name under chain id 0 when the
contract_registry table is empty. Real addresses are set afterwards with
update-contract-registry for the chain the node serves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWith(*configPath, (*pkgconfig.Config).ValidateDatabase)
			if err != nil {
				return downstreamError(err)
			}

			log := logger.NewComponentLoggerFromConfig(internalcommon.ComponentOps, cfg.Logging)
			database, err := openMigrated(cfg, log)
			if err != nil {
				return downstreamError(err)
			}
			defer database.Close()

			seeded, err := registry.NewRepository(database, log).Seed(cmd.Context())
			if err != nil {
				return downstreamError(err)
			}

			if seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d placeholder entries under chain %d\n",
					len(registry.Names), registry.SeedChainID)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "contract registry is not empty, nothing seeded")
			}
			return nil
		},
	}
}

func openMigrated(cfg *pkgconfig.Config, log *logger.Logger) (*db.DB, error) {
	database, err := db.Open(cfg.DatabaseURL, cfg.DatabaseMaxOpenConnections, cfg.DatabaseMaxIdleConnections)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(log, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, nil
}
