package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/onticket/chainindexer/internal/common"
	"github.com/onticket/chainindexer/internal/config"
	"github.com/onticket/chainindexer/internal/db"
	"github.com/onticket/chainindexer/internal/indexer"
	"github.com/onticket/chainindexer/internal/logger"
	"github.com/onticket/chainindexer/internal/metrics"
	"github.com/onticket/chainindexer/internal/migrations"
	"github.com/onticket/chainindexer/internal/projector"
	"github.com/onticket/chainindexer/internal/registry"
	"github.com/onticket/chainindexer/internal/retry"
	"github.com/onticket/chainindexer/internal/rpc"
	pkgconfig "github.com/onticket/chainindexer/pkg/config"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// startupRetry bounds how long the node may be unreachable at startup.
var startupRetry = &pkgconfig.RetryConfig{MaxAttempts: 5}

func init() {
	startupRetry.ApplyDefaults()
}

func runIndexer(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewComponentLoggerFromConfig(common.ComponentIndexer, cfg.Logging)
	logger.SetDefaultLogger(log)
	defer func() { _ = log.Sync() }()

	// Open database and bring the schema up to date
	database, err := db.Open(cfg.DatabaseURL, cfg.DatabaseMaxOpenConnections, cfg.DatabaseMaxIdleConnections)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := migrations.RunMigrations(
		logger.NewComponentLoggerFromConfig(common.ComponentDB, cfg.Logging), database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Connect to the node
	log.Info("connecting to chain node...")
	client, err := rpc.NewClient(ctx, cfg.RPCHTTPURL, cfg.RPCTimeout.Duration,
		logger.NewComponentLoggerFromConfig(common.ComponentRPC, cfg.Logging))
	if err != nil {
		return fmt.Errorf("failed to create RPC client: %w", err)
	}
	defer client.Close()

	var chainID int64
	err = retry.Do(ctx, startupRetry, "chain_id", func() error {
		var err error
		chainID, err = indexer.VerifyChainID(ctx, client, cfg.ExpectedChainID)
		return err
	})
	if err != nil {
		return err
	}
	log.Infow("connected to chain node", "chain_id", chainID)

	// Contract registry with hot reload
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid redis_url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	registryLog := logger.NewComponentLoggerFromConfig(common.ComponentRegistry, cfg.Logging)
	resolver := registry.NewResolver(chainID, cfg.ContractOverrides(),
		registry.NewRepository(database, registryLog), registryLog)
	if err := resolver.Reload(ctx); err != nil {
		// not fatal: batches are skipped until a reload succeeds
		registryLog.Errorw("initial contract registry resolution failed", "chain_id", chainID, "error", err)
	}

	watcher := registry.NewWatcher(rdb, resolver, cfg.WatcherReconnect,
		logger.NewComponentLoggerFromConfig(common.ComponentRegistryWatcher, cfg.Logging))

	// Projectors
	coordinator, err := projector.FromNames(cfg.Projectors,
		logger.NewComponentLoggerFromConfig(common.ComponentProjector, cfg.Logging))
	if err != nil {
		return err
	}

	idx, err := indexer.New(
		indexer.NewConfig(cfg, chainID),
		client,
		database,
		resolver,
		logger.NewComponentLoggerFromConfig(common.ComponentIndexer, cfg.Logging),
		indexer.WithDispatcher(coordinator),
	)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}

	var metricsServer *metrics.Server
	if cfg.Metrics != nil {
		metricsServer = metrics.NewServer(cfg.Metrics, log)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return idx.Run(gctx) })
	g.Go(func() error { return watcher.Run(gctx) })
	if metricsServer != nil {
		g.Go(func() error { return metricsServer.Run(gctx) })
	}

	log.Info("chain indexer started")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("chain indexer stopped")
	return nil
}
