package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/onticket/chainindexer/internal/common"
	"github.com/onticket/chainindexer/internal/logger"
)

// ErrMissingOption is returned by Validate when a mandatory option is absent.
var ErrMissingOption = errors.New("missing required option")

const (
	DefaultConfirmationDepth          = 6
	DefaultBackfillBatchSize          = 1000
	DefaultIncrementalBatchSize       = 500
	DefaultPollInterval               = 6 * time.Second
	DefaultRPCTimeout                 = 30 * time.Second
	DefaultDatabaseMaxOpenConnections = 10
	DefaultDatabaseMaxIdleConnections = 5
)

// Config represents the complete configuration of the chain indexer.
type Config struct {
	// RPCHTTPURL is the HTTP JSON-RPC endpoint of the chain node
	RPCHTTPURL string `yaml:"rpc_http_url" json:"rpc_http_url" toml:"rpc_http_url"`

	// RPCWSURL is reserved for a websocket transport and is not used by the indexer
	RPCWSURL string `yaml:"rpc_ws_url,omitempty" json:"rpc_ws_url,omitempty" toml:"rpc_ws_url,omitempty"`

	// RPCTimeout bounds every single RPC call
	RPCTimeout common.Duration `yaml:"rpc_timeout" json:"rpc_timeout" toml:"rpc_timeout"`

	// DatabaseURL is either postgres://... or sqlite://<path>
	DatabaseURL string `yaml:"database_url" json:"database_url" toml:"database_url"`

	// DatabaseMaxOpenConnections bounds the shared relational pool
	DatabaseMaxOpenConnections int `yaml:"database_max_open_connections" json:"database_max_open_connections" toml:"database_max_open_connections"` //nolint:lll

	// DatabaseMaxIdleConnections is the maximum number of idle connections in the pool
	DatabaseMaxIdleConnections int `yaml:"database_max_idle_connections" json:"database_max_idle_connections" toml:"database_max_idle_connections"` //nolint:lll

	// RedisURL is the pub/sub bus used for registry hot reload
	RedisURL string `yaml:"redis_url" json:"redis_url" toml:"redis_url"`

	// Static contract address overrides. Used only when all four parse.
	TicketManagerAddr string `yaml:"ticket_manager_addr,omitempty" json:"ticket_manager_addr,omitempty" toml:"ticket_manager_addr,omitempty"` //nolint:lll
	EventManagerAddr  string `yaml:"event_manager_addr,omitempty" json:"event_manager_addr,omitempty" toml:"event_manager_addr,omitempty"`    //nolint:lll
	MarketplaceAddr   string `yaml:"marketplace_addr,omitempty" json:"marketplace_addr,omitempty" toml:"marketplace_addr,omitempty"`
	TokenSwapAddr     string `yaml:"token_swap_addr,omitempty" json:"token_swap_addr,omitempty" toml:"token_swap_addr,omitempty"`

	// ExpectedChainID, when non-zero, must match the chain id reported by the node
	ExpectedChainID int64 `yaml:"expected_chain_id,omitempty" json:"expected_chain_id,omitempty" toml:"expected_chain_id,omitempty"`

	// ConfirmationDepth is the number of blocks kept between the head and the indexed tip
	ConfirmationDepth int64 `yaml:"confirmation_depth" json:"confirmation_depth" toml:"confirmation_depth"`

	// BackfillBatchSize is the block span of one batch during the startup backfill
	BackfillBatchSize int64 `yaml:"backfill_batch_size" json:"backfill_batch_size" toml:"backfill_batch_size"`

	// IncrementalBatchSize is the block span of one batch in the periodic loop
	IncrementalBatchSize int64 `yaml:"incremental_batch_size" json:"incremental_batch_size" toml:"incremental_batch_size"`

	// PollInterval is the tick of the incremental loop
	PollInterval common.Duration `yaml:"poll_interval" json:"poll_interval" toml:"poll_interval"`

	// Projectors names the registered projectors committed logs are handed to
	Projectors []string `yaml:"projectors,omitempty" json:"projectors,omitempty" toml:"projectors,omitempty"`

	// WatcherReconnect configures how the registry watcher re-subscribes after the stream ends
	WatcherReconnect *RetryConfig `yaml:"watcher_reconnect,omitempty" json:"watcher_reconnect,omitempty" toml:"watcher_reconnect,omitempty"` //nolint:lll

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`
}

// RetryConfig represents a bounded exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of consecutive attempts, 0 means unbounded
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// InitialBackoff is the wait before the second attempt
	InitialBackoff common.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`

	// MaxBackoff caps the wait between attempts
	MaxBackoff common.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`

	// BackoffMultiplier is the growth factor between attempts
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`
}

// ApplyDefaults sets default values for retry configuration.
func (r *RetryConfig) ApplyDefaults() {
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = common.NewDuration(1 * time.Second)
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = common.NewDuration(30 * time.Second) //nolint:mnd
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2.0
	}
}

// Validate checks the retry configuration.
func (r *RetryConfig) Validate() error {
	if r.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must not be negative")
	}
	if r.BackoffMultiplier < 1 {
		return fmt.Errorf("backoff_multiplier must be at least 1")
	}
	if r.MaxBackoff.Duration < r.InitialBackoff.Duration {
		return fmt.Errorf("max_backoff must not be smaller than initial_backoff")
	}
	return nil
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels sets log levels for specific components
	// Available components:
	//   - indexer: batch planning and persistence loop
	//   - registry: contract address resolution
	//   - registry-watcher: pub/sub hot reload
	//   - cursor: cursor store
	//   - log-store: chain log persistence
	//   - rpc: chain provider
	//   - projector: downstream projection fan-out
	//   - db: migrations and pool
	//   - ops: operator commands
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		if _, validComponent := common.AllComponents[common.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if level, ok := l.ComponentLevels[component]; ok {
		return common.ToLowerWithTrim(level)
	}
	return l.GetDefaultLevel()
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l.Development
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	// Format: "host:port" or ":port"
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" {
			return fmt.Errorf("path is required when metrics are enabled")
		}
		if m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	if c.RPCTimeout.Duration == 0 {
		c.RPCTimeout = common.NewDuration(DefaultRPCTimeout)
	}
	if c.DatabaseMaxOpenConnections == 0 {
		c.DatabaseMaxOpenConnections = DefaultDatabaseMaxOpenConnections
	}
	if c.DatabaseMaxIdleConnections == 0 {
		c.DatabaseMaxIdleConnections = DefaultDatabaseMaxIdleConnections
	}
	if c.ConfirmationDepth == 0 {
		c.ConfirmationDepth = DefaultConfirmationDepth
	}
	if c.BackfillBatchSize == 0 {
		c.BackfillBatchSize = DefaultBackfillBatchSize
	}
	if c.IncrementalBatchSize == 0 {
		c.IncrementalBatchSize = DefaultIncrementalBatchSize
	}
	if c.PollInterval.Duration == 0 {
		c.PollInterval = common.NewDuration(DefaultPollInterval)
	}

	if c.WatcherReconnect == nil {
		c.WatcherReconnect = &RetryConfig{}
	}
	c.WatcherReconnect.ApplyDefaults()

	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
	c.Logging.ApplyDefaults()

	if c.Metrics != nil {
		c.Metrics.ApplyDefaults()
	}
}

// ValidateDatabase checks the options needed to reach the relational store.
func (c *Config) ValidateDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url: %w", ErrMissingOption)
	}
	return nil
}

// ValidateStores checks the options needed to reach the relational store and the pub/sub bus.
func (c *Config) ValidateStores() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.RedisURL == "" {
		return fmt.Errorf("redis_url: %w", ErrMissingOption)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.RPCHTTPURL == "" {
		return fmt.Errorf("rpc_http_url: %w", ErrMissingOption)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url: %w", ErrMissingOption)
	}
	if c.RedisURL == "" {
		return fmt.Errorf("redis_url: %w", ErrMissingOption)
	}

	if c.RPCTimeout.Duration < 0 {
		return fmt.Errorf("rpc_timeout must not be negative")
	}
	if c.DatabaseMaxOpenConnections < 1 {
		return fmt.Errorf("database_max_open_connections must be positive")
	}
	if c.DatabaseMaxIdleConnections < 0 || c.DatabaseMaxIdleConnections > c.DatabaseMaxOpenConnections {
		return fmt.Errorf("database_max_idle_connections must be between 0 and database_max_open_connections")
	}
	if c.ExpectedChainID < 0 {
		return fmt.Errorf("expected_chain_id must not be negative")
	}
	if c.ConfirmationDepth < 1 {
		return fmt.Errorf("confirmation_depth must be positive")
	}
	if c.BackfillBatchSize < 1 {
		return fmt.Errorf("backfill_batch_size must be positive")
	}
	if c.IncrementalBatchSize < 1 {
		return fmt.Errorf("incremental_batch_size must be positive")
	}
	if c.PollInterval.Duration <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}

	if c.WatcherReconnect != nil {
		if err := c.WatcherReconnect.Validate(); err != nil {
			return fmt.Errorf("watcher_reconnect: %w", err)
		}
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	return nil
}

// ContractOverrides returns the four static address overrides keyed by logical contract name.
func (c *Config) ContractOverrides() map[string]string {
	return map[string]string{
		"TicketManager": c.TicketManagerAddr,
		"EventManager":  c.EventManagerAddr,
		"Marketplace":   c.MarketplaceAddr,
		"TokenSwap":     c.TokenSwapAddr,
	}
}
