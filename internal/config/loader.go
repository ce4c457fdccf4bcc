package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	pkgconfig "github.com/onticket/chainindexer/pkg/config"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every option name when it is read from the environment.
const EnvPrefix = "OT"

// Load builds the runtime configuration. A .env file in the working directory is
// loaded first if present, then the optional config file at path, then OT_* environment
// variables, which take precedence over file values.
func Load(path string) (*pkgconfig.Config, error) {
	return LoadWith(path, (*pkgconfig.Config).Validate)
}

// LoadWith is Load with a custom validation step, for commands that only need part
// of the configuration.
func LoadWith(path string, validate func(*pkgconfig.Config) error) (*pkgconfig.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &pkgconfig.Config{}
	if path != "" {
		var err error
		if cfg, err = decodeFile(path); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func decodeFile(path string) (*pkgconfig.Config, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		return decodeYAML(path)
	case ".json":
		return decodeJSON(path)
	case ".toml":
		return decodeTOML(path)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json, .toml)", ext)
	}
}

func decodeYAML(path string) (*pkgconfig.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg pkgconfig.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return &cfg, nil
}

func decodeJSON(path string) (*pkgconfig.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg pkgconfig.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	return &cfg, nil
}

func decodeTOML(path string) (*pkgconfig.Config, error) {
	var cfg pkgconfig.Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	return &cfg, nil
}

type envBinding struct {
	key   string
	apply func(cfg *pkgconfig.Config, value string) error
}

var envBindings = []envBinding{
	{"rpc_http_url", func(c *pkgconfig.Config, v string) error { c.RPCHTTPURL = v; return nil }},
	{"rpc_ws_url", func(c *pkgconfig.Config, v string) error { c.RPCWSURL = v; return nil }},
	{"rpc_timeout", func(c *pkgconfig.Config, v string) error { return c.RPCTimeout.UnmarshalText([]byte(v)) }},
	{"database_url", func(c *pkgconfig.Config, v string) error { c.DatabaseURL = v; return nil }},
	{"database_max_open_connections", func(c *pkgconfig.Config, v string) error {
		return setInt(&c.DatabaseMaxOpenConnections, v)
	}},
	{"database_max_idle_connections", func(c *pkgconfig.Config, v string) error {
		return setInt(&c.DatabaseMaxIdleConnections, v)
	}},
	{"redis_url", func(c *pkgconfig.Config, v string) error { c.RedisURL = v; return nil }},
	{"ticket_manager_addr", func(c *pkgconfig.Config, v string) error { c.TicketManagerAddr = v; return nil }},
	{"event_manager_addr", func(c *pkgconfig.Config, v string) error { c.EventManagerAddr = v; return nil }},
	{"marketplace_addr", func(c *pkgconfig.Config, v string) error { c.MarketplaceAddr = v; return nil }},
	{"token_swap_addr", func(c *pkgconfig.Config, v string) error { c.TokenSwapAddr = v; return nil }},
	{"expected_chain_id", func(c *pkgconfig.Config, v string) error { return setInt64(&c.ExpectedChainID, v) }},
	{"confirmation_depth", func(c *pkgconfig.Config, v string) error { return setInt64(&c.ConfirmationDepth, v) }},
	{"backfill_batch_size", func(c *pkgconfig.Config, v string) error { return setInt64(&c.BackfillBatchSize, v) }},
	{"incremental_batch_size", func(c *pkgconfig.Config, v string) error {
		return setInt64(&c.IncrementalBatchSize, v)
	}},
	{"poll_interval", func(c *pkgconfig.Config, v string) error { return c.PollInterval.UnmarshalText([]byte(v)) }},
	{"projectors", func(c *pkgconfig.Config, v string) error {
		c.Projectors = splitList(v)
		return nil
	}},
	{"logging.default_level", func(c *pkgconfig.Config, v string) error {
		logging(c).DefaultLevel = v
		return nil
	}},
	{"logging.development", func(c *pkgconfig.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		logging(c).Development = b
		return nil
	}},
	{"metrics.enabled", func(c *pkgconfig.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		metrics(c).Enabled = b
		return nil
	}},
	{"metrics.listen_address", func(c *pkgconfig.Config, v string) error {
		metrics(c).ListenAddress = v
		return nil
	}},
	{"metrics.path", func(c *pkgconfig.Config, v string) error { metrics(c).Path = v; return nil }},
}

// ApplyEnv overlays OT_* environment variables onto cfg. Nested options use an
// underscore for the dot, e.g. OT_LOGGING_DEFAULT_LEVEL.
func ApplyEnv(cfg *pkgconfig.Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, b := range envBindings {
		if err := v.BindEnv(b.key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b.key, err)
		}
		if !v.IsSet(b.key) {
			continue
		}
		if err := b.apply(cfg, strings.TrimSpace(v.GetString(b.key))); err != nil {
			return fmt.Errorf("invalid value for %s: %w", EnvName(b.key), err)
		}
	}

	return nil
}

// EnvName returns the environment variable that carries the given option.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// splitList parses a comma separated list, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, v string) error {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func logging(c *pkgconfig.Config) *pkgconfig.LoggingConfig {
	if c.Logging == nil {
		c.Logging = &pkgconfig.LoggingConfig{}
	}
	return c.Logging
}

func metrics(c *pkgconfig.Config) *pkgconfig.MetricsConfig {
	if c.Metrics == nil {
		c.Metrics = &pkgconfig.MetricsConfig{}
	}
	return c.Metrics
}
