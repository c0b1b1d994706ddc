package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "ENTROPY_"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all entropy configuration.
type Config struct {
	Ledger  LedgerConfig
	Rules   RulesConfig
	Store   StoreConfig   `envPrefix:"STORE_"`
	Server  ServerConfig  `envPrefix:"SERVER_"`
	Tracing TracingConfig `envPrefix:"OTEL_"`
}

// LedgerConfig describes where transactions are read from.
type LedgerConfig struct {
	TreasuryAddress string        `env:"TREASURY_ADDRESS"`
	ExplorerURL     string        `env:"EXPLORER_URL"`
	ExplorerAPIKey  string        `env:"EXPLORER_API_KEY"`
	FetchWindow     int           `env:"FETCH_WINDOW"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT"`
}

// RulesConfig holds the game rules. Costs are in nominal units (AVAX).
type RulesConfig struct {
	CostCreate  float64 `env:"COST_CREATE"`
	CostRefresh float64 `env:"COST_REFRESH"`
	Tolerance   float64 `env:"TOLERANCE"`
	MaxEntropy  int     `env:"MAX_ENTROPY"`
	Decimals    int     `env:"DECIMALS"` // smallest-unit exponent, 18 for wei
}

type StoreConfig struct {
	Driver string `env:"DRIVER"` // "json" or "sqlite"
	Path   string `env:"PATH"`
}

type ServerConfig struct {
	Bind string `env:"BIND"`
	Port int    `env:"PORT"`
}

type TracingConfig struct {
	Endpoint string `env:"ENDPOINT"` // empty disables tracing
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Ledger: LedgerConfig{
			TreasuryAddress: "0x43CAF8c948235Ed5e08608D5A7642910E3f82Fb9",
			// Routescan's Etherscan-compatible endpoint for Fuji (chain 43113)
			ExplorerURL: "https://api.routescan.io/v2/network/testnet/evm/43113/etherscan/api",
			FetchWindow: 20,
			HTTPTimeout: 30 * time.Second,
		},
		Rules: RulesConfig{
			CostCreate:  0.02,
			CostRefresh: 0.01,
			Tolerance:   0.001,
			MaxEntropy:  24,
			Decimals:    18,
		},
		Store: StoreConfig{
			Driver: "json",
			Path:   "data/db.json",
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
	}
}

// Load returns Default() overlaid with ENTROPY_* environment variables,
// then validates the result.
func Load() (Config, error) {
	cfg := Default()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	// Legacy deployments exported the explorer key under this name.
	if cfg.Ledger.ExplorerAPIKey == "" {
		cfg.Ledger.ExplorerAPIKey = os.Getenv("SNOWTRACE_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the config is usable. The create and refresh bands
// must not overlap once widened by the tolerance on both sides.
func (c *Config) Validate() error {
	switch {
	case c.Ledger.TreasuryAddress == "":
		return fmt.Errorf("%w: treasury address is required", ErrInvalid)
	case c.Ledger.FetchWindow <= 0:
		return fmt.Errorf("%w: fetch window must be positive, got %d", ErrInvalid, c.Ledger.FetchWindow)
	case c.Rules.MaxEntropy <= 0:
		return fmt.Errorf("%w: max entropy must be positive, got %d", ErrInvalid, c.Rules.MaxEntropy)
	case c.Rules.Tolerance <= 0:
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrInvalid, c.Rules.Tolerance)
	case c.Rules.CostRefresh <= 0:
		return fmt.Errorf("%w: refresh cost must be positive, got %g", ErrInvalid, c.Rules.CostRefresh)
	case c.Rules.CostCreate <= c.Rules.CostRefresh:
		return fmt.Errorf("%w: create cost %g must exceed refresh cost %g", ErrInvalid, c.Rules.CostCreate, c.Rules.CostRefresh)
	case c.Rules.CostCreate-c.Rules.CostRefresh < 2*c.Rules.Tolerance:
		return fmt.Errorf("%w: cost bands overlap with tolerance %g", ErrInvalid, c.Rules.Tolerance)
	case c.Rules.Decimals < 0:
		return fmt.Errorf("%w: decimals must not be negative, got %d", ErrInvalid, c.Rules.Decimals)
	}

	switch c.Store.Driver {
	case "json", "sqlite":
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.Store.Driver)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("%w: store path is required", ErrInvalid)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
