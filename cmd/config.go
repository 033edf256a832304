package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/etnz/settle"
	"github.com/etnz/settle/wallet"
)

// Environment variables overriding the configuration file.
const (
	EnvRecordsFile          = "SPL_RECORDS_FILE"
	EnvCurrency             = "SPL_CURRENCY"
	EnvIncludeZero          = "SPL_INCLUDE_ZERO"
	EnvLogLevel             = "SPL_LOG_LEVEL"
	EnvLogFormat            = "SPL_LOG_FORMAT"
	EnvServerAddr           = "SPL_SERVER_ADDR"
	EnvIdempotencyRetention = "SPL_IDEMPOTENCY_RETENTION"
)

// Config is the spl configuration, read from a TOML file.
type Config struct {
	RecordsFile string       `toml:"records_file"`
	Currency    string       `toml:"currency"`
	IncludeZero bool         `toml:"include_zero"`
	Log         LogConfig    `toml:"log"`
	Server      ServerConfig `toml:"server"`
	Wallet      WalletConfig `toml:"wallet"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text|json
	Source bool   `toml:"source"`
}

// ServerConfig governs the HTTP server of spl serve.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// WalletConfig configures the payment methods ledger.
type WalletConfig struct {
	IdempotencyRetention Duration `toml:"idempotency_retention"`
}

// Duration is a time.Duration written as "24h" in TOML.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		RecordsFile: "records.jsonl",
		Currency:    "EUR",
		Log:         LogConfig{Level: "info", Format: "text"},
		Server:      ServerConfig{Addr: ":8080", ShutdownTimeout: Duration{10 * time.Second}},
		Wallet:      WalletConfig{IdempotencyRetention: Duration{wallet.DefaultRetention}},
	}
}

// LoadConfig reads the configuration file at path over the defaults, then
// applies the environment read with getenv. A missing file is an error only
// when required is set.
func LoadConfig(path string, required bool, getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
		case err != nil:
			return Config{}, fmt.Errorf("invalid config file %q: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				slices.Sort(keys)
				return Config{}, fmt.Errorf("config file %q: unknown keys %s", path, strings.Join(keys, ", "))
			}
		}
	}

	if v := getenv(EnvRecordsFile); v != "" {
		cfg.RecordsFile = v
	}
	if v := getenv(EnvCurrency); v != "" {
		cfg.Currency = v
	}
	if v := getenv(EnvIncludeZero); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvIncludeZero, err)
		}
		cfg.IncludeZero = b
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := getenv(EnvServerAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := getenv(EnvIdempotencyRetention); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvIdempotencyRetention, err)
		}
		cfg.Wallet.IdempotencyRetention = Duration{d}
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that cannot be checked by decoding.
func (c Config) Validate() error {
	if err := settle.ValidateCurrency(c.Currency); err != nil {
		return fmt.Errorf("config currency: %w", err)
	}
	if c.Wallet.IdempotencyRetention.Duration <= 0 {
		return fmt.Errorf("config wallet.idempotency_retention must be positive, got %s", c.Wallet.IdempotencyRetention)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
