// Package config holds the service configuration and loads it through viper.
//
// Precedence, highest first: command-line flags, VECDB_* environment
// variables, the YAML config file, then Default.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hupe1980/vecdb/distance"
	"github.com/hupe1980/vecdb/index"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "VECDB"

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Limits  LimitsConfig  `mapstructure:"limits" yaml:"limits"`
	Indexes []IndexConfig `mapstructure:"indexes" yaml:"indexes"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// LogConfig selects the log format and level.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// StorageConfig configures the record store. Dir is only used when InMemory
// is false. Indexes start empty, so records found in Dir are dropped when
// their index type is initialized.
type StorageConfig struct {
	InMemory bool   `mapstructure:"in_memory" yaml:"in_memory"`
	Dir      string `mapstructure:"dir" yaml:"dir"`
}

// LimitsConfig configures admission control. Zero disables a limit.
type LimitsConfig struct {
	MaxInFlight       int64   `mapstructure:"max_in_flight" yaml:"max_in_flight"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
	MemoryLimitBytes  int64   `mapstructure:"memory_limit_bytes" yaml:"memory_limit_bytes"`
}

// IndexConfig describes one index instance initialized at startup.
type IndexConfig struct {
	Type           string `mapstructure:"type" yaml:"type"`
	Dimension      int    `mapstructure:"dimension" yaml:"dimension"`
	Metric         string `mapstructure:"metric" yaml:"metric"`
	M              int    `mapstructure:"m" yaml:"m,omitempty"`
	MMax0          int    `mapstructure:"mmax0" yaml:"mmax0,omitempty"`
	EfConstruction int    `mapstructure:"ef_construction" yaml:"ef_construction,omitempty"`
	Seed           int64  `mapstructure:"seed" yaml:"seed,omitempty"`
	Overwrite      bool   `mapstructure:"overwrite" yaml:"overwrite,omitempty"`
}

// Default returns the built-in configuration: a flat and a graph index of
// dimension 1 using the Euclidean metric.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    32 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			InMemory: true,
		},
		Limits: LimitsConfig{
			MaxInFlight:      64,
			MemoryLimitBytes: 256 << 20,
		},
		Indexes: []IndexConfig{
			{Type: index.TypeFlat.String(), Dimension: 1, Metric: distance.Euclidean.String()},
			{Type: index.TypeGraph.String(), Dimension: 1, Metric: distance.Euclidean.String()},
		},
	}
}

// Resolve parses c into the index layer's config and validates it.
func (c IndexConfig) Resolve() (index.Config, error) {
	t, err := index.ParseType(c.Type)
	if err != nil {
		return index.Config{}, err
	}

	metric := distance.Euclidean
	if c.Metric != "" {
		metric, err = distance.ParseMetric(c.Metric)
		if err != nil {
			return index.Config{}, err
		}
	}

	cfg := index.Config{
		Type:           t,
		Dimension:      c.Dimension,
		Metric:         metric,
		M:              c.M,
		MMax0:          c.MMax0,
		EfConstruction: c.EfConstruction,
		Seed:           c.Seed,
		Overwrite:      c.Overwrite,
	}

	return cfg, cfg.Validate()
}

// IndexConfigs converts every configured index.
func (c Config) IndexConfigs() ([]index.Config, error) {
	out := make([]index.Config, 0, len(c.Indexes))
	for i, ic := range c.Indexes {
		cfg, err := ic.Resolve()
		if err != nil {
			return nil, fmt.Errorf("indexes[%d]: %w", i, err)
		}
		out = append(out, cfg)
	}
	return out, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must not be negative, got %d", c.Server.MaxBodyBytes))
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if err := validLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if !c.Storage.InMemory && strings.TrimSpace(c.Storage.Dir) == "" {
		errs = append(errs, errors.New("storage.dir is required unless storage.in_memory is set"))
	}

	if c.Limits.MaxInFlight < 0 || c.Limits.RequestsPerSecond < 0 || c.Limits.Burst < 0 || c.Limits.MemoryLimitBytes < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}

	seen := make(map[index.Type]bool, len(c.Indexes))
	for i, ic := range c.Indexes {
		cfg, err := ic.Resolve()
		if err != nil {
			errs = append(errs, fmt.Errorf("indexes[%d]: %w", i, err))
			continue
		}
		if seen[cfg.Type] {
			errs = append(errs, fmt.Errorf("indexes[%d]: index type %s configured twice", i, cfg.Type))
		}
		seen[cfg.Type] = true
	}

	return errors.Join(errs...)
}

func validLevel(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
	}
}

// NewViper returns a viper instance with the defaults registered and
// VECDB_* environment variables bound. SERVER_ADDR maps to server.addr.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// SetDefaults registers Default on v. Every scalar key must have a default
// for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("storage.in_memory", d.Storage.InMemory)
	v.SetDefault("storage.dir", d.Storage.Dir)

	v.SetDefault("limits.max_in_flight", d.Limits.MaxInFlight)
	v.SetDefault("limits.requests_per_second", d.Limits.RequestsPerSecond)
	v.SetDefault("limits.burst", d.Limits.Burst)
	v.SetDefault("limits.memory_limit_bytes", d.Limits.MemoryLimitBytes)

	indexes := make([]map[string]any, 0, len(d.Indexes))
	for _, ic := range d.Indexes {
		indexes = append(indexes, map[string]any{
			"type":      ic.Type,
			"dimension": ic.Dimension,
			"metric":    ic.Metric,
		})
	}
	v.SetDefault("indexes", indexes)
}

// Load reads file into v when it is not empty, decodes the merged settings
// and validates the result.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
