// FILE: internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"meridian/internal/assist"
	"meridian/internal/game"
	"meridian/internal/solver"

	"gopkg.in/yaml.v3"
)

const envPrefix = "MERIDIAN_"

type Config struct {
	Log     LogConfig     `yaml:"log"`
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Deals   DealsConfig   `yaml:"deals"`
	Game    GameConfig    `yaml:"game"`
	Solver  SolverConfig  `yaml:"solver"`
	DevMode bool          `yaml:"dev_mode"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// RateLimit is requests per minute per client; zero disables limiting
	RateLimit   int      `yaml:"rate_limit"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type StorageConfig struct {
	// Path of the sqlite database; empty disables persistence
	Path string `yaml:"path"`
}

type DealsConfig struct {
	Dir string `yaml:"dir"`
}

type GameConfig struct {
	HistoryLimit    int               `yaml:"history_limit"`
	Hints           int               `yaml:"hints"`
	ValidateOnApply bool              `yaml:"validate_on_apply"`
	Stalemate       assist.Thresholds `yaml:"stalemate"`
	MaxGames        int               `yaml:"max_games"`
}

type SolverConfig struct {
	MaxNodes int           `yaml:"max_nodes"`
	MaxTime  time.Duration `yaml:"max_time"`
}

// Default returns the shipped configuration
func Default() Config {
	return Config{
		Log:  LogConfig{Level: "info", Format: "json"},
		HTTP: HTTPConfig{Addr: ":8080", RateLimit: 120, CORSOrigins: []string{"*"}},
		Game: GameConfig{
			HistoryLimit: game.DefaultHistoryLimit,
			Hints:        game.DefaultHints,
			Stalemate:    assist.DefaultThresholds,
			MaxGames:     1000,
		},
		Solver: SolverConfig{MaxNodes: solver.DefaultMaxNodes, MaxTime: solver.DefaultMaxTime},
	}
}

// ApplyDefaults fills zero values left by a partial file
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = d.HTTP.Addr
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = d.HTTP.CORSOrigins
	}
	if c.Game.HistoryLimit <= 0 {
		c.Game.HistoryLimit = d.Game.HistoryLimit
	}
	if c.Game.MaxGames <= 0 {
		c.Game.MaxGames = d.Game.MaxGames
	}
	if c.Game.Stalemate == (assist.Thresholds{}) {
		c.Game.Stalemate = d.Game.Stalemate
	}
	if c.Solver.MaxNodes <= 0 {
		c.Solver.MaxNodes = d.Solver.MaxNodes
	}
	if c.Solver.MaxTime <= 0 {
		c.Solver.MaxTime = d.Solver.MaxTime
	}
}

// Load reads the YAML file at path, when given, then applies MERIDIAN_*
// environment overrides. A missing path yields the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		// the file overwrites only the keys it names
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	c.ApplyDefaults()

	if err := c.applyEnv(); err != nil {
		return Config{}, err
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	c.Log.Level = envOr("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("LOG_FORMAT", c.Log.Format)
	c.HTTP.Addr = envOr("HTTP_ADDR", c.HTTP.Addr)
	c.Storage.Path = envOr("STORAGE_PATH", c.Storage.Path)
	c.Deals.Dir = envOr("DEALS_DIR", c.Deals.Dir)
	if v := os.Getenv(envPrefix + "CORS_ORIGINS"); v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"RATE_LIMIT", &c.HTTP.RateLimit},
		{"HISTORY_LIMIT", &c.Game.HistoryLimit},
		{"HINTS", &c.Game.Hints},
		{"MAX_GAMES", &c.Game.MaxGames},
		{"SOLVER_MAX_NODES", &c.Solver.MaxNodes},
	}
	for _, e := range ints {
		if err := envInt(e.key, e.dst); err != nil {
			return err
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"DEV_MODE", &c.DevMode},
		{"VALIDATE_ON_APPLY", &c.Game.ValidateOnApply},
	}
	for _, e := range bools {
		if err := envBool(e.key, e.dst); err != nil {
			return err
		}
	}

	if v := os.Getenv(envPrefix + "SOLVER_MAX_TIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sSOLVER_MAX_TIME %q: %w", envPrefix, v, err)
		}
		c.Solver.MaxTime = d
	}
	return nil
}

// GameOptions maps the game section onto session options. Dev mode turns
// on the per-action invariant check.
func (c Config) GameOptions() game.Options {
	return game.Options{
		HistoryLimit:    c.Game.HistoryLimit,
		Hints:           c.Game.Hints,
		Thresholds:      c.Game.Stalemate,
		ValidateOnApply: c.Game.ValidateOnApply || c.DevMode,
	}
}

func (c Config) SolverOptions() solver.Options {
	return solver.Options{MaxNodes: c.Solver.MaxNodes, MaxTime: c.Solver.MaxTime}
}

// Logger builds the process logger from the log section
func (c Config) Logger() *slog.Logger {
	level, err := ParseLogLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", s)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, dst *int) error {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, v, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, v, err)
	}
	*dst = b
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
