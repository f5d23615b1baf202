// Package config loads tonnikala settings from TOML.
//
//	[escape]
//	quotes = true
//	attribute_quotes = true
//
//	[limits]
//	max_depth = 1024
//	fuel = 0
//
//	[log]
//	level = "info"
//
// Missing keys keep their defaults; unknown keys are rejected.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	tonnikala "github.com/tetframework/tonnikala/tonnikala-go"
	"github.com/tetframework/tonnikala/tonnikala-go/markup"
)

// Config is the decoded configuration file.
type Config struct {
	Escape EscapeConfig `toml:"escape"`
	Limits LimitsConfig `toml:"limits"`
	Log    LogConfig    `toml:"log"`
}

type EscapeConfig struct {
	// Quotes makes the escape command encode " as well.
	Quotes bool `toml:"quotes"`
	// AttributeQuotes selects markup.EscapeAttr for attribute values;
	// when false markup.EscapeText is used.
	AttributeQuotes bool `toml:"attribute_quotes"`
}

type LimitsConfig struct {
	MaxDepth int64 `toml:"max_depth"`
	Fuel     int64 `toml:"fuel"` // 0 = unlimited
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Escape: EscapeConfig{Quotes: true, AttributeQuotes: true},
		Limits: LimitsConfig{MaxDepth: tonnikala.DefaultMaxDepth},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a TOML document on top of the defaults.
func Parse(data string) (*Config, error) {
	cfg := Default()
	meta, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := c.maxDepth(); err != nil {
		return err
	}
	if _, err := c.fuel(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

func (c *Config) maxDepth() (int, error) {
	n, err := safecast.Conv[int](c.Limits.MaxDepth)
	if err != nil {
		return 0, fmt.Errorf("[limits].max_depth: %w", err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("[limits].max_depth must be positive, got %d", n)
	}
	return n, nil
}

func (c *Config) fuel() (uint64, error) {
	n, err := safecast.Conv[uint64](c.Limits.Fuel)
	if err != nil {
		return 0, fmt.Errorf("[limits].fuel: %w", err)
	}
	return n, nil
}

// LogLevel parses [log].level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("[log].level: %w", err)
	}
	return level, nil
}

// EscapeFunc returns the attribute escaper selected by the configuration.
func (c *Config) EscapeFunc() markup.EscapeFunc {
	if c.Escape.AttributeQuotes {
		return markup.EscapeAttr
	}
	return markup.EscapeText
}

// Environment creates an environment configured from c.
func (c *Config) Environment() (*tonnikala.Environment, error) {
	depth, err := c.maxDepth()
	if err != nil {
		return nil, err
	}
	fuel, err := c.fuel()
	if err != nil {
		return nil, err
	}
	env := tonnikala.NewEnvironment()
	env.SetEscapeFunc(c.EscapeFunc())
	env.SetMaxDepth(depth)
	env.SetFuel(fuel)
	return env, nil
}
