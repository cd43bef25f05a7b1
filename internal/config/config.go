package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Addr               string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout  time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level"`
	MaxMessageBytes    int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	DatabasePath       string        `mapstructure:"database_path" yaml:"database_path"`
	ArchiveBuffer      int           `mapstructure:"archive_buffer" yaml:"archive_buffer"`
	Game               GameConfig    `mapstructure:"game" yaml:"game"`
}

// GameConfig bounds the room settings players may choose.
type GameConfig struct {
	DefaultDimensions int `mapstructure:"default_dimensions" yaml:"default_dimensions"`
	DefaultSideLength int `mapstructure:"default_side_length" yaml:"default_side_length"`
	MinDimensions     int `mapstructure:"min_dimensions" yaml:"min_dimensions"`
	MaxDimensions     int `mapstructure:"max_dimensions" yaml:"max_dimensions"`
	MinSideLength     int `mapstructure:"min_side_length" yaml:"min_side_length"`
	MaxSideLength     int `mapstructure:"max_side_length" yaml:"max_side_length"`
	RoomIDBytes       int `mapstructure:"room_id_bytes" yaml:"room_id_bytes"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":8080",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		MaxMessageBytes:    64 << 10,
		RateLimitPerMinute: 600,
		DatabasePath:       "hypertac.db",
		ArchiveBuffer:      64,
		Game:               DefaultGame(),
	}
}

// DefaultGame returns the stock 2D, side 3 game limits.
func DefaultGame() GameConfig {
	return GameConfig{
		DefaultDimensions: 2,
		DefaultSideLength: 3,
		MinDimensions:     2,
		MaxDimensions:     10,
		MinSideLength:     3,
		MaxSideLength:     10,
		RoomIDBytes:       4,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.RateLimitPerMinute != 0 {
		c.RateLimitPerMinute = other.RateLimitPerMinute
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
}

// Validate reports inconsistent values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.MaxMessageBytes <= 0 {
		return fmt.Errorf("max_message_bytes must be positive, got %d", c.MaxMessageBytes)
	}
	return c.Game.Validate()
}

// Validate checks that the limits are ordered and the defaults fall inside them.
func (g GameConfig) Validate() error {
	if g.MinDimensions < 1 || g.MinDimensions > g.MaxDimensions {
		return fmt.Errorf("game dimensions range [%d, %d] is invalid", g.MinDimensions, g.MaxDimensions)
	}
	if g.MinSideLength < 2 || g.MinSideLength > g.MaxSideLength {
		return fmt.Errorf("game side length range [%d, %d] is invalid", g.MinSideLength, g.MaxSideLength)
	}
	if !g.DimensionsAllowed(g.DefaultDimensions) {
		return fmt.Errorf("default_dimensions %d outside [%d, %d]", g.DefaultDimensions, g.MinDimensions, g.MaxDimensions)
	}
	if !g.SideLengthAllowed(g.DefaultSideLength) {
		return fmt.Errorf("default_side_length %d outside [%d, %d]", g.DefaultSideLength, g.MinSideLength, g.MaxSideLength)
	}
	if g.RoomIDBytes < 2 || g.RoomIDBytes > 16 {
		return fmt.Errorf("room_id_bytes must be within [2, 16], got %d", g.RoomIDBytes)
	}
	return nil
}

// DimensionsAllowed reports whether d lies within the configured range.
func (g GameConfig) DimensionsAllowed(d int) bool {
	return d >= g.MinDimensions && d <= g.MaxDimensions
}

// SideLengthAllowed reports whether s lies within the configured range.
func (g GameConfig) SideLengthAllowed(s int) bool {
	return s >= g.MinSideLength && s <= g.MaxSideLength
}
