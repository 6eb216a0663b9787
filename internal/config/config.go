package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ServerName        string        `mapstructure:"server_name" yaml:"server_name"`
	MOTD              string        `mapstructure:"motd" yaml:"motd"`
	PoolSize          int           `mapstructure:"pool_size" yaml:"pool_size"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	IdleCheckInterval time.Duration `mapstructure:"idle_check_interval" yaml:"idle_check_interval"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxFrameBytes     int           `mapstructure:"max_frame_bytes" yaml:"max_frame_bytes"`
	MaxDecodeFailures int           `mapstructure:"max_decode_failures" yaml:"max_decode_failures"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	AdminAddr         string        `mapstructure:"admin_addr" yaml:"admin_addr"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":6667",
		MOTD:              "Welcome to the chat server!",
		PoolSize:          4,
		IdleTimeout:       3 * time.Minute,
		IdleCheckInterval: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxFrameBytes:     64 * 1024,
		MaxDecodeFailures: 5,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ServerName != "" {
		c.ServerName = other.ServerName
	}
	if other.MOTD != "" {
		c.MOTD = other.MOTD
	}
	if other.PoolSize != 0 {
		c.PoolSize = other.PoolSize
	}
	if other.IdleTimeout != 0 {
		c.IdleTimeout = other.IdleTimeout
	}
	if other.IdleCheckInterval != 0 {
		c.IdleCheckInterval = other.IdleCheckInterval
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if other.MaxFrameBytes != 0 {
		c.MaxFrameBytes = other.MaxFrameBytes
	}
	if other.MaxDecodeFailures != 0 {
		c.MaxDecodeFailures = other.MaxDecodeFailures
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.AdminAddr != "" {
		c.AdminAddr = other.AdminAddr
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("pool_size must be at least 1, got %d", c.PoolSize)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle_timeout must be positive, got %v", c.IdleTimeout)
	}
	if c.IdleCheckInterval <= 0 {
		return fmt.Errorf("idle_check_interval must be positive, got %v", c.IdleCheckInterval)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive, got %v", c.WriteTimeout)
	}
	if c.MaxFrameBytes < 1024 {
		return fmt.Errorf("max_frame_bytes must be at least 1024, got %d", c.MaxFrameBytes)
	}
	if c.MaxDecodeFailures < 1 {
		return fmt.Errorf("max_decode_failures must be at least 1, got %d", c.MaxDecodeFailures)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %v", c.ShutdownTimeout)
	}
	return nil
}

// DisplayName is the server name announced to clients on connect.
// Without an explicit server_name it falls back to "ChatServer:<port>".
func (c Config) DisplayName() string {
	if c.ServerName != "" {
		return c.ServerName
	}
	_, port, err := net.SplitHostPort(c.Addr)
	if err != nil || port == "" {
		return "ChatServer"
	}
	return "ChatServer:" + port
}
