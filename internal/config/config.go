// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads xbeehelper settings from flags, XBEE_* environment
// variables and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (XBEE_SERIAL_PORT, ...)
const EnvPrefix = "XBEE"

// Config represents the application configuration
type Config struct {
	Serial    SerialConfig    `mapstructure:"serial"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Link      LinkConfig      `mapstructure:"link"`
	Engine    EngineConfig    `mapstructure:"engine"`
	ADC       ADCConfig       `mapstructure:"adc"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SerialConfig represents serial port configuration
type SerialConfig struct {
	Port string `mapstructure:"port"`
	Baud int    `mapstructure:"baud"`
}

// WebSocketConfig represents a serial-over-WebSocket bridge
type WebSocketConfig struct {
	URL         string `mapstructure:"url"`
	Username    string `mapstructure:"username"`
	NoSSLVerify bool   `mapstructure:"no_ssl_verify"`
}

// LinkConfig represents API framing options
type LinkConfig struct {
	Escaped bool   `mapstructure:"escaped"` // API mode 2 (AP=2)
	Dest    string `mapstructure:"dest"`    // 64-bit remote address in hex; empty for local
	Capture string `mapstructure:"capture"` // capture file path; empty to disable
}

// EngineConfig represents request/response timing
type EngineConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// ADCConfig represents analog conversion defaults
type ADCConfig struct {
	MaxVolts float64 `mapstructure:"max_volts"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("serial.baud", 9600)

	v.SetDefault("link.escaped", false)

	v.SetDefault("engine.timeout", 10*time.Second)
	v.SetDefault("engine.poll_interval", 100*time.Millisecond)

	v.SetDefault("adc.max_volts", 1.2)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)
}

// Load reads configuration into v and decodes it. configFile may be
// empty, in which case ./xbeehelper.yaml and $HOME/.config/xbeehelper
// are searched and a missing file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("xbeehelper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/xbeehelper")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", c.Serial.Baud)
	}
	if c.WebSocket.URL != "" && c.Serial.Port != "" {
		return fmt.Errorf("serial.port and websocket.url are mutually exclusive")
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("engine.timeout must be positive, got %v", c.Engine.Timeout)
	}
	if c.Engine.PollInterval <= 0 || c.Engine.PollInterval > c.Engine.Timeout {
		return fmt.Errorf("engine.poll_interval must be in (0, timeout], got %v", c.Engine.PollInterval)
	}
	if c.ADC.MaxVolts <= 0 {
		return fmt.Errorf("adc.max_volts must be positive, got %v", c.ADC.MaxVolts)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
