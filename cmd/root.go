// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Thermoquad/xbeehelper/internal/config"
	"github.com/Thermoquad/xbeehelper/internal/logging"
	"github.com/Thermoquad/xbeehelper/pkg/zigbee"
)

var (
	configFile string

	// Populated by the root PersistentPreRunE
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "xbeehelper",
	Short: "XBee ZigBee module helper",
	Long: `xbeehelper - read and configure XBee ZigBee modules over the API frame protocol.

Commands are sent to the module on the serial port, or to a remote node
when --dest is given. Every command waits for its matching response and
reports device errors (invalid command, invalid parameter, transmission
failure) and timeouts.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

Settings may also come from a config file (--config, or ./xbeehelper.yaml)
and XBEE_* environment variables, e.g. XBEE_SERIAL_PORT, XBEE_LINK_DEST.

For WebSocket authentication, the password is read from the XBEE_PASSWORD
environment variable, or prompted interactively if not set.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default ./xbeehelper.yaml)")

	// Serial connection flags
	flags.StringP("port", "p", "", "Serial port device")
	flags.IntP("baud", "b", 9600, "Baud rate (serial only)")

	// WebSocket connection flags
	flags.StringP("url", "u", "", "WebSocket URL (ws:// or wss://)")
	flags.String("username", "", "Username for HTTP Basic auth")
	flags.Bool("no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Link flags
	flags.Bool("escaped", false, "Use API mode 2 (escaped) framing")
	flags.StringP("dest", "d", "", "64-bit address of a remote node (hex); omit for the local module")
	flags.String("capture", "", "Record all frames to a capture file")
	flags.Duration("timeout", zigbee.DefaultTimeout, "Response timeout")

	// Logging flags
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console, json)")
	flags.String("log-output", "stderr", "Log output (stdout, stderr or a file path)")
}

var flagKeys = map[string]string{
	"port":          "serial.port",
	"baud":          "serial.baud",
	"url":           "websocket.url",
	"username":      "websocket.username",
	"no-ssl-verify": "websocket.no_ssl_verify",
	"escaped":       "link.escaped",
	"dest":          "link.dest",
	"capture":       "link.capture",
	"timeout":       "engine.timeout",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"log-output":    "logging.output",
}

func loadConfig(cmd *cobra.Command, args []string) error {
	v := viper.New()
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}

	loaded, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	log, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}
	logger = log
	return nil
}

// Execute runs the root command
func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}
