// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Thermoquad/xbeehelper/pkg/zigbee"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show node name, supply voltage and temperature",
	Long: `Query the module's node identifier (NI), supply voltage (%V) and
temperature (TP). Only Pro modules implement TP; on other modules the
temperature is reported as unavailable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), runInfo)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(ctx context.Context, s *session) error {
	fmt.Printf("Connection:  %s\n", s.connInfo)
	fmt.Printf("Destination: %s\n", s.dest)

	name, err := s.engine.GetNodeName(ctx, s.dest)
	if err != nil {
		return err
	}
	fmt.Printf("Node Name:   %q\n", name)

	volts, err := s.engine.GetSupplyVoltage(ctx, s.dest)
	if err != nil {
		return err
	}
	fmt.Printf("Supply:      %.3f V\n", volts)

	celsius, err := s.engine.GetTemperature(ctx, s.dest)
	switch {
	case err == nil:
		fmt.Printf("Temperature: %d°C (%d°F)\n", celsius, zigbee.CelsiusToFahrenheit(celsius))
	case errors.Is(err, zigbee.ErrInvalidCommand):
		fmt.Printf("Temperature: unavailable\n")
	default:
		logger.Debug("temperature query failed", zap.Error(err))
		return err
	}
	return nil
}
