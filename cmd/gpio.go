// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
	"github.com/Thermoquad/xbeehelper/pkg/zigbee"
)

var (
	analogUnit     string
	analogMaxVolts float64
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Force an IO sample and print every enabled channel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
			sample, err := s.engine.GetSample(ctx, s.dest)
			if err != nil {
				return err
			}
			if sample.IsEmpty() {
				fmt.Println("No IO lines are enabled")
				return nil
			}
			fmt.Print(xbee.FormatSample(0, sample))
			return nil
		})
	},
}

var readDigitalCmd = &cobra.Command{
	Use:   "read_digital PIN",
	Short: "Read the level of a digital pin (0-8)",
	Long: `Read the level of a digital pin. Pins 0-5 are DIO0-DIO5, pins 6-8 are
DIO10-DIO12. The pin must be configured as a digital input or output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pin, err := parsePin(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
			high, err := s.engine.ReadDigitalPin(ctx, pin, s.dest)
			if err != nil {
				return err
			}
			level := "LOW"
			if high {
				level = "HIGH"
			}
			fmt.Printf("%s: %s\n", zigbee.DigitalPins[pin].Name, level)
			return nil
		})
	},
}

var readAnalogCmd = &cobra.Command{
	Use:   "read_analog PIN",
	Short: "Read an analog input (0-3)",
	Long: `Read an analog input and convert it. Units are raw (0-1023), percentage,
volts and millivolts; voltages are scaled against --max-volts, the ADC
reference voltage (1.2V on ZigBee modules).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pin, err := parsePin(args[0])
		if err != nil {
			return err
		}
		unit, err := zigbee.ParseUnit(analogUnit)
		if err != nil {
			return err
		}
		maxVolts := cfg.ADC.MaxVolts
		if cmd.Flags().Changed("max-volts") {
			maxVolts = analogMaxVolts
		}
		return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
			value, err := s.engine.ReadAnalogPin(ctx, pin, maxVolts, s.dest, unit)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", zigbee.AnalogPins[pin].Name, formatAnalog(value, unit))
			return nil
		})
	},
}

var setGPIOCmd = &cobra.Command{
	Use:   "set_gpio PIN SETTING",
	Short: "Configure a pin",
	Long: `Configure a pin. SETTING is one of DISABLED, STANDARD_FUNC, ADC,
DIGITAL_INPUT, DIGITAL_OUTPUT_LOW, DIGITAL_OUTPUT_HIGH or its numeric value.

The change is applied but not written to non-volatile memory.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pin, err := parsePin(args[0])
		if err != nil {
			return err
		}
		setting, err := parseSetting(args[1])
		if err != nil {
			return err
		}
		return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
			if err := s.engine.SetGPIOPin(ctx, pin, setting, s.dest); err != nil {
				return err
			}
			fmt.Printf("%s (%s) set to %s\n", zigbee.DigitalPins[pin].Name, zigbee.DigitalPins[pin].Command, setting)
			return nil
		})
	},
}

var getGPIOCmd = &cobra.Command{
	Use:   "get_gpio PIN",
	Short: "Read a pin's configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pin, err := parsePin(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
			setting, err := s.engine.GetGPIOPin(ctx, pin, s.dest)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s): %s\n", zigbee.DigitalPins[pin].Name, zigbee.DigitalPins[pin].Command, setting)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd, readDigitalCmd, readAnalogCmd, setGPIOCmd, getGPIOCmd)
	readAnalogCmd.Flags().StringVar(&analogUnit, "unit", "raw", "Unit (raw, percentage, volts, millivolts)")
	readAnalogCmd.Flags().Float64Var(&analogMaxVolts, "max-volts", zigbee.DefaultMaxVolts, "ADC reference voltage")
}

func parsePin(s string) (int, error) {
	pin, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid pin %q: %w", s, err)
	}
	return pin, nil
}

// parseSetting accepts a setting name or its numeric value
func parseSetting(s string) (zigbee.GPIOSetting, error) {
	if n, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 8); err == nil {
		setting := zigbee.GPIOSetting(n)
		if !setting.Valid() {
			return 0, fmt.Errorf("%w: %s", zigbee.ErrInvalidGPIOSetting, s)
		}
		return setting, nil
	}
	return zigbee.ParseGPIOSetting(s)
}

func formatAnalog(value float64, unit zigbee.Unit) string {
	switch unit {
	case zigbee.UnitPercentage:
		return fmt.Sprintf("%.1f%%", value)
	case zigbee.UnitVolts:
		return fmt.Sprintf("%.3f V", value)
	case zigbee.UnitMillivolts:
		return fmt.Sprintf("%d mV", int(value))
	default:
		return fmt.Sprintf("%d", int(value))
	}
}
