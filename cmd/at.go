// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
)

var atCmd = &cobra.Command{
	Use:   "at COMMAND [HEXPARAM]",
	Short: "Send a raw AT command",
	Long: `Send an AT command and print the response parameter. Without HEXPARAM
the register is read; with it the register is set, e.g.

  xbeehelper at NI
  xbeehelper at D0 04`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		command := strings.ToUpper(args[0])
		var parameter []byte
		if len(args) == 2 {
			var err error
			parameter, err = parseHexParam(args[1])
			if err != nil {
				return err
			}
		}
		return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
			f, err := s.engine.SendAndWait(ctx, command, parameter, s.dest)
			if err != nil {
				return err
			}
			printATResponse(f)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(atCmd)
}

// parseHexParam decodes a hex parameter; an odd digit count gets a leading zero
func parseHexParam(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex parameter: %w", err)
	}
	return b, nil
}

func printATResponse(f *xbee.Frame) {
	fmt.Printf("%s: OK\n", f.Command)
	if len(f.Samples) > 0 {
		for i, s := range f.Samples {
			fmt.Print(xbee.FormatSample(i, s))
		}
		return
	}
	if len(f.Parameter) > 0 {
		fmt.Printf("  Parameter: % X", f.Parameter)
		if isPrintable(f.Parameter) {
			fmt.Printf(" (%q)", f.Parameter)
		}
		fmt.Println()
	}
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}
