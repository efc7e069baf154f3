// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/xbeehelper/pkg/zigbee"
)

var pingCount int

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure round trips to a node",
	Long: `Read the firmware version (VR) repeatedly and report round trip times.

This is useful for verifying:
  - The serial or WebSocket connection works in both directions
  - The API mode (--escaped) matches the module's AP setting
  - A remote node (--dest) is reachable

Exit codes:
  0 - All pings successful
  1 - One or more pings failed or timed out`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
}

func runPing(cmd *cobra.Command, args []string) error {
	if pingCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
		fmt.Printf("xbeehelper - Ping\n")
		fmt.Printf("Connection: %s\n", s.connInfo)
		fmt.Printf("Destination: %s\n", s.dest)
		fmt.Printf("Count: %d pings\n\n", pingCount)

		sent, successCount := 0, 0
		var total time.Duration

		for i := 1; i <= pingCount; i++ {
			fmt.Printf("Ping %d/%d: ", i, pingCount)

			sent++
			start := time.Now()
			version, err := s.engine.GetParameter(ctx, "VR", s.dest)
			rtt := time.Since(start)

			switch {
			case err == nil:
				fmt.Printf("firmware=%X, rtt=%v\n", version, rtt.Round(time.Millisecond))
				successCount++
				total += rtt
			case errors.Is(err, zigbee.ErrResponseTimeout):
				fmt.Printf("TIMEOUT\n")
			case ctx.Err() != nil:
				fmt.Printf("interrupted\n")
			default:
				fmt.Printf("FAILED: %v\n", err)
			}

			if ctx.Err() != nil {
				break
			}
			// Small delay between pings
			if i < pingCount {
				time.Sleep(100 * time.Millisecond)
			}
		}

		// Summary
		fmt.Printf("\n--- Ping statistics ---\n")
		fmt.Printf("%d pings sent, %d responses received, %.0f%% loss\n",
			sent, successCount, float64(sent-successCount)/float64(sent)*100)
		if successCount > 0 {
			fmt.Printf("average rtt=%v\n", (total / time.Duration(successCount)).Round(time.Millisecond))
		}

		if successCount < sent {
			return fmt.Errorf("%d of %d pings failed", sent-successCount, sent)
		}
		return nil
	})
}
