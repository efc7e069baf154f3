// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
)

var rawLogStatsInterval time.Duration

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display received API frames in human-readable format",
	Long: `Continuously decode and display XBee API frames as they arrive.

Each frame is shown with timestamp, frame type and decoded fields. IO samples
are expanded into their dio-N and adc-N channels, and anomalies such as
failed delivery status or out of range ADC readings are flagged.

Use the global --capture flag to record the session for later replay.

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().DurationVar(&rawLogStatsInterval, "stats-interval", 0, "Print statistics periodically (0 disables)")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	link, connInfo, captureFile, err := openLink()
	if err != nil {
		return err
	}
	defer func() {
		if captureFile != nil {
			closeLink(link, captureFile)
		} else {
			closeLink(link, nil)
		}
	}()

	fmt.Printf("xbeehelper - Raw Frame Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	link.SetFrameHandler(printFrame)
	link.Start()

	ctx, stop := commandContext(cmd.Context())
	defer stop()

	var statsTick <-chan time.Time
	if rawLogStatsInterval > 0 {
		ticker := time.NewTicker(rawLogStatsInterval)
		defer ticker.Stop()
		statsTick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			link.Stats().CalculateRates()
			fmt.Print(link.Stats().String())
			return nil
		case <-link.Done():
			fmt.Println("Connection closed")
			fmt.Print(link.Stats().String())
			return nil
		case <-statsTick:
			link.Stats().CalculateRates()
			fmt.Println()
			fmt.Print(link.Stats().String())
			fmt.Println()
		}
	}
}

// printFrame prints a frame followed by any anomalies found in it
func printFrame(f *xbee.Frame) {
	fmt.Print(xbee.FormatFrame(f))
	for i, v := range xbee.ValidateFrame(f) {
		fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, v.Message)
	}
}
