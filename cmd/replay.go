// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
)

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Display frames recorded with --capture",
	Long: `Decode a capture file and print every recorded frame in the same format
as raw_log. Frames sent by the host are marked TX, received frames RX.

No connection is opened.`,
	Args: cobra.ExactArgs(1),
	// Replay needs no connection settings
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	return replayCapture(f, cmd.OutOrStdout())
}

// replayCapture prints every record in a capture stream
func replayCapture(r io.Reader, out io.Writer) error {
	reader := xbee.NewCaptureReader(r)
	stats := xbee.NewStatistics()
	session := ""

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if rec.Session != session {
			session = rec.Session
			fmt.Fprintf(out, "=== Session %s ===\n", session)
		}

		if rec.Direction == xbee.DirectionTx {
			stats.RecordSent()
		}

		frame, err := xbee.ParseFrame(rec.Packet())
		if err != nil {
			stats.Update(nil, err, nil)
			fmt.Fprintf(out, "%s [ERROR] %v\n", rec.Direction, err)
			continue
		}
		if rec.Direction == xbee.DirectionRx {
			stats.Update(frame, nil, xbee.ValidateFrame(frame))
		}
		fmt.Fprintf(out, "%s %s", rec.Direction, xbee.FormatFrame(frame))
	}

	fmt.Fprint(out, stats.String())
	return nil
}
