// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
)

var (
	monitorInterval time.Duration
	monitorMaxVolts float64
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live view of a node's IO lines",
	Long: `Poll the node for IO samples at a fixed interval and show every enabled
channel, with analog inputs converted to volts. Unsolicited IO sample
frames (periodic sampling, change detection) are shown as they arrive.

Link statistics and a log of recent events (errors, timeouts) are shown
below the channels. Press 'q' to quit.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 2*time.Second, "Sample polling interval")
	monitorCmd.Flags().Float64Var(&monitorMaxVolts, "max-volts", 0, "ADC reference voltage (default from config)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if monitorInterval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}
	maxVolts := cfg.ADC.MaxVolts
	if monitorMaxVolts > 0 {
		maxVolts = monitorMaxVolts
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := commandContext(cmd.Context())
	defer stop()

	m := newMonitorModel(ctx, s, monitorInterval, maxVolts)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	// Unsolicited samples and remote frames arrive without a frame id
	remove := s.engine.AddFrameHandler(func(f *xbee.Frame) {
		if f.ID != 0 {
			return
		}
		p.Send(frameMsg{frame: f})
	})
	defer remove()

	go func() {
		<-s.link.Done()
		p.Send(linkClosedMsg{err: s.link.Err()})
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
