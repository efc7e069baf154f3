// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
	"github.com/Thermoquad/xbeehelper/pkg/zigbee"
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// monitorModel is the TUI model for the monitor command
type monitorModel struct {
	ctx           context.Context
	engine        *zigbee.Engine
	stats         *xbee.Statistics
	dest          xbee.Destination
	connInfo      string
	interval      time.Duration
	maxVolts      float64
	started       time.Time
	spinner       spinner.Model
	polling       bool
	lastSample    *xbee.Sample
	lastSampleAt  time.Time
	sampleSource  string
	timeouts      int
	eventLog      []eventLogEntry
	maxLogEntries int
	width         int
	height        int
	quitting      bool
	closed        bool
}

// Messages
type pollTickMsg time.Time
type sampleMsg struct {
	sample xbee.Sample
	err    error
}
type frameMsg struct {
	frame *xbee.Frame
}
type linkClosedMsg struct {
	err error
}

func newMonitorModel(ctx context.Context, s *session, interval time.Duration, maxVolts float64) monitorModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	return monitorModel{
		ctx:           ctx,
		engine:        s.engine,
		stats:         s.link.Stats(),
		dest:          s.dest,
		connInfo:      s.connInfo,
		interval:      interval,
		maxVolts:      maxVolts,
		started:       time.Now(),
		spinner:       sp,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return pollTickMsg(time.Now()) },
		tea.EnterAltScreen,
	)
}

func pollTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

// pollCmd requests one sample; it runs off the UI goroutine
func (m monitorModel) pollCmd() tea.Cmd {
	engine, ctx, dest := m.engine, m.ctx, m.dest
	return func() tea.Msg {
		sample, err := engine.GetSample(ctx, dest)
		return sampleMsg{sample: sample, err: err}
	}
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pollTickMsg:
		if m.closed {
			return m, nil
		}
		m.stats.CalculateRates()
		if m.polling {
			return m, pollTickCmd(m.interval)
		}
		m.polling = true
		return m, tea.Batch(m.pollCmd(), pollTickCmd(m.interval))

	case sampleMsg:
		m.polling = false
		if msg.err != nil {
			if errors.Is(msg.err, zigbee.ErrResponseTimeout) {
				m.timeouts++
			}
			if m.ctx.Err() == nil {
				m.addLogEntry(msg.err.Error(), true)
			}
			return m, nil
		}
		m.setSample(msg.sample, "poll")

	case frameMsg:
		f := msg.frame
		if len(f.Samples) > 0 {
			m.setSample(f.Samples[0], fmt.Sprintf("%s %016X", xbee.FormatFrameType(f.Type), f.SourceAddr))
		} else {
			m.addLogEntry(fmt.Sprintf("%s received", xbee.FormatFrameType(f.Type)), false)
		}
		for _, v := range xbee.ValidateFrame(f) {
			m.addLogEntry(fmt.Sprintf("%s: %s", xbee.FormatFrameType(f.Type), v.Message), true)
		}

	case linkClosedMsg:
		m.closed = true
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Connection closed: %v", msg.err), true)
		} else {
			m.addLogEntry("Connection closed", true)
		}
	}

	return m, nil
}

func (m *monitorModel) setSample(s xbee.Sample, source string) {
	m.lastSample = &s
	m.lastSampleAt = time.Now()
	m.sampleSource = source
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

// formatElapsed formats a duration as a human-friendly string
func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60

	seconds %= 60
	minutes %= 60

	parts := []string{}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("XBEEHELPER - IO MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Node: %s | Every %v | Up %s | Press 'q' to quit",
		m.connInfo, m.dest, m.interval, formatElapsed(time.Since(m.started)))))
	s.WriteString("\n\n")

	// Channels
	if m.lastSample == nil {
		if m.closed {
			s.WriteString(errorStyle.Render("✗ No sample received"))
		} else {
			s.WriteString(m.spinner.View() + warningStyle.Render(" Waiting for first sample..."))
		}
		s.WriteString("\n\n")
	} else {
		s.WriteString(labelStyle.Render("Latest Sample:"))
		s.WriteString(headerStyle.Render(fmt.Sprintf(" %s via %s",
			m.lastSampleAt.Format("15:04:05.000"), m.sampleSource)))
		if m.polling {
			s.WriteString(" " + m.spinner.View())
		}
		s.WriteString("\n")
		s.WriteString(boxStyle.Render(m.renderSample(*m.lastSample, labelStyle, valueStyle, headerStyle)))
		s.WriteString("\n\n")
	}

	// Statistics
	snap := m.stats.Snapshot()
	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s   %s %s\n",
		labelStyle.Render("Sent:"), valueStyle.Render(fmt.Sprintf("%d", snap.FramesSent)),
		labelStyle.Render("Received:"), valueStyle.Render(fmt.Sprintf("%d", snap.TotalFrames)),
		labelStyle.Render("Errors:"), countStyle(snap.ErrorCount(), valueStyle, errorStyle).Render(fmt.Sprintf("%d", snap.ErrorCount())),
		labelStyle.Render("Timeouts:"), countStyle(uint64(m.timeouts), valueStyle, errorStyle).Render(fmt.Sprintf("%d", m.timeouts)),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Frame Rate:"), valueStyle.Render(fmt.Sprintf("%.1f frames/s", snap.FrameRate)),
		labelStyle.Render("Error Rate:"), countStyle(uint64(snap.ErrorRate*10), valueStyle, errorStyle).Render(fmt.Sprintf("%.1f err/s", snap.ErrorRate)),
	))
	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := max(m.height-20, 5)
	startIdx := max(len(m.eventLog)-logHeight, 0)

	logContent := strings.Builder{}
	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(max(m.width-4, 20)).Render(logContent.String()))

	return s.String()
}

func (m monitorModel) renderSample(sample xbee.Sample, labelStyle, valueStyle, headerStyle lipgloss.Style) string {
	if sample.IsEmpty() {
		return headerStyle.Render("No IO lines are enabled")
	}

	var b strings.Builder
	for _, name := range sortedKeys(sample.Digital) {
		level := "LOW"
		if sample.Digital[name] {
			level = "HIGH"
		}
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-7s", name+":")), valueStyle.Render(level)))
	}
	for _, name := range sortedKeys(sample.Analog) {
		raw := sample.Analog[name]
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-7s", name+":")),
			valueStyle.Render(fmt.Sprintf("%4d", raw)),
			headerStyle.Render(fmt.Sprintf("(%.3f V, %.1f%%)",
				zigbee.ADCToVolts(raw, m.maxVolts), zigbee.ADCToPercentage(raw, true))),
		))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func countStyle(n uint64, ok, bad lipgloss.Style) lipgloss.Style {
	if n > 0 {
		return bad
	}
	return ok
}

// sortedKeys orders channel names by channel number
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return channelNumber(keys[i]) < channelNumber(keys[j])
	})
	return keys
}

func channelNumber(name string) int {
	var n int
	if i := strings.LastIndexByte(name, '-'); i >= 0 {
		fmt.Sscanf(name[i+1:], "%d", &n)
	}
	return n
}
