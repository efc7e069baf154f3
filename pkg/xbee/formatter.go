// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"fmt"
	"sort"
	"strings"
)

// FormatFrame formats a frame into a human-readable string
func FormatFrame(f *Frame) string {
	timestamp := f.Timestamp.Format("15:04:05.000")
	frameType := FormatFrameType(f.Type)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s (0x%02X)", timestamp, frameType, f.Type)
	if f.ID != 0 {
		fmt.Fprintf(&b, " id=%d", f.ID)
	}
	if f.SourceAddr != 0 || f.Type == FrameRemoteATResponse || f.Type == FrameIOSample || f.Type == FrameRxPacket {
		fmt.Fprintf(&b, " src=%016X/%04X", f.SourceAddr, f.NetworkAddr)
	}
	b.WriteString("\n")

	if f.Command != "" {
		fmt.Fprintf(&b, "  Command: %s\n", f.Command)
	}
	if f.HasStatus() {
		fmt.Fprintf(&b, "  Status: %s (0x%02X)\n", FormatStatus(f.Type, f.Status[0]), f.Status[0])
	}
	for i, s := range f.Samples {
		b.WriteString(FormatSample(i, s))
	}
	if len(f.Samples) == 0 && len(f.Parameter) > 0 {
		b.WriteString(formatHex("  Parameter: ", f.Parameter))
	}
	if len(f.Data) > 0 && len(f.Samples) == 0 {
		b.WriteString(formatHex("  Data: ", f.Data))
	}

	return b.String()
}

// FormatFrameType returns the human-readable name for a frame type
func FormatFrameType(frameType uint8) string {
	switch frameType {
	// Host to module
	case FrameATCommand:
		return "AT_COMMAND"
	case FrameATQueue:
		return "AT_COMMAND_QUEUE"
	case FrameTxRequest:
		return "TX_REQUEST"
	case FrameRemoteATCommand:
		return "REMOTE_AT_COMMAND"

	// Module to host
	case FrameATResponse:
		return "AT_RESPONSE"
	case FrameModemStatus:
		return "MODEM_STATUS"
	case FrameTxStatus:
		return "TX_STATUS"
	case FrameRxPacket:
		return "RX_PACKET"
	case FrameIOSample:
		return "IO_SAMPLE"
	case FrameRemoteATResponse:
		return "REMOTE_AT_RESPONSE"

	default:
		return "UNKNOWN"
	}
}

// FormatStatus returns the name of a status byte for the given frame type
func FormatStatus(frameType uint8, status byte) string {
	switch frameType {
	case FrameModemStatus:
		switch status {
		case 0x00:
			return "HARDWARE_RESET"
		case 0x01:
			return "WATCHDOG_RESET"
		case 0x02:
			return "JOINED_NETWORK"
		case 0x03:
			return "DISASSOCIATED"
		case 0x06:
			return "COORDINATOR_STARTED"
		}
		return "UNKNOWN"

	case FrameTxStatus:
		switch status {
		case 0x00:
			return "SUCCESS"
		case 0x01:
			return "MAC_ACK_FAILURE"
		case 0x21:
			return "NETWORK_ACK_FAILURE"
		case 0x24:
			return "ADDRESS_NOT_FOUND"
		case 0x25:
			return "ROUTE_NOT_FOUND"
		}
		return "UNKNOWN"
	}

	switch status {
	case 0x00:
		return "OK"
	case 0x01:
		return "ERROR"
	case 0x02:
		return "INVALID_COMMAND"
	case 0x03:
		return "INVALID_PARAMETER"
	case 0x04:
		return "TX_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// FormatSample formats one IO sample with lines in a stable order
func FormatSample(index int, s Sample) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Sample %d:\n", index)

	digital := make([]string, 0, len(s.Digital))
	for name := range s.Digital {
		digital = append(digital, name)
	}
	sortByChannel(digital)
	for _, name := range digital {
		level := "LOW"
		if s.Digital[name] {
			level = "HIGH"
		}
		fmt.Fprintf(&b, "    %-7s %s\n", name, level)
	}

	analog := make([]string, 0, len(s.Analog))
	for name := range s.Analog {
		analog = append(analog, name)
	}
	sortByChannel(analog)
	for _, name := range analog {
		label := name
		if name == AnalogName(supplyVoltageChannel) {
			label += " (supply)"
		}
		fmt.Fprintf(&b, "    %-7s %d\n", label, s.Analog[name])
	}

	return b.String()
}

// sortByChannel orders "dio-N"/"adc-N" names numerically by N
func sortByChannel(names []string) {
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return names[i] < names[j]
	})
}

func formatHex(prefix string, data []byte) string {
	result := prefix
	indent := strings.Repeat(" ", len(prefix))
	for i, b := range data {
		if i > 0 && i%16 == 0 {
			result += "\n" + indent
		}
		result += fmt.Sprintf("%02X ", b)
	}
	return result + "\n"
}
