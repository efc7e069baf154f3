// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Frame is a decoded API frame with its fields split out.
//
// ID is zero when the frame type carries no frame id. Status and
// Parameter are nil when absent. For IS responses and IO sample
// indicators the sample payload is decoded into Samples.
type Frame struct {
	Type        uint8
	ID          uint8
	Command     string
	Status      []byte
	Parameter   []byte
	Samples     []Sample
	SourceAddr  uint64
	NetworkAddr uint16
	Options     byte
	Data        []byte
	Timestamp   time.Time
}

// HasStatus reports whether the frame carries a status field
func (f *Frame) HasStatus() bool {
	return f.Status != nil
}

// minimum frame data length per type, including the API identifier
var minFrameLength = map[uint8]int{
	FrameATResponse:       5,
	FrameRemoteATResponse: 15,
	FrameIOSample:         12,
	FrameModemStatus:      2,
	FrameTxStatus:         7,
	FrameRxPacket:         12,
}

// ParseFrame splits a packet's frame data into a Frame.
// Unknown frame types are returned with only Type, Data and Timestamp set.
// Errors wrap ErrParse.
func ParseFrame(p *Packet) (*Frame, error) {
	f, err := parseFrame(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return f, nil
}

func parseFrame(p *Packet) (*Frame, error) {
	data := p.Data()
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame data")
	}

	f := &Frame{Type: data[0], Timestamp: p.Timestamp()}

	if need, ok := minFrameLength[f.Type]; ok && len(data) < need {
		return nil, fmt.Errorf("%s frame truncated: %d bytes (min %d)", FormatFrameType(f.Type), len(data), need)
	}

	switch f.Type {
	case FrameATResponse:
		f.ID = data[1]
		f.Command = string(data[2:4])
		f.Status = []byte{data[4]}
		f.Parameter = optional(data[5:])

	case FrameRemoteATResponse:
		f.ID = data[1]
		f.SourceAddr = binary.BigEndian.Uint64(data[2:10])
		f.NetworkAddr = binary.BigEndian.Uint16(data[10:12])
		f.Command = string(data[12:14])
		f.Status = []byte{data[14]}
		f.Parameter = optional(data[15:])

	case FrameIOSample:
		f.SourceAddr = binary.BigEndian.Uint64(data[1:9])
		f.NetworkAddr = binary.BigEndian.Uint16(data[9:11])
		f.Options = data[11]
		f.Data = optional(data[12:])
		samples, err := ParseSamples(f.Data)
		if err != nil {
			return nil, fmt.Errorf("IO sample from %016X: %w", f.SourceAddr, err)
		}
		f.Samples = samples

	case FrameModemStatus:
		f.Status = []byte{data[1]}

	case FrameTxStatus:
		f.ID = data[1]
		f.NetworkAddr = binary.BigEndian.Uint16(data[2:4])
		f.Options = data[4] // retry count
		f.Status = []byte{data[5]}
		f.Data = optional(data[6:])

	case FrameRxPacket:
		f.SourceAddr = binary.BigEndian.Uint64(data[1:9])
		f.NetworkAddr = binary.BigEndian.Uint16(data[9:11])
		f.Options = data[11]
		f.Data = optional(data[12:])

	default:
		f.Data = optional(data[1:])
		return f, nil
	}

	// IS responses carry a sample payload in place of a register value. A
	// malformed payload still leaves a valid reply to its request; it keeps
	// the raw parameter and ValidateFrame reports it.
	if f.Command == "IS" && len(f.Parameter) > 0 && f.Status[0] == 0x00 {
		if samples, err := ParseSamples(f.Parameter); err == nil {
			f.Samples = samples
		}
	}

	return f, nil
}

func optional(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ErrParse wraps failures to split a checksum-valid packet into a Frame
var ErrParse = errors.New("frame parse error")
