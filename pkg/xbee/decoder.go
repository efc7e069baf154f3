// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"fmt"
	"time"
)

// Decoder implements the XBee API frame decoder state machine
type Decoder struct {
	state      int
	escaped    bool // API mode 2
	escapeNext bool
	length     uint16
	buffer     []byte
	rawBuffer  []byte // Accumulate raw bytes including framing
}

// NewDecoder creates a new frame decoder. When escaped is true the decoder
// expects API mode 2 byte stuffing.
func NewDecoder(escaped bool) *Decoder {
	return &Decoder{
		state:     stateIdle,
		escaped:   escaped,
		buffer:    make([]byte, 0, MaxFrameDataSize),
		rawBuffer: make([]byte, 0, MaxFrameDataSize*2),
	}
}

// Reset resets the decoder state to idle
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.escapeNext = false
	d.length = 0
	d.buffer = d.buffer[:0]
	d.rawBuffer = d.rawBuffer[:0]
}

// GetRawBytes returns the accumulated raw bytes since the last packet
func (d *Decoder) GetRawBytes() []byte {
	return d.rawBuffer
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed packet, or nil if the packet is incomplete.
// Returns an error if decoding fails; the decoder then waits for the
// next start byte.
func (d *Decoder) DecodeByte(b byte) (*Packet, error) {
	// In escaped mode a raw start byte always begins a new frame. In
	// unescaped mode 0x7E is legal inside frame data, so it only counts
	// while idle.
	if b == StartByte && (d.state == stateIdle || (d.escaped && !d.escapeNext)) {
		interrupted := d.state != stateIdle
		d.Reset()
		d.rawBuffer = append(d.rawBuffer, b)
		d.state = stateLengthMSB
		if interrupted {
			return nil, fmt.Errorf("frame interrupted by start byte")
		}
		return nil, nil
	}

	if d.state == stateIdle {
		// Waiting for START byte
		return nil, nil
	}

	d.rawBuffer = append(d.rawBuffer, b)

	if d.escaped {
		if b == EscByte && !d.escapeNext {
			d.escapeNext = true
			return nil, nil
		}
		if d.escapeNext {
			b ^= EscXor
			d.escapeNext = false
		}
	}

	switch d.state {
	case stateLengthMSB:
		d.length = uint16(b) << 8
		d.state = stateLengthLSB
		return nil, nil

	case stateLengthLSB:
		d.length |= uint16(b)
		if d.length == 0 || d.length > MaxFrameDataSize {
			length := d.length
			d.Reset()
			return nil, fmt.Errorf("invalid length: %d (max %d)", length, MaxFrameDataSize)
		}
		d.state = stateData
		return nil, nil

	case stateData:
		d.buffer = append(d.buffer, b)
		if len(d.buffer) >= int(d.length) {
			d.state = stateChecksum
		}
		return nil, nil

	case stateChecksum:
		if !VerifyChecksum(d.buffer, b) {
			expected := CalculateChecksum(d.buffer)
			d.Reset()
			return nil, &ChecksumError{Expected: expected, Got: b}
		}

		data := make([]byte, len(d.buffer))
		copy(data, d.buffer)
		packet := &Packet{
			length:    d.length,
			data:      data,
			checksum:  b,
			timestamp: time.Now(),
		}

		d.Reset()
		return packet, nil

	default:
		state := d.state
		d.Reset()
		return nil, fmt.Errorf("invalid state: %d", state)
	}
}

// ChecksumError is returned by the decoder when a frame's checksum does
// not match its data.
type ChecksumError struct {
	Expected byte
	Got      byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%02X, got 0x%02X", e.Expected, e.Got)
}
