// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"encoding/binary"
	"fmt"
)

// Encoder encodes API frames for transmission.
// Handles length, checksum and optional API mode 2 escaping.
type Encoder struct {
	escaped bool
}

// NewEncoder creates a new frame encoder.
func NewEncoder(escaped bool) *Encoder {
	return &Encoder{escaped: escaped}
}

// Encode encodes a Packet to wire format.
func (e *Encoder) Encode(p *Packet) ([]byte, error) {
	return EncodeFrameData(p.Data(), e.escaped)
}

// EncodeFrameData wraps frame data (API identifier + payload) in the API
// frame envelope: start byte, big-endian length, data and checksum.
func EncodeFrameData(data []byte, escaped bool) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame data")
	}
	if len(data) > MaxFrameDataSize {
		return nil, fmt.Errorf("frame data too large: %d bytes (max %d)", len(data), MaxFrameDataSize)
	}

	body := make([]byte, 0, len(data)+3)
	body = binary.BigEndian.AppendUint16(body, uint16(len(data)))
	body = append(body, data...)
	body = append(body, CalculateChecksum(data))

	if escaped {
		body = stuffBytes(body)
	}

	frame := make([]byte, 0, len(body)+1)
	frame = append(frame, StartByte)
	frame = append(frame, body...)
	return frame, nil
}

// MustEncodeFrameData is like EncodeFrameData but panics on error.
func MustEncodeFrameData(data []byte, escaped bool) []byte {
	frame, err := EncodeFrameData(data, escaped)
	if err != nil {
		panic(fmt.Sprintf("xbee: encode error: %v", err))
	}
	return frame
}

// stuffBytes applies API mode 2 escaping.
// Special bytes (START, ESC, XON, XOFF) are replaced with ESC + (byte XOR EscXor).
func stuffBytes(data []byte) []byte {
	result := make([]byte, 0, len(data)*2)

	for _, b := range data {
		if needsEscape(b) {
			result = append(result, EscByte, b^EscXor)
		} else {
			result = append(result, b)
		}
	}

	return result
}

func needsEscape(b byte) bool {
	return b == StartByte || b == EscByte || b == XonByte || b == XoffByte
}

// UnstuffBytes removes API mode 2 escaping.
// This is the inverse of stuffBytes.
func UnstuffBytes(data []byte) ([]byte, error) {
	result := make([]byte, 0, len(data))
	escapeNext := false

	for _, b := range data {
		if escapeNext {
			result = append(result, b^EscXor)
			escapeNext = false
		} else if b == EscByte {
			escapeNext = true
		} else {
			result = append(result, b)
		}
	}

	if escapeNext {
		return nil, fmt.Errorf("incomplete escape sequence at end of data")
	}

	return result, nil
}
