// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import "time"

// Packet is a raw API frame as it came off the wire: frame data and
// checksum, with framing and escaping already removed.
type Packet struct {
	length    uint16
	data      []byte // API identifier followed by frame-specific data
	checksum  byte
	timestamp time.Time
}

// NewPacket creates a packet from frame data. The checksum is computed.
func NewPacket(data []byte) *Packet {
	return &Packet{
		length:    uint16(len(data)),
		data:      data,
		checksum:  CalculateChecksum(data),
		timestamp: time.Now(),
	}
}

// Length returns the frame data length from the length field
func (p *Packet) Length() uint16 {
	return p.length
}

// Type returns the API identifier (first byte of frame data)
func (p *Packet) Type() uint8 {
	if len(p.data) == 0 {
		return 0
	}
	return p.data[0]
}

// Data returns the frame data including the API identifier
func (p *Packet) Data() []byte {
	return p.data
}

// Checksum returns the packet's checksum byte
func (p *Packet) Checksum() byte {
	return p.checksum
}

// Timestamp returns the packet's decode timestamp
func (p *Packet) Timestamp() time.Time {
	return p.timestamp
}
