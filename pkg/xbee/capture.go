// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Direction of a captured frame relative to the host
type Direction uint8

const (
	DirectionRx Direction = iota
	DirectionTx
)

func (d Direction) String() string {
	if d == DirectionTx {
		return "TX"
	}
	return "RX"
}

// CaptureRecord is one frame in a capture file. Captures are a CBOR
// sequence of records; Data is the frame data without framing, length,
// checksum or escaping.
type CaptureRecord struct {
	Session   string    `cbor:"0,keyasint"`
	Timestamp int64     `cbor:"1,keyasint"` // Unix nanoseconds
	Direction Direction `cbor:"2,keyasint"`
	Data      []byte    `cbor:"3,keyasint"`
}

// Time returns the record timestamp
func (r *CaptureRecord) Time() time.Time {
	return time.Unix(0, r.Timestamp)
}

// Packet rebuilds the packet the record was taken from
func (r *CaptureRecord) Packet() *Packet {
	p := NewPacket(r.Data)
	p.timestamp = r.Time()
	return p
}

// CaptureWriter appends frames to a capture stream. Safe for concurrent use.
type CaptureWriter struct {
	mu      sync.Mutex
	enc     *cbor.Encoder
	session string
}

// NewCaptureWriter starts a capture session on w with a fresh session id
func NewCaptureWriter(w io.Writer) *CaptureWriter {
	return &CaptureWriter{
		enc:     cbor.NewEncoder(w),
		session: uuid.NewString(),
	}
}

// Session returns the capture session id
func (c *CaptureWriter) Session() string {
	return c.session
}

// Write records frame data travelling in the given direction
func (c *CaptureWriter) Write(dir Direction, data []byte, ts time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := CaptureRecord{
		Session:   c.session,
		Timestamp: ts.UnixNano(),
		Direction: dir,
		Data:      data,
	}
	if err := c.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write capture record: %w", err)
	}
	return nil
}

// CaptureReader reads records back from a capture stream
type CaptureReader struct {
	dec *cbor.Decoder
}

// NewCaptureReader creates a reader over a capture stream
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the stream
func (c *CaptureReader) Next() (*CaptureRecord, error) {
	var rec CaptureRecord
	if err := c.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read capture record: %w", err)
	}
	if _, err := uuid.Parse(rec.Session); err != nil {
		return nil, fmt.Errorf("capture record has invalid session id %q: %w", rec.Session, err)
	}
	return &rec, nil
}
