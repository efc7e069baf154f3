// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"bytes"
	"errors"
	"testing"
)

// decodeAll feeds wire bytes to d and returns every completed packet
func decodeAll(t *testing.T, d *Decoder, wire []byte) []*Packet {
	t.Helper()
	var packets []*Packet
	for _, b := range wire {
		p, err := d.DecodeByte(b)
		if err != nil {
			t.Fatalf("Unexpected decode error: %v", err)
		}
		if p != nil {
			packets = append(packets, p)
		}
	}
	return packets
}

// ============================================================
// Checksum Tests
// ============================================================

func TestCalculateChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{
			name:     "AT NJ query",
			data:     []byte{0x08, 0x52, 0x4E, 0x4A},
			expected: 0x0D,
		},
		{
			name:     "AT NI query",
			data:     []byte{0x08, 0x01, 0x4E, 0x49},
			expected: 0x5F,
		},
		{
			name:     "empty",
			data:     []byte{},
			expected: 0xFF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateChecksum(tt.data)
			if got != tt.expected {
				t.Errorf("Checksum mismatch: expected 0x%02X, got 0x%02X", tt.expected, got)
			}
			if !VerifyChecksum(tt.data, got) {
				t.Error("VerifyChecksum rejected the calculated checksum")
			}
			if VerifyChecksum(tt.data, got+1) {
				t.Error("VerifyChecksum accepted a wrong checksum")
			}
		})
	}
}

// ============================================================
// Encoder Tests
// ============================================================

func TestEncodeFrameData_Unescaped(t *testing.T) {
	got, err := EncodeFrameData([]byte{0x08, 0x52, 0x4E, 0x4A}, false)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	expected := []byte{0x7E, 0x00, 0x04, 0x08, 0x52, 0x4E, 0x4A, 0x0D}
	if !bytes.Equal(got, expected) {
		t.Errorf("Expected % X, got % X", expected, got)
	}
}

func TestEncodeFrameData_Escaped(t *testing.T) {
	// Parameter 0x11 (XON) must be escaped
	data := []byte{0x08, 0x01, 'D', '0', 0x11}
	checksum := CalculateChecksum(data)

	got, err := EncodeFrameData(data, true)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	if got[0] != StartByte {
		t.Fatalf("Expected start byte, got 0x%02X", got[0])
	}
	for i, b := range got[1:] {
		if b == StartByte || b == XonByte || b == XoffByte {
			t.Errorf("Unescaped special byte 0x%02X at offset %d", b, i+1)
		}
	}

	unstuffed, err := UnstuffBytes(got[1:])
	if err != nil {
		t.Fatalf("Unstuff error: %v", err)
	}
	expected := append([]byte{0x00, byte(len(data))}, data...)
	expected = append(expected, checksum)
	if !bytes.Equal(unstuffed, expected) {
		t.Errorf("Expected % X, got % X", expected, unstuffed)
	}
}

func TestEncodeFrameData_Limits(t *testing.T) {
	if _, err := EncodeFrameData(nil, false); err == nil {
		t.Error("Expected error for empty frame data")
	}
	if _, err := EncodeFrameData(make([]byte, MaxFrameDataSize+1), false); err == nil {
		t.Error("Expected error for oversized frame data")
	}
	if _, err := EncodeFrameData(make([]byte, MaxFrameDataSize), false); err != nil {
		t.Errorf("Max size frame rejected: %v", err)
	}
}

func TestStuffBytes_RoundTrip(t *testing.T) {
	data := []byte{0x00, StartByte, EscByte, XonByte, XoffByte, 0x20, 0xFF}
	stuffed := stuffBytes(data)
	if len(stuffed) != len(data)+4 {
		t.Errorf("Expected %d stuffed bytes, got %d", len(data)+4, len(stuffed))
	}
	got, err := UnstuffBytes(stuffed)
	if err != nil {
		t.Fatalf("Unstuff error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Expected % X, got % X", data, got)
	}

	if _, err := UnstuffBytes([]byte{0x01, EscByte}); err == nil {
		t.Error("Expected error for trailing escape byte")
	}
}

// ============================================================
// Command Builder Tests
// ============================================================

func TestNewATCommand(t *testing.T) {
	got, err := NewATCommand(0x52, "D0", []byte{0x04})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	expected := []byte{FrameATCommand, 0x52, 'D', '0', 0x04}
	if !bytes.Equal(got, expected) {
		t.Errorf("Expected % X, got % X", expected, got)
	}
}

func TestNewRemoteATCommand(t *testing.T) {
	got, err := NewRemoteATCommand(0x01, 0x0013A20040A1B2C3, "IS", nil)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	expected := []byte{
		FrameRemoteATCommand, 0x01,
		0x00, 0x13, 0xA2, 0x00, 0x40, 0xA1, 0xB2, 0xC3,
		0xFF, 0xFE,
		RemoteOptionApplyChanges,
		'I', 'S',
	}
	if !bytes.Equal(got, expected) {
		t.Errorf("Expected % X, got % X", expected, got)
	}
}

func TestNewCommand_Destination(t *testing.T) {
	local, err := NewCommand(Local, 1, "NI", nil)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if local[0] != FrameATCommand {
		t.Errorf("Local command should be AT_COMMAND, got 0x%02X", local[0])
	}

	remote, err := NewCommand(Remote(0x1234), 1, "NI", nil)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if remote[0] != FrameRemoteATCommand {
		t.Errorf("Remote command should be REMOTE_AT_COMMAND, got 0x%02X", remote[0])
	}
}

func TestNewCommand_BadMnemonic(t *testing.T) {
	for _, cmd := range []string{"", "D", "ND0"} {
		if _, err := NewATCommand(1, cmd, nil); err == nil {
			t.Errorf("Expected error for command %q", cmd)
		}
	}
}

func TestDestination_String(t *testing.T) {
	if Local.String() != "local" {
		t.Errorf("Expected 'local', got %q", Local.String())
	}
	if got := Remote(0x0013A20040A1B2C3).String(); got != "0013A20040A1B2C3" {
		t.Errorf("Expected 0013A20040A1B2C3, got %q", got)
	}
	if Local.IsRemote() || !Remote(0).IsRemote() {
		t.Error("IsRemote mismatch")
	}
}

// ============================================================
// Decoder Tests
// ============================================================

func TestDecoder_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"AT response", []byte{FrameATResponse, 0x01, 'N', 'I', 0x00, 'n', 'o', 'd', 'e'}},
		{"special bytes", []byte{FrameATResponse, 0x7E, 'D', '0', 0x00, 0x7D, 0x11, 0x13}},
		{"single byte", []byte{FrameModemStatus}},
	}

	for _, tt := range tests {
		for _, escaped := range []bool{false, true} {
			name := tt.name + "/unescaped"
			if escaped {
				name = tt.name + "/escaped"
			}
			t.Run(name, func(t *testing.T) {
				d := NewDecoder(escaped)
				packets := decodeAll(t, d, MustEncodeFrameData(tt.data, escaped))
				if len(packets) != 1 {
					t.Fatalf("Expected 1 packet, got %d", len(packets))
				}
				p := packets[0]
				if !bytes.Equal(p.Data(), tt.data) {
					t.Errorf("Expected % X, got % X", tt.data, p.Data())
				}
				if p.Type() != tt.data[0] {
					t.Errorf("Expected type 0x%02X, got 0x%02X", tt.data[0], p.Type())
				}
				if int(p.Length()) != len(tt.data) {
					t.Errorf("Expected length %d, got %d", len(tt.data), p.Length())
				}
			})
		}
	}
}

func TestDecoder_SkipsNoiseBeforeStart(t *testing.T) {
	d := NewDecoder(false)
	wire := append([]byte{0x00, 0xFF, 0x42}, MustEncodeFrameData([]byte{FrameModemStatus, 0x06}, false)...)
	packets := decodeAll(t, d, wire)
	if len(packets) != 1 {
		t.Fatalf("Expected 1 packet, got %d", len(packets))
	}
}

func TestDecoder_BackToBackFrames(t *testing.T) {
	d := NewDecoder(true)
	var wire []byte
	for i := 0; i < 3; i++ {
		wire = append(wire, MustEncodeFrameData([]byte{FrameATResponse, byte(i + 1), 'V', 'R', 0x00}, true)...)
	}
	packets := decodeAll(t, d, wire)
	if len(packets) != 3 {
		t.Fatalf("Expected 3 packets, got %d", len(packets))
	}
	for i, p := range packets {
		if p.Data()[1] != byte(i+1) {
			t.Errorf("Packet %d: expected id %d, got %d", i, i+1, p.Data()[1])
		}
	}
}

func TestDecoder_ChecksumError(t *testing.T) {
	d := NewDecoder(false)
	wire := MustEncodeFrameData([]byte{FrameATResponse, 0x01, 'N', 'I', 0x00}, false)
	wire[len(wire)-1] ^= 0x01

	var err error
	for _, b := range wire {
		_, err = d.DecodeByte(b)
	}
	var checksumErr *ChecksumError
	if !errors.As(err, &checksumErr) {
		t.Fatalf("Expected ChecksumError, got %v", err)
	}
	if checksumErr.Got != wire[len(wire)-1] {
		t.Errorf("Expected got=0x%02X, got 0x%02X", wire[len(wire)-1], checksumErr.Got)
	}

	// Decoder recovers on the next frame
	packets := decodeAll(t, d, MustEncodeFrameData([]byte{FrameModemStatus, 0x00}, false))
	if len(packets) != 1 {
		t.Errorf("Decoder did not resync after checksum error")
	}
}

func TestDecoder_InvalidLength(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
	}{
		{"zero", []byte{StartByte, 0x00, 0x00}},
		{"oversize", []byte{StartByte, 0x01, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(false)
			var err error
			for _, b := range tt.wire {
				_, err = d.DecodeByte(b)
			}
			if err == nil {
				t.Error("Expected invalid length error")
			}
		})
	}
}

func TestDecoder_StartByteInData(t *testing.T) {
	data := []byte{FrameATResponse, StartByte, 'N', 'I', 0x00, StartByte}

	t.Run("unescaped keeps 0x7E as data", func(t *testing.T) {
		d := NewDecoder(false)
		packets := decodeAll(t, d, MustEncodeFrameData(data, false))
		if len(packets) != 1 || !bytes.Equal(packets[0].Data(), data) {
			t.Fatalf("Expected frame with embedded 0x7E to decode intact")
		}
	})

	t.Run("escaped resyncs on raw 0x7E", func(t *testing.T) {
		d := NewDecoder(true)
		wire := MustEncodeFrameData(data, true)
		truncated := wire[:len(wire)/2]

		for _, b := range truncated {
			if _, err := d.DecodeByte(b); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
		}
		if _, err := d.DecodeByte(StartByte); err == nil {
			t.Error("Expected interrupted frame error")
		}
		// The interrupting start byte opened a new frame
		packets := decodeAll(t, d, wire[1:])
		if len(packets) != 1 {
			t.Errorf("Expected 1 packet after resync, got %d", len(packets))
		}
	})
}

func TestDecoder_RawBytes(t *testing.T) {
	d := NewDecoder(false)
	wire := MustEncodeFrameData([]byte{FrameModemStatus, 0x02}, false)
	for _, b := range wire[:len(wire)-1] {
		d.DecodeByte(b)
	}
	if !bytes.Equal(d.GetRawBytes(), wire[:len(wire)-1]) {
		t.Errorf("Expected raw % X, got % X", wire[:len(wire)-1], d.GetRawBytes())
	}
	d.Reset()
	if len(d.GetRawBytes()) != 0 {
		t.Error("Reset should clear raw bytes")
	}
}

func TestEncoder_EncodePacket(t *testing.T) {
	data := []byte{FrameATCommand, 0x01, 'I', 'S'}
	wire, err := NewEncoder(true).Encode(NewPacket(data))
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	packets := decodeAll(t, NewDecoder(true), wire)
	if len(packets) != 1 || !bytes.Equal(packets[0].Data(), data) {
		t.Errorf("Encoded packet did not decode back")
	}
	if !VerifyChecksum(packets[0].Data(), packets[0].Checksum()) {
		t.Error("Decoded packet has invalid checksum")
	}
}
