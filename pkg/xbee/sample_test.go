// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"testing"
)

// ============================================================
// IO Sample Tests
// ============================================================

func TestParseSamples(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		digital map[string]bool
		analog  map[string]int
	}{
		{
			name:    "digital only",
			data:    []byte{0x01, 0x1C, 0x01, 0x00, 0x14, 0x01},
			digital: map[string]bool{"dio-0": true, "dio-10": true, "dio-11": false, "dio-12": true},
			analog:  map[string]int{},
		},
		{
			name:    "analog only has no digital values",
			data:    []byte{0x01, 0x00, 0x00, 0x03, 0x03, 0xFF, 0x00, 0x10},
			digital: map[string]bool{},
			analog:  map[string]int{"adc-0": 1023, "adc-1": 16},
		},
		{
			name:    "supply voltage channel",
			data:    []byte{0x01, 0x00, 0x00, 0x80, 0x0B, 0x50},
			digital: map[string]bool{},
			analog:  map[string]int{"adc-7": 0x0B50},
		},
		{
			name:    "nothing enabled",
			data:    []byte{0x01, 0x00, 0x00, 0x00},
			digital: map[string]bool{},
			analog:  map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples, err := ParseSamples(tt.data)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if len(samples) != 1 {
				t.Fatalf("Expected 1 sample, got %d", len(samples))
			}
			s := samples[0]
			if len(s.Digital) != len(tt.digital) {
				t.Errorf("Expected %d digital lines, got %v", len(tt.digital), s.Digital)
			}
			for name, want := range tt.digital {
				if got, ok := s.Digital[name]; !ok || got != want {
					t.Errorf("%s: expected %v, got %v (present=%v)", name, want, got, ok)
				}
			}
			if len(s.Analog) != len(tt.analog) {
				t.Errorf("Expected %d analog channels, got %v", len(tt.analog), s.Analog)
			}
			for name, want := range tt.analog {
				if got, ok := s.Analog[name]; !ok || got != want {
					t.Errorf("%s: expected %d, got %d (present=%v)", name, want, got, ok)
				}
			}
		})
	}
}

func TestParseSamples_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte{0x01, 0x00}},
		{"missing digital values", []byte{0x01, 0x00, 0x01, 0x00, 0x00}},
		{"missing analog value", []byte{0x01, 0x00, 0x00, 0x03, 0x00, 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSamples(tt.data); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestEncodeSample_RoundTrip(t *testing.T) {
	s := NewSample()
	s.Digital["dio-1"] = true
	s.Digital["dio-4"] = false
	s.Digital["dio-12"] = true
	s.Analog["adc-2"] = 777
	s.Analog["adc-3"] = 0

	samples, err := ParseSamples(EncodeSample(s))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("Expected 1 sample, got %d", len(samples))
	}
	got := samples[0]
	for name, want := range s.Digital {
		if got.Digital[name] != want {
			t.Errorf("%s: expected %v, got %v", name, want, got.Digital[name])
		}
	}
	for name, want := range s.Analog {
		if got.Analog[name] != want {
			t.Errorf("%s: expected %d, got %d", name, want, got.Analog[name])
		}
	}
	if len(got.Digital) != 3 || len(got.Analog) != 2 {
		t.Errorf("Unexpected extra channels: %v %v", got.Digital, got.Analog)
	}
}

func TestSampleNames(t *testing.T) {
	if DigitalName(11) != "dio-11" {
		t.Errorf("Expected dio-11, got %s", DigitalName(11))
	}
	if AnalogName(3) != "adc-3" {
		t.Errorf("Expected adc-3, got %s", AnalogName(3))
	}
	if !NewSample().IsEmpty() {
		t.Error("New sample should be empty")
	}
}
