// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zigbee

import (
	"errors"
	"math"
	"testing"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
)

// ============================================================
// Status Tests
// ============================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		status   []byte
		expected Status
	}{
		{"no status field", nil, StatusSuccess},
		{"ok", []byte{0x00}, StatusSuccess},
		{"error", []byte{0x01}, StatusUnknownError},
		{"invalid command", []byte{0x02}, StatusInvalidCommand},
		{"invalid parameter", []byte{0x03}, StatusInvalidParameter},
		{"tx failure", []byte{0x04}, StatusTxFailure},
		{"undefined byte", []byte{0x05}, StatusUnknown},
		{"multi-byte status", []byte{0x00, 0x00}, StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(&xbee.Frame{Type: xbee.FrameATResponse, Status: tt.status})
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestCheckStatus(t *testing.T) {
	if err := CheckStatus(&xbee.Frame{Status: []byte{0x00}}); err != nil {
		t.Errorf("Expected nil for success, got %v", err)
	}
	if err := CheckStatus(&xbee.Frame{Type: xbee.FrameIOSample}); err != nil {
		t.Errorf("Expected nil for frame without status, got %v", err)
	}

	for _, s := range []Status{StatusUnknownError, StatusInvalidCommand, StatusInvalidParameter, StatusTxFailure, StatusUnknown} {
		err := s.Err()
		if err == nil {
			t.Errorf("%s: expected an error", s)
			continue
		}
		if !errors.Is(err, ErrZigBee) {
			t.Errorf("%s: error should wrap ErrZigBee", s)
		}
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	kinds := []error{
		ErrResponseTimeout, ErrUnknownError, ErrInvalidCommand, ErrInvalidParameter,
		ErrTxFailure, ErrUnknownStatus, ErrPinNotConfigured, ErrUnrecognizedGPIOValue,
	}
	for i, a := range kinds {
		if !errors.Is(a, ErrZigBee) {
			t.Errorf("%v should wrap ErrZigBee", a)
		}
		for j, b := range kinds {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
	if errors.Is(ErrInvalidPin, ErrZigBee) || errors.Is(ErrInvalidGPIOSetting, ErrZigBee) {
		t.Error("Caller mistakes are not device errors")
	}
}

// ============================================================
// ADC Tests
// ============================================================

func TestADCConversions(t *testing.T) {
	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"percentage zero", ADCToPercentage(0, true), 0},
		{"percentage full", ADCToPercentage(1023, true), 100},
		{"percentage clamped", ADCToPercentage(2000, true), 100},
		{"percentage clamped low", ADCToPercentage(-5, true), 0},
		{"percentage unclamped", ADCToPercentage(2000, false), 100.0 / 1023 * 2000},
		{"volts full", ADCToVolts(1023, 1.2), 1.2},
		{"volts half", ADCToVolts(512, 3.3), 3.3 / 1023 * 512},
		{"millivolts full", float64(ADCToMillivolts(1023, 1.2)), 1200},
		{"millivolts truncated", float64(ADCToMillivolts(100, 1.2)), 117},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.expected) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestADCToPercentage_IndependentOfReference(t *testing.T) {
	for _, ref := range []float64{1.2, 2.5, 3.3} {
		if got := ConvertADC(512, UnitPercentage, ref); got != ADCToPercentage(512, false) {
			t.Errorf("Percentage at %.1f V reference = %v, want %v", ref, got, ADCToPercentage(512, false))
		}
	}
}

func TestConvertADC(t *testing.T) {
	if got := ConvertADC(512, UnitRaw, 1.2); got != 512 {
		t.Errorf("Raw should pass through, got %v", got)
	}
	if got := ConvertADC(4000, UnitPercentage, 1.2); got != 100 {
		t.Errorf("Percentages are clamped, got %v", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for undefined unit")
		}
	}()
	ConvertADC(1, Unit(-1), 1.2)
}

func TestParseUnit(t *testing.T) {
	for _, u := range []Unit{UnitRaw, UnitPercentage, UnitVolts, UnitMillivolts} {
		got, err := ParseUnit(u.String())
		if err != nil || got != u {
			t.Errorf("ParseUnit(%q) = %v, %v", u.String(), got, err)
		}
	}
	if got, err := ParseUnit("mV"); err != nil || got != UnitMillivolts {
		t.Errorf("ParseUnit(mV) = %v, %v", got, err)
	}
	if _, err := ParseUnit("kelvin"); err == nil {
		t.Error("Expected error for unknown unit")
	}
}

// ============================================================
// GPIO Tests
// ============================================================

func TestGPIOSetting_RoundTrip(t *testing.T) {
	for _, s := range GPIOSettings {
		parsed, err := ParseGPIOSetting(s.String())
		if err != nil || parsed != s {
			t.Errorf("ParseGPIOSetting(%q) = %v, %v", s.String(), parsed, err)
		}
		value, err := ParseGPIOValue([]byte{s.Byte()})
		if err != nil || value != s {
			t.Errorf("ParseGPIOValue(0x%02X) = %v, %v", s.Byte(), value, err)
		}
	}

	if got, err := ParseGPIOSetting("digital_output_high"); err != nil || got != GPIODigitalOutputHigh {
		t.Errorf("Names should be case-insensitive, got %v, %v", got, err)
	}
	if _, err := ParseGPIOSetting("PWM"); !errors.Is(err, ErrInvalidGPIOSetting) {
		t.Errorf("Expected ErrInvalidGPIOSetting, got %v", err)
	}
}

func TestGPIOSetting_Valid(t *testing.T) {
	for v := 0; v < 256; v++ {
		want := v <= 0x05
		if got := GPIOSetting(v).Valid(); got != want {
			t.Errorf("GPIOSetting(0x%02X).Valid() = %v", v, got)
		}
	}
	if GPIOSetting(0x06).String() != "GPIOSetting(0x06)" {
		t.Errorf("Unexpected name for undefined setting: %s", GPIOSetting(0x06))
	}
}

func TestParseGPIOValue_Unrecognized(t *testing.T) {
	for _, value := range [][]byte{nil, {0x06}, {0x00, 0x01}} {
		_, err := ParseGPIOValue(value)
		if !errors.Is(err, ErrUnrecognizedGPIOValue) {
			t.Errorf("ParseGPIOValue(% X): expected ErrUnrecognizedGPIOValue, got %v", value, err)
		}
	}
}

// ============================================================
// Pin Tests
// ============================================================

func TestPins(t *testing.T) {
	expectedDigital := []struct{ name, command string }{
		{"dio-0", "D0"}, {"dio-1", "D1"}, {"dio-2", "D2"}, {"dio-3", "D3"},
		{"dio-4", "D4"}, {"dio-5", "D5"}, {"dio-10", "P0"}, {"dio-11", "P1"}, {"dio-12", "P2"},
	}
	for i, want := range expectedDigital {
		p, err := DigitalPin(i)
		if err != nil {
			t.Fatalf("DigitalPin(%d): %v", i, err)
		}
		if p.Name != want.name || p.Command != want.command {
			t.Errorf("DigitalPin(%d) = %+v, expected %s/%s", i, p, want.name, want.command)
		}
	}

	for i := 0; i < 4; i++ {
		p, err := AnalogPin(i)
		if err != nil {
			t.Fatalf("AnalogPin(%d): %v", i, err)
		}
		if p.Name != xbee.AnalogName(i) || p.Command != DigitalPins[i].Command {
			t.Errorf("AnalogPin(%d) = %+v", i, p)
		}
	}

	if _, err := DigitalPin(9); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("Expected ErrInvalidPin, got %v", err)
	}
	if _, err := AnalogPin(4); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("Expected ErrInvalidPin, got %v", err)
	}
}

func TestCelsiusToFahrenheit(t *testing.T) {
	tests := []struct{ c, f int }{
		{0, 32}, {100, 212}, {-40, -40}, {25, 77}, {21, 69},
	}
	for _, tt := range tests {
		if got := CelsiusToFahrenheit(tt.c); got != tt.f {
			t.Errorf("CelsiusToFahrenheit(%d) = %d, expected %d", tt.c, got, tt.f)
		}
	}
}
