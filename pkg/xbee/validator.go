// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import "fmt"

// AnomalyType represents different types of frame anomalies
type AnomalyType int

const (
	AnomalyUnknownType AnomalyType = iota
	AnomalyFailedStatus
	AnomalyADCRange
	AnomalyEmptySample
	AnomalyChecksumError
	AnomalyDecodeError
	AnomalyBadSample
)

// ADC readings are 10 bit
const adcMax = 1023

// ValidationError represents a frame validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateFrame checks a parsed frame for anomalies worth reporting
// Returns a slice of validation errors (empty if the frame looks sane)
func ValidateFrame(f *Frame) []ValidationError {
	errors := []ValidationError{}

	if FormatFrameType(f.Type) == "UNKNOWN" {
		errors = append(errors, ValidationError{
			Type:    AnomalyUnknownType,
			Message: fmt.Sprintf("unknown frame type 0x%02X", f.Type),
			Details: map[string]interface{}{"type": f.Type},
		})
	}

	switch f.Type {
	case FrameATResponse, FrameRemoteATResponse, FrameTxStatus:
		if f.HasStatus() && f.Status[0] != 0x00 {
			errors = append(errors, ValidationError{
				Type:    AnomalyFailedStatus,
				Message: fmt.Sprintf("%s %s: status %s (0x%02X)", FormatFrameType(f.Type), f.Command, FormatStatus(f.Type, f.Status[0]), f.Status[0]),
				Details: map[string]interface{}{"id": f.ID, "status": f.Status[0]},
			})
		}
	}

	if f.Command == "IS" && f.HasStatus() && f.Status[0] == 0x00 && len(f.Parameter) > 0 && len(f.Samples) == 0 {
		if _, err := ParseSamples(f.Parameter); err != nil {
			errors = append(errors, ValidationError{
				Type:    AnomalyBadSample,
				Message: fmt.Sprintf("IS response: %v", err),
				Details: map[string]interface{}{"id": f.ID},
			})
		}
	}

	for i, s := range f.Samples {
		if s.IsEmpty() {
			errors = append(errors, ValidationError{
				Type:    AnomalyEmptySample,
				Message: fmt.Sprintf("sample %d has no enabled lines", i),
			})
		}
		for name, v := range s.Analog {
			if v < 0 || v > adcMax {
				errors = append(errors, ValidationError{
					Type:    AnomalyADCRange,
					Message: fmt.Sprintf("%s reading %d outside 0-%d", name, v, adcMax),
					Details: map[string]interface{}{"channel": name, "value": v},
				})
			}
		}
	}

	return errors
}
