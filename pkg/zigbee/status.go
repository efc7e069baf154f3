// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zigbee

import "github.com/Thermoquad/xbeehelper/pkg/xbee"

// Status is the outcome of an AT exchange as reported by the device
type Status int

// Status values
const (
	StatusSuccess Status = iota
	StatusUnknownError
	StatusInvalidCommand
	StatusInvalidParameter
	StatusTxFailure
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusUnknownError:
		return "UNKNOWN_ERROR"
	case StatusInvalidCommand:
		return "INVALID_COMMAND"
	case StatusInvalidParameter:
		return "INVALID_PARAMETER"
	case StatusTxFailure:
		return "TX_FAILURE"
	default:
		return "UNKNOWN_STATUS"
	}
}

// Err returns the error kind for the status, or nil on success
func (s Status) Err() error {
	switch s {
	case StatusSuccess:
		return nil
	case StatusUnknownError:
		return ErrUnknownError
	case StatusInvalidCommand:
		return ErrInvalidCommand
	case StatusInvalidParameter:
		return ErrInvalidParameter
	case StatusTxFailure:
		return ErrTxFailure
	default:
		return ErrUnknownStatus
	}
}

// Classify maps a frame's status field to a Status. A frame without a
// status field, or with status 0x00, is a success.
func Classify(f *xbee.Frame) Status {
	if !f.HasStatus() {
		return StatusSuccess
	}
	if len(f.Status) != 1 {
		return StatusUnknown
	}

	switch f.Status[0] {
	case 0x00:
		return StatusSuccess
	case 0x01:
		return StatusUnknownError
	case 0x02:
		return StatusInvalidCommand
	case 0x03:
		return StatusInvalidParameter
	case 0x04:
		return StatusTxFailure
	default:
		return StatusUnknown
	}
}

// CheckStatus returns the error for a frame's status, or nil on success
func CheckStatus(f *xbee.Frame) error {
	return Classify(f).Err()
}
