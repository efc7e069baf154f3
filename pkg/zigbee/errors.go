// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zigbee

import (
	"errors"
	"fmt"
)

// ErrZigBee is wrapped by every error this package reports about an
// exchange with a device. Match it to catch all of them.
var ErrZigBee = errors.New("zigbee operation failed")

// Error kinds. Each one wraps ErrZigBee.
var (
	// ErrResponseTimeout means no matching frame arrived in time. The
	// device may or may not have acted on the command.
	ErrResponseTimeout = kind("response timeout")

	// Device-reported AT status 0x01-0x04
	ErrUnknownError     = kind("device reported an error")
	ErrInvalidCommand   = kind("invalid command")
	ErrInvalidParameter = kind("invalid parameter")
	ErrTxFailure        = kind("transmission to remote device failed")

	// ErrUnknownStatus is any other non-zero status byte
	ErrUnknownStatus = kind("unknown status")

	// ErrPinNotConfigured means a pin was missing from a sample
	ErrPinNotConfigured = kind("pin not configured")

	// ErrUnrecognizedGPIOValue means a GPIO read returned an undefined setting
	ErrUnrecognizedGPIOValue = kind("unrecognized GPIO value")
)

// Caller mistakes, caught before any I/O
var (
	ErrInvalidPin         = errors.New("invalid pin")
	ErrInvalidGPIOSetting = errors.New("invalid GPIO setting")
)

func kind(msg string) error {
	return fmt.Errorf("%w: %s", ErrZigBee, msg)
}

// PinNotConfiguredError reports a pin that is absent from a sample
// because it is not configured for the requested kind of IO.
type PinNotConfiguredError struct {
	Pin     int
	Command string
	Analog  bool
}

func (e *PinNotConfiguredError) Error() string {
	if e.Analog {
		return fmt.Sprintf("pin %d (%s) is not configured as an analog input", e.Pin, e.Command)
	}
	return fmt.Sprintf("pin %d (%s) is not configured as a digital input or output", e.Pin, e.Command)
}

func (e *PinNotConfiguredError) Unwrap() error {
	return ErrPinNotConfigured
}

// GPIOValueError reports a GPIO register value outside the defined settings
type GPIOValueError struct {
	Command string
	Value   []byte
}

func (e *GPIOValueError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("unrecognized GPIO value % X", e.Value)
	}
	return fmt.Sprintf("%s returned unrecognized GPIO value % X", e.Command, e.Value)
}

func (e *GPIOValueError) Unwrap() error {
	return ErrUnrecognizedGPIOValue
}
