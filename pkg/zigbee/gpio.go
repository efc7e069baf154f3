// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zigbee

import (
	"fmt"
	"strings"
)

// GPIOSetting is the function assigned to an IO pin (the value of the
// pin's Dn/Pn register)
type GPIOSetting byte

// GPIO setting values
const (
	GPIODisabled          GPIOSetting = 0x00
	GPIOStandardFunction  GPIOSetting = 0x01
	GPIOADC               GPIOSetting = 0x02
	GPIODigitalInput      GPIOSetting = 0x03
	GPIODigitalOutputLow  GPIOSetting = 0x04
	GPIODigitalOutputHigh GPIOSetting = 0x05
)

// GPIOSettings lists every defined setting in wire-value order
var GPIOSettings = []GPIOSetting{
	GPIODisabled,
	GPIOStandardFunction,
	GPIOADC,
	GPIODigitalInput,
	GPIODigitalOutputLow,
	GPIODigitalOutputHigh,
}

// String returns the human readable name of the setting
func (s GPIOSetting) String() string {
	switch s {
	case GPIODisabled:
		return "DISABLED"
	case GPIOStandardFunction:
		return "STANDARD_FUNC"
	case GPIOADC:
		return "ADC"
	case GPIODigitalInput:
		return "DIGITAL_INPUT"
	case GPIODigitalOutputLow:
		return "DIGITAL_OUTPUT_LOW"
	case GPIODigitalOutputHigh:
		return "DIGITAL_OUTPUT_HIGH"
	default:
		return fmt.Sprintf("GPIOSetting(0x%02X)", byte(s))
	}
}

// Valid reports whether s is one of the defined settings
func (s GPIOSetting) Valid() bool {
	return s <= GPIODigitalOutputHigh
}

// Byte returns the wire value
func (s GPIOSetting) Byte() byte {
	return byte(s)
}

// ParseGPIOValue decodes a register payload into a setting. Anything
// other than a single defined byte is a *GPIOValueError.
func ParseGPIOValue(value []byte) (GPIOSetting, error) {
	if len(value) != 1 || !GPIOSetting(value[0]).Valid() {
		return 0, &GPIOValueError{Value: value}
	}
	return GPIOSetting(value[0]), nil
}

// ParseGPIOSetting parses a setting name (case-insensitive), as printed
// by String
func ParseGPIOSetting(name string) (GPIOSetting, error) {
	for _, s := range GPIOSettings {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGPIOSetting, name)
}
