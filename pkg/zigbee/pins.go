// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zigbee

import (
	"fmt"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
)

// Pin maps an IO line to its sample field and configuration command
type Pin struct {
	Name    string // field name in an IO sample
	Command string // AT command that configures the pin
}

// DigitalPins are the digital IO lines of a Series 2 module
var DigitalPins = [...]Pin{
	{xbee.DigitalName(0), "D0"},
	{xbee.DigitalName(1), "D1"},
	{xbee.DigitalName(2), "D2"},
	{xbee.DigitalName(3), "D3"},
	{xbee.DigitalName(4), "D4"},
	{xbee.DigitalName(5), "D5"},
	{xbee.DigitalName(10), "P0"},
	{xbee.DigitalName(11), "P1"},
	{xbee.DigitalName(12), "P2"},
}

// AnalogPins are the ADC-capable lines, sharing D0-D3 with digital IO
var AnalogPins = [...]Pin{
	{xbee.AnalogName(0), "D0"},
	{xbee.AnalogName(1), "D1"},
	{xbee.AnalogName(2), "D2"},
	{xbee.AnalogName(3), "D3"},
}

// DigitalPin returns the digital pin at index
func DigitalPin(index int) (Pin, error) {
	if index < 0 || index >= len(DigitalPins) {
		return Pin{}, fmt.Errorf("%w: digital pin %d (0-%d)", ErrInvalidPin, index, len(DigitalPins)-1)
	}
	return DigitalPins[index], nil
}

// AnalogPin returns the analog pin at index
func AnalogPin(index int) (Pin, error) {
	if index < 0 || index >= len(AnalogPins) {
		return Pin{}, fmt.Errorf("%w: analog pin %d (0-%d)", ErrInvalidPin, index, len(AnalogPins)-1)
	}
	return AnalogPins[index], nil
}
