// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zigbee

import (
	"fmt"
	"strings"
)

// ADCMax is the full-scale reading of the 10-bit ADC
const ADCMax = 1023

// DefaultMaxVolts is the ADC reference voltage of Series 2 modules
const DefaultMaxVolts = 1.2

// Unit selects how ReadAnalogPin reports a reading
type Unit int

// Output units
const (
	UnitRaw Unit = iota
	UnitPercentage
	UnitVolts
	UnitMillivolts
)

func (u Unit) String() string {
	switch u {
	case UnitRaw:
		return "raw"
	case UnitPercentage:
		return "percentage"
	case UnitVolts:
		return "volts"
	case UnitMillivolts:
		return "millivolts"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// ParseUnit parses a unit name as printed by Unit.String
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(s) {
	case "raw", "":
		return UnitRaw, nil
	case "percentage", "percent", "%":
		return UnitPercentage, nil
	case "volts", "v":
		return UnitVolts, nil
	case "millivolts", "mv":
		return UnitMillivolts, nil
	default:
		return UnitRaw, fmt.Errorf("unknown unit %q (use raw, percentage, volts or millivolts)", s)
	}
}

// ADCToPercentage converts a raw reading to a percentage of full scale.
// With clamp set the result is limited to [0, 100]. Unlike the other
// conversions it takes no reference voltage: the percentage is the same
// for any reference, so the parameter other XBee helpers accept here is
// omitted.
func ADCToPercentage(value int, clamp bool) float64 {
	percentage := (100.0 / ADCMax) * float64(value)
	if !clamp {
		return percentage
	}
	return max(min(100, percentage), 0)
}

// ADCToVolts converts a raw reading to volts for the given reference voltage
func ADCToVolts(value int, maxVolts float64) float64 {
	return (maxVolts / ADCMax) * float64(value)
}

// ADCToMillivolts converts a raw reading to whole millivolts, truncating
func ADCToMillivolts(value int, maxVolts float64) int {
	return int(ADCToVolts(value, maxVolts) * 1000)
}

// ConvertADC converts a raw reading to unit. Percentages are clamped.
// It panics on an undefined unit.
func ConvertADC(value int, unit Unit, maxVolts float64) float64 {
	switch unit {
	case UnitRaw:
		return float64(value)
	case UnitPercentage:
		return ADCToPercentage(value, true)
	case UnitVolts:
		return ADCToVolts(value, maxVolts)
	case UnitMillivolts:
		return float64(ADCToMillivolts(value, maxVolts))
	default:
		panic(fmt.Sprintf("zigbee: undefined ADC unit %d", int(unit)))
	}
}
