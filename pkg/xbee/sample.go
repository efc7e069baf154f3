// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"fmt"
	"strconv"
)

// Sample is one IO sample: the state of every digital line and the raw
// 10-bit reading of every analog channel that is enabled on the module.
// Lines that are not configured for IO are absent.
type Sample struct {
	Digital map[string]bool
	Analog  map[string]int
}

// NewSample returns an empty sample
func NewSample() Sample {
	return Sample{
		Digital: map[string]bool{},
		Analog:  map[string]int{},
	}
}

// IsEmpty reports whether the sample holds no readings
func (s Sample) IsEmpty() bool {
	return len(s.Digital) == 0 && len(s.Analog) == 0
}

// DigitalName returns the sample field name for digital line n ("dio-n")
func DigitalName(n int) string {
	return DigitalPrefix + strconv.Itoa(n)
}

// AnalogName returns the sample field name for analog channel n ("adc-n")
func AnalogName(n int) string {
	return AnalogPrefix + strconv.Itoa(n)
}

// ParseSamples decodes an IO sample payload:
//
//	count(1) | digital mask(2) | analog mask(1) | digital values(2, if mask != 0) | analog values(2 each)
func ParseSamples(data []byte) ([]Sample, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("sample payload too short: %d bytes", len(data))
	}

	count := int(data[0])
	digitalMask := uint16(data[1])<<8 | uint16(data[2])
	analogMask := data[3]
	offset := 4

	samples := make([]Sample, 0, count)
	for i := 0; i < count; i++ {
		s := NewSample()

		if digitalMask != 0 {
			if offset+2 > len(data) {
				return nil, fmt.Errorf("sample %d: missing digital values", i)
			}
			values := uint16(data[offset])<<8 | uint16(data[offset+1])
			offset += 2
			for bit := 0; bit < 16; bit++ {
				if digitalMask&(1<<bit) != 0 {
					s.Digital[DigitalName(bit)] = values&(1<<bit) != 0
				}
			}
		}

		for bit := 0; bit < 8; bit++ {
			if analogMask&(1<<bit) == 0 {
				continue
			}
			if offset+2 > len(data) {
				return nil, fmt.Errorf("sample %d: missing value for %s", i, AnalogName(bit))
			}
			s.Analog[AnalogName(bit)] = int(data[offset])<<8 | int(data[offset+1])
			offset += 2
		}

		samples = append(samples, s)
	}

	return samples, nil
}

// EncodeSample builds a single-sample IO payload from a Sample.
// Used by simulators and tests; field names outside dio-0..15/adc-0..7
// are ignored.
func EncodeSample(s Sample) []byte {
	var digitalMask, digitalValues uint16
	for bit := 0; bit < 16; bit++ {
		v, ok := s.Digital[DigitalName(bit)]
		if !ok {
			continue
		}
		digitalMask |= 1 << bit
		if v {
			digitalValues |= 1 << bit
		}
	}

	var analogMask byte
	for bit := 0; bit < 8; bit++ {
		if _, ok := s.Analog[AnalogName(bit)]; ok {
			analogMask |= 1 << bit
		}
	}

	out := []byte{1, byte(digitalMask >> 8), byte(digitalMask), analogMask}
	if digitalMask != 0 {
		out = append(out, byte(digitalValues>>8), byte(digitalValues))
	}
	for bit := 0; bit < 8; bit++ {
		if analogMask&(1<<bit) != 0 {
			v := s.Analog[AnalogName(bit)]
			out = append(out, byte(v>>8), byte(v))
		}
	}
	return out
}
