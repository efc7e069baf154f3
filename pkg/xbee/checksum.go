// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

// CalculateChecksum computes the XBee API checksum over frame data
// (everything between the length field and the checksum byte).
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return 0xFF - sum
}

// VerifyChecksum reports whether checksum matches the frame data.
// Frame data plus a valid checksum always sums to 0xFF.
func VerifyChecksum(data []byte, checksum byte) bool {
	sum := checksum
	for _, b := range data {
		sum += b
	}
	return sum == 0xFF
}
