// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package xbee implements the XBee API frame protocol used to talk to
// Digi ZigBee modules over a serial link.
//
// It provides frame encoding/decoding (including API mode 2 escaping),
// checksum validation, parsing of the response frames a host cares about,
// IO sample decoding, and a Link that runs the receive loop and hands
// each decoded frame to a callback.
package xbee

// Protocol framing bytes
const (
	StartByte = 0x7E
	EscByte   = 0x7D
	XonByte   = 0x11
	XoffByte  = 0x13
	EscXor    = 0x20
)

// Frame size limits
const (
	MaxFrameDataSize = 255
	AddressSize      = 8
)

// Special addresses
const (
	AddressCoordinator uint64 = 0x0000000000000000
	AddressBroadcast   uint64 = 0x000000000000FFFF
	NetworkAddrUnknown uint16 = 0xFFFE
)

// Remote AT command options
const (
	RemoteOptionApplyChanges = 0x02
)

// Frame types - host to module
const (
	FrameATCommand       = 0x08
	FrameATQueue         = 0x09
	FrameTxRequest       = 0x10
	FrameRemoteATCommand = 0x17
)

// Frame types - module to host
const (
	FrameATResponse       = 0x88
	FrameModemStatus      = 0x8A
	FrameTxStatus         = 0x8B
	FrameRxPacket         = 0x90
	FrameIOSample         = 0x92
	FrameRemoteATResponse = 0x97
)

// Decoder states (internal)
const (
	stateIdle = iota
	stateLengthMSB
	stateLengthLSB
	stateData
	stateChecksum
)

// Sample field name prefixes
const (
	DigitalPrefix = "dio-"
	AnalogPrefix  = "adc-"
)

// Analog mask bit for the supply voltage channel
const supplyVoltageChannel = 7
