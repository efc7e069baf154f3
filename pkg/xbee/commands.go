// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"encoding/binary"
	"fmt"
)

// Command builder functions create frame data ready for EncodeFrameData.

// Destination selects which device an AT command is addressed to.
// The zero value (Local) is the module attached to the serial port.
type Destination struct {
	addr   uint64
	remote bool
}

// Local addresses the directly attached module.
var Local = Destination{}

// Remote addresses a remote node by its 64-bit address.
func Remote(addr uint64) Destination {
	return Destination{addr: addr, remote: true}
}

// IsRemote reports whether the destination is a remote node
func (d Destination) IsRemote() bool {
	return d.remote
}

// Address returns the remote 64-bit address (0 for Local)
func (d Destination) Address() uint64 {
	return d.addr
}

func (d Destination) String() string {
	if !d.remote {
		return "local"
	}
	return fmt.Sprintf("%016X", d.addr)
}

// NewATCommand builds an AT Command frame (0x08).
// A nil parameter queries the register; otherwise the value is set.
func NewATCommand(frameID uint8, command string, parameter []byte) ([]byte, error) {
	if err := checkCommand(command); err != nil {
		return nil, err
	}
	data := make([]byte, 0, 4+len(parameter))
	data = append(data, FrameATCommand, frameID)
	data = append(data, command...)
	data = append(data, parameter...)
	return data, nil
}

// NewRemoteATCommand builds a Remote AT Command Request frame (0x17).
// The 16-bit network address is left as 0xFFFE so the module resolves it,
// and changes are applied immediately.
func NewRemoteATCommand(frameID uint8, addr uint64, command string, parameter []byte) ([]byte, error) {
	if err := checkCommand(command); err != nil {
		return nil, err
	}
	data := make([]byte, 0, 15+len(parameter))
	data = append(data, FrameRemoteATCommand, frameID)
	data = binary.BigEndian.AppendUint64(data, addr)
	data = binary.BigEndian.AppendUint16(data, NetworkAddrUnknown)
	data = append(data, RemoteOptionApplyChanges)
	data = append(data, command...)
	data = append(data, parameter...)
	return data, nil
}

// NewCommand builds a local or remote AT command depending on dest.
func NewCommand(dest Destination, frameID uint8, command string, parameter []byte) ([]byte, error) {
	if dest.IsRemote() {
		return NewRemoteATCommand(frameID, dest.Address(), command, parameter)
	}
	return NewATCommand(frameID, command, parameter)
}

func checkCommand(command string) error {
	if len(command) != 2 {
		return fmt.Errorf("AT command must be 2 bytes, got %q", command)
	}
	return nil
}
