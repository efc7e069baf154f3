// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// xbeehelper - XBee ZigBee module helper
//
// A CLI tool for querying and configuring XBee modules, locally or over
// the air, through the API frame protocol.

package main

import (
	"os"

	"github.com/Thermoquad/xbeehelper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
