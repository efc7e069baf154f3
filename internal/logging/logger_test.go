// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Thermoquad/xbeehelper/internal/config"
)

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "xbee.log")
	log, err := NewLogger(&config.LoggingConfig{Level: "info", Format: "json", Output: path, MaxSize: 1})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	log.Debug("hidden")
	log.Info("visible")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if !strings.Contains(string(data), `"message":"visible"`) {
		t.Errorf("Expected info entry, got %q", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("Debug entry should be filtered at info level")
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	if _, err := NewLogger(&config.LoggingConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("Expected error for unknown level")
	}
}
