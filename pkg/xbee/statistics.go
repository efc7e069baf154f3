// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Counters holds the statistics counters and derived rates
type Counters struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames     uint64
	ValidFrames     uint64
	ChecksumErrors  uint64
	DecodeErrors    uint64
	ParseErrors     uint64
	AnomalousFrames uint64
	FailedStatus    uint64
	FramesSent      uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// ErrorCount returns the number of frames that failed to decode or parse
func (c Counters) ErrorCount() uint64 {
	return c.ChecksumErrors + c.DecodeErrors + c.ParseErrors
}

// Statistics tracks frame counts and error rates for a link.
// Safe for concurrent use.
type Statistics struct {
	mu sync.Mutex
	Counters
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		Counters: Counters{
			StartTime:      now,
			LastUpdateTime: now,
		},
	}
}

// Update records one decode attempt. decodeErr covers framing, checksum
// and parse failures; validationErrors come from ValidateFrame.
func (s *Statistics) Update(frame *Frame, decodeErr error, validationErrors []ValidationError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalFrames++
	s.LastUpdateTime = time.Now()

	if decodeErr != nil {
		var checksumErr *ChecksumError
		switch {
		case errors.As(decodeErr, &checksumErr):
			s.ChecksumErrors++
		case errors.Is(decodeErr, ErrParse):
			s.ParseErrors++
		default:
			s.DecodeErrors++
		}
		return
	}

	if len(validationErrors) == 0 {
		s.ValidFrames++
		return
	}

	s.AnomalousFrames++
	for _, err := range validationErrors {
		if err.Type == AnomalyFailedStatus {
			s.FailedStatus++
		}
	}
}

// RecordSent counts an outgoing frame
func (s *Statistics) RecordSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FramesSent++
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateRates()
}

func (s *Statistics) calculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.ErrorCount()) / elapsed
	}
}

// Snapshot returns a copy of the counters with rates recalculated
func (s *Statistics) Snapshot() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateRates()
	return s.Counters
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	snap := s.Snapshot()

	var validPercent, errorPercent float64
	if snap.TotalFrames > 0 {
		validPercent = float64(snap.ValidFrames) * 100.0 / float64(snap.TotalFrames)
		errorPercent = float64(snap.ErrorCount()) * 100.0 / float64(snap.TotalFrames)
	}

	elapsed := time.Since(snap.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Frames Sent:     %8d\n", snap.FramesSent)
	result += fmt.Sprintf("Total Frames:    %8d\n", snap.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", snap.ValidFrames, validPercent)

	if snap.ErrorCount() > 0 {
		result += fmt.Sprintf("Errors:          %8d (%.1f%%)\n", snap.ErrorCount(), errorPercent)
		if snap.ChecksumErrors > 0 {
			result += fmt.Sprintf("  Checksum:         %5d\n", snap.ChecksumErrors)
		}
		if snap.DecodeErrors > 0 {
			result += fmt.Sprintf("  Decode:           %5d\n", snap.DecodeErrors)
		}
		if snap.ParseErrors > 0 {
			result += fmt.Sprintf("  Parse:            %5d\n", snap.ParseErrors)
		}
	}
	if snap.AnomalousFrames > 0 {
		result += fmt.Sprintf("Anomalous:       %8d\n", snap.AnomalousFrames)
		if snap.FailedStatus > 0 {
			result += fmt.Sprintf("  Failed Status:    %5d\n", snap.FailedStatus)
		}
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", snap.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", snap.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.Counters = Counters{
		StartTime:      now,
		LastUpdateTime: now,
	}
}
