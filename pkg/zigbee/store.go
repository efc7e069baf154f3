// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zigbee

import (
	"sync"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
)

// frameStore holds frames that arrived before their waiter collected
// them, keyed by frame id. It is written by the receive path and read by
// waiters, so it has its own lock independent of the request lock.
type frameStore struct {
	mu     sync.Mutex
	frames map[uint8]*xbee.Frame
}

func newFrameStore() *frameStore {
	return &frameStore{frames: make(map[uint8]*xbee.Frame)}
}

// put stores f under id, replacing any uncollected frame
func (s *frameStore) put(id uint8, f *xbee.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[id] = f
}

// take removes and returns the frame for id, or nil
func (s *frameStore) take(id uint8) *xbee.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.frames[id]
	if !ok {
		return nil
	}
	delete(s.frames, id)
	return f
}

// evict discards any frame stored under id without looking at it
func (s *frameStore) evict(id uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.frames, id)
}

func (s *frameStore) has(id uint8) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.frames[id]
	return ok
}

func (s *frameStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}
