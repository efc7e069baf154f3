// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zigbee

import (
	"sync"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
)

// FrameHandler observes every frame the engine receives, whether or not
// a request is waiting for it. Handlers run on the transport's receive
// goroutine and must not block or call back into SendAndWait.
type FrameHandler func(*xbee.Frame)

type observer struct {
	id int
	fn FrameHandler
}

type observerSet struct {
	mu     sync.RWMutex
	nextID int
	list   []observer
}

func (o *observerSet) add(fn FrameHandler) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	o.list = append(o.list, observer{id: o.nextID, fn: fn})
	return o.nextID
}

func (o *observerSet) remove(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, obs := range o.list {
		if obs.id == id {
			o.list = append(o.list[:i:i], o.list[i+1:]...)
			return
		}
	}
}

func (o *observerSet) dispatch(f *xbee.Frame) {
	o.mu.RLock()
	list := o.list
	o.mu.RUnlock()
	for _, obs := range list {
		obs.fn(f)
	}
}

// AddFrameHandler registers h to see every received frame, in
// registration order. The returned func unregisters it; calling it more
// than once is harmless.
func (e *Engine) AddFrameHandler(h FrameHandler) (remove func()) {
	id := e.observers.add(h)
	var once sync.Once
	return func() {
		once.Do(func() { e.observers.remove(id) })
	}
}
