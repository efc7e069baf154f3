// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package zigbee turns the asynchronous XBee API frame stream into
// blocking request/response calls.
//
// Every AT command is tagged with a one-byte frame id (1-255, reused
// cyclically). The Engine sends the command, then waits until the frame
// carrying the same id comes back through the transport's callback or
// the timeout expires. The response status byte is mapped to a typed
// error. On top of that the Engine offers pin and register helpers for
// Series 2 modules.
//
// Exchanges on one Engine are serialized, so at most one request uses a
// given frame id at a time. A timed out request leaves the device state
// unknown: the module may or may not have executed the command.
package zigbee

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
)

// Defaults for Engine timing
const (
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// Transport sends AT commands and delivers decoded frames. *xbee.Link
// satisfies it.
type Transport interface {
	Send(dest xbee.Destination, command string, parameter []byte, frameID uint8) error
	SetFrameHandler(h xbee.FrameHandler)
}

// Engine correlates AT commands with their responses on one link
type Engine struct {
	transport    Transport
	log          *zap.Logger
	timeout      time.Duration
	pollInterval time.Duration

	// held for a whole allocate/send/wait exchange
	mu     sync.Mutex
	nextID uint8

	store     *frameStore
	observers observerSet
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithTimeout sets how long SendAndWait waits for a response
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithPollInterval sets how often SendAndWait checks for a response
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) { e.pollInterval = d }
}

// NewEngine creates an engine and registers it as t's frame handler
func NewEngine(t Transport, opts ...Option) *Engine {
	e := &Engine{
		transport:    t,
		log:          zap.NewNop(),
		timeout:      DefaultTimeout,
		pollInterval: DefaultPollInterval,
		nextID:       1,
		store:        newFrameStore(),
	}
	for _, opt := range opts {
		opt(e)
	}
	t.SetFrameHandler(e.OnFrameReceived)
	return e
}

// allocateFrameID returns the next frame id and advances the counter,
// wrapping 255 to 1. A frame still stored under the returned id belongs
// to an abandoned request and is discarded.
func (e *Engine) allocateFrameID() uint8 {
	id := e.nextID
	e.nextID++
	if e.nextID == 0 {
		e.nextID = 1
	}
	e.store.evict(id)
	return id
}

// OnFrameReceived is the transport callback. Frames with an id are kept
// for their waiter; every frame is passed to the registered handlers.
func (e *Engine) OnFrameReceived(f *xbee.Frame) {
	if f.ID != 0 {
		e.store.put(f.ID, f)
	}
	e.log.Debug("frame received",
		zap.String("type", xbee.FormatFrameType(f.Type)),
		zap.Uint8("frame_id", f.ID),
		zap.String("command", f.Command),
	)
	e.observers.dispatch(f)
}

// Pending returns the number of received frames nobody has collected
func (e *Engine) Pending() int {
	return e.store.len()
}

// SendAndWait sends command (with an optional parameter) to dest and
// waits for the matching response. A non-success status is returned as
// the corresponding error kind. ErrResponseTimeout means the device state
// is unknown; nothing is retried.
func (e *Engine) SendAndWait(ctx context.Context, command string, parameter []byte, dest xbee.Destination) (*xbee.Frame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.allocateFrameID()
	if err := e.transport.Send(dest, command, parameter, id); err != nil {
		return nil, fmt.Errorf("%s (%s): %w", command, dest, err)
	}

	deadline := time.NewTimer(e.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		if f := e.store.take(id); f != nil {
			if err := CheckStatus(f); err != nil {
				return nil, fmt.Errorf("%s (%s): %w", command, dest, err)
			}
			return f, nil
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			e.log.Warn("no response within timeout",
				zap.String("command", command),
				zap.Uint8("frame_id", id),
				zap.Stringer("dest", dest),
				zap.Duration("timeout", e.timeout),
			)
			return nil, fmt.Errorf("%s (%s): %w after %v", command, dest, ErrResponseTimeout, e.timeout)
		case <-ctx.Done():
			return nil, fmt.Errorf("%s (%s): %w", command, dest, ctx.Err())
		}
	}
}

// GetParameter reads the register named by command
func (e *Engine) GetParameter(ctx context.Context, command string, dest xbee.Destination) ([]byte, error) {
	f, err := e.SendAndWait(ctx, command, nil, dest)
	if err != nil {
		return nil, err
	}
	return f.Parameter, nil
}

// GetSample forces an IO sample (IS) and returns it. A response without
// sample data yields an empty sample.
func (e *Engine) GetSample(ctx context.Context, dest xbee.Destination) (xbee.Sample, error) {
	f, err := e.SendAndWait(ctx, "IS", nil, dest)
	if err != nil {
		return xbee.Sample{}, err
	}
	if len(f.Samples) == 0 {
		return xbee.NewSample(), nil
	}
	return f.Samples[0], nil
}

// ReadDigitalPin samples the device and returns the level of a digital pin
func (e *Engine) ReadDigitalPin(ctx context.Context, pin int, dest xbee.Destination) (bool, error) {
	p, err := DigitalPin(pin)
	if err != nil {
		return false, err
	}
	sample, err := e.GetSample(ctx, dest)
	if err != nil {
		return false, err
	}
	v, ok := sample.Digital[p.Name]
	if !ok {
		return false, &PinNotConfiguredError{Pin: pin, Command: p.Command}
	}
	return v, nil
}

// ReadAnalogPin samples the device and returns an analog reading in unit,
// scaled against maxVolts
func (e *Engine) ReadAnalogPin(ctx context.Context, pin int, maxVolts float64, dest xbee.Destination, unit Unit) (float64, error) {
	p, err := AnalogPin(pin)
	if err != nil {
		return 0, err
	}
	if unit < UnitRaw || unit > UnitMillivolts {
		panic(fmt.Sprintf("zigbee: undefined ADC unit %d", int(unit)))
	}
	sample, err := e.GetSample(ctx, dest)
	if err != nil {
		return 0, err
	}
	raw, ok := sample.Analog[p.Name]
	if !ok {
		return 0, &PinNotConfiguredError{Pin: pin, Command: p.Command, Analog: true}
	}
	return ConvertADC(raw, unit, maxVolts), nil
}

// SetGPIOPin configures a pin
func (e *Engine) SetGPIOPin(ctx context.Context, pin int, setting GPIOSetting, dest xbee.Destination) error {
	p, err := DigitalPin(pin)
	if err != nil {
		return err
	}
	if !setting.Valid() {
		return fmt.Errorf("%w: 0x%02X", ErrInvalidGPIOSetting, byte(setting))
	}
	_, err = e.SendAndWait(ctx, p.Command, []byte{setting.Byte()}, dest)
	return err
}

// GetGPIOPin reads a pin's configuration
func (e *Engine) GetGPIOPin(ctx context.Context, pin int, dest xbee.Destination) (GPIOSetting, error) {
	p, err := DigitalPin(pin)
	if err != nil {
		return 0, err
	}
	value, err := e.GetParameter(ctx, p.Command, dest)
	if err != nil {
		return 0, err
	}
	setting, err := ParseGPIOValue(value)
	if err != nil {
		return 0, &GPIOValueError{Command: p.Command, Value: value}
	}
	return setting, nil
}

// GetSupplyVoltage reads %V and returns the supply voltage in volts
func (e *Engine) GetSupplyVoltage(ctx context.Context, dest xbee.Destination) (float64, error) {
	value, err := e.GetParameter(ctx, "%V", dest)
	if err != nil {
		return 0, err
	}
	return (float64(decodeUint(value)) * (1200 / 1024.0)) / 1000, nil
}

// GetNodeName reads the node identifier (NI)
func (e *Engine) GetNodeName(ctx context.Context, dest xbee.Destination) (string, error) {
	value, err := e.GetParameter(ctx, "NI", dest)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// GetTemperature reads the module temperature (TP) in degrees Celsius.
// Only Pro modules implement TP.
func (e *Engine) GetTemperature(ctx context.Context, dest xbee.Destination) (int, error) {
	value, err := e.GetParameter(ctx, "TP", dest)
	if err != nil {
		return 0, err
	}
	return int(decodeUint(value)), nil
}

// GetTemperatureFahrenheit reads the module temperature in whole degrees Fahrenheit
func (e *Engine) GetTemperatureFahrenheit(ctx context.Context, dest xbee.Destination) (int, error) {
	celsius, err := e.GetTemperature(ctx, dest)
	if err != nil {
		return 0, err
	}
	return CelsiusToFahrenheit(celsius), nil
}

// CelsiusToFahrenheit converts, truncating toward zero
func CelsiusToFahrenheit(celsius int) int {
	return int(float64(celsius)*9/5 + 32)
}

// decodeUint reads a big-endian unsigned integer of any length up to 8 bytes
func decodeUint(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}
