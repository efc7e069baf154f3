// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrConnectionClosed is returned by connections that have permanently failed
var ErrConnectionClosed = errors.New("connection closed")

// FrameHandler receives every frame decoded by a Link
type FrameHandler func(*Frame)

// Link owns one serial (or bridged) connection to an XBee module. A
// background goroutine decodes incoming bytes and hands each frame to the
// registered handler; Send encodes and writes AT commands.
type Link struct {
	conn    io.ReadWriteCloser
	escaped bool
	log     *zap.Logger
	capture *CaptureWriter
	stats   *Statistics

	writeMutex sync.Mutex

	handlerMu sync.RWMutex
	handler   FrameHandler

	errMu   sync.Mutex
	readErr error

	startOnce sync.Once
	closeOnce sync.Once
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// LinkOption configures a Link
type LinkOption func(*Link)

// WithEscaping selects API mode 2 (escaped) framing
func WithEscaping(escaped bool) LinkOption {
	return func(l *Link) { l.escaped = escaped }
}

// WithLogger sets the link logger
func WithLogger(log *zap.Logger) LinkOption {
	return func(l *Link) { l.log = log }
}

// WithCapture records every frame sent and received
func WithCapture(c *CaptureWriter) LinkOption {
	return func(l *Link) { l.capture = c }
}

// NewLink creates a link over conn. Call Start to begin receiving.
func NewLink(conn io.ReadWriteCloser, opts ...LinkOption) *Link {
	l := &Link{
		conn:     conn,
		log:      zap.NewNop(),
		stats:    NewStatistics(),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches the background reader. Calling it more than once is a no-op.
func (l *Link) Start() {
	l.startOnce.Do(func() {
		go l.readLoop()
	})
}

// SetFrameHandler registers the callback for decoded frames, replacing
// any previous one. The handler runs on the reader goroutine and must
// not block.
func (l *Link) SetFrameHandler(h FrameHandler) {
	l.handlerMu.Lock()
	defer l.handlerMu.Unlock()
	l.handler = h
}

// Send writes an AT command, local or remote depending on dest, tagged
// with frameID so the response can be matched.
func (l *Link) Send(dest Destination, command string, parameter []byte, frameID uint8) error {
	data, err := NewCommand(dest, frameID, command, parameter)
	if err != nil {
		return err
	}
	wire, err := EncodeFrameData(data, l.escaped)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", command, err)
	}

	l.writeMutex.Lock()
	defer l.writeMutex.Unlock()

	n, err := l.conn.Write(wire)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", command, err)
	}
	if n != len(wire) {
		return fmt.Errorf("incomplete write: %d/%d bytes", n, len(wire))
	}

	l.stats.RecordSent()
	l.record(DirectionTx, data, time.Now())
	l.log.Debug("frame sent",
		zap.String("command", command),
		zap.Uint8("frame_id", frameID),
		zap.Stringer("dest", dest),
		zap.Binary("parameter", parameter),
	)
	return nil
}

// Stats returns the link statistics
func (l *Link) Stats() *Statistics {
	return l.stats
}

// Done is closed when the reader goroutine exits
func (l *Link) Done() <-chan struct{} {
	return l.doneChan
}

// Err returns the error that stopped the reader, if any
func (l *Link) Err() error {
	l.errMu.Lock()
	defer l.errMu.Unlock()
	return l.readErr
}

// Close stops the reader and closes the connection
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.stopChan)
		err = l.conn.Close()
	})
	return err
}

func (l *Link) readLoop() {
	defer close(l.doneChan)

	decoder := NewDecoder(l.escaped)
	buf := make([]byte, 256)

	for {
		select {
		case <-l.stopChan:
			return
		default:
		}

		n, err := l.conn.Read(buf)
		for i := 0; i < n; i++ {
			l.decode(decoder, buf[i])
		}

		if err != nil {
			select {
			case <-l.stopChan:
				return
			default:
			}
			if isTerminal(err) {
				l.errMu.Lock()
				l.readErr = err
				l.errMu.Unlock()
				l.log.Info("link reader stopped", zap.Error(err))
				return
			}
			l.log.Debug("read error", zap.Error(err))
			// Brief pause before retry on transient errors (e.g., serial)
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (l *Link) decode(decoder *Decoder, b byte) {
	packet, err := decoder.DecodeByte(b)
	if err != nil {
		l.stats.Update(nil, err, nil)
		l.log.Debug("decode error", zap.Error(err))
		return
	}
	if packet == nil {
		return
	}

	l.record(DirectionRx, packet.Data(), packet.Timestamp())

	frame, err := ParseFrame(packet)
	if err != nil {
		l.stats.Update(nil, err, nil)
		l.log.Debug("parse error", zap.Error(err))
		return
	}
	l.stats.Update(frame, nil, ValidateFrame(frame))

	l.handlerMu.RLock()
	h := l.handler
	l.handlerMu.RUnlock()
	if h != nil {
		h(frame)
	}
}

func (l *Link) record(dir Direction, data []byte, ts time.Time) {
	if l.capture == nil {
		return
	}
	if err := l.capture.Write(dir, data, ts); err != nil {
		l.log.Warn("capture failed", zap.Error(err))
	}
}

func isTerminal(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, ErrConnectionClosed)
}
