// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Thermoquad/xbeehelper/pkg/xbee"
	"github.com/Thermoquad/xbeehelper/pkg/zigbee"
)

// session is one open link with an engine on top of it
type session struct {
	link     *xbee.Link
	engine   *zigbee.Engine
	dest     xbee.Destination
	connInfo string
	capture  *os.File
}

// openLink opens the configured connection and wraps it in a link. The
// caller registers a frame handler and starts it.
func openLink() (*xbee.Link, string, *os.File, error) {
	conn, connInfo, err := OpenConnection(cfg)
	if err != nil {
		return nil, "", nil, err
	}

	opts := []xbee.LinkOption{
		xbee.WithEscaping(cfg.Link.Escaped),
		xbee.WithLogger(logger.Named("link")),
	}

	var captureFile *os.File
	if cfg.Link.Capture != "" {
		captureFile, err = os.Create(cfg.Link.Capture)
		if err != nil {
			conn.Close()
			return nil, "", nil, fmt.Errorf("failed to create capture file: %w", err)
		}
		cw := xbee.NewCaptureWriter(captureFile)
		logger.Info("capturing frames", zap.String("file", cfg.Link.Capture), zap.String("session", cw.Session()))
		opts = append(opts, xbee.WithCapture(cw))
	}

	return xbee.NewLink(conn, opts...), connInfo, captureFile, nil
}

// openSession opens the link and starts an engine on it
func openSession() (*session, error) {
	dest, err := parseDest(cfg.Link.Dest)
	if err != nil {
		return nil, err
	}

	link, connInfo, captureFile, err := openLink()
	if err != nil {
		return nil, err
	}

	engine := zigbee.NewEngine(link,
		zigbee.WithLogger(logger.Named("engine")),
		zigbee.WithTimeout(cfg.Engine.Timeout),
		zigbee.WithPollInterval(cfg.Engine.PollInterval),
	)
	link.Start()

	logger.Debug("session opened", zap.String("connection", connInfo), zap.Stringer("dest", dest))

	return &session{
		link:     link,
		engine:   engine,
		dest:     dest,
		connInfo: connInfo,
		capture:  captureFile,
	}, nil
}

func (s *session) Close() error {
	if s.capture == nil {
		return closeLink(s.link, nil)
	}
	return closeLink(s.link, s.capture)
}

// linkDrainTimeout bounds the wait for the reader after the connection closes
const linkDrainTimeout = time.Second

// closeLink closes the link and waits for its reader to exit before closing
// the capture, since the reader records every frame it decodes.
func closeLink(link *xbee.Link, capture io.Closer) error {
	err := link.Close()

	select {
	case <-link.Done():
	case <-time.After(linkDrainTimeout):
		logger.Warn("link reader still running after close")
	}

	if capture != nil {
		if cerr := capture.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// parseDest parses a hex 64-bit address; empty means the local module
func parseDest(s string) (xbee.Destination, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return xbee.Local, nil
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.ReplaceAll(s, ":", "")
	addr, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return xbee.Local, fmt.Errorf("invalid destination address %q: %w", s, err)
	}
	return xbee.Remote(addr), nil
}

// commandContext returns a context cancelled on Ctrl+C
func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}

// withSession runs fn against a freshly opened session
func withSession(parent context.Context, fn func(ctx context.Context, s *session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := commandContext(parent)
	defer stop()

	return fn(ctx, s)
}
