// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Thermoquad/xbeehelper/internal/config"
	"github.com/Thermoquad/xbeehelper/pkg/xbee"
)

// passwordEnv holds the WebSocket bridge password for non-interactive use
const passwordEnv = config.EnvPrefix + "_PASSWORD"

const (
	wsHandshakeTimeout = 10 * time.Second
	wsDialTimeout      = 15 * time.Second
)

// serialConn is an XBee attached to a local serial port
type serialConn struct {
	port serial.Port
	name string
}

func (s *serialConn) Read(p []byte) (int, error) {
	n, err := s.port.Read(p)
	var perr *serial.PortError
	if errors.As(err, &perr) && perr.Code() == serial.PortClosed {
		return n, fmt.Errorf("%w: %s", xbee.ErrConnectionClosed, s.name)
	}
	return n, err
}

func (s *serialConn) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *serialConn) Close() error {
	return s.port.Close()
}

// wsConn carries the module's serial byte stream over a WebSocket bridge.
// Frames may be split across messages, so reads drain one message at a
// time and text messages are ignored.
type wsConn struct {
	conn *websocket.Conn

	// reader for the current binary message; nil between messages
	msg io.Reader
	err error

	writeMu sync.Mutex
}

func (w *wsConn) Read(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}

	for {
		if w.msg == nil {
			messageType, r, err := w.conn.NextReader()
			if err != nil {
				w.err = fmt.Errorf("%w: %v", xbee.ErrConnectionClosed, err)
				return 0, w.err
			}
			if messageType != websocket.BinaryMessage {
				continue
			}
			w.msg = r
		}

		n, err := w.msg.Read(p)
		if errors.Is(err, io.EOF) {
			w.msg = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (w *wsConn) Write(p []byte) (int, error) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsConn) Close() error {
	w.writeMu.Lock()
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	w.writeMu.Unlock()
	return w.conn.Close()
}

// openSerial opens the port 8N1 with DTR asserted so a pin-sleep module
// stays awake, and drops anything buffered before the link starts.
func openSerial(c config.SerialConfig) (io.ReadWriteCloser, error) {
	mode := &serial.Mode{
		BaudRate: c.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
		InitialStatusBits: &serial.ModemOutputBits{
			DTR: true,
			RTS: true,
		},
	}

	port, err := serial.Open(c.Port, mode)
	if err != nil {
		if ports, lerr := serial.GetPortsList(); lerr == nil && len(ports) > 0 {
			return nil, fmt.Errorf("failed to open serial port %s (available: %s): %w", c.Port, strings.Join(ports, ", "), err)
		}
		return nil, fmt.Errorf("failed to open serial port %s: %w", c.Port, err)
	}

	if err := port.ResetInputBuffer(); err != nil {
		logger.Debug("failed to flush serial input", zap.String("port", c.Port), zap.Error(err))
	}

	return &serialConn{port: port, name: c.Port}, nil
}

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// openWebSocket dials a serial bridge, authenticating when a username is set
func openWebSocket(c config.WebSocketConfig, password string) (io.ReadWriteCloser, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: c.NoSSLVerify}
	}

	headers := http.Header{}
	if c.Username != "" {
		headers.Set("Authorization", basicAuth(c.Username, password))
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsDialTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, c.URL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return &wsConn{conn: conn}, nil
}

// readPassword returns the bridge password from the environment or the terminal
func readPassword() (string, error) {
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	defer fmt.Fprintln(os.Stderr)

	pw, err := term.ReadPassword(int(syscall.Stdin))
	if err == nil {
		return string(pw), nil
	}

	// Not a terminal; read a line instead
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// OpenConnection opens the WebSocket bridge or serial port named by c and
// returns it with a one-line description for display
func OpenConnection(c *config.Config) (io.ReadWriteCloser, string, error) {
	switch {
	case c.WebSocket.URL != "":
		var password string
		if c.WebSocket.Username != "" {
			var err error
			if password, err = readPassword(); err != nil {
				return nil, "", err
			}
		}
		conn, err := openWebSocket(c.WebSocket, password)
		if err != nil {
			return nil, "", err
		}
		logger.Info("connected", zap.String("url", c.WebSocket.URL))
		return conn, "WebSocket: " + c.WebSocket.URL, nil

	case c.Serial.Port != "":
		conn, err := openSerial(c.Serial)
		if err != nil {
			return nil, "", err
		}
		logger.Info("connected", zap.String("port", c.Serial.Port), zap.Int("baud", c.Serial.Baud))
		return conn, fmt.Sprintf("Serial: %s @ %d baud", c.Serial.Port, c.Serial.Baud), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}
