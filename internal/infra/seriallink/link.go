// Package seriallink reads newline-terminated frames from a serial-attached sensor.
package seriallink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

const (
	defaultBaud    = 9600
	defaultTimeout = time.Second
	maxLineBytes   = 256
	readChunk      = 64
)

// Port is the subset of serial.Port the link needs.
type Port interface {
	io.ReadCloser
	SetReadTimeout(t time.Duration) error
}

type openFunc func(name string, mode *serial.Mode) (Port, error)

type Link struct {
	open openFunc
}

func NewLink() *Link {
	return &Link{
		open: func(name string, mode *serial.Mode) (Port, error) {
			return serial.Open(name, mode)
		},
	}
}

var _ ports.DeviceLink = (*Link)(nil)

// Open configures the port as 8N1 at cfg.Baud with cfg.ReadTimeout.
func (l *Link) Open(ctx context.Context, cfg domain.DeviceConfig) (ports.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return nil, &domain.OpError{Op: "serial.open", Kind: domain.KindInvalidConfig, Err: fmt.Errorf("device.port is empty: %w", domain.ErrInvalidConfig)}
	}

	baud := cfg.Baud
	if baud <= 0 {
		baud = defaultBaud
	}
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	p, err := l.open(cfg.Port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, &domain.OpError{Op: "serial.open", Kind: domain.KindConnection, Path: cfg.Port, Err: fmt.Errorf("%w: %v", domain.ErrConnection, err)}
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		_ = p.Close()
		return nil, &domain.OpError{Op: "serial.timeout", Kind: domain.KindConnection, Path: cfg.Port, Err: fmt.Errorf("%w: %v", domain.ErrConnection, err)}
	}

	return &conn{port: p, name: cfg.Port, timeout: timeout, now: time.Now}, nil
}

// ListPorts returns the serial ports currently visible to the OS.
func ListPorts() ([]string, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, &domain.OpError{Op: "serial.list", Kind: domain.KindExecution, Err: err}
	}
	return names, nil
}

type conn struct {
	port    Port
	name    string
	timeout time.Duration
	pending []byte
	now     func() time.Time
}

// ReadLine returns the next line without its terminator. A read that yields no
// bytes within the port timeout, or a line still incomplete after one timeout
// interval, reports domain.ErrReadTimeout; bytes read so far are kept for the next call.
func (c *conn) ReadLine(ctx context.Context) (string, error) {
	deadline := c.now().Add(c.timeout)
	buf := make([]byte, readChunk)

	for {
		if line, ok := c.nextLine(); ok {
			return line, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !c.now().Before(deadline) {
			return "", domain.ErrReadTimeout
		}

		n, err := c.port.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", domain.ErrReadTimeout
		}
		c.pending = append(c.pending, buf[:n]...)

		if len(c.pending) > maxLineBytes && bytes.IndexByte(c.pending, '\n') < 0 {
			// Overlong garbage is surfaced as a line so the decoder discards it.
			line := string(c.pending)
			c.pending = c.pending[:0]
			return line, nil
		}
	}
}

func (c *conn) nextLine() (string, bool) {
	i := bytes.IndexByte(c.pending, '\n')
	if i < 0 {
		return "", false
	}
	line := strings.TrimRight(string(c.pending[:i]), "\r")
	c.pending = append(c.pending[:0], c.pending[i+1:]...)
	return line, true
}

func (c *conn) Close() error {
	if err := c.port.Close(); err != nil {
		return &domain.OpError{Op: "serial.close", Kind: domain.KindConnection, Path: c.name, Err: err}
	}
	return nil
}
