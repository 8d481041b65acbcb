// Package filelink replays a recorded capture, one device line per text line.
package filelink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

// maxLineBytes caps one capture line. Longer lines are returned truncated so
// the frame decoder discards them.
const maxLineBytes = 4096

type Link struct {
	// Interval paces replay between lines; zero replays as fast as possible.
	Interval time.Duration
}

func NewLink(interval time.Duration) *Link {
	return &Link{Interval: interval}
}

var _ ports.DeviceLink = (*Link)(nil)

func (l *Link) Open(ctx context.Context, cfg domain.DeviceConfig) (ports.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.File) == "" {
		return nil, &domain.OpError{Op: "filelink.open", Kind: domain.KindInvalidConfig, Err: fmt.Errorf("device.file is empty: %w", domain.ErrInvalidConfig)}
	}

	f, err := os.Open(cfg.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.OpError{Op: "filelink.open", Kind: domain.KindConnection, Path: cfg.File, Err: fmt.Errorf("%w: %w", domain.ErrConnection, domain.ErrNotFound)}
		}
		return nil, &domain.OpError{Op: "filelink.open", Kind: domain.KindConnection, Path: cfg.File, Err: fmt.Errorf("%w: %v", domain.ErrConnection, err)}
	}

	return &conn{file: f, reader: bufio.NewReaderSize(f, maxLineBytes), interval: l.Interval}, nil
}

type conn struct {
	file     *os.File
	reader   *bufio.Reader
	interval time.Duration
}

// ReadLine returns io.EOF once the capture is exhausted.
func (c *conn) ReadLine(ctx context.Context) (string, error) {
	if c.interval > 0 {
		t := time.NewTimer(c.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	return c.readLine()
}

func (c *conn) readLine() (string, error) {
	b, err := c.reader.ReadSlice('\n')
	line := string(b)

	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = c.reader.ReadSlice('\n')
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return line, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if err != nil && line == "" {
		return "", io.EOF
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *conn) Close() error {
	return c.file.Close()
}
