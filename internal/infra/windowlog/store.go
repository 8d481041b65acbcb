// Package windowlog persists completed windows as single-column CSV record logs,
// one normalized sample per line, and reads them back for offline classification.
package windowlog

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

const defaultWindowsDir = "windows"

type Store struct {
	dir string
}

// NewStore writes logs under <root>/<cfg.Paths.WindowsDir>.
func NewStore(root string, cfg domain.Config) *Store {
	name := cfg.Paths.WindowsDir
	if strings.TrimSpace(name) == "" {
		name = defaultWindowsDir
	}
	dir := name
	if !filepath.IsAbs(name) {
		dir = filepath.Join(root, name)
	}
	return &Store{dir: dir}
}

var (
	_ ports.RecordStore  = (*Store)(nil)
	_ ports.WindowSource = (*Store)(nil)
)

// Open starts a record log for w. Records go to a temporary file that is renamed
// into place on Close, so readers never see a partially written window.
func (s *Store) Open(w domain.Window) (ports.RecordLog, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, &domain.OpError{Op: "windowlog.mkdir", Kind: domain.KindExecution, Path: s.dir, Err: err}
	}

	path := filepath.Join(s.dir, FileName(w))
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, &domain.OpError{Op: "windowlog.open", Kind: domain.KindExecution, Path: tmp, Err: err}
	}

	buf := bufio.NewWriter(f)
	return &recordLog{
		path: path,
		tmp:  tmp,
		file: f,
		buf:  buf,
		csv:  csv.NewWriter(buf),
	}, nil
}

// FileName is the log name for w: completion time, sequence number and a short id.
func FileName(w domain.Window) string {
	ts := w.CompletedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	id := w.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%04d_%s.csv", ts.UTC().Format("20060102T150405Z"), w.Seq, id)
}

type recordLog struct {
	path string
	tmp  string
	file *os.File
	buf  *bufio.Writer
	csv  *csv.Writer
	done bool
}

func (l *recordLog) Append(v float64) error {
	if l.done {
		return &domain.OpError{Op: "windowlog.append", Kind: domain.KindExecution, Path: l.path, Err: os.ErrClosed}
	}
	if err := l.csv.Write([]string{strconv.FormatFloat(v, 'g', -1, 64)}); err != nil {
		return &domain.OpError{Op: "windowlog.append", Kind: domain.KindExecution, Path: l.tmp, Err: err}
	}
	return nil
}

func (l *recordLog) Flush() error {
	l.csv.Flush()
	if err := l.csv.Error(); err != nil {
		return &domain.OpError{Op: "windowlog.flush", Kind: domain.KindExecution, Path: l.tmp, Err: err}
	}
	if err := l.buf.Flush(); err != nil {
		return &domain.OpError{Op: "windowlog.flush", Kind: domain.KindExecution, Path: l.tmp, Err: err}
	}
	return nil
}

func (l *recordLog) Close() error {
	if l.done {
		return nil
	}
	if err := l.Flush(); err != nil {
		_ = l.Abort()
		return err
	}
	if err := l.file.Sync(); err != nil {
		_ = l.Abort()
		return &domain.OpError{Op: "windowlog.sync", Kind: domain.KindExecution, Path: l.tmp, Err: err}
	}
	l.done = true
	if err := l.file.Close(); err != nil {
		_ = os.Remove(l.tmp)
		return &domain.OpError{Op: "windowlog.close", Kind: domain.KindExecution, Path: l.tmp, Err: err}
	}
	if err := os.Rename(l.tmp, l.path); err != nil {
		_ = os.Remove(l.tmp)
		return &domain.OpError{Op: "windowlog.rename", Kind: domain.KindExecution, Path: l.path, Err: err}
	}
	return nil
}

func (l *recordLog) Abort() error {
	if l.done {
		return nil
	}
	l.done = true
	_ = l.file.Close()
	if err := os.Remove(l.tmp); err != nil && !os.IsNotExist(err) {
		return &domain.OpError{Op: "windowlog.abort", Kind: domain.KindExecution, Path: l.tmp, Err: err}
	}
	return nil
}

func (l *recordLog) Path() string { return l.path }
