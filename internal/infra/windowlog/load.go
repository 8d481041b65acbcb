package windowlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

// LoadWindow reads a record log back into a window. Blank lines are skipped;
// only the first column of each record is used.
func (s *Store) LoadWindow(path string) (domain.Window, error) {
	return Load(path)
}

// Load reads a record log at path.
func Load(path string) (domain.Window, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Window{}, &domain.OpError{Op: "windowlog.load", Kind: domain.KindNotFound, Path: path, Err: domain.ErrNotFound}
		}
		return domain.Window{}, &domain.OpError{Op: "windowlog.load", Kind: domain.KindExecution, Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var values []float64
	for line := 1; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Window{}, invalidLog(path, err)
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return domain.Window{}, invalidLog(path, fmt.Errorf("record %d: %w", line, err))
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return domain.Window{}, invalidLog(path, errors.New("no records"))
	}
	return domain.NewWindow(1, values), nil
}

func invalidLog(path string, err error) error {
	return &domain.OpError{
		Op:   "windowlog.load",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err),
	}
}
