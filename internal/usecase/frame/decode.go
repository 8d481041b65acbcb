// Package frame decodes device lines of the form <2-char marker><digits><1-char marker>.
package frame

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

const (
	leadWidth  = 2
	trailWidth = 1
)

// Markers emitted by the reference sensor firmware, used in strict mode.
const (
	DefaultLead  = `\b`
	DefaultTrail = `\`
)

// Decoder turns raw device lines into normalized samples.
//
// Markers are counted in characters, not bytes. By default only the frame width
// is checked, any two leading and one trailing character are accepted as
// markers. Setting Lead/Trail enables strict marker checks.
type Decoder struct {
	Lead  string
	Trail string
}

// NewStrictDecoder returns a decoder that also requires the given markers.
func NewStrictDecoder(lead, trail string) (Decoder, error) {
	if utf8.RuneCountInString(lead) != leadWidth || utf8.RuneCountInString(trail) != trailWidth {
		return Decoder{}, &domain.OpError{
			Op:   "frame.strict",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("markers must be %d and %d characters (got %q, %q): %w", leadWidth, trailWidth, lead, trail, domain.ErrInvalidConfig),
		}
	}
	return Decoder{Lead: lead, Trail: trail}, nil
}

// Decode returns payload/1024 for a well-formed frame, or a malformed_frame error.
func (d Decoder) Decode(raw string) (domain.Sample, error) {
	line := []rune(strings.TrimSpace(raw))
	if len(line) <= leadWidth+trailWidth {
		return 0, malformed(raw, "frame too short")
	}

	if d.Lead != "" && string(line[:leadWidth]) != d.Lead {
		return 0, malformed(raw, "unexpected leading marker")
	}
	if d.Trail != "" && string(line[len(line)-trailWidth:]) != d.Trail {
		return 0, malformed(raw, "unexpected trailing marker")
	}

	payload := string(line[leadWidth : len(line)-trailWidth])
	v, err := strconv.Atoi(payload)
	if err != nil {
		return 0, malformed(raw, fmt.Sprintf("non-numeric payload %q", payload))
	}

	return domain.Sample(float64(v) / domain.NormalizationDivisor), nil
}

// Decode uses the lenient default decoder.
func Decode(raw string) (domain.Sample, error) {
	return Decoder{}.Decode(raw)
}

func malformed(raw, reason string) error {
	return &domain.OpError{
		Op:   "frame.decode",
		Kind: domain.KindMalformedFrame,
		Err:  fmt.Errorf("%s in %q: %w", reason, raw, domain.ErrMalformedFrame),
	}
}
