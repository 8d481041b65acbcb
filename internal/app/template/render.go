package template

import (
	"fmt"
	"strings"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

// RenderString replaces {{VAR}} placeholders with vars values.
// It returns an error if a variable is missing or a placeholder is malformed.
func RenderString(input string, vars map[string]string) (string, error) {
	if input == "" {
		return "", nil
	}

	var out strings.Builder
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", templateErr("unclosed template expression")
		}

		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return "", templateErr("empty template expression")
		}

		value, ok := vars[key]
		if !ok {
			return "", templateErr(fmt.Sprintf("unknown placeholder %q", key))
		}

		out.WriteString(value)
		rest = rest[end+2:]
	}
}

// Placeholders lists the keys referenced by input, in order of appearance.
// Malformed trailing expressions are ignored.
func Placeholders(input string) []string {
	var keys []string
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			return keys
		}
		rest = rest[start+2:]
		end := strings.Index(rest, "}}")
		if end == -1 {
			return keys
		}
		if key := strings.TrimSpace(rest[:end]); key != "" {
			keys = append(keys, key)
		}
		rest = rest[end+2:]
	}
}

func templateErr(msg string) error {
	return &domain.OpError{
		Op:   "template.render",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%s: %w", msg, domain.ErrInvalidConfig),
	}
}
