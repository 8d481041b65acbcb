package classifierhttp

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/PaesslerAG/jsonpath"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

// extractVector evaluates expr against a JSON body and converts the result
// into a probability vector. Numbers encoded as strings are accepted.
func extractVector(body []byte, expr string) (domain.ProbabilityVector, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("response body is not valid JSON: %w", err)
	}

	val, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("jsonpath %s: %w", expr, err)
	}

	arr, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("jsonpath %s: expected an array, got %T", expr, val)
	}
	// Filter expressions wrap a single match in another array.
	if len(arr) == 1 {
		if inner, ok := arr[0].([]any); ok {
			arr = inner
		}
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("jsonpath %s: empty array", expr)
	}

	out := make(domain.ProbabilityVector, len(arr))
	for i, v := range arr {
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("jsonpath %s: element %d: %w", expr, i, err)
		}
		out[i] = f
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		return strconv.ParseFloat(t, 64)
	case json.Number:
		return t.Float64()
	default:
		return 0, fmt.Errorf("not a number (%T)", v)
	}
}
