// Package classifierhttp calls a remote model server (TensorFlow Serving style
// REST predict API) for each completed window.
package classifierhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

const (
	defaultPath    = "$.predictions[0]"
	maxBodyBytes   = 1 << 20
	maxErrorDetail = 256
)

type Classifier struct {
	url     string
	path    string
	client  *http.Client
	headers http.Header
}

type Option func(*Classifier)

// WithHTTPClient replaces the default pooled client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Classifier) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithHeader adds a header to every predict request (e.g. an API key).
func WithHeader(key, value string) Option {
	return func(cl *Classifier) { cl.headers.Set(key, value) }
}

func New(cfg domain.ClassifierConfig, opts ...Option) (*Classifier, error) {
	raw := strings.TrimSpace(cfg.URL)
	u, err := url.Parse(raw)
	if raw == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &domain.OpError{
			Op:   "classifierhttp.new",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("classifier.url must be an absolute http(s) URL, got %q: %w", raw, domain.ErrInvalidConfig),
		}
	}

	path := strings.TrimSpace(cfg.ProbabilitiesPath)
	if path == "" {
		path = defaultPath
	}

	c := &Classifier{
		url:     raw,
		path:    path,
		client:  newHTTPClient(defaultTransportConfig(cfg.Timeout)),
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ ports.Classifier = (*Classifier)(nil)

type predictRequest struct {
	Instances [][]float64 `json:"instances"`
}

// Predict posts the window as a single instance and extracts the probability
// vector from the response with the configured JSONPath.
func (c *Classifier) Predict(ctx context.Context, w domain.Window) (domain.ProbabilityVector, error) {
	payload, err := json.Marshal(predictRequest{Instances: [][]float64{w.Values()}})
	if err != nil {
		return nil, c.fail("marshal", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, c.fail("request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, c.fail("do", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.fail("read", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(body))
		if len(detail) > maxErrorDetail {
			detail = detail[:maxErrorDetail]
		}
		return nil, c.fail("status", fmt.Errorf("model server returned %d after %s: %s", resp.StatusCode, time.Since(start).Round(time.Millisecond), detail))
	}

	p, err := extractVector(body, c.path)
	if err != nil {
		return nil, c.fail("decode", err)
	}
	return p, nil
}

func (c *Classifier) fail(step string, err error) error {
	return &domain.OpError{
		Op:   "classifierhttp." + step,
		Kind: domain.KindClassification,
		Path: c.url,
		Err:  fmt.Errorf("%w: %v", domain.ErrClassification, err),
	}
}
