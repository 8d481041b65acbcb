package classifierhttp

import (
	"net"
	"net/http"
	"time"
)

// transportConfig tunes the connection pool used for model-server calls.
type transportConfig struct {
	Timeout         time.Duration
	DialTimeout     time.Duration
	KeepAlive       time.Duration
	TLSHandshake    time.Duration
	ResponseHeader  time.Duration
	IdleConnTimeout time.Duration
	MaxIdleConns    int
}

func defaultTransportConfig(timeout time.Duration) transportConfig {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return transportConfig{
		Timeout:         timeout,
		DialTimeout:     5 * time.Second,
		KeepAlive:       30 * time.Second,
		TLSHandshake:    5 * time.Second,
		ResponseHeader:  timeout,
		IdleConnTimeout: 90 * time.Second,
		MaxIdleConns:    4,
	}
}

func newHTTPClient(cfg transportConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	// One window in flight at a time; a small idle pool keeps the connection warm.
	tr := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		ForceAttemptHTTP2: true,

		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,

		TLSHandshakeTimeout:   cfg.TLSHandshake,
		ResponseHeaderTimeout: cfg.ResponseHeader,
	}

	return &http.Client{
		Transport: tr,
		Timeout:   cfg.Timeout,
	}
}
