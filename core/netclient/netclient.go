package netclient

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Config holds configuration for outgoing HTTP traffic.
type Config struct {
	// ProxyURL routes all requests through the given HTTP proxy when set.
	ProxyURL string `mapstructure:"proxy_url" default:""`
	// TimeoutSeconds bounds connection setup, TLS handshake and time to first
	// response byte for every request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// New creates an HTTP client with the shared transport policy.
func New(cfg Config) (*http.Client, error) {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", cfg.ProxyURL, err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &http.Client{Transport: transport}, nil
}
