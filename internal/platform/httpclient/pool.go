// Package httpclient owns the connection pool shared by every downstream client.
// The pool is built once at process start, injected into the clients, and released
// exactly once at shutdown.
package httpclient

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout is the per-call ceiling applied to every downstream round trip.
const DefaultTimeout = 9 * time.Second

// ErrClosed is returned by Client after Close.
var ErrClosed = errors.New("http client pool closed")

// Pool wraps a single *http.Client and its transport.
type Pool struct {
	client    *http.Client
	transport *http.Transport

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// Option configures the pool.
type Option func(*options)

type options struct {
	timeout        time.Duration
	tracerProvider trace.TracerProvider
	maxIdlePerHost int
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithTracerProvider instruments outbound calls with client spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMaxIdleConnsPerHost bounds idle keep-alive connections per downstream host.
func WithMaxIdleConnsPerHost(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIdlePerHost = n
		}
	}
}

// New builds the pool.
func New(opts ...Option) *Pool {
	cfg := options{timeout: DefaultTimeout, maxIdlePerHost: 32}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          128,
		MaxIdleConnsPerHost:   cfg.maxIdlePerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   cfg.timeout,
		ExpectContinueTimeout: time.Second,
	}
	var rt http.RoundTripper = transport
	if cfg.tracerProvider != nil {
		rt = otelhttp.NewTransport(transport, otelhttp.WithTracerProvider(cfg.tracerProvider))
	}
	return &Pool{
		client:    &http.Client{Timeout: cfg.timeout, Transport: rt},
		transport: transport,
	}
}

// Client returns the shared client. It is safe for concurrent use.
func (p *Pool) Client() (*http.Client, error) {
	if p == nil {
		return nil, ErrClosed
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}
	return p.client, nil
}

// Timeout reports the per-call ceiling.
func (p *Pool) Timeout() time.Duration {
	if p == nil || p.client == nil {
		return DefaultTimeout
	}
	return p.client.Timeout
}

// Close releases idle connections. Subsequent calls are no-ops.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		p.transport.CloseIdleConnections()
	})
}
