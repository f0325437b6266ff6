package gateway

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aoideee/storegate/internal/web"
)

const outcomeOK = "ok"

// Result is what a backend answered. Body is relayed untouched; StatusCode is
// informational and never interpreted by the gateway.
type Result struct {
	Backend    Backend
	StatusCode int
	Body       string
}

// Dispatcher sends outbound requests through the registry's clients.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *Metrics
}

// NewDispatcher returns a dispatcher. metrics may be nil.
func NewDispatcher(registry *Registry, logger *slog.Logger, metrics *Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{registry: registry, logger: logger, metrics: metrics}
}

// Get fetches resource/segments... from b.
func (d *Dispatcher) Get(ctx context.Context, b Backend, resource string, segments ...any) (*Result, error) {
	return d.do(ctx, b, http.MethodGet, resource, segments, nil)
}

// Post sends payload to resource on b.
func (d *Dispatcher) Post(ctx context.Context, b Backend, resource string, payload any) (*Result, error) {
	return d.do(ctx, b, http.MethodPost, resource, nil, payload)
}

// Put sends payload to resource/segments... on b.
func (d *Dispatcher) Put(ctx context.Context, b Backend, resource string, payload any, segments ...any) (*Result, error) {
	return d.do(ctx, b, http.MethodPut, resource, segments, payload)
}

// Delete removes resource/segments... on b.
func (d *Dispatcher) Delete(ctx context.Context, b Backend, resource string, segments ...any) (*Result, error) {
	return d.do(ctx, b, http.MethodDelete, resource, segments, nil)
}

func (d *Dispatcher) do(ctx context.Context, b Backend, method, resource string, segments []any, payload any) (*Result, error) {
	req, err := NewRequest(b, method, resource, segments, payload)
	if err != nil {
		d.metrics.observe(b, method, KindOf(err).String(), 0)
		return nil, err
	}
	return d.Send(ctx, req)
}

// Send performs req and reads the whole response body. The client is
// resolved before anything touches the network, so an unregistered backend
// fails without a round trip. Non-2xx answers are returned as-is; only
// failures to reach the backend or read its body are errors.
func (d *Dispatcher) Send(ctx context.Context, req *Request) (*Result, error) {
	client, err := d.registry.Client(req.Backend)
	if err != nil {
		d.metrics.observe(req.Backend, req.Method, KindUnknownBackend.String(), 0)
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	target := client.resolve(req.Path)
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, d.transportError(req, "request could not be created", err)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", contentTypeJSON)
	if id := web.RequestIDFromContext(ctx); id != "" {
		httpReq.Header.Set(web.RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := client.http.Do(httpReq)
	if err != nil {
		return nil, d.transportError(req, "backend unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, d.transportError(req, "backend response could not be read", err)
	}

	d.metrics.observe(req.Backend, req.Method, outcomeOK, time.Since(start))
	d.logger.Debug("dispatched",
		slog.String("backend", req.Backend.String()),
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.Int("status", resp.StatusCode),
	)

	return &Result{
		Backend:    req.Backend,
		StatusCode: resp.StatusCode,
		Body:       string(raw),
	}, nil
}

func (d *Dispatcher) transportError(req *Request, message string, cause error) error {
	d.metrics.observe(req.Backend, req.Method, KindTransport.String(), 0)
	return &Error{
		Kind:    KindTransport,
		Op:      "send",
		Backend: req.Backend.String(),
		Message: message,
		Err:     cause,
	}
}
