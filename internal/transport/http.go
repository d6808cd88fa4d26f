// Package transport implements the HTTP transport collaborator on top of
// net/http with OpenTelemetry instrumentation.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/resthook/pkg/domain"
	"github.com/tjfontaine/resthook/pkg/ports"
)

// Client is the concrete ports.Transport backed by net/http.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

var _ ports.Transport = (*Client)(nil)

// New creates a transport with the given overall request timeout.
func New(timeout time.Duration, logger *slog.Logger) *Client {
	return NewWithClient(&http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, logger)
}

// NewWithClient wraps an existing http.Client, e.g. a VCR-backed client in
// tests.
func NewWithClient(hc *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{http: hc, logger: logger}
}

// Do performs the exchange. The request is consumed; the returned response
// carries the fully drained body. Non-2xx statuses are data, not errors.
func (c *Client) Do(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	httpReq, err := buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, domain.ErrIO(fmt.Sprintf("%s %s: %v", req.Method, req.URL, err)).WithCause(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, domain.ErrIO(fmt.Sprintf("read body from %s: %v", req.URL, err)).WithCause(err)
	}

	c.logger.Debug("exchange completed",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", httpResp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	resp := &domain.Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
	}
	for key, values := range httpResp.Header {
		for _, v := range values {
			resp.Headers.Add(key, v)
		}
	}

	return resp, nil
}

func buildHTTPRequest(ctx context.Context, req *domain.Request) (*http.Request, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL.String(), body)
	if err != nil {
		return nil, domain.ErrInvalidInput(fmt.Sprintf("build request for %s: %v", req.URL, err)).WithCause(err)
	}

	req.Headers.Each(func(key string, values []string) {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	})
	for _, c := range req.Cookies {
		httpReq.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	return httpReq, nil
}
