package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/resthook/internal/history"
	"github.com/tjfontaine/resthook/internal/plugin"
	"github.com/tjfontaine/resthook/pkg/domain"
	"github.com/tjfontaine/resthook/pkg/ports"
)

// Client sends requests through the hook pipeline.
type Client struct {
	transport ports.Transport
	plugins   *plugin.Manager
	logger    *slog.Logger
	store     history.Store
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHistory records every completed send into store, best effort.
func WithHistory(store history.Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

// NewClient creates a pipeline client. The plugin manager may be nil when no
// plugins are in play.
func NewClient(transport ports.Transport, plugins *plugin.Manager, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		plugins:   plugins,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs one full round trip: pre-send hooks, transport, post-receive
// hooks. The request is consumed; the returned response is owned by the
// caller.
func (c *Client) Send(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	if req == nil {
		return nil, domain.ErrInvalidInput("nil request")
	}

	requestID := uuid.New().String()
	c.logger.Info("request started",
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
	)

	if c.plugins != nil {
		c.plugins.PreSend(req)
	}

	start := time.Now()
	resp, err := c.transport.Do(ctx, req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error("request failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		c.record(ctx, requestID, req, nil, duration, err)
		return nil, err
	}

	if c.plugins != nil {
		c.plugins.PostReceive(resp)
	}

	c.logger.Info("request completed",
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)
	c.record(ctx, requestID, req, resp, duration, nil)

	return resp, nil
}

// record persists the exchange without ever failing the request path.
func (c *Client) record(ctx context.Context, requestID string, req *domain.Request, resp *domain.Response, duration time.Duration, sendErr error) {
	if c.store == nil {
		return
	}

	ex := &history.Exchange{
		ID:        "ex_" + uuid.New().String(),
		RequestID: requestID,
		Method:    req.Method,
		URL:       req.URL.String(),
		Duration:  duration,
		CreatedAt: time.Now(),
	}
	if resp != nil {
		ex.StatusCode = resp.StatusCode
		ex.BodyBytes = resp.BodyLength()
	}
	if sendErr != nil {
		ex.Error = sendErr.Error()
	}

	if err := c.store.SaveExchange(ctx, ex); err != nil {
		c.logger.Error("failed to record exchange",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
	}
}
