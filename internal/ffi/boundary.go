// Package ffi exposes the client core through a flat, handle-based boundary
// surface shaped like a C ABI: opaque tokens, caller-sized copy-out buffers,
// and a last-error channel instead of rich error values.
//
// Every entry point is wrapped in a panic guard; no failure ever unwinds
// into the caller. Fallible operations signal failure through their own
// return channel (zero handle or negative count) and always leave a pending
// record in the error channel.
package ffi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tjfontaine/resthook/internal/plugin"
	"github.com/tjfontaine/resthook/pkg/domain"
	"github.com/tjfontaine/resthook/pkg/ports"
)

// Boundary owns every object reachable through handles plus the last-error
// slot. It is the explicit stand-in for thread-local state: each calling
// goroutine owns its own Boundary and observes only its own errors.
type Boundary struct {
	transport ports.Transport
	logger    *slog.Logger

	requests  arena[*domain.Request]
	responses arena[*domain.Response]
	managers  arena[*plugin.Manager]

	lastErr *domain.BoundaryError
}

// NewBoundary creates a boundary backed by the given transport.
func NewBoundary(transport ports.Transport, logger *slog.Logger) *Boundary {
	if logger == nil {
		logger = slog.Default()
	}
	return &Boundary{transport: transport, logger: logger}
}

// setLastError records err in the error channel, overwriting any unread
// record. Last write wins; there is no queue.
func (b *Boundary) setLastError(err error, fallback domain.ErrorKind) {
	b.lastErr = domain.AsBoundary(err, fallback)
}

// contain is deferred by every entry point. It converts an escaping panic
// into an InternalPanic error-channel entry and invokes onPanic so the entry
// point can force its failure return value.
func (b *Boundary) contain(op string, onPanic func()) {
	if r := recover(); r != nil {
		b.lastErr = domain.ErrInternalPanic(fmt.Sprintf("%s: %v", op, r))
		b.logger.Error("panic contained at boundary",
			slog.String("op", op),
			slog.Any("panic", r),
		)
		if onPanic != nil {
			onPanic()
		}
	}
}

// RequestCreate builds a request for rawURL. Returns the zero Handle and
// sets the error channel if the URL is malformed.
func (b *Boundary) RequestCreate(rawURL string) (h Handle) {
	defer b.contain("request_create", func() { h = 0 })

	req, err := domain.NewRequest(rawURL)
	if err != nil {
		b.setLastError(err, domain.KindInvalidInput)
		return 0
	}
	return b.requests.create(req)
}

// RequestDestroy frees the request behind h. A zero or stale handle is a
// no-op; a live handle is freed exactly once.
func (b *Boundary) RequestDestroy(h Handle) {
	defer b.contain("request_destroy", nil)
	b.requests.destroy(h)
}

// RequestSend consumes the request handle, performs the transport exchange,
// and returns a handle to the response. On failure the request handle is
// still consumed and the zero Handle is returned with a pending error.
//
// Hooks are not fired here; callers drive them explicitly through
// PluginManagerPreSend and PluginManagerPostReceive around this call.
func (b *Boundary) RequestSend(h Handle) (out Handle) {
	defer b.contain("request_send", func() { out = 0 })

	req, ok := b.requests.destroy(h)
	if !ok {
		b.setLastError(domain.ErrInvalidInput("invalid request handle"), domain.KindInvalidInput)
		return 0
	}

	resp, err := b.transport.Do(context.Background(), req)
	if err != nil {
		b.setLastError(err, domain.KindIOFailure)
		return 0
	}
	return b.responses.create(resp)
}

// ResponseBodyLength returns the byte length of the response body. An
// invalid handle yields 0 with a pending error; the count is unsigned in
// spirit and never goes negative, so 0 covers both "empty body" and "no such
// response" and the error channel disambiguates.
func (b *Boundary) ResponseBodyLength(h Handle) (n int) {
	defer b.contain("response_body_length", func() { n = 0 })

	resp, ok := b.responses.get(h)
	if !ok {
		b.setLastError(domain.ErrInvalidInput("invalid response handle"), domain.KindInvalidInput)
		return 0
	}
	return resp.BodyLength()
}

// ResponseBody copies the response body into buf and returns the number of
// bytes written. A buffer shorter than the body yields -1 and a pending
// BufferTooSmall error; nothing is written beyond the caller's bound and
// there is never a silent truncation.
func (b *Boundary) ResponseBody(h Handle, buf []byte) (n int) {
	defer b.contain("response_body", func() { n = -1 })

	resp, ok := b.responses.get(h)
	if !ok {
		b.setLastError(domain.ErrInvalidInput("invalid response handle"), domain.KindInvalidInput)
		return -1
	}

	n, err := resp.CopyBody(buf)
	if err != nil {
		b.setLastError(err, domain.KindBufferTooSmall)
		return -1
	}
	return n
}

// ResponseDestroy frees the response behind h; no-op on zero or stale
// handles.
func (b *Boundary) ResponseDestroy(h Handle) {
	defer b.contain("response_destroy", nil)
	b.responses.destroy(h)
}

// PluginManagerNew creates an empty plugin manager and returns its handle.
func (b *Boundary) PluginManagerNew() (h Handle) {
	defer b.contain("plugin_manager_new", func() { h = 0 })
	return b.managers.create(plugin.NewManager(b.logger))
}

// PluginManagerDestroy tears the manager down, performing the implicit
// unload if Unload was never called explicitly.
func (b *Boundary) PluginManagerDestroy(h Handle) {
	defer b.contain("plugin_manager_destroy", nil)

	if m, ok := b.managers.destroy(h); ok {
		m.Close()
	}
}

// PluginManagerLoadPlugin loads the shared object at path into the manager.
// Returns 0 on success, -1 with a pending error on failure; a failed load
// retains no partial state.
func (b *Boundary) PluginManagerLoadPlugin(h Handle, path string) (rc int) {
	defer b.contain("plugin_manager_load_plugin", func() { rc = -1 })

	m, ok := b.managers.get(h)
	if !ok {
		b.setLastError(domain.ErrInvalidInput("invalid plugin manager handle"), domain.KindInvalidInput)
		return -1
	}
	if err := m.LoadPlugin(path); err != nil {
		b.setLastError(err, domain.KindPluginLoadFailure)
		return -1
	}
	return 0
}

// PluginManagerPreSend fires every pre-send hook against the request behind
// reqHandle, in registration order.
func (b *Boundary) PluginManagerPreSend(h, reqHandle Handle) {
	defer b.contain("plugin_manager_pre_send", nil)

	m, ok := b.managers.get(h)
	if !ok {
		b.setLastError(domain.ErrInvalidInput("invalid plugin manager handle"), domain.KindInvalidInput)
		return
	}
	req, ok := b.requests.get(reqHandle)
	if !ok {
		b.setLastError(domain.ErrInvalidInput("invalid request handle"), domain.KindInvalidInput)
		return
	}
	m.PreSend(req)
}

// PluginManagerPostReceive fires every post-receive hook against the
// response behind respHandle, in registration order.
func (b *Boundary) PluginManagerPostReceive(h, respHandle Handle) {
	defer b.contain("plugin_manager_post_receive", nil)

	m, ok := b.managers.get(h)
	if !ok {
		b.setLastError(domain.ErrInvalidInput("invalid plugin manager handle"), domain.KindInvalidInput)
		return
	}
	resp, ok := b.responses.get(respHandle)
	if !ok {
		b.setLastError(domain.ErrInvalidInput("invalid response handle"), domain.KindInvalidInput)
		return
	}
	m.PostReceive(resp)
}

// PluginManagerUnload unloads every plugin in the manager; idempotent.
func (b *Boundary) PluginManagerUnload(h Handle) {
	defer b.contain("plugin_manager_unload", nil)

	if m, ok := b.managers.get(h); ok {
		m.Unload()
	}
}

// LastErrorLength returns the byte length of the pending error message
// without consuming it; 0 means no pending error.
func (b *Boundary) LastErrorLength() int {
	if b.lastErr == nil {
		return 0
	}
	return len(b.lastErr.Error())
}

// LastErrorMessage copies the pending error message into buf and clears the
// slot: a destructive read. If buf is shorter than the message it returns -1
// and the message stays pending, so the caller can retry with a bigger
// buffer. Returns 0 when no error is pending.
func (b *Boundary) LastErrorMessage(buf []byte) int {
	if b.lastErr == nil {
		return 0
	}
	msg := b.lastErr.Error()
	if len(buf) < len(msg) {
		return -1
	}
	b.lastErr = nil
	return copy(buf, msg)
}
