package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/resthook/internal/plugin"
	"github.com/tjfontaine/resthook/internal/transport"
	"github.com/tjfontaine/resthook/pkg/domain"
)

// injectStripHook stamps a header before send and strips it from the
// response after receive, so the header exists only while in flight.
type injectStripHook struct {
	header string
	value  string
}

func (h *injectStripHook) Name() string { return "inject-strip" }

func (h *injectStripHook) OnLoad() error { return nil }

func (h *injectStripHook) OnUnload() error { return nil }

func (h *injectStripHook) PreSend(req *domain.Request) error {
	req.Headers.Set(h.header, h.value)
	return nil
}

func (h *injectStripHook) PostReceive(resp *domain.Response) error {
	resp.Headers.Del(h.header)

	// The echo server reflects request headers into the body; scrub the
	// stamp there too so the caller never observes it at all.
	var echoed map[string]string
	if err := json.Unmarshal(resp.Body, &echoed); err != nil {
		return nil
	}
	delete(echoed, domain.CanonicalKey(h.header))
	body, err := json.Marshal(echoed)
	if err != nil {
		return err
	}
	resp.Body = body
	return nil
}

// newEchoServer returns a server that reports the inbound request headers:
// echoed back as a JSON body and mirrored into the response headers.
func newEchoServer(t *testing.T, captured *http.Header) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/echo", func(w http.ResponseWriter, req *http.Request) {
		*captured = req.Header.Clone()
		for key, values := range req.Header {
			if strings.HasPrefix(key, "X-") {
				for _, v := range values {
					w.Header().Add(key, v)
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		headers := make(map[string]string, len(req.Header))
		for key := range req.Header {
			headers[key] = req.Header.Get(key)
		}
		if err := json.NewEncoder(w).Encode(headers); err != nil {
			t.Errorf("encode echo body: %v", err)
		}
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestPipeline_InjectStripRoundTrip(t *testing.T) {
	var captured http.Header
	srv := newEchoServer(t, &captured)

	m := plugin.NewManager(quietLogger())
	if err := m.Register(&injectStripHook{header: "X-Resthook-Stamp", value: "in-flight"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	defer m.Close()

	tr := transport.New(5*time.Second, quietLogger())
	c := NewClient(tr, m, WithLogger(quietLogger()))

	req, err := domain.NewRequest(srv.URL + "/echo")
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	resp, err := c.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	// The server observed the injected header while the request was in
	// flight.
	if got := captured.Get("X-Resthook-Stamp"); got != "in-flight" {
		t.Errorf("server saw X-Resthook-Stamp = %q, want %q", got, "in-flight")
	}

	// The caller never sees it: post_receive stripped both the echoed
	// response header and the copy reflected into the body.
	if resp.Headers.Has("X-Resthook-Stamp") {
		t.Error("response still carries the stamped header after post_receive")
	}

	var echoed map[string]string
	if err := json.Unmarshal(resp.Body, &echoed); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := echoed["X-Resthook-Stamp"]; ok {
		t.Errorf("echo body still contains the stamp after post_receive: %v", echoed)
	}
	if _, ok := echoed["User-Agent"]; !ok {
		t.Errorf("echo body lost unrelated headers: %v", echoed)
	}
}

func TestPipeline_CookiesReachServer(t *testing.T) {
	var captured http.Header
	srv := newEchoServer(t, &captured)

	tr := transport.New(5*time.Second, quietLogger())
	c := NewClient(tr, nil, WithLogger(quietLogger()))

	req, err := domain.NewRequest(srv.URL + "/echo")
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.AddCookie("session", "abc123")

	if _, err := c.Send(context.Background(), req); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got := captured.Get("Cookie"); !strings.Contains(got, "session=abc123") {
		t.Errorf("Cookie header = %q", got)
	}
}
