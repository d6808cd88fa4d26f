package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/tjfontaine/resthook/internal/history"
	"github.com/tjfontaine/resthook/internal/plugin"
	"github.com/tjfontaine/resthook/pkg/domain"
)

// mockTransport captures the request it receives and returns a configured
// response or error.
type mockTransport struct {
	seen *domain.Request
	resp *domain.Response
	err  error
}

func (t *mockTransport) Do(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	t.seen = req
	if t.err != nil {
		return nil, t.err
	}
	if t.resp != nil {
		return t.resp, nil
	}
	return &domain.Response{StatusCode: 200}, nil
}

// stampHook injects a header before send and strips it from nothing in
// particular on receive; used to observe hook/transport ordering.
type stampHook struct {
	trace *[]string
}

func (h *stampHook) Name() string { return "stamp" }

func (h *stampHook) OnLoad() error { return nil }

func (h *stampHook) OnUnload() error { return nil }

func (h *stampHook) PreSend(req *domain.Request) error {
	*h.trace = append(*h.trace, "pre_send")
	req.Headers.Set("X-Stamp", "present")
	return nil
}

func (h *stampHook) PostReceive(resp *domain.Response) error {
	*h.trace = append(*h.trace, "post_receive")
	resp.Headers.Del("X-Stamp")
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newManagerWith(t *testing.T, hooks ...*stampHook) *plugin.Manager {
	t.Helper()
	m := plugin.NewManager(quietLogger())
	for _, h := range hooks {
		if err := m.Register(h); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	return m
}

func TestClient_Send_HooksWrapTransport(t *testing.T) {
	var trace []string
	mt := &mockTransport{}
	m := newManagerWith(t, &stampHook{trace: &trace})
	c := NewClient(mt, m, WithLogger(quietLogger()))

	req, _ := domain.NewRequest("http://example.com")
	resp, err := c.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp == nil {
		t.Fatal("expected response")
	}

	if strings.Join(trace, ",") != "pre_send,post_receive" {
		t.Errorf("trace = %v", trace)
	}

	// The transport observed the request after the pre-send mutation.
	if mt.seen == nil || mt.seen.Headers.Get("X-Stamp") != "present" {
		t.Error("transport did not see the injected header")
	}
}

func TestClient_Send_TransportFailureSkipsPostReceive(t *testing.T) {
	var trace []string
	mt := &mockTransport{err: domain.ErrIO("connection refused")}
	m := newManagerWith(t, &stampHook{trace: &trace})
	c := NewClient(mt, m, WithLogger(quietLogger()))

	req, _ := domain.NewRequest("http://example.com")
	resp, err := c.Send(context.Background(), req)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if resp != nil {
		t.Error("expected nil response on failure")
	}
	if domain.KindOf(err) != domain.KindIOFailure {
		t.Errorf("kind = %q, want %q", domain.KindOf(err), domain.KindIOFailure)
	}

	if strings.Join(trace, ",") != "pre_send" {
		t.Errorf("trace = %v, want pre_send only", trace)
	}
}

func TestClient_Send_NilRequest(t *testing.T) {
	c := NewClient(&mockTransport{}, nil, WithLogger(quietLogger()))

	_, err := c.Send(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.KindOf(err) != domain.KindInvalidInput {
		t.Errorf("kind = %q, want %q", domain.KindOf(err), domain.KindInvalidInput)
	}
}

func TestClient_Send_NoManager(t *testing.T) {
	mt := &mockTransport{resp: &domain.Response{StatusCode: 204}}
	c := NewClient(mt, nil, WithLogger(quietLogger()))

	req, _ := domain.NewRequest("http://example.com")
	resp, err := c.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 204 {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

// recordingStore is a history.Store that remembers what it saved.
type recordingStore struct {
	saved []*history.Exchange
	fail  bool
}

func (s *recordingStore) SaveExchange(ctx context.Context, ex *history.Exchange) error {
	if s.fail {
		return errors.New("disk full")
	}
	s.saved = append(s.saved, ex)
	return nil
}

func (s *recordingStore) RecentExchanges(ctx context.Context, limit int) ([]*history.Exchange, error) {
	return s.saved, nil
}

func (s *recordingStore) Close() error { return nil }

func TestClient_Send_RecordsHistory(t *testing.T) {
	store := &recordingStore{}
	mt := &mockTransport{resp: &domain.Response{StatusCode: 200, Body: []byte("abc")}}
	c := NewClient(mt, nil, WithLogger(quietLogger()), WithHistory(store))

	req, _ := domain.NewRequest("http://example.com/recorded")
	if _, err := c.Send(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved = %d exchanges, want 1", len(store.saved))
	}
	ex := store.saved[0]
	if ex.URL != "http://example.com/recorded" || ex.StatusCode != 200 || ex.BodyBytes != 3 {
		t.Errorf("exchange = %+v", ex)
	}
}

func TestClient_Send_HistoryFailureDoesNotFailSend(t *testing.T) {
	store := &recordingStore{fail: true}
	c := NewClient(&mockTransport{}, nil, WithLogger(quietLogger()), WithHistory(store))

	req, _ := domain.NewRequest("http://example.com")
	if _, err := c.Send(context.Background(), req); err != nil {
		t.Fatalf("send failed because recording failed: %v", err)
	}
}
