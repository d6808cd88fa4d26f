// Package testutil provides shared test helpers.
package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// VCROption adjusts how a recorder is set up.
type VCROption func(*vcrConfig)

type vcrConfig struct {
	fixtureDir string
	matcher    cassette.Matcher
}

// WithFixtureDir overrides the directory cassettes are read from. The
// default is testdata/fixtures relative to the calling package.
func WithFixtureDir(dir string) VCROption {
	return func(c *vcrConfig) {
		c.fixtureDir = dir
	}
}

// WithMatcher replaces the default method+URL matcher.
func WithMatcher(m cassette.Matcher) VCROption {
	return func(c *vcrConfig) {
		c.matcher = m
	}
}

// NewVCRRecorder creates a recorder replaying the named cassette. Set
// VCR_MODE=record to re-record against live servers. The recorder is
// stopped automatically when the test finishes.
func NewVCRRecorder(t *testing.T, cassetteName string, opts ...VCROption) *recorder.Recorder {
	t.Helper()

	cfg := vcrConfig{
		fixtureDir: filepath.Join("testdata", "fixtures"),
		matcher: func(r *http.Request, i cassette.Request) bool {
			return r.Method == i.Method && r.URL.String() == i.URL
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	mode := recorder.ModeReplaying
	if os.Getenv("VCR_MODE") == "record" {
		mode = recorder.ModeRecording
	}

	r, err := recorder.NewAsMode(filepath.Join(cfg.fixtureDir, cassetteName), mode, nil)
	if err != nil {
		t.Fatalf("create VCR recorder: %v", err)
	}
	r.SetMatcher(cfg.matcher)

	t.Cleanup(func() {
		if err := r.Stop(); err != nil {
			t.Errorf("stop VCR recorder: %v", err)
		}
	})

	return r
}

// VCRHTTPClient returns an HTTP client whose transport replays through r.
func VCRHTTPClient(r *recorder.Recorder) *http.Client {
	return &http.Client{Transport: r}
}
