// Command resthook sends a single HTTP request through the plugin hook
// pipeline and prints the response body. It stands in for the graphical
// front end: create request, send, read body, load plugins, unload on exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tjfontaine/resthook/internal/config"
	"github.com/tjfontaine/resthook/internal/history"
	historysqlite "github.com/tjfontaine/resthook/internal/history/sqlite"
	"github.com/tjfontaine/resthook/internal/pipeline"
	"github.com/tjfontaine/resthook/internal/plugin"
	"github.com/tjfontaine/resthook/internal/telemetry"
	"github.com/tjfontaine/resthook/internal/transport"
	"github.com/tjfontaine/resthook/pkg/domain"
)

// headerFlags collects repeated -header flags as "Key: Value" pairs.
type headerFlags []string

func (h *headerFlags) String() string { return strings.Join(*h, ", ") }

func (h *headerFlags) Set(value string) error {
	*h = append(*h, value)
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to the configuration file")
		method     = flag.String("method", "GET", "HTTP method")
		data       = flag.String("data", "", "request body")
		headers    headerFlags
	)
	flag.Var(&headers, "header", "request header as 'Key: Value' (repeatable)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <url>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger, *method, *data, headers, flag.Arg(0)); err != nil {
		logger.Error("request failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, method, data string, headers headerFlags, rawURL string) error {
	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init("resthook", logger)
		if err != nil {
			return fmt.Errorf("initialize telemetry: %w", err)
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				logger.Error("telemetry shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	manager := plugin.NewManager(logger)
	defer manager.Close()

	for _, path := range cfg.Plugins.Paths {
		if err := manager.LoadPlugin(path); err != nil {
			// A bad plugin is reported but does not block the request,
			// matching how the GUI surfaces load failures in a dialog and
			// carries on.
			logger.Error("plugin load failed",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}

	timeout, err := cfg.TransportTimeout()
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.History.Enabled {
		store, err := newHistoryStore(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()
		opts = append(opts, pipeline.WithHistory(store))
	}

	client := pipeline.NewClient(transport.New(timeout, logger), manager, opts...)

	req, err := domain.NewRequest(rawURL)
	if err != nil {
		return err
	}
	req.Method = strings.ToUpper(method)
	if data != "" {
		req.SetBody([]byte(data))
	}
	for _, h := range headers {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			return domain.ErrInvalidInput(fmt.Sprintf("malformed header %q", h))
		}
		req.Headers.Add(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	resp, err := client.Send(ctx, req)
	if err != nil {
		return err
	}

	logger.Info("response received",
		slog.Int("status", resp.StatusCode),
		slog.Int("body_bytes", resp.BodyLength()),
	)

	_, err = os.Stdout.Write(resp.Body)
	return err
}

func newHistoryStore(path string) (history.Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history.path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return historysqlite.New(path)
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
