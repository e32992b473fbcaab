// depthwatch is a minimal example program: it loads a config file, starts a
// Client, and prints the top of book for every tracked symbol until
// interrupted.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	binancefutures "github.com/0xtitan6/binancefutures"
	"github.com/0xtitan6/binancefutures/internal/config"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("BINANCE_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	client, err := binancefutures.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- client.Start(ctx) }()

	go printTopOfBook(ctx, client, cfg, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-done:
		if err != nil {
			logger.Error("client stopped unexpectedly", "error", err)
		}
	}

	cancel()
	client.Stop()
}

func printTopOfBook(ctx context.Context, client *binancefutures.Client, cfg *config.Config, logger *slog.Logger) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range cfg.Symbols {
				if !s.MaintainBook {
					continue
				}
				book, ok := client.Book(s.Symbol)
				if !ok {
					continue
				}
				bids, asks := book.Snapshot()
				if len(bids) == 0 || len(asks) == 0 {
					continue
				}
				logger.Info("top of book",
					"symbol", s.Symbol,
					"bid", bids[0].Price,
					"ask", asks[0].Price,
					"cursor", book.Cursor(),
				)
			}
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
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
