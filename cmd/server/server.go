package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	julia "github.com/marben/juliaset"
)

type config struct {
	addr          string
	threads       int
	width, height int
	iters         int64
	view          string
	verbose       bool
}

// main is the entry point of the render server.
// The server owns one engine; clients reconfigure it over http and watch its events over a websocket.
func main() {
	var cfg config
	flag.StringVar(&cfg.addr, "addr", ":8080", "listen address")
	flag.IntVar(&cfg.threads, "threads", runtime.GOMAXPROCS(0), "engine worker count")
	flag.IntVar(&cfg.width, "width", 1920, "grid width")
	flag.IntVar(&cfg.height, "height", 1080, "grid height")
	flag.Int64Var(&cfg.iters, "iters", 500, "iteration cap per point")
	flag.StringVar(&cfg.view, "view", "rabbit", "preset rendered at startup")
	flag.BoolVar(&cfg.verbose, "v", false, "log engine internals")
	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run(cfg config) error {
	if cfg.verbose {
		julia.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	s, err := newSession(cfg)
	if err != nil {
		return fmt.Errorf("newSession: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpServer := webServer(cfg.addr, s)
	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.ListenAndServe()
	}()

	// render the startup preset so the first watchers have something to see
	if _, err := s.render(s.current()); err != nil {
		return fmt.Errorf("initial render: %w", err)
	}

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	s.stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpServer.Shutdown: %w", err)
	}
	return nil
}
