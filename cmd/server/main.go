package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"siteprompt-go-crawler/internal/analyzer"
	"siteprompt-go-crawler/internal/api"
	"siteprompt-go-crawler/internal/config"
	"siteprompt-go-crawler/internal/imagegen"
	"siteprompt-go-crawler/internal/kvstore"
	"siteprompt-go-crawler/internal/ratelimit"
	"siteprompt-go-crawler/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("SITEPROMPT_CONFIG"), "path to YAML config")
	flag.Parse()

	// a missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New().Errorf("load config: %v", err)
		os.Exit(1)
	}
	l := logger.NewWithOptions(logger.Options{Level: cfg.Logging.Level, Structured: cfg.Logging.Structured})

	store, err := kvstore.Open(cfg.Cache)
	if err != nil {
		l.Errorf("open cache: %v", err)
		os.Exit(1)
	}
	if store != nil {
		defer store.Close()
	}

	gen, err := imagegen.New(cfg.Image, l.With("component", "imagegen"))
	switch {
	case errors.Is(err, imagegen.ErrNotConfigured):
		l.Infof("image generation disabled")
	case err != nil:
		l.Errorf("image generator: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(ratelimit.Settings{
			Requests:          cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window.Duration,
			SweepInterval:     cfg.RateLimit.SweepInterval.Duration,
			TrustForwardedFor: cfg.RateLimit.TrustForwardedFor,
		})
		go limiter.Run(ctx)
	}
	if sw, ok := store.(kvstore.Sweeper); ok {
		go sweepCache(ctx, l, sw, cfg.RateLimit.SweepInterval.Duration)
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewServer(api.Deps{
			Analyzer:  analyzer.FromConfig(*cfg, store, l),
			Generator: gen,
			Limiter:   limiter,
			Logger:    l,
		}, api.Options{AnalysisTimeout: cfg.Server.AnalysisTimeout.Duration}),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}

	go func() {
		l.Infof("server listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("server error: %v", err)
			stop()
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	l.Infof("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	l.Infof("bye")
}

// sweepCache drops expired cache entries on the limiter's sweep cadence.
func sweepCache(ctx context.Context, l *logger.Logger, s kvstore.Sweeper, every time.Duration) {
	if every <= 0 {
		every = ratelimit.DefaultSweepInterval
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				l.Warnf("cache sweep: %v", err)
			} else if n > 0 {
				l.Debugf("cache sweep removed %d entries", n)
			}
		}
	}
}
