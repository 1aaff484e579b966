package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/gamegate/internal/adapters/http"
	"github.com/dkeye/gamegate/internal/app"
	"github.com/dkeye/gamegate/internal/config"
	"github.com/dkeye/gamegate/internal/engine"
	"github.com/dkeye/gamegate/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	if err := logging.Setup(cfg.Log, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}

	models := make([]engine.Model, 0, len(cfg.Games))
	for _, g := range cfg.Games {
		models = append(models, engine.Model{Name: g.Name, Options: g.Options})
	}
	lobby := engine.NewLobby(models, cfg.WakeWorkers)

	orch := app.NewOrchestrator(lobby)
	prober := &app.Prober{Registry: orch.Registry, Period: cfg.WS.PingPeriod}

	r := router.SetupRouter(ctx, cfg, orch)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("game gateway started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return prober.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}
