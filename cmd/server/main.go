package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dnelfhmi/real-time-whiteboard/internal/adapters/http"
	"github.com/dnelfhmi/real-time-whiteboard/internal/config"
	"github.com/dnelfhmi/real-time-whiteboard/internal/core"
	"github.com/dnelfhmi/real-time-whiteboard/internal/discovery"
	"github.com/dnelfhmi/real-time-whiteboard/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	snapshots, err := store.NewFileStore(cfg.BoardDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open board dir")
	}

	// One session per process lifetime, shared by every handler.
	session := core.NewSession(snapshots)

	r := router.SetupRouter(ctx, cfg, session)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	if cfg.MDNS {
		adv, err := discovery.Advertise(cfg.ServiceName, cfg.Port)
		if err != nil {
			log.Warn().Err(err).Msg("mDNS advertisement failed")
		} else {
			defer adv.Shutdown()
		}
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Whiteboard server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
