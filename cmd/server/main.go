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

	router "github.com/dangmn/chatline/internal/adapters/http"
	wsignal "github.com/dangmn/chatline/internal/adapters/signal"
	"github.com/dangmn/chatline/internal/auth"
	"github.com/dangmn/chatline/internal/config"
	"github.com/dangmn/chatline/internal/core"
	"github.com/dangmn/chatline/internal/store"
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

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open store")
	}
	defer db.Close()

	tokens := auth.NewTokenService(cfg.Secret, cfg.TokenTTL)
	registry := core.NewRegistry()
	resolver := core.NewResolver(db, db)
	fanout := core.NewFanout(registry, resolver)

	ws := &wsignal.ChatWSController{
		Registry:     registry,
		Fanout:       fanout,
		Tokens:       tokens,
		Participants: db,
		Messages:     db,
		Users:        db,
		ReadLimit:    cfg.ReadLimit,
		PingPeriod:   cfg.PingPeriod,
	}
	api := &router.API{
		Store:    db,
		Tokens:   tokens,
		Registry: registry,
		Resolver: resolver,
	}

	r := router.SetupRouter(ctx, cfg, api, ws)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Chatline server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
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
