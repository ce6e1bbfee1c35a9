package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trikamdevasi/quizroom/clients/opentdb"
	"github.com/trikamdevasi/quizroom/internal/engine"
	"github.com/trikamdevasi/quizroom/internal/gateway"
	"github.com/trikamdevasi/quizroom/internal/quiz"
	"github.com/trikamdevasi/quizroom/internal/room"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := loadConfig(getEnv("CONFIG_FILE", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Server.Port).
		Str("provider_url", cfg.Provider.BaseURL).
		Msg("starting quiz server")

	clock := clockwork.NewRealClock()

	// Question source and history tracking
	source := opentdb.NewClientWithURL(cfg.Provider.BaseURL)
	source.SetTimeout(cfg.providerTimeout())
	history := quiz.NewHistoryWithClock(source, clock)

	// Room and session coordination
	registry := room.NewRegistry()
	eng := engine.New(registry, history, clock)
	dispatcher := gateway.NewDispatcher(registry, eng, clock)
	gw := gateway.New(gateway.DefaultConnectionConfig(), dispatcher)

	// Context for background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go history.Run(ctx)

	// Setup HTTP server
	mux := http.NewServeMux()
	gw.RegisterRoutes(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"service":"quizroom","rooms":%d}`, registry.Count())
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodHead, http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      c.Handler(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()
	log.Info().Msg("quiz server shutdown complete")
}
