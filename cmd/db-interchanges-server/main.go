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

	"github.com/juliuste/db-interchanges/internal/app"
	"github.com/juliuste/db-interchanges/internal/config"
	"github.com/juliuste/db-interchanges/internal/logger"
	"github.com/juliuste/db-interchanges/server"
)

var (
	envFile = flag.String("env", ".env", "Optional .env file with configuration")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ic, _, err := app.NewInterchanger(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Can't initialize interchanger")
	}
	if cfg.Facility.Token == "" {
		log.Warn().Msg("FASTA_TOKEN is not set, every request must provide " + server.FACILITY_TOKEN_HEADER)
	}

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: server.New(
			ic,
			server.WithCORSOrigins(cfg.HTTP.CORSOrigins),
			server.WithTimeout(cfg.HTTP.Timeout),
			server.WithLogger(log),
		).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTP.Addr).Msg("API server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Server stopped")
}
