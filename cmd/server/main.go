package main

import (
	"context"
	"fmt"
	"net/http"
	"teammate-tracker/internal/config"
	"teammate-tracker/internal/constants"
	fxmodules "teammate-tracker/internal/fx"
	"teammate-tracker/internal/logger"
	"teammate-tracker/internal/middleware"
	"teammate-tracker/internal/server"
	"teammate-tracker/internal/service"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
		fx.Invoke(runIngestPoller),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	trackerServer *server.TrackerServer,
	cfg *config.Config,
	db *sqlx.DB,
	log zerolog.Logger,
) {
	log = logger.WithLevel(log, cfg.LogLevel)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/history", trackerServer.History)
	mux.HandleFunc("POST /api/ingest", trackerServer.Ingest)
	mux.HandleFunc("GET /healthz", trackerServer.Health)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	requestIDMiddleware := middleware.RequestID(log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: requestIDMiddleware(c.Handler(mux)),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

// runIngestPoller schedules periodic ingestion runs. An interval of zero
// leaves scheduling entirely to the /api/ingest trigger.
func runIngestPoller(
	lc fx.Lifecycle,
	ingestSvc *service.IngestService,
	cfg *config.Config,
	log zerolog.Logger,
) {
	if cfg.IngestInterval <= 0 {
		log.Info().Msg("ingestion poller disabled")
		return
	}

	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ticker := time.NewTicker(cfg.IngestInterval)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
						if err := ingestSvc.Ingest(runCtx); err != nil {
							log.Error().Err(err).Msg("scheduled ingestion run failed")
						}
						cancel()
					}
				}
			}()
			log.Info().Dur("interval", cfg.IngestInterval).Msg("ingestion poller started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})
}
