package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/api"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/backend"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/config"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/names"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/platform/logger"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/store/jsonfile"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/syncer"
)

func main() {
	// Optional data-dir flag override (takes precedence over ACTIVITYX_DATA_DIR)
	dataDir := flag.String("data-dir", "", "Override ACTIVITYX_DATA_DIR")
	flag.Parse()

	log := logger.New("activityx-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
		if err := cfg.ResolveDefaults(); err != nil {
			log.Fatal().Err(err).Msg("Invalid data-dir override")
		}
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("http_port", cfg.HTTPPort).
		Str("data_dir", cfg.DataDir).
		Msg("Activity aggregation service starting…")

	// -------- Cache store ------------------
	st := jsonfile.New(cfg.DataDir, cfg.CacheKey, log)

	// -------- Sync pipeline ----------------
	fetcher := backend.New(cfg.BackendURL, cfg.BackendAPIKey, cfg.FetchPageSize, cfg.RequestTimeout, log)
	resolver := names.New(cfg.NamesWebhookURL, cfg.RequestTimeout, log)
	sync := syncer.New(fetcher, resolver, st, cfg.DrainAfterMerge, log)

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	if cfg.SyncInterval > 0 && cfg.BackendURL != "" {
		go func() {
			if err := sync.RunLoop(loopCtx, cfg.SyncInterval); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("sync loop stopped")
			}
		}()
	}

	// -------- Router & Server --------------
	router := api.NewRouter(st, sync, log)
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	stopLoop()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
