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
	"github.com/sourcegraph/conc"

	router "github.com/dkeye/Callboard/internal/adapters/http"
	"github.com/dkeye/Callboard/internal/adapters/rtc"
	"github.com/dkeye/Callboard/internal/app"
	"github.com/dkeye/Callboard/internal/app/orch"
	"github.com/dkeye/Callboard/internal/config"
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
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Err(err).Str("level", cfg.Log.Level).Msg("unknown log level, keeping info")
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	reg := app.NewRegistry()
	o := orch.New(reg, app.SimplePolicy{}, cfg.Call.RingTimeout)
	ice := rtc.NewICEProvider(cfg.ICE)

	r := router.SetupRouter(ctx, cfg, o, ice)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		log.Info().Str("addr", addr).Msg("Callboard server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	})

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	wg.Wait()
	log.Info().Int("participants", reg.Len()).Msg("Server exited gracefully")
}
