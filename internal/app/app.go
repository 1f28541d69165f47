package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"minichat/internal/cleanup"
	"minichat/pkg/config"
	"minichat/pkg/media"
	"minichat/pkg/state"
	"minichat/pkg/store"
	"minichat/pkg/telemetry"
	"minichat/pkg/validation"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	st store.Log
	ms *media.Store

	srv *http.Server
}

// New initializes resources that do not require a running context (data
// dirs, message log, media store, validation limits). It does not start
// the HTTP server; call Run to start it and block until shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	// runtime folder layout
	if err := state.Init(eff.DataDir); err != nil {
		return nil, fmt.Errorf("failed to prepare data dir %s: %w", eff.DataDir, err)
	}

	// message limits
	validation.SetRules(validation.Rules{
		MaxContentLen: eff.Config.Validation.MaxContentLen,
		MaxSenderLen:  eff.Config.Validation.MaxSenderLen,
	})

	// telemetry tunables
	if eff.Config.Telemetry.SampleRate > 0 {
		telemetry.SetSampleRate(eff.Config.Telemetry.SampleRate)
	}
	if d := eff.Config.Telemetry.SlowRequests.Duration(); d > 0 {
		telemetry.SetSlowThreshold(d)
	}

	// open message log
	st, err := store.Open(eff.Config.Storage.Backend, state.PathsVar.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open message log under %s: %w", state.PathsVar.Store, err)
	}

	// media store
	upDir := eff.Config.Uploads.Dir
	if upDir == "" {
		upDir = state.PathsVar.Uploads
	}
	ms, err := media.New(upDir, eff.Config.Uploads.PublicBaseURL, eff.Config.Uploads.MaxBytes.Int64(), eff.Config.Uploads.AllowedTypes)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to prepare uploads dir %s: %w", upDir, err)
	}

	return &App{eff: eff, version: version, commit: commit, buildDate: buildDate, st: st, ms: ms}, nil
}

// Run starts the upload sweeper (if enabled) and the HTTP server, and
// blocks until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	a.printBanner()

	stopCleanup, err := cleanup.Start(ctx, a.eff, a.st, a.ms)
	if err != nil {
		_ = a.st.Close()
		return err
	}
	defer stopCleanup()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		a.shutdown()
		return err
	}
}

func (a *App) shutdown() {
	if a.srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.srv.Shutdown(sctx)
		cancel()
	}
	_ = a.st.Close()
}
