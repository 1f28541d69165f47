package cleanup

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/adhocore/gronx"

	"minichat/pkg/config"
	"minichat/pkg/logger"
	"minichat/pkg/media"
	"minichat/pkg/models"
	"minichat/pkg/store"
)

// defaultMinAge protects uploads whose message may still be in flight.
const defaultMinAge = 24 * time.Hour

// Start starts the orphaned-upload sweeper if enabled. Returns a cancel func.
func Start(ctx context.Context, eff config.EffectiveConfigResult, st store.Log, ms *media.Store) (context.CancelFunc, error) {
	cl := eff.Config.Cleanup

	// if cleanup is not enabled, return no-op cancel
	if !cl.Enabled {
		logger.Info("cleanup_disabled")
		return func() {}, nil
	}

	// map empty cron to default daily @03:00
	cronExpr := cl.Cron
	if cronExpr == "" {
		cronExpr = "0 3 * * *"
	}
	// validate cron expression using gronx
	if !gronx.IsValid(cronExpr) {
		logger.Error("cleanup_invalid_cron", "cron", cl.Cron)
		return nil, fmt.Errorf("invalid cleanup cron expression: %s", cl.Cron)
	}

	minAge := cl.MinAge.Duration()
	if minAge <= 0 {
		minAge = defaultMinAge
	}

	logger.Info("cleanup_enabled", "cron", cronExpr, "min_age", minAge.String(), "dry_run", cl.DryRun)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, st, ms, cronExpr, minAge, cl.DryRun)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time.
func runScheduler(ctx context.Context, st store.Log, ms *media.Store, cronExpr string, minAge time.Duration, dryRun bool) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("cleanup_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("cleanup_nexttick_failed", "cron", cronExpr, "error", err)
			// fallback sleep then retry
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("cleanup_scheduler_stopping")
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			wait = time.Second
		}
		select {
		case <-time.After(wait):
			if _, err := RunOnce(st, ms, minAge, dryRun); err != nil {
				logger.Error("cleanup_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("cleanup_scheduler_stopping")
			return
		}
	}
}

// RunOnce sweeps the uploads dir once, keeping every file referenced by a
// stored media message and every file younger than minAge. It returns the
// number of removed (or would-be removed, in dry-run) files.
func RunOnce(st store.Log, ms *media.Store, minAge time.Duration, dryRun bool) (int, error) {
	msgs, err := st.List()
	if err != nil {
		return 0, fmt.Errorf("list messages: %w", err)
	}
	referenced := ReferencedUploads(msgs)
	removed, err := ms.Sweep(referenced, minAge, dryRun)
	if err != nil {
		return 0, err
	}
	logger.Info("cleanup_run_done", "removed", removed, "referenced", len(referenced), "dry_run", dryRun)
	return removed, nil
}

// ReferencedUploads collects the upload file names referenced by media
// messages. Text messages are skipped; their content is free text.
func ReferencedUploads(msgs []models.Message) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range msgs {
		if m.Type != models.TypeImage && m.Type != models.TypeAudio {
			continue
		}
		name := uploadName(m.Content)
		if name != "" {
			out[name] = struct{}{}
		}
	}
	return out
}

// uploadName extracts the stored file name from an upload URL. Returns ""
// when the content does not look like one of our upload URLs.
func uploadName(content string) string {
	u, err := url.Parse(content)
	if err != nil {
		return ""
	}
	dir, name := path.Split(path.Clean(u.Path))
	if path.Base(path.Clean(dir)) != "uploads" {
		return ""
	}
	return name
}
