package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/glabrego/feedview-cli/internal/app"
	"github.com/glabrego/feedview-cli/internal/config"
	"github.com/glabrego/feedview-cli/internal/logging"
	"github.com/glabrego/feedview-cli/internal/metrics"
	"github.com/glabrego/feedview-cli/internal/session"
	"github.com/glabrego/feedview-cli/internal/social"
	"github.com/glabrego/feedview-cli/internal/storage"
	"github.com/glabrego/feedview-cli/internal/tui"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, logFile, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logging error: %v", err)
	}
	defer logFile.Close()

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := repo.Init(ctx); err != nil {
		log.Fatalf("storage schema error: %v", err)
	}
	if err := repo.CheckWritable(ctx); err != nil {
		log.Fatalf("storage write check failed (%v). Verify FEEDVIEW_DB_PATH is writable: %s", err, cfg.DBPath)
	}

	var snapshots app.SnapshotStore = repo
	if cfg.SnapshotStore == config.SnapshotStoreRedis {
		store := storage.NewRedisSnapshotStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), 0)
		if err := store.Ping(ctx); err != nil {
			log.Fatalf("redis snapshot store unreachable at %s: %v", cfg.RedisAddr, err)
		}
		defer store.Close()
		snapshots = store
	}

	client := social.NewClient(cfg.APIBaseURL, cfg.Token, nil)
	service := app.NewService(client, snapshots, repo)

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.MetricsAddr, m, logger)
		srv.Start()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	restoreStart := time.Now()
	feed, found, err := service.LoadSnapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not restore timeline (%v), starting empty\n", err)
		logger.Warn().Err(err).Msg("snapshot restore failed")
	}
	sess := session.New(nil, nil, logger, m)
	if found {
		if err := sess.Restore(feed); err != nil {
			logger.Warn().Err(err).Msg("snapshot restore rejected")
		} else {
			logger.Info().Int("posts", feed.Len()).Dur("elapsed", time.Since(restoreStart)).Msg("timeline restored")
		}
	}
	model := tui.NewModel(service, sess, logger)

	prefCtx, prefCancel := context.WithTimeout(context.Background(), 5*time.Second)
	prefs, err := service.LoadUIPreferences(prefCtx)
	prefCancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load UI preferences (%v), using defaults\n", err)
	} else {
		model.ApplyPreferences(prefs)
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := program.Run()

	persistSnapshot(service, sess, logger)
	if runErr != nil {
		log.Fatalf("tui error: %v", runErr)
	}
}

// persistSnapshot saves the feed on the way out so the next start can
// restore it. Failures are logged only.
func persistSnapshot(service *app.Service, sess *session.Session, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap := sess.Snapshot()
	if err := service.SaveSnapshot(ctx, snap); err != nil {
		logger.Error().Err(err).Msg("could not persist timeline")
		fmt.Fprintf(os.Stderr, "warning: could not save timeline: %v\n", err)
		return
	}
	logger.Info().Int("posts", snap.Len()).Msg("timeline persisted")
}
