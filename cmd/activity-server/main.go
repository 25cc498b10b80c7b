// cmd/activity-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"activity-signup/internal/api"
	"activity-signup/internal/common/aws"
	"activity-signup/internal/common/config"
	"activity-signup/internal/common/database"
	commonhttp "activity-signup/internal/common/http"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/observability"
	"activity-signup/internal/directory"
	"activity-signup/internal/notify"
	"activity-signup/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func loadDirectory(cfg *config.Config, zapLog *zap.Logger) (*directory.Directory, error) {
	if cfg.Directory.SeedFile == "" {
		zapLog.Info("Using built-in activity catalog")
		return directory.NewDefault(), nil
	}

	catalog, err := registry.LoadCatalog(cfg.Directory.SeedFile)
	if err != nil {
		return nil, err
	}
	zapLog.Info("Loaded activity catalog",
		zap.String("file", cfg.Directory.SeedFile),
		zap.String("version", catalog.Version),
		zap.Int("activities", len(catalog.Entries)),
	)
	return directory.New(catalog.Activities())
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console", "stderr")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting activity server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("envFile", cfg.EnvFile),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir, err := loadDirectory(cfg, zapLog)
	if err != nil {
		zapLog.Fatal("activity catalog failed", zap.Error(err))
	}

	obs := observability.NewNop()
	if cfg.Metrics.Enabled {
		obs = observability.New(cfg.App.Name, log)
	}
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			zapLog.Warn("observability shutdown failed", zap.Error(err))
		}
	}()

	readiness := map[string]api.ReadinessCheck{}
	var channels []notify.Channel

	// --- Redis roster feed ---
	if cfg.Notifications.Redis.Enabled {
		redis := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully", zap.String("channel", cfg.Notifications.Redis.Channel))

		readiness["redis"] = redis.Ping
		channels = append(channels, notify.NewRedisPublisher(redis.Client, cfg.Notifications.Redis.Channel))
	}

	// --- SES confirmation email ---
	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.Email.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		channels = append(channels, notify.NewEmailNotifier(sesClient, cfg.Notifications.Email.FromEmail))
	}

	dispatcher := notify.NewDispatcher(config.GetDuration(cfg.Notifications.Timeout), log, channels...)
	zapLog.Info("Notification channels configured", zap.Strings("channels", dispatcher.Channels()))

	handler := api.NewHandler(api.Options{
		Roster:     dir,
		Dispatcher: dispatcher,
		Logger:     log,
		IndexPath:  cfg.Server.IndexPath,
		StaticDir:  cfg.Server.StaticDir,
		Readiness:  readiness,
	})

	router := api.NewRouter(handler, api.NewMiddleware(log, obs), func(mux *http.ServeMux) {
		if cfg.Metrics.Enabled {
			mux.Handle("GET "+cfg.Metrics.Path, promhttp.Handler())
		}
	})

	srv := commonhttp.NewServer(cfg.Server, router)
	runErr := commonhttp.Run(ctx, srv, config.GetDuration(cfg.Server.ShutdownTimeout), log)

	// Handlers are done once Run returns; flush roster events they queued.
	dispatcher.Wait()

	if runErr != nil {
		zapLog.Error("server stopped with error", zap.Error(runErr))
		return
	}
	zapLog.Info("Activity server stopped")
}
