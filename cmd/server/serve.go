package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/iliyamo/song-sponsorship/internal/auth"
	"github.com/iliyamo/song-sponsorship/internal/config"
	"github.com/iliyamo/song-sponsorship/internal/database"
	"github.com/iliyamo/song-sponsorship/internal/handler"
	"github.com/iliyamo/song-sponsorship/internal/logger"
	"github.com/iliyamo/song-sponsorship/internal/metrics"
	"github.com/iliyamo/song-sponsorship/internal/notify"
	"github.com/iliyamo/song-sponsorship/internal/queue"
	"github.com/iliyamo/song-sponsorship/internal/repository"
	"github.com/iliyamo/song-sponsorship/internal/router"
	"github.com/iliyamo/song-sponsorship/internal/service"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  serveRun,
	}
}

func serveRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.Env)

	db, err := database.OpenGorm(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := buildServer(ctx, cfg, db, log)
	if err != nil {
		return err
	}

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Str("db", cfg.DBDriver).Msg("listening")
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// buildServer wires stores, services, handlers and middleware.  When the
// queue is enabled the event consumer runs until ctx is cancelled.
func buildServer(ctx context.Context, cfg config.Config, db *gorm.DB, log zerolog.Logger) (*echo.Echo, error) {
	mailCfg, err := config.LoadMailConfig()
	if err != nil {
		return nil, fmt.Errorf("mail config: %w", err)
	}
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		return nil, fmt.Errorf("cache config: %w", err)
	}
	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		return nil, fmt.Errorf("rate limit config: %w", err)
	}
	redisCfg, err := config.LoadRedisConfig()
	if err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	rdb := config.NewRedisClient(redisCfg)
	if redisCfg.Enabled && rdb == nil {
		log.Warn().Str("addr", redisCfg.Address()).Msg("redis unreachable; cache and rate limit disabled")
	}

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	mailer, err := notify.NewMailer(mailCfg, log)
	if err != nil {
		return nil, err
	}
	dispatcher := notify.NewDispatcher(mailer, mailCfg.AdminEmail, mailCfg.Timeout, m, log)

	var events service.EventPublisher
	if cfg.QueueEnabled {
		events = queue.NewPublisher(cfg.RabbitURL, cfg.QueueName, cfg.QueuePublishTimeout, log)
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.QueueName, cfg.EventLogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event consumer stopped")
			}
		}()
	}

	songs := repository.NewSongRepo(db)
	sponsors := repository.NewSponsorRepo(db)
	sponsorships := service.NewSponsorshipService(service.SponsorshipDeps{
		Songs:    songs,
		Sponsors: sponsors,
		Notifier: dispatcher,
		Events:   events,
		Metrics:  m,
		Logger:   log,
	})
	cat := service.NewCatalogService(songs, m, log)

	sessions := auth.NewSessionProvider(cfg.SessionSecret, cfg.SessionTTL)
	cred, err := auth.NewPasswordCredential(cfg.AdminPassword, cfg.AdminPasswordHash, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))
	e.Use(echomw.BodyLimit("12M"))

	limits := router.Limits{Cache: cacheCfg, RateLimit: rlCfg, Redis: rdb, Logger: log}
	router.RegisterRoutes(e, db, reg)
	router.RegisterPublic(e, handler.NewPublicHandler(songs, sponsorships, cfg.MissingSongStatus), limits)
	router.RegisterAuth(e, handler.NewAuthHandler(sessions, cred, !cfg.IsDev()), sessions, limits)
	router.RegisterAdmin(e, handler.NewAdminHandler(songs, sponsors, cat, sponsorships), sessions, limits)
	return e, nil
}
