// Package app wires configuration, storage and the HTTP server together
// and runs the three process modes: serve, migrate and worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ikrrevents/eventsite/internal/config"
	"github.com/ikrrevents/eventsite/internal/database"
	"github.com/ikrrevents/eventsite/internal/handler"
	"github.com/ikrrevents/eventsite/internal/middleware"
	"github.com/ikrrevents/eventsite/internal/notify"
	"github.com/ikrrevents/eventsite/internal/oauth"
	"github.com/ikrrevents/eventsite/internal/queue"
	"github.com/ikrrevents/eventsite/internal/repository"
	"github.com/ikrrevents/eventsite/internal/router"
	"github.com/ikrrevents/eventsite/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators of the HTTP server.  A nil Redis disables
// rate limiting and response caching; a nil Notifier or Events disables
// that follow-up.  DB and Provider are required.
type Deps struct {
	DB        *sqlx.DB
	Redis     *redis.Client
	Notifier  handler.NotificationSender
	Events    handler.EventPublisher
	Provider  oauth.Provider
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// NewServer builds the Echo instance with every route registered.
func NewServer(cfg config.Config, log *slog.Logger, d Deps) *echo.Echo {
	if log == nil {
		log = slog.Default()
	}
	users := repository.NewUserRepo(d.DB)
	tokens := repository.NewTokenRepo(d.DB)
	bookings := repository.NewBookingRepo(d.DB)
	queries := repository.NewQueryRepo(d.DB)
	gallery := repository.NewGalleryRepo(d.DB)
	about := repository.NewAboutRepo(d.DB)

	// Both pass through when Redis is nil.
	cache := middleware.NewResponseCache(d.Cache, d.Redis, log)
	limiter := middleware.NewTokenBucket(d.RateLimit, d.Redis)

	effects := &handler.SideEffects{Notifier: d.Notifier, Events: d.Events, Log: log}
	bh := handler.NewBookingHandler(bookings, users, effects, log)
	qh := handler.NewQueryHandler(queries, effects, log)
	gh := handler.NewGalleryHandler(gallery, cache, log)
	ah := handler.NewAboutHandler(about, cache, log)
	auth := handler.NewAuthHandler(cfg, users, tokens, d.Provider, log)

	e := router.NewEcho(cfg, log)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterPublic(e, gh, ah, cache.Middleware())
	router.RegisterCustomer(e, bh, qh, cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, bh, qh, gh, ah, cfg.JWTSecret)
	return e
}

// NewNotifier returns the email sender for cfg.  Without a provider key
// the sender still exists and reports notify.ErrNotConfigured on every
// send.
func NewNotifier(cfg config.Config, log *slog.Logger) *notify.Notifier {
	var mailer notify.Mailer
	if m := notify.NewResendMailer(cfg.ResendAPIKey); m != nil {
		mailer = m
	} else {
		log.Warn("email_disabled", "reason", "RESEND_API_KEY not set")
	}
	return notify.New(mailer, notify.Config{
		OperatorEmail: cfg.OperatorEmail,
		From:          cfg.MailFrom,
		CompanyName:   cfg.CompanyName,
		CompanyPhone:  cfg.CompanyPhone,
	}, log)
}

// openDB opens the configured database and applies the schema.
func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := database.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func Serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if err := cfg.RequireServe(); err != nil {
		return err
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Warn("edge_protection_disabled", "reason", "redis unavailable")
	}

	publisher := service.NewPublisher(cfg.RabbitMQURL, log)
	if !publisher.Enabled() {
		log.Info("submission_events_disabled", "reason", "RABBITMQ_URL not set")
	}

	e := NewServer(cfg, log, Deps{
		DB:        db,
		Redis:     rdb,
		Notifier:  NewNotifier(cfg, log),
		Events:    publisher,
		Provider:  oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL),
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "db", cfg.DBDriver)
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

	log.Info("shutting_down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// Migrate applies the schema and exits.
func Migrate(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("schema_applied", "driver", cfg.DBDriver)
	return nil
}

// Work consumes submission events into the submissions log until ctx is
// cancelled.
func Work(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	c := &queue.Consumer{URL: cfg.RabbitMQURL, LogDir: cfg.LogDir, Log: log}
	err := c.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
