// @title           Routine Tracker API
// @version         1.0
// @description     Personal tasks and recurring routines with due notifications.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/routinely/tracker/docs"
	"github.com/routinely/tracker/internal/api"
	"github.com/routinely/tracker/internal/api/handler"
	"github.com/routinely/tracker/internal/core/ports"
	"github.com/routinely/tracker/internal/core/service"
	"github.com/routinely/tracker/internal/infrastructure/config"
	mongodb "github.com/routinely/tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/routinely/tracker/internal/infrastructure/db/redis"
	"github.com/routinely/tracker/internal/infrastructure/db/sqlstore"
	"github.com/routinely/tracker/internal/infrastructure/mail"
	"github.com/routinely/tracker/internal/infrastructure/queue"
	"github.com/routinely/tracker/internal/infrastructure/ratelimit"
	"github.com/routinely/tracker/internal/infrastructure/scheduler"
	"github.com/routinely/tracker/pkg/logger"
)

const (
	seenTTL         = 48 * time.Hour
	purgeInterval   = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Pretty: true})
		l.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "tracker-api",
		Fields:  map[string]string{"env": cfg.Env},
	})
	if cfg.GeneratedSecret() {
		log.Warn().Msg("JWT_SECRET not set, using a random secret; sessions end on restart")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("tracker api stopped")
	}
	log.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clock := service.SystemClock{Location: loc}

	// --- Relational store ---
	store, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:      cfg.Database.Driver,
		DSN:         cfg.Database.DSN,
		FallbackDSN: cfg.Database.FallbackSQLiteDSN,
		Timeout:     cfg.Database.Timeout,
	}, logger.Component("sqlstore"))
	if err != nil {
		return err
	}
	defer store.Close()

	readiness := map[string]handler.PingFunc{"database": store.Ping}
	jobs := scheduler.New(loc, logger.Component("scheduler"))

	// --- Limiter and seen store: Redis when configured, memory otherwise ---
	var (
		limiter ports.LoginLimiter
		seen    ports.SeenStore
	)
	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		limiter = redisdb.NewLoginLimiter(client, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginWindow, clock)
		seen = redisdb.NewSeenStore(client, seenTTL)
		readiness["redis"] = redisdb.Pinger(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	} else {
		memLimiter := ratelimit.NewMemoryLimiter(cfg.Auth.LoginMaxFailures, cfg.Auth.LoginWindow, clock)
		memSeen := ratelimit.NewMemorySeenStore(seenTTL, clock)
		if _, err := jobs.Every("purge-login-failures", purgeInterval, func() { memLimiter.Purge() }); err != nil {
			return err
		}
		if _, err := jobs.Every("purge-seen-notifications", purgeInterval, func() { memSeen.Purge() }); err != nil {
			return err
		}
		limiter, seen = memLimiter, memSeen
	}

	// --- Audit log: MongoDB when configured, relational store otherwise ---
	audit := store.Audit()
	if cfg.Mongo.URI != "" {
		mongoStore, err := mongodb.Open(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}, logger.Component("mongo"))
		if err != nil {
			return err
		}
		defer mongoStore.Close()
		audit = mongoStore.Audit()
		readiness["mongo"] = mongoStore.Ping
	}

	// --- Email delivery ---
	sink, err := mail.New(mail.Config{
		Transport:    cfg.Mail.Transport,
		From:         cfg.Mail.From,
		SMTPHost:     cfg.Mail.SMTPHost,
		SMTPPort:     cfg.Mail.SMTPPort,
		SMTPUsername: cfg.Mail.SMTPUsername,
		SMTPPassword: cfg.Mail.SMTPPassword,
		KafkaBrokers: cfg.Mail.KafkaBrokers,
		KafkaTopic:   cfg.Mail.KafkaTopic,
	}, logger.Component("mail"))
	if err != nil {
		return err
	}
	defer sink.Close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, cfg.Mail.QueueSize, sink, logger.Component("dispatcher"))
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	// --- Services ---
	authSvc := service.NewAuthService(store.Users(), limiter, audit, clock, cfg.JWTSecret, cfg.Auth.SessionTTL, logger.Component("auth"))
	itemSvc := service.NewItemService(store.Tasks(), store.Routines(), clock, logger.Component("items"))
	notificationSvc := service.NewNotificationService(store.Users(), store.Tasks(), store.Routines(), seen, dispatcher, clock, logger.Component("notifications"))
	accountSvc := service.NewAccountService(store.Users(), audit, clock, cfg.Auth.ProtectedUserIDs, logger.Component("accounts"))

	seeder := service.NewSeeder(store.Users(), store.Tasks(), store.Routines(), clock, cfg.Auth.ProtectedUserIDs, logger.Component("seed"))
	err = seeder.Seed(ctx,
		service.SeedAccount{Username: cfg.Seed.AdminUsername, Password: cfg.Seed.AdminPassword, DisplayName: "Administrator"},
		service.SeedAccount{Username: cfg.Seed.PrimaryUsername, Password: cfg.Seed.PrimaryPassword, DisplayName: cfg.Seed.PrimaryName},
	)
	if err != nil {
		return err
	}

	jobs.Start()
	defer jobs.Stop()

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:          authSvc,
		Items:         itemSvc,
		Notifications: notificationSvc,
		Accounts:      accountSvc,
		Readiness:     readiness,
		RateLimit:     cfg.HTTP.RateLimit,
		RateBurst:     cfg.HTTP.RateBurst,
		SecureCookie:  cfg.IsProduction(),
		Log:           logger.Component("http"),
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("db", store.Driver()).Msg("tracker api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
