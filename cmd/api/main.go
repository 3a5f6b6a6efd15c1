package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/delsurprop/backoffice/internal/agents"
	"github.com/delsurprop/backoffice/internal/api/router"
	"github.com/delsurprop/backoffice/internal/clients"
	appconfig "github.com/delsurprop/backoffice/internal/config"
	"github.com/delsurprop/backoffice/internal/events"
	httpmiddleware "github.com/delsurprop/backoffice/internal/http/middleware"
	"github.com/delsurprop/backoffice/internal/leads"
	"github.com/delsurprop/backoffice/internal/locations"
	"github.com/delsurprop/backoffice/internal/notify"
	"github.com/delsurprop/backoffice/internal/observability/metrics"
	"github.com/delsurprop/backoffice/internal/owners"
	"github.com/delsurprop/backoffice/internal/properties"
	"github.com/delsurprop/backoffice/internal/scheduling"
	"github.com/delsurprop/backoffice/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("starting backoffice API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"business_tz", cfg.BusinessTimezone,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	hours := scheduling.NewBusinessHours(loc, nil)
	bookingMetrics := metrics.NewBookingMetrics(nil)
	leadMetrics := metrics.NewLeadMetrics(nil)

	sender := buildEmailSender(ctx, cfg, logger)
	mailer := notify.NewVisitMailer(sender, loc, logger)

	var (
		store    scheduling.Store
		dir      scheduling.Directory
		notifier scheduling.Notifier

		propsRepo  properties.Repository
		ownersRepo owners.Repository
		clientRepo clients.Repository
		agentsRepo agents.Repository
		locsRepo   locations.Repository
		leadsRepo  leads.Repository
	)

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("database unreachable", "error", err)
			os.Exit(1)
		}

		store = scheduling.NewPostgresStore(pool)
		dir = scheduling.NewPostgresDirectory(pool)

		outbox := events.NewOutboxStore(pool)
		notifier = events.NewOutboxNotifier(outbox)
		deliverer := events.NewDeliverer(outbox, mailer, logger).
			WithBatchSize(int32(cfg.OutboxBatchSize)).
			WithInterval(cfg.OutboxInterval)
		go deliverer.Start(ctx)

		propsRepo = properties.NewPostgresRepository(pool)
		ownersRepo = owners.NewPostgresRepository(pool)
		clientRepo = clients.NewPostgresRepository(pool)
		agentsRepo = agents.NewPostgresRepository(pool)
		locsRepo = locations.NewCachedRepository(locations.NewPostgresRepository(pool))
		leadsRepo = leads.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		staticDir := scheduling.NewStaticDirectory()
		store = scheduling.NewMemoryStore(staticDir)
		dir = staticDir
		notifier = notify.NewDirectNotifier(mailer)

		propsRepo = properties.NewInMemoryRepository()
		ownersRepo = owners.NewInMemoryRepository()
		clientRepo = clients.NewInMemoryRepository()
		agentsRepo = agents.NewInMemoryRepository()
		locsRepo = locations.NewCachedRepository(locations.NewInMemoryRepository())
		leadsRepo = leads.NewInMemoryRepository()
	}

	scheduler := scheduling.NewScheduler(store, dir, hours, logger).
		WithNotifier(notifier).
		WithMetrics(bookingMetrics)

	routerCfg := &router.Config{
		Logger:             logger,
		SchedulingHandler:  scheduling.NewHandler(scheduler, logger),
		PropertiesHandler:  properties.NewHandler(propsRepo, logger),
		OwnersHandler:      owners.NewHandler(ownersRepo, logger),
		ClientsHandler:     clients.NewHandler(clientRepo, logger),
		AgentsHandler:      agents.NewHandler(agentsRepo, logger),
		LocationsHandler:   locations.NewHandler(locsRepo, logger),
		LeadsHandler:       leads.NewHandler(leadsRepo, leadMetrics, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LeadRateLimiter:    buildLeadRateLimiter(cfg, logger),
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// buildEmailSender picks the configured provider, falling back to the stub.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("SENDGRID_API_KEY missing, falling back to stub email sender")
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Warn("failed to load AWS config, falling back to stub email sender", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}

// buildLeadRateLimiter prefers the shared Redis window when Redis is
// configured, and falls back to the per-process token bucket.
func buildLeadRateLimiter(cfg *appconfig.Config, logger *logging.Logger) func(http.Handler) http.Handler {
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb := redis.NewClient(opts)
		limiter := httpmiddleware.NewRedisRateLimiter(rdb, cfg.LeadRateLimit, cfg.LeadRateWindow, "leads")
		return limiter.Middleware(logger, true)
	}

	perSecond := float64(cfg.LeadRateLimit) / cfg.LeadRateWindow.Seconds()
	return httpmiddleware.RateLimit(perSecond, cfg.LeadRateLimit)
}
