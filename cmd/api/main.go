package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/salonsuite/platform/cmd/mainconfig"
	"github.com/salonsuite/platform/internal/api/router"
	"github.com/salonsuite/platform/internal/catalog"
	"github.com/salonsuite/platform/internal/chat"
	appconfig "github.com/salonsuite/platform/internal/config"
	"github.com/salonsuite/platform/internal/directory"
	"github.com/salonsuite/platform/internal/jobs"
	"github.com/salonsuite/platform/internal/notify"
	"github.com/salonsuite/platform/internal/observability/metrics"
	"github.com/salonsuite/platform/internal/phorest"
	"github.com/salonsuite/platform/internal/roster"
	"github.com/salonsuite/platform/internal/wizard"
	"github.com/salonsuite/platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salonsuite API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	pingCancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Notification queue: in-process for dev, SQS in production.
	var queue jobs.Queue
	if cfg.UseMemoryQueue {
		logger.Info("using in-memory notification queue")
		queue = jobs.NewMemoryQueue()
	} else {
		queue = jobs.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL)
	}
	publisher := jobs.NewPublisher(queue, logger)

	wizardMetrics := metrics.NewWizardMetrics(prometheus.DefaultRegisterer)
	chatMetrics := metrics.NewChatMetrics(prometheus.DefaultRegisterer)

	// Read models and the external booking bridge.
	catalogRepo := catalog.NewRepository(pool)
	rosterRepo := roster.NewRepository(pool)
	directoryRepo := directory.NewRepository(pool)
	chatStore := chat.NewStore(pool)
	bridge := phorest.NewClient(cfg.PhorestBridgeURL, cfg.PhorestAPIKey, logger)

	sessions := wizard.NewSessionStore(redisClient, cfg.SessionTTL, nil)
	controller := wizard.NewController(
		sessions,
		catalogRepo,
		rosterRepo,
		directoryRepo,
		bridge,
		publisher,
		cfg.OrganizationID,
		wizardMetrics,
		logger,
	)

	hub := chat.NewHub()
	assistant := chat.NewAssistant(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID, chatMetrics)

	wizardHandler := wizard.NewHandler(controller, logger)
	directoryHandler := directory.NewHandler(directoryRepo, bridge, logger)
	catalogHandler := catalog.NewHandler(catalogRepo, logger)
	rosterHandler := roster.NewHandler(rosterRepo, logger)
	chatHandler := chat.NewHandler(chatStore, hub, publisher, assistant, chatMetrics, logger)

	// Notification worker consumes the queue and sends email.
	emailSender := buildEmailSender(cfg, awsCfg, logger)
	notifySvc := notify.NewService(emailSender, rosterRepo, salonName(cfg), logger)
	worker := jobs.NewWorker(queue, notifySvc, cfg.WorkerCount, logger)
	go worker.Run(ctx)

	r := router.New(&router.Config{
		Logger:             logger,
		WizardHandler:      wizardHandler,
		DirectoryHandler:   directoryHandler,
		CatalogHandler:     catalogHandler,
		RosterHandler:      rosterHandler,
		ChatHandler:        chatHandler,
		MetricsHandler:     promhttp.Handler(),
		StaffAuthSecret:    cfg.StaffJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel() // stop the notification worker

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildEmailSender assembles the provider chain: SES primary with SendGrid
// failover unless EMAIL_PROVIDER pins one of them. A stub sender keeps dev
// environments working with no provider configured.
func buildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	var senders []notify.EmailSender

	if cfg.EmailProvider == "auto" || cfg.EmailProvider == "ses" {
		if cfg.SESFromEmail != "" {
			ses := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
				FromEmail: cfg.SESFromEmail,
				FromName:  cfg.SESFromName,
			}, logger)
			if ses != nil {
				senders = append(senders, ses)
			}
		}
	}
	if cfg.EmailProvider == "auto" || cfg.EmailProvider == "sendgrid" {
		sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sg != nil {
			senders = append(senders, sg)
		}
	}

	switch len(senders) {
	case 0:
		logger.Warn("no email provider configured, notifications will be logged only")
		return notify.NewStubEmailSender(logger)
	case 1:
		return senders[0]
	default:
		return notify.NewFailoverSender(logger, senders...)
	}
}

func salonName(cfg *appconfig.Config) string {
	if cfg.SESFromName != "" {
		return cfg.SESFromName
	}
	return cfg.SendGridFromName
}
