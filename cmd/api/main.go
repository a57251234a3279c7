package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/farabiclinic/ai-receptionist/internal/api/router"
	"github.com/farabiclinic/ai-receptionist/internal/assistant"
	"github.com/farabiclinic/ai-receptionist/internal/clinicapi"
	appconfig "github.com/farabiclinic/ai-receptionist/internal/config"
	"github.com/farabiclinic/ai-receptionist/internal/http/handlers"
	"github.com/farabiclinic/ai-receptionist/internal/observability/metrics"
	"github.com/farabiclinic/ai-receptionist/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting ai-receptionist API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.OpenAIAPIKey == "" {
		logger.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}

	defaultLanguage, ok := assistant.ParseLanguage(cfg.DefaultLanguage)
	if !ok {
		logger.Error("invalid DEFAULT_LANGUAGE", "value", cfg.DefaultLanguage)
		os.Exit(1)
	}

	clinicClient := clinicapi.NewClient(clinicapi.Options{
		BaseURL:            cfg.ClinicBaseURL,
		PatientBaseURL:     cfg.PatientBaseURL,
		ProviderID:         cfg.ClinicProviderID,
		BranchID:           cfg.ClinicBranchID,
		Org:                cfg.ClinicOrg,
		Authorization:      cfg.ClinicAuthHeader,
		Timeout:            cfg.ClinicHTTPTimeout,
		InsecureSkipVerify: cfg.ClinicInsecureTLS,
	}, logger)

	var store assistant.SessionStore
	if cfg.UseRedisSessions {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		store = assistant.NewRedisStore(redisClient, cfg.SessionTTL)
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
	} else {
		store = assistant.NewMemoryStore()
	}

	registry := prometheus.NewRegistry()
	conversationMetrics := metrics.NewConversationMetrics(registry)

	engine := assistant.NewEngine(
		openai.NewClient(cfg.OpenAIAPIKey),
		clinicClient,
		cfg.OpenAIModel,
		logger,
		assistant.WithMetrics(conversationMetrics),
	)
	manager := assistant.NewSessionManager(engine, store, defaultLanguage, logger)

	webhookHandler := handlers.NewWhatsAppWebhookHandler(manager, defaultLanguage, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		WhatsAppWebhook:    webhookHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
