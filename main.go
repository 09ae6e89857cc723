package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/ipcctiled/transform-api/internal/api"
	"github.com/ipcctiled/transform-api/internal/config"
	"github.com/ipcctiled/transform-api/internal/llm"
	"github.com/ipcctiled/transform-api/internal/logger"
	"github.com/ipcctiled/transform-api/internal/metrics"
	"github.com/ipcctiled/transform-api/internal/observability"
	"github.com/ipcctiled/transform-api/internal/profile"
	"github.com/ipcctiled/transform-api/internal/prompt"
	"github.com/ipcctiled/transform-api/internal/transform"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	shutdownTimeout       = 10 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run starts the server and blocks until SIGINT or SIGTERM. Deferred flushes run before main
// exits, so startup failures still reach Sentry.
func run() error {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration and refuse to start on anything unusable
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logFile := logger.Setup(logger.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer func() { _ = logFile.Close() }()

	// Initialize Sentry
	sentryEnabled := false
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "transform-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			sentryEnabled = true
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			// Flush on shutdown
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One provider handle for the life of the process
	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey, cfg.OllamaHost)
	provider, err := factory.GetProvider(ctx, cfg.LLMModel, cfg.LLMProvider)
	if err != nil {
		sentry.CaptureException(err)
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	builder, err := prompt.NewPromptBuilder()
	if err != nil {
		return fmt.Errorf("failed to load prompt directives: %w", err)
	}

	policy, err := profile.ParseRangePolicy(cfg.RangePolicy)
	if err != nil {
		return err
	}
	profiles := profile.All(profile.Options{VisualVersion: cfg.VisualSchemaVersion})

	// Metrics sinks
	stats := metrics.NewStats()
	prom := metrics.NewPrometheus()
	recorder := metrics.Multi{stats, prom, metrics.NewSentryMetrics(sentryEnabled)}
	if cw, err := metrics.NewClient(ctx, cfg.Environment); err == nil && cw.Enabled() {
		recorder = append(recorder, cw)
	}

	opts := transform.Options{
		Model:    cfg.LLMModel,
		Policy:   policy,
		Timeout:  cfg.ProviderTimeout,
		Recorder: recorder,
	}
	// The tracer outlives ctx so queued events can still be delivered after a signal
	if lf := observability.NewLangfuse(context.Background(), cfg); lf.IsEnabled() {
		opts.Tracer = lf
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			lf.Close(closeCtx)
		}()
	}
	service := transform.NewService(provider, builder, opts)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(api.Dependencies{
		Service:        service,
		Profiles:       profiles,
		DefaultProfile: profile.Name(cfg.ResponseProfile),
		Recorder:       recorder,
		Stats:          stats,
		Prometheus:     prom,
		Version:        GetVersion(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("🚀 Starting server on port %s (provider: %s, model: %s, profile: %s, range policy: %s)",
			cfg.Port, service.ProviderName(), service.Model(), cfg.ResponseProfile, policy)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			sentry.CaptureException(err)
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
