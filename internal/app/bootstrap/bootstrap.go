// Package bootstrap assembles the service from configuration. Both
// entrypoints (the HTTP server and the Lambda adapter) share this wiring.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/aziwar/dr-islam-website-sub002/internal/api/router"
	appconfig "github.com/aziwar/dr-islam-website-sub002/internal/config"
	"github.com/aziwar/dr-islam-website-sub002/internal/http/handlers"
	"github.com/aziwar/dr-islam-website-sub002/internal/notify"
	"github.com/aziwar/dr-islam-website-sub002/internal/ratelimit"
	"github.com/aziwar/dr-islam-website-sub002/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when no address
// is set. When verify is true, a ping is issued and failures return nil so
// the caller can fall back to the in-memory limiter.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, falling back to in-memory rate limiting", "error", err)
		return nil
	}
	return client
}

// BuildLimiter selects the shared Redis limiter when Redis is reachable and
// the process-local fixed window otherwise.
func BuildLimiter(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) ratelimit.Limiter {
	if logger == nil {
		logger = logging.Default()
	}
	if client := BuildRedisClient(ctx, cfg, logger, true); client != nil {
		logger.Info("rate limiting via redis", "addr", cfg.RedisAddr)
		return ratelimit.NewRedisLimiter(client, cfg.RateLimitMax, cfg.RateLimitWindow, logger)
	}
	return ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), cfg.RateLimitMax, cfg.RateLimitWindow)
}

// BuildProviders constructs the ordered provider list from configured
// credentials: SendGrid, then Resend, then SES.
func BuildProviders(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) ([]notify.Provider, error) {
	var providers []notify.Provider

	if p := notify.NewSendGridProvider(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	}, logger); p != nil {
		providers = append(providers, p)
	}

	if p := notify.NewResendProvider(notify.ResendConfig{
		APIKey:    cfg.ResendAPIKey,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	}, logger); p != nil {
		providers = append(providers, p)
	}

	if cfg.SESEnabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load AWS config: %w", err)
		}
		if p := notify.NewSESProvider(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}, logger); p != nil {
			providers = append(providers, p)
		}
	}

	if len(providers) == 0 {
		return nil, notify.ErrNoProviders
	}
	return providers, nil
}

// BuildHandler assembles the full HTTP handler stack.
func BuildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	providers, err := BuildProviders(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	dispatcher, err := notify.NewDispatcher(providers, cfg.ClinicEmail, notify.DispatcherOptions{
		Timeout: cfg.ProviderTimeout,
		Logger:  logger.With("component", "notify"),
		Metrics: notify.NewMetrics(registry),
	})
	if err != nil {
		return nil, err
	}

	contactHandler := handlers.NewContactHandler(handlers.ContactHandlerConfig{
		Limiter:       BuildLimiter(ctx, cfg, logger),
		Dispatcher:    dispatcher,
		SpamThreshold: cfg.SpamScoreThreshold,
		Debug:         cfg.Env == "development",
		Logger:        logger.With("component", "contact"),
		Metrics:       handlers.NewContactMetrics(registry),
	})

	return router.New(&router.Config{
		Logger:         logger,
		ContactHandler: contactHandler,
		AllowedOrigins: cfg.AllowedOrigins,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}), nil
}
