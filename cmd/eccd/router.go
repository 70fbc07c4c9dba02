package main

import (
	"github.com/gin-gonic/gin"

	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/core/rate"
	"github.com/kochabx/ecckit/internal/api"
	"github.com/kochabx/ecckit/log"
	middleware "github.com/kochabx/ecckit/middleware/http"
	"github.com/kochabx/ecckit/transport/http/metrics"
)

// newRouter wires the middleware chain and the API routes. A nil limiter
// disables rate limiting.
func newRouter(cfg *Config, key *secp256k1.PrivateKey, limiter rate.Limiter, logger *log.Logger, prom *metrics.Prometheus) *gin.Engine {
	engine := []secp256k1.Option{
		secp256k1.WithLogger(logger.Component("engine")),
		secp256k1.WithMaxAttempts(cfg.Engine.MaxAttempts),
	}
	if cfg.Engine.Concurrency > 0 {
		engine = append(engine, secp256k1.WithConcurrency(cfg.Engine.Concurrency))
	}

	httpLog := logger.Component("http")
	r := gin.New()
	r.Use(
		middleware.Recovery(middleware.RecoveryConfig{StackTrace: true, Logger: httpLog}),
		middleware.Logger(middleware.LoggerConfig{
			Skipper: middleware.Skipper{SkipPaths: []string{cfg.Metrics.Path, cfg.Health.Path}},
			Logger:  httpLog,
		}),
	)

	cors := middleware.DefaultCorsConfig()
	if len(cfg.Cors.AllowOrigins) > 0 {
		cors.AllowOrigins = cfg.Cors.AllowOrigins
	}
	r.Use(middleware.Cors(cors))

	if limiter != nil {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Skipper:  onlyPaths(cfg.RateLimit.Paths),
			Limiter:  limiter,
			FailOpen: cfg.RateLimit.FailOpen,
			Logger:   httpLog,
		}))
	}

	if cfg.Signature.Enabled && len(cfg.Signature.Paths) > 0 {
		r.Use(middleware.Signature(middleware.SignatureConfig{
			Skipper:  onlyPaths(cfg.Signature.Paths),
			Verifier: middleware.ECDSAVerifier(engine...),
			Optional: cfg.Signature.Optional,
			Logger:   httpLog,
			Metrics:  prom,
		}))
	}

	h := api.New(key,
		api.WithVersion(cfg.Server.Version),
		api.WithEngineOptions(engine...),
		api.WithMetrics(prom),
		api.WithLogger(logger.Component("api")),
	)
	h.Register(r, middleware.Crypto(middleware.CryptoConfig{
		Decryptor: middleware.ECIESDecryptor(key, engine...),
		Logger:    httpLog,
		Metrics:   prom,
	}))

	return r
}

// onlyPaths skips every request whose path matches none of patterns.
func onlyPaths(patterns []string) middleware.Skipper {
	if len(patterns) == 0 {
		return middleware.Skipper{}
	}
	m := middleware.NewPathMatcher(patterns)
	return middleware.Skipper{SkipFunc: func(c *gin.Context) bool { return !m.Match(c.Request.URL.Path) }}
}
