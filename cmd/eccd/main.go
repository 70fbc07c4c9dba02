// Command eccd serves the secp256k1 engine over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/ecckit/app"
	"github.com/kochabx/ecckit/config"
	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/core/rate"
	"github.com/kochabx/ecckit/log"
	"github.com/kochabx/ecckit/store/redis"
	"github.com/kochabx/ecckit/transport/http"
	"github.com/kochabx/ecckit/transport/http/metrics"
)

func main() {
	configFile := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		log.Error().Err(err).Msg("eccd exited")
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg := new(Config)
	if err := loadConfig(cfg, configFile); err != nil {
		return err
	}

	logger, err := log.NewFromConfig(cfg.Log, log.WithFields(map[string]any{"service": cfg.Server.Name}))
	if err != nil {
		return err
	}
	log.SetGlobalLogger(logger)

	key, err := loadServerKey(cfg.Key, logger)
	if err != nil {
		return err
	}
	logger.Info().Str("public_key", key.PublicKeyHex().String()).Msg("server key ready")

	opts := []app.Option{
		app.WithLogger(logger),
		app.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		app.WithStartup("curve-self-check", func(context.Context) error { return secp256k1.SelfCheck() }),
		app.WithClose("logger", func(context.Context) error { return logger.Close() }, 0),
		app.WithClose("server-key", func(context.Context) error { key.Destroy(); return nil }, 0),
	}

	httpOpts := []http.Option{
		http.WithMeta(http.Meta{Name: cfg.Server.Name, Version: cfg.Server.Version}),
		http.WithMetricsOptions(cfg.Metrics),
		http.WithHealthOptions(cfg.Health),
		http.WithLogger(logger),
		http.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
	}

	var limiter rate.Limiter
	if cfg.RateLimit.Enabled {
		rdb, err := redis.New(&cfg.RateLimit.Redis, redis.WithLogger(logger.Component("redis")))
		if err != nil {
			return err
		}
		limiter = rate.NewTokenBucketLimiter(rdb.UniversalClient(), cfg.RateLimit.Prefix, cfg.RateLimit.Capacity, cfg.RateLimit.Rate)
		opts = append(opts,
			app.WithStartup("redis", func(ctx context.Context) error {
				if err := rdb.Ping(ctx); err != nil {
					if !cfg.RateLimit.FailOpen {
						return err
					}
					logger.Warn().Err(err).Msg("redis unreachable, rate limiting fails open")
				}
				return rdb.Start(ctx)
			}),
			app.WithClose("redis", func(context.Context) error { return rdb.Close() }, 0),
		)
		if !cfg.RateLimit.FailOpen {
			httpOpts = append(httpOpts, http.WithHealthCheck("redis", rdb.Check))
		}
	}

	gin.SetMode(gin.ReleaseMode)
	prom := metrics.Prom
	server := http.NewServer(cfg.Server.Addr, newRouter(cfg, key, limiter, logger, prom),
		append(httpOpts, http.WithPrometheus(prom))...,
	)

	a := app.New(append(opts, app.WithServer(server))...)
	return a.Start()
}

func loadConfig(cfg *Config, file string) error {
	return config.New(cfg,
		config.WithFile(filepath.Base(file), filepath.Dir(file)),
		config.WithEnvPrefix(envPrefix),
		config.WithOptionalFile(),
	).Load()
}
