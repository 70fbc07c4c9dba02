package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kochabx/ecckit/log"
	"github.com/kochabx/ecckit/transport"
	"github.com/kochabx/ecckit/transport/http/metrics"
)

var _ transport.Server = (*Server)(nil)

const (
	defaultName = "http"
	defaultAddr = ":8080"
)

// Meta is the metadata of the server.
type Meta struct {
	Name    string
	Version string
}

// HealthCheck reports whether a dependency of the server is usable.
type HealthCheck func(ctx context.Context) error

type Server struct {
	meta    Meta
	options Options
	checks  map[string]HealthCheck
	server  *http.Server
	metrics *metrics.Prometheus
	logger  *log.Logger
}

type Option func(*Server)

func WithMeta(meta Meta) Option {
	return func(s *Server) {
		s.meta = meta
	}
}

func WithMetricsOptions(m MetricsOption) Option {
	return func(s *Server) {
		m.init()
		s.options.Metrics = m
	}
}

func WithHealthOptions(h HealthOption) Option {
	return func(s *Server) {
		h.init()
		s.options.Health = h
	}
}

// WithPrometheus serves p instead of the global registry.
func WithPrometheus(p *metrics.Prometheus) Option {
	return func(s *Server) {
		s.metrics = p
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithHealthCheck adds a named dependency check to the health endpoint.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Server) {
		if s.checks == nil {
			s.checks = make(map[string]HealthCheck)
		}
		s.checks[name] = check
	}
}

// WithTimeouts sets the read and write timeouts of the underlying server.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.server.ReadTimeout = read
		s.server.WriteTimeout = write
	}
}

func NewServer(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		metrics: metrics.Prom,
		logger:  log.G(),
	}

	for _, opt := range opts {
		opt(s)
	}

	additionalHandlers(s)

	return s
}

func (s *Server) Run() error {
	if s.meta.Name == "" {
		s.meta.Name = defaultName
	}

	if ok := transport.ValidateAddress(s.server.Addr); !ok {
		s.logger.Warn().Msgf("invalid address %q, using default address: %s", s.server.Addr, defaultAddr)
		s.server.Addr = defaultAddr
	}
	s.logger.Info().Str("version", s.meta.Version).Msgf("%s server listening on %s", s.meta.Name, s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func additionalHandlers(s *Server) {
	if r, ok := s.server.Handler.(*gin.Engine); ok {
		handleMetrics(s, r)
		handleHealth(s, r)
	}
}

func handleMetrics(s *Server, r *gin.Engine) {
	if !s.options.Metrics.Enabled {
		return
	}
	if s.options.Metrics.EnabledGoCollector {
		s.metrics.WithGoCollectorRuntimeMetrics()
	}
	if s.options.Metrics.EnabledBuildInfoCollector {
		s.metrics.WithBuildInfoCollector()
	}

	r.GET(s.options.Metrics.Path, gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})))
}

func handleHealth(s *Server, r *gin.Engine) {
	if s.options.Health.Enabled {
		r.GET(s.options.Health.Path, func(c *gin.Context) {
			if len(s.checks) == 0 {
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
				return
			}

			status, code := "ok", http.StatusOK
			results := make(map[string]string, len(s.checks))
			for name, check := range s.checks {
				if err := check(c.Request.Context()); err != nil {
					s.logger.Warn().Err(err).Str("check", name).Msg("health check failed")
					results[name] = err.Error()
					status, code = "unavailable", http.StatusServiceUnavailable
					continue
				}
				results[name] = "ok"
			}
			c.JSON(code, gin.H{"status": status, "checks": results})
		})
	}
}
