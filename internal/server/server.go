package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/trait-interview/internal/archetype"
	"github.com/danielpatrickdp/trait-interview/internal/interview"
	"github.com/danielpatrickdp/trait-interview/internal/metrics"
	"github.com/danielpatrickdp/trait-interview/internal/results"
)

// #region config
// Config holds HTTP settings.
type Config struct {
	Addr            string
	MaxSessions     int // 0 means unlimited
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Debug           bool
}

// DefaultConfig returns the standard HTTP settings. WriteTimeout covers an
// oracle round trip plus the second call made when a trait advances.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxSessions:     1000,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    3 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// #endregion config

// #region deps
// Deps are the shared components behind the API.
type Deps struct {
	Oracle    interview.Oracle
	Analyzer  interview.Analyzer
	Matcher   interview.Matcher
	Corpus    *archetype.Corpus
	Store     *results.Store
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Interview interview.Config
	Log       logrus.FieldLogger
}

// #endregion deps

// #region server
// Server is the interview HTTP API.
type Server struct {
	config   Config
	deps     Deps
	sessions *registry
	engine   *gin.Engine
	log      logrus.FieldLogger
}

// New builds the API and its routes.
func New(config Config, deps Deps) (*Server, error) {
	if deps.Oracle == nil || deps.Analyzer == nil || deps.Matcher == nil {
		return nil, errors.New("server requires an oracle, an analyzer and a matcher")
	}
	if deps.Store == nil || deps.Corpus == nil {
		return nil, errors.New("server requires a result store and a corpus")
	}
	if deps.Log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		deps.Log = discard
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		config:   config,
		deps:     deps,
		sessions: newRegistry(config.MaxSessions),
		engine:   engine,
		log:      deps.Log.WithField("component", "server"),
	}
	engine.Use(s.requestLogger())
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api")
	api.POST("/sessions", s.createSession)
	api.GET("/sessions/:id", s.getSession)
	api.DELETE("/sessions/:id", s.deleteSession)
	api.GET("/sessions/:id/turns", s.listTurns)
	api.POST("/sessions/:id/answer", s.submitAnswer)
	api.POST("/sessions/:id/skip", s.skip)
	api.POST("/sessions/:id/back", s.goBack)
	api.POST("/sessions/:id/conclude", s.conclude)
	api.GET("/results", s.listResults)
	api.GET("/results/:id", s.getResult)
	api.GET("/archetypes", s.listArchetypes)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.config.Addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start),
		}).Debug("request")
	}
}

// #endregion server
