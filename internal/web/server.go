package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/gradetrend/internal/analysis"
	"github.com/abhisek/gradetrend/internal/metrics"
	"github.com/abhisek/gradetrend/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server serves the analysis form, its JSON twin and operational endpoints.
type Server struct {
	svc     *analysis.Service
	metrics *metrics.Metrics
	history store.ResultRepo
	log     *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics enables request metrics and the /metrics endpoint.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHistory exposes stored results under /api/v1/results.
func WithHistory(repo store.ResultRepo) Option {
	return func(s *Server) { s.history = repo }
}

func New(svc *analysis.Service, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{svc: svc, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
		r.GET("/metrics", s.metrics.Handler())
	}

	tmpl := template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.HandleForm)
	r.POST("/", s.HandleSubmit)
	r.GET("/healthz", s.HandleHealth)

	api := r.Group("/api/v1")
	api.POST("/analyze", s.HandleAnalyze)
	if s.history != nil {
		api.GET("/results", s.HandleListResults)
		api.GET("/results/:id", s.HandleGetResult)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
