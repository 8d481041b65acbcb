// Package statusapi serves the latest diagnoses over a small REST API and
// doubles as a ResultSink that keeps them in memory.
package statusapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

const (
	defaultHistory  = 100
	defaultLimit    = 20
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg    domain.APIConfig
	log    *slog.Logger
	engine *gin.Engine

	mu     sync.RWMutex
	recent []domain.WindowOutcome
	total  int
	max    int

	history HistoryFunc
}

// HistoryFunc returns the newest persisted diagnoses for device (all devices when empty).
type HistoryFunc func(ctx context.Context, device string, limit int) (any, error)

type Option func(*Server)

// WithHistory serves /api/v1/history from a durable store.
func WithHistory(fn HistoryFunc) Option {
	return func(s *Server) { s.history = fn }
}

var _ ports.ResultSink = (*Server)(nil)

func New(cfg domain.APIConfig, log *slog.Logger, opts ...Option) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		cfg: cfg,
		log: log,
		max: defaultHistory,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := s.cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cc := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization")
	r.Use(cors.New(cc))

	r.GET("/healthz", s.health)

	v1 := r.Group("/api/v1")
	if s.cfg.JWTSecret != "" {
		v1.Use(requireBearer([]byte(s.cfg.JWTSecret), s.log))
	}
	v1.GET("/diagnosis/latest", s.latest)
	v1.GET("/windows", s.windows)
	v1.GET("/history", s.historyRows)

	return r
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Publish records out as the most recent outcome.
func (s *Server) Publish(_ context.Context, out domain.WindowOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = append(s.recent, out)
	if len(s.recent) > s.max {
		s.recent = append(s.recent[:0], s.recent[len(s.recent)-s.max:]...)
	}
	s.total++
	return nil
}

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("statusapi.listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return &domain.OpError{Op: "statusapi.listen", Kind: domain.KindExecution, Path: s.cfg.Addr, Err: err}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return &domain.OpError{Op: "statusapi.shutdown", Kind: domain.KindExecution, Path: s.cfg.Addr, Err: err}
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	s.mu.RLock()
	total := s.total
	s.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{"status": "ok", "windows": total})
}

func (s *Server) latest(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.recent) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no window classified yet"})
		return
	}
	c.JSON(http.StatusOK, s.recent[len(s.recent)-1])
}

// windows returns up to ?limit= most recent outcomes, newest first.
func (s *Server) windows(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]domain.WindowOutcome, 0, limit)
	for i := len(s.recent) - 1; i >= len(s.recent)-limit; i-- {
		out = append(out, s.recent[i])
	}
	c.JSON(http.StatusOK, gin.H{"windows": out, "total": s.total})
}

func (s *Server) historyRows(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "history is not configured"})
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	rows, err := s.history(c.Request.Context(), c.Query("device"), limit)
	if err != nil {
		s.log.Error("statusapi.history.failed", "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	return n, true
}
