// Package httpapi exposes the planner over HTTP for tooling and debugging.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	astar "github.com/pdrpinto/gridplanner"
	"github.com/pdrpinto/gridplanner/internal/msgs"
	"github.com/pdrpinto/gridplanner/internal/planner"
	"github.com/pdrpinto/gridplanner/internal/transport"
)

// PlanResponse is returned by POST /v1/plan once the path has been published.
type PlanResponse struct {
	Path     msgs.Path `json:"path"`
	Outcome  string    `json:"outcome"`
	FellBack bool      `json:"fell_back"`
	Cost     uint      `json:"cost"`
	Expanded int       `json:"expanded"`
}

// TraceResponse is returned by POST /v1/trace.
type TraceResponse struct {
	Steps    []planner.TraceStep `json:"steps"`
	Terminal astar.Cell          `json:"terminal"`
	Path     []astar.Cell        `json:"path"`
	Outcome  string              `json:"outcome"`
	FellBack bool                `json:"fell_back"`
}

// LatestSource returns the most recently published path.
type LatestSource interface {
	Latest(ctx context.Context) (msgs.Path, error)
}

// Server serves plan requests against a shared planner.
type Server struct {
	planner *planner.Planner
	latest  LatestSource
	logger  *zap.Logger
	engine  *gin.Engine
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLatest enables GET /v1/path/latest backed by source.
func WithLatest(source LatestSource) ServerOption {
	return func(s *Server) { s.latest = source }
}

// NewServer builds the routes. The gin mode is left to the caller.
func NewServer(p *planner.Planner, logger *zap.Logger, options ...ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{planner: p, logger: logger, engine: gin.New()}
	for _, option := range options {
		option(s)
	}
	s.engine.Use(gin.Recovery(), s.logRequests())
	s.engine.GET("/healthz", s.health)
	v1 := s.engine.Group("/v1")
	v1.POST("/plan", s.plan)
	v1.POST("/trace", s.trace)
	v1.GET("/path/latest", s.latestPath)
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("HTTP server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(c *gin.Context) {
	cfg := s.planner.Config()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"side":   cfg.Side,
		"source": cfg.Source(),
		"target": cfg.Target(),
	})
}

func (s *Server) plan(c *gin.Context) {
	var snapshot msgs.OccupancyGrid
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	path, result, err := s.planner.Execute(c.Request.Context(), snapshot)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, PlanResponse{
		Path:     path,
		Outcome:  result.Outcome.String(),
		FellBack: result.FellBack,
		Cost:     result.Cost,
		Expanded: result.Expanded,
	})
}

func (s *Server) trace(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}
	var snapshot msgs.OccupancyGrid
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	steps, result, err := s.planner.Trace(snapshot, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, TraceResponse{
		Steps:    steps,
		Terminal: result.Terminal,
		Path:     result.Path,
		Outcome:  result.Outcome.String(),
		FellBack: result.FellBack,
	})
}

func (s *Server) latestPath(c *gin.Context) {
	if s.latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "path latching is not enabled"})
		return
	}
	path, err := s.latest.Latest(c.Request.Context())
	if errors.Is(err, transport.ErrNoLatchedPath) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, path)
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, astar.ErrEmptyMap):
		c.Status(http.StatusNoContent)
	case errors.Is(err, planner.ErrGeometry), errors.Is(err, astar.ErrBufferSize):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Plan request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(started)))
	}
}
