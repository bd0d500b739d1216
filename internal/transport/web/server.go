package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sandevgo/lumina/internal/config"
	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/pkg/log"
)

const (
	maxHistoryLimit = 500
	shutdownTimeout = 5 * time.Second
)

// Handler runs a conversational turn.
type Handler interface {
	Handle(ctx context.Context, channel core.Channel, message string, image *core.Image) (core.Response, error)
}

type Server struct {
	cfg     *config.WebConfig
	handler Handler
	store   core.MemoryStore
	hub     *Hub
	engine  *gin.Engine
	http    *http.Server
}

func NewServer(ctx context.Context, cfg *config.WebConfig, handler Handler, store core.MemoryStore) *Server {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		handler: handler,
		store:   store,
		hub:     NewHub(),
	}
	s.engine = s.routes(ctx)
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	return s
}

// Hub is the mirror target that forwards turns from other front ends to
// connected browsers.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes(ctx context.Context) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestContext(ctx))
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	r.GET("/healthz", s.healthz)
	r.POST("/chat", BodySizeLimiter(s.cfg.MaxUploadBytes()+multipartOverhead), s.chat)
	r.GET("/history", s.history)
	r.GET("/facts", s.listFacts)
	r.PUT("/facts/:key", s.putFact)
	r.GET("/events", s.events)

	s.mountStatic(ctx, r)
	return r
}

func (s *Server) mountStatic(ctx context.Context, r *gin.Engine) {
	dir := s.cfg.StaticDir
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.FromCtx(ctx).Warn().Str("dir", dir).Msg("static frontend not found, serving API only")
		return
	}

	r.Static("/frontend", dir)
	index := filepath.Join(dir, "index.html")
	r.GET("/", func(c *gin.Context) {
		c.File(index)
	})
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.cfg.Addr).Msg("starting web server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
