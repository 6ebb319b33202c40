// Package httpserver exposes the todo API over HTTP.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/and161185/todo-keeper/internal/model"
	"github.com/and161185/todo-keeper/internal/observability"
	"github.com/and161185/todo-keeper/internal/repository"
)

// AuthService is the subset of the auth service used by handlers.
type AuthService interface {
	Register(ctx context.Context, username, password string) (model.SessionToken, error)
	Login(ctx context.Context, username, password, remoteAddr string) (model.SessionToken, error)
	Logout(ctx context.Context, tok *model.SessionToken) error
	Resolve(ctx context.Context, tok *model.SessionToken) (model.UserID, bool, error)
}

// TodoService is the subset of the todo service used by handlers.
type TodoService interface {
	GetList(ctx context.Context, owner model.UserID) ([]string, error)
	AddTask(ctx context.Context, owner model.UserID, text string) ([]string, error)
}

// Config holds HTTP boundary settings.
type Config struct {
	// CookieKey, when set, signs session cookies as HS256 JWTs.
	CookieKey []byte
	// CookieSecure marks the session cookie Secure.
	CookieSecure bool
	// CORSOrigin is the single origin allowed to call /api from a browser.
	CORSOrigin string
}

// DefaultCORSOrigin is used when Config.CORSOrigin is empty.
const DefaultCORSOrigin = "http://localhost"

const corsMaxAge = time.Hour

// Server wires services into gin handlers.
type Server struct {
	auth    AuthService
	todos   TodoService
	pinger  repository.Pinger
	cookies cookieCodec
	metrics *observability.Metrics
	log     *zap.Logger
	engine  *gin.Engine
}

// New constructs the HTTP server and registers its routes. reg receives the
// application metrics and is served at /metrics.
func New(auth AuthService, todos TodoService, pinger repository.Pinger, cfg Config, reg *prometheus.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = DefaultCORSOrigin
	}
	s := &Server{
		auth:    auth,
		todos:   todos,
		pinger:  pinger,
		cookies: cookieCodec{key: cfg.CookieKey, secure: cfg.CookieSecure},
		metrics: observability.NewMetrics(reg),
		log:     log,
		engine:  gin.New(),
	}

	s.engine.Use(Logging(log), Instrument(s.metrics), Recover(log))
	s.engine.GET("/healthz", s.Healthz)
	s.engine.GET("/metrics", gin.WrapH(observability.Handler(reg)))

	api := s.engine.Group("/api", CORS(cfg.CORSOrigin, corsMaxAge))
	// Preflights need a matching route for the group middleware to run.
	api.OPTIONS("/*any", func(*gin.Context) {})
	api.POST("/register", s.Register)
	api.POST("/login", s.Login)
	api.POST("/logout", s.Logout)

	todo := api.Group("/todo", s.RequireSession)
	todo.GET("/", s.GetTodo)
	todo.POST("/add", s.AddTodo)

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Healthz reports storage reachability.
func (s *Server) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.pinger.Ping(ctx); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail writes the client-facing form of err. Internal causes are logged here
// and never reach the response body.
func (s *Server) fail(c *gin.Context, err error) {
	ae := classify(err)
	if ae.status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("route", route(c)), zap.Error(err))
	}
	c.AbortWithStatusJSON(ae.status, ae.body)
}
