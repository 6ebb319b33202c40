package httpserver

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/todo-keeper/internal/observability"
)

// route returns the matched route template, or a fixed label for unmatched
// paths so that metric cardinality stays bounded.
func route(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

// Logging returns middleware for structured request logging. No payloads, only metadata.
func Logging(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("route", route(c)),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", c.ClientIP()),
		)
	}
}

// Recover returns middleware that turns panics into InternalServerError responses.
func Recover(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("route", route(c)),
				)
				c.AbortWithStatusJSON(internalError.status, internalError.body)
			}
		}()
		c.Next()
	}
}

// Instrument records request count and latency per route.
func Instrument(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		r := route(c)
		m.RequestsTotal.WithLabelValues(r, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(r, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// CORS allows credentialed cross-origin calls from a single origin with GET,
// POST and DELETE. Preflights are answered with 204, other origins with 403.
func CORS(origin string, maxAge time.Duration) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     corsHeaders,
		AllowCredentials: true,
		MaxAge:           maxAge,
	})
}

var corsHeaders = []string{"Origin", "Accept", "Content-Type", "Content-Length", "X-Requested-With"}
