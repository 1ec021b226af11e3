package gateway

import (
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

const (
	headerRequestID = "X-Request-ID"
	keyRequestID    = "request_id"
	keyUser         = "user"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(keyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(keyRequestID)),
		}
		if u := currentUser(c); u != nil {
			fields = append(fields, zap.String("user_id", u.ID.Hex()))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

// recovery turns a handler panic into the standard error body.
func recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Handler panic",
					zap.Any("panic", r),
					zap.String("request_id", c.GetString(keyRequestID)),
					zap.ByteString("stack", debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
					"code":  apperr.CodeUnexpected,
				})
			}
		}()
		c.Next()
	}
}

// corsMiddleware reflects allowed origins with credentials so the auth cookie
// works cross-site. Entries may use one wildcard, as in https://*.vercel.app,
// and "*" allows any origin. An empty list disables CORS handling.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	if len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	cfg := cors.Config{
		AllowWildcard:    true,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH", "HEAD"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin", headerRequestID},
		ExposeHeaders:    []string{"Content-Range", "X-Content-Range", headerRequestID},
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(allowed, "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = allowed
	}
	return cors.New(cfg)
}

func (g *Gateway) token(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t
		}
	}
	if g.config.Auth.Cookie == "" {
		return ""
	}
	t, err := c.Cookie(g.config.Auth.Cookie)
	if err != nil {
		return ""
	}
	return t
}

// authenticate attaches the caller or aborts with 401.
func (g *Gateway) authenticate(c *gin.Context) *models.User {
	t := g.token(c)
	if t == "" {
		abort(c, apperr.Unauthorized("Access denied. No token provided."))
		return nil
	}
	u, err := g.services.Auth.Authenticate(c.Request.Context(), t)
	if err != nil {
		abort(c, err)
		return nil
	}
	c.Set(keyUser, u)
	return u
}

func (g *Gateway) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		g.authenticate(c)
	}
}

func (g *Gateway) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := g.authenticate(c)
		if u != nil && !u.IsAdmin() {
			abort(c, apperr.Forbidden("Access denied. Admin only."))
		}
	}
}

// optionalUser attaches the caller when a valid token is present. Bad or
// stale tokens fall through as guests.
func (g *Gateway) optionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if t := g.token(c); t != "" {
			if u, err := g.services.Auth.Authenticate(c.Request.Context(), t); err == nil {
				c.Set(keyUser, u)
			}
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(keyUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
