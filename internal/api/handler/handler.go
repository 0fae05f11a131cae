package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/inklet/inklet/internal/metrics"
	"github.com/inklet/inklet/internal/middleware"
	"github.com/inklet/inklet/internal/service"
	"github.com/inklet/inklet/pkg/logger"
)

// Handler carries the services and session store shared by the web and API
// endpoints.
type Handler struct {
	auth      service.AuthService
	posts     service.PostService
	reactions service.ReactionService
	store     sessions.Store
	metrics   *metrics.Metrics

	tokenSecret string
	tokenTTL    time.Duration
}

func New(
	auth service.AuthService,
	posts service.PostService,
	reactions service.ReactionService,
	store sessions.Store,
	m *metrics.Metrics,
	tokenSecret string,
	tokenTTL time.Duration,
) *Handler {
	return &Handler{
		auth:        auth,
		posts:       posts,
		reactions:   reactions,
		store:       store,
		metrics:     m,
		tokenSecret: tokenSecret,
		tokenTTL:    tokenTTL,
	}
}

// render attaches the current user and pending flashes to every page.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if u, ok := middleware.CurrentUser(c); ok {
		data["User"] = u
	}
	data["Flashes"] = h.consumeFlashes(c)
	c.HTML(status, name, data)
}

func (h *Handler) flash(c *gin.Context, msg string) {
	sess, err := h.store.Get(c.Request, middleware.SessionName)
	if err != nil {
		return
	}
	sess.AddFlash(msg)
	if err := sess.Save(c.Request, c.Writer); err != nil {
		logger.Warn("save session flash", zap.Error(err))
	}
}

func (h *Handler) consumeFlashes(c *gin.Context) []string {
	sess, err := h.store.Get(c.Request, middleware.SessionName)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) > 0 {
		// Flashes() pops; persist the consumption.
		if err := sess.Save(c.Request, c.Writer); err != nil {
			logger.Warn("save session after flash read", zap.Error(err))
		}
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (h *Handler) notFound(c *gin.Context) {
	c.String(http.StatusNotFound, "404 Not Found")
	c.Abort()
}

func (h *Handler) forbidden(c *gin.Context) {
	c.String(http.StatusForbidden, "403 Forbidden")
	c.Abort()
}

func (h *Handler) serverError(c *gin.Context, err error) {
	logger.Error("unhandled error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.String(http.StatusInternalServerError, "500 Internal Server Error")
	c.Abort()
}
