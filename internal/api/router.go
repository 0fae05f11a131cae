package api

import (
	"html/template"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/inklet/inklet/config"
	_ "github.com/inklet/inklet/docs"
	"github.com/inklet/inklet/internal/api/handler"
	"github.com/inklet/inklet/internal/metrics"
	"github.com/inklet/inklet/internal/middleware"
	"github.com/inklet/inklet/internal/service"
)

// RouterOptions bundles what the router needs wired in.
type RouterOptions struct {
	Config  *config.Config
	Handler *handler.Handler
	Auth    service.AuthService
	Store   sessions.Store
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; tests pass their own registry.
	Gatherer prometheus.Gatherer
	// Tracing and Sentry toggle the optional middlewares; both default off.
	Tracing bool
	Sentry  bool
}

// NewRouter assembles the web pages, the JSON API and the operational
// endpoints on one engine.
func NewRouter(opts RouterOptions) *gin.Engine {
	cfg := opts.Config
	h := opts.Handler

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	if opts.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if opts.Tracing {
		r.Use(otelgin.Middleware("inklet"))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Handler())
	}
	r.Use(middleware.LoadUser(opts.Store, opts.Auth))

	r.SetFuncMap(template.FuncMap{
		"fdate": func(t time.Time) string { return t.Format("2006-01-02") },
	})
	r.LoadHTMLGlob(cfg.Server.TemplatesGlob)
	r.Static("/static", "web/static")

	// Web pages.
	r.GET("/", h.Index)

	auth := r.Group("/auth")
	{
		auth.GET("/register", h.RegisterForm)
		auth.POST("/register", h.Register)
		auth.GET("/login", h.LoginForm)
		auth.POST("/login",
			middleware.LoginRateLimit(cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst),
			h.Login)
		auth.GET("/logout", h.Logout)
	}

	post := r.Group("/post")
	{
		post.GET("/:id", h.Detail)
		post.GET("/create", middleware.LoginRequired(), h.CreateForm)
		post.POST("/create", middleware.LoginRequired(), h.Create)
		post.GET("/:id/update", middleware.LoginRequired(), h.UpdateForm)
		post.POST("/:id/update", middleware.LoginRequired(), h.Update)
		post.POST("/:id/delete", middleware.LoginRequired(), h.Delete)
		post.GET("/:id/react", middleware.LoginRequired(), h.React)
		post.GET("/:id/unreact", middleware.LoginRequired(), h.Unreact)
	}

	// JSON API with bearer-token auth.
	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/register", h.APIRegister)
		v1.POST("/auth/login",
			middleware.LoginRateLimit(cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst),
			h.APILogin)
		v1.GET("/posts", h.APIListPosts)
		v1.GET("/posts/:id", h.APIGetPost)

		protected := v1.Group("", middleware.JWTAuth(cfg.Auth.TokenSecret, opts.Auth))
		{
			protected.POST("/posts", h.APICreatePost)
			protected.PUT("/posts/:id", h.APIUpdatePost)
			protected.DELETE("/posts/:id", h.APIDeletePost)
			protected.POST("/posts/:id/react", h.APIReact)
			protected.DELETE("/posts/:id/react", h.APIUnreact)
		}
	}

	// Operational endpoints.
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
