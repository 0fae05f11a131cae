package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	RequestsTotal *prometheus.CounterVec
	PostsCreated  prometheus.Counter
	PostsDeleted  prometheus.Counter
	Reactions     *prometheus.CounterVec
}

// New registers the application counters on the given registerer; tests pass
// a fresh registry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inklet_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		PostsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inklet_posts_created_total",
			Help: "Posts created",
		}),
		PostsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inklet_posts_deleted_total",
			Help: "Posts deleted",
		}),
		Reactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inklet_reactions_total",
				Help: "Reaction toggles by action",
			},
			[]string{"action"},
		),
	}

	reg.MustRegister(m.RequestsTotal, m.PostsCreated, m.PostsDeleted, m.Reactions)
	return m
}

// Handler counts every request against its matched route template.
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
