package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"projecttracker/internal/handler"
	"projecttracker/pkg/otel"
)

// Pinger is satisfied by the repository store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Publisher reports broker connectivity; nil when events are disabled.
type Publisher interface {
	IsConnected() bool
}

type Deps struct {
	Projects  *handler.ProjectHandler
	Tasks     *handler.TaskHandler
	DB        Pinger
	Publisher Publisher
	Logger    *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	handler.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), TraceID(), otel.GinMiddleware(), RequestLog(d.Logger), Metrics())

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := d.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		if d.Publisher != nil && !d.Publisher.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "mq_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	d.Projects.Register(r)
	d.Tasks.Register(r)
	r.NoRoute(handler.NoRoute(d.Logger))
	return r
}
