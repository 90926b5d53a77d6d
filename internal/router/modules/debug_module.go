package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/internal/container"
	"github.com/AdityaShome/Secondhome-sub002/internal/interface/middleware"
	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
)

// DebugModule exposes expvar metrics to private networks only.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/debug/vars", middleware.PrivateOnly(), rl, gin.WrapH(expvar.Handler()))
}

// HealthModule answers liveness probes and pings the backing stores.
type HealthModule struct{}

func NewHealthModule() *HealthModule { return &HealthModule{} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()
		checks := gin.H{}
		status := http.StatusOK
		if db := container.GetMongo(); db != nil {
			if err := db.Client().Ping(ctx, nil); err != nil {
				checks["mongo"] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				checks["mongo"] = "ok"
			}
		}
		if rdb := container.GetRedis(); rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				checks["redis"] = "ok"
			}
		}
		if pool := container.GetPGPool(); pool != nil {
			if err := pool.Ping(ctx); err != nil {
				checks["postgres"] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				checks["postgres"] = "ok"
			}
		}
		if status != http.StatusOK {
			response.Error[any](c, status, "unhealthy", checks)
			return
		}
		response.Success(c, status, checks, "healthy", nil)
	})
}
