package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/internal/container"
	handlers "github.com/AdityaShome/Secondhome-sub002/internal/interface/http"
	"github.com/AdityaShome/Secondhome-sub002/internal/interface/middleware"
)

type BookingModule struct {
	Handler *handlers.BookingHandler
	Auth    gin.HandlerFunc
}

func NewBookingModule(h *handlers.BookingHandler, auth gin.HandlerFunc) *BookingModule {
	return &BookingModule{Handler: h, Auth: auth}
}

func (m *BookingModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	g := rg.Group("/bookings")
	g.Use(m.Auth, middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.POST("", middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByUserID(), nil), m.Handler.Create)
		g.GET("/mine", m.Handler.Mine)
		g.GET("/owner", m.Handler.Incoming)
		g.GET("/:id", m.Handler.Get)
		g.GET("/:id/payments", m.Handler.Payments)
		g.POST("/:id/verify-payment", m.Handler.VerifyPayment)
		g.POST("/:id/confirm", m.Handler.Confirm)
		g.POST("/:id/reject", m.Handler.Reject)
		g.POST("/:id/cancel", m.Handler.Cancel)
	}
}
