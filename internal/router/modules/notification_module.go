package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/AdityaShome/Secondhome-sub002/internal/interface/http"
)

// NotificationModule serves the inbox under /notifications and web push
// registration under /push.
type NotificationModule struct {
	Handler *handlers.NotificationHandler
	Auth    gin.HandlerFunc
}

func NewNotificationModule(h *handlers.NotificationHandler, auth gin.HandlerFunc) *NotificationModule {
	return &NotificationModule{Handler: h, Auth: auth}
}

func (m *NotificationModule) Register(rg *gin.RouterGroup) {
	n := rg.Group("/notifications", m.Auth)
	{
		n.GET("", m.Handler.List)
		n.GET("/unread-count", m.Handler.UnreadCount)
		n.POST("/read-all", m.Handler.MarkAllRead)
		n.POST("/:id/read", m.Handler.MarkRead)
		n.DELETE("/:id", m.Handler.Delete)
	}

	p := rg.Group("/push")
	p.GET("/vapid-public-key", m.Handler.VAPIDPublicKey)
	p.POST("/subscribe", m.Auth, m.Handler.Subscribe)
	p.POST("/unsubscribe", m.Auth, m.Handler.Unsubscribe)
}
