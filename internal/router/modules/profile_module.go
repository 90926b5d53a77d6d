package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/internal/container"
	handlers "github.com/AdityaShome/Secondhome-sub002/internal/interface/http"
	"github.com/AdityaShome/Secondhome-sub002/internal/interface/middleware"
)

// ProfileModule: GET/PUT /api/profile, POST /api/profile/avatar. All protected.
type ProfileModule struct {
	Handler *handlers.UserHandler
	Auth    gin.HandlerFunc
}

func NewProfileModule(h *handlers.UserHandler, auth gin.HandlerFunc) *ProfileModule {
	return &ProfileModule{Handler: h, Auth: auth}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/profile")
	g.Use(m.Auth, middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.GET("", m.Handler.GetProfile)
		g.PUT("", m.Handler.UpdateProfile)
		g.POST("/avatar", m.Handler.UploadAvatar)
	}
}
