package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	handlers "github.com/AdityaShome/Secondhome-sub002/internal/interface/http"
	"github.com/AdityaShome/Secondhome-sub002/internal/interface/middleware"
)

// AdminModule mounts moderation, user management and admin content routes
// under /admin. Every route requires the admin role.
type AdminModule struct {
	Admin      *handlers.AdminHandler
	Blog       *handlers.BlogHandler
	Newsletter *handlers.NewsletterHandler
	Auth       gin.HandlerFunc
}

func NewAdminModule(admin *handlers.AdminHandler, blog *handlers.BlogHandler, nl *handlers.NewsletterHandler, auth gin.HandlerFunc) *AdminModule {
	return &AdminModule{Admin: admin, Blog: blog, Newsletter: nl, Auth: auth}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/admin", m.Auth, middleware.RequireRole(entity.RoleAdmin))

	g.GET("/listings/pending", m.Admin.PendingListings)
	g.POST("/properties/:id/approve", m.Admin.ApproveProperty)
	g.POST("/properties/:id/reject", m.Admin.RejectProperty)
	g.POST("/properties/:id/ai-review", m.Admin.ReviewProperty)
	g.POST("/messes/:id/approve", m.Admin.ApproveMess)
	g.POST("/messes/:id/reject", m.Admin.RejectMess)
	g.POST("/messes/:id/ai-review", m.Admin.ReviewMess)

	g.GET("/users", m.Admin.Users)
	g.POST("/users/:id/ban", m.Admin.Ban)
	g.POST("/users/:id/unban", m.Admin.Unban)
	g.PUT("/users/:id/role", m.Admin.SetRole)

	g.GET("/stats", m.Admin.Stats)
	g.GET("/audit", m.Admin.Audit)

	g.POST("/blog", m.Blog.Create)
	g.PUT("/blog/:id", m.Blog.Update)
	g.DELETE("/blog/:id", m.Blog.Delete)
	g.POST("/newsletter/broadcast", m.Newsletter.Broadcast)
}
