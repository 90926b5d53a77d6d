package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/internal/container"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	"github.com/AdityaShome/Secondhome-sub002/internal/interface/middleware"
)

// ListingRoutes is implemented by the property and mess handlers.
type ListingRoutes interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Nearby(c *gin.Context)
	Search(c *gin.Context)
	Mine(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	AddImages(c *gin.Context)
}

// ListingModule mounts one listing kind under its path, e.g. /properties.
type ListingModule struct {
	Path     string
	Handler  ListingRoutes
	Auth     gin.HandlerFunc
	Optional gin.HandlerFunc
}

func NewListingModule(path string, h ListingRoutes, auth, optional gin.HandlerFunc) *ListingModule {
	return &ListingModule{Path: path, Handler: h, Auth: auth, Optional: optional}
}

func (m *ListingModule) Name() string { return "listings" + m.Path }

func (m *ListingModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	g := rg.Group(m.Path)

	// Public reads, rate-limited per IP
	public := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	g.GET("", public, m.Handler.List)
	g.GET("/nearby", public, m.Handler.Nearby)
	g.GET("/search", public, m.Handler.Search)
	g.GET("/mine", m.Auth, m.Handler.Mine)
	g.GET("/:id", public, m.Optional, m.Handler.Get)

	owner := g.Group("")
	owner.Use(
		m.Auth,
		middleware.RequireRole(entity.RoleOwner, entity.RoleAdmin),
		middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByUserID(), middleware.AllowRoles(string(entity.RoleAdmin))),
	)
	{
		owner.POST("", m.Handler.Create)
		owner.PUT("/:id", m.Handler.Update)
		owner.DELETE("/:id", m.Handler.Delete)
		owner.POST("/:id/images", m.Handler.AddImages)
	}
}
