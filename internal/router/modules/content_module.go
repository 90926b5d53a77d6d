package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/internal/container"
	handlers "github.com/AdityaShome/Secondhome-sub002/internal/interface/http"
	"github.com/AdityaShome/Secondhome-sub002/internal/interface/middleware"
)

// ContentModule: public blog and newsletter routes.
type ContentModule struct {
	Blog       *handlers.BlogHandler
	Newsletter *handlers.NewsletterHandler
}

func NewContentModule(blog *handlers.BlogHandler, nl *handlers.NewsletterHandler) *ContentModule {
	return &ContentModule{Blog: blog, Newsletter: nl}
}

func (m *ContentModule) Register(rg *gin.RouterGroup) {
	rg.GET("/blog", m.Blog.List)
	rg.GET("/blog/:slug", m.Blog.GetBySlug)

	rl := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	rg.POST("/newsletter/subscribe", rl, m.Newsletter.Subscribe)
	rg.GET("/newsletter/unsubscribe", rl, m.Newsletter.Unsubscribe)
	rg.POST("/newsletter/unsubscribe", rl, m.Newsletter.Unsubscribe)
}
