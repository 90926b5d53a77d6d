package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
)

type BlogHandler struct {
	Svc    *application.BlogService
	Logger *logrus.Logger
}

func NewBlogHandler(svc *application.BlogService, logger *logrus.Logger) *BlogHandler {
	return &BlogHandler{Svc: svc, Logger: logger}
}

type blogRequest struct {
	Title      string   `json:"title" binding:"required,min=3,max=200"`
	Excerpt    string   `json:"excerpt" binding:"max=500"`
	Content    string   `json:"content" binding:"required"`
	CoverImage string   `json:"cover_image" binding:"omitempty,url"`
	Tags       []string `json:"tags" binding:"max=10,dive,max=40"`
	Published  bool     `json:"published"`
}

type blogPatchRequest struct {
	Title      *string  `json:"title" binding:"omitempty,min=3,max=200"`
	Excerpt    *string  `json:"excerpt" binding:"omitempty,max=500"`
	Content    *string  `json:"content" binding:"omitempty,min=1"`
	CoverImage *string  `json:"cover_image" binding:"omitempty,url"`
	Tags       []string `json:"tags" binding:"omitempty,max=10,dive,max=40"`
	Published  *bool    `json:"published"`
}

// List GET /api/blog
func (h *BlogHandler) List(c *gin.Context) {
	page := pageFrom(c)
	posts, total, err := h.Svc.List(c.Request.Context(), c.Query("tag"), page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, emptyIfNil(posts), "blog posts", pageMeta(page, total))
}

// GetBySlug GET /api/blog/:slug
func (h *BlogHandler) GetBySlug(c *gin.Context) {
	p, err := h.Svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "blog post", nil)
}

// Create POST /api/admin/blog
func (h *BlogHandler) Create(c *gin.Context) {
	var req blogRequest
	if !bind(c, &req) {
		return
	}
	in := application.BlogInput{
		Title:      req.Title,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
		Published:  req.Published,
	}
	p, err := h.Svc.Create(c.Request.Context(), actorFrom(c), in, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "blog post created", nil)
}

// Update PUT /api/admin/blog/:id
func (h *BlogHandler) Update(c *gin.Context) {
	var req blogPatchRequest
	if !bind(c, &req) {
		return
	}
	patch := application.BlogPatch{
		Title:      req.Title,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
		Published:  req.Published,
	}
	p, err := h.Svc.Update(c.Request.Context(), actorFrom(c), c.Param("id"), patch, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "blog post updated", nil)
}

// Delete DELETE /api/admin/blog/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), actorFrom(c), c.Param("id"), metaFrom(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "blog post deleted", nil)
}

type NewsletterHandler struct {
	Svc    *application.NewsletterService
	Logger *logrus.Logger
}

func NewNewsletterHandler(svc *application.NewsletterService, logger *logrus.Logger) *NewsletterHandler {
	return &NewsletterHandler{Svc: svc, Logger: logger}
}

type broadcastRequest struct {
	Subject string `json:"subject" binding:"required,max=200"`
	HTML    string `json:"html" binding:"required_without=Text"`
	Text    string `json:"text" binding:"required_without=HTML"`
}

// Subscribe POST /api/newsletter/subscribe
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req emailRequest
	if !bind(c, &req) {
		return
	}
	if _, err := h.Svc.Subscribe(c.Request.Context(), req.Email); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subscribed": true}, "subscribed to the newsletter", nil)
}

// Unsubscribe GET|POST /api/newsletter/unsubscribe?token=
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = c.PostForm("token")
	}
	if token == "" {
		response.Error[any](c, http.StatusBadRequest, "token is required", nil)
		return
	}
	if err := h.Svc.Unsubscribe(c.Request.Context(), token); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unsubscribed": true}, "unsubscribed from the newsletter", nil)
}

// Broadcast POST /api/admin/newsletter/broadcast
func (h *NewsletterHandler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if !bind(c, &req) {
		return
	}
	in := application.BroadcastInput{Subject: req.Subject, HTML: req.HTML, Text: req.Text}
	n, err := h.Svc.Broadcast(c.Request.Context(), actorFrom(c), in, metaFrom(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"queued": n}, "broadcast queued", nil)
}
