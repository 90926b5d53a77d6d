package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
)

type NotificationHandler struct {
	Svc    *application.NotificationService
	Logger *logrus.Logger
}

func NewNotificationHandler(svc *application.NotificationService, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{Svc: svc, Logger: logger}
}

type notificationQuery struct {
	Unread bool `form:"unread"`
}

type pushKeys struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

type subscribeRequest struct {
	Endpoint string   `json:"endpoint" binding:"required,url"`
	Keys     pushKeys `json:"keys" binding:"required"`
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
}

// List GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var q notificationQuery
	if !bindQuery(c, &q) {
		return
	}
	page := pageFrom(c)
	items, total, err := h.Svc.List(c.Request.Context(), actorFrom(c).ID, q.Unread, page)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, emptyIfNil(items), "notifications", pageMeta(page, total))
}

// UnreadCount GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.Svc.UnreadCount(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": n}, "unread count", nil)
}

// MarkRead POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.Svc.MarkRead(c.Request.Context(), actorFrom(c).ID, c.Param("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true}, "notification marked as read", nil)
}

// MarkAllRead POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.Svc.MarkAllRead(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": n}, "all notifications marked as read", nil)
}

// Delete DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), actorFrom(c).ID, c.Param("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "notification deleted", nil)
}

// VAPIDPublicKey GET /api/push/vapid-public-key
func (h *NotificationHandler) VAPIDPublicKey(c *gin.Context) {
	key := h.Svc.VAPIDPublicKey()
	if key == "" {
		response.Error[any](c, http.StatusServiceUnavailable, "web push is not configured", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"public_key": key}, "vapid public key", nil)
}

// Subscribe POST /api/push/subscribe
func (h *NotificationHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if !bind(c, &req) {
		return
	}
	in := application.SubscribeInput{
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		UserAgent: c.Request.UserAgent(),
	}
	sub, err := h.Svc.Subscribe(c.Request.Context(), actorFrom(c).ID, in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, sub, "push subscription saved", nil)
}

// Unsubscribe POST /api/push/unsubscribe
func (h *NotificationHandler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Svc.Unsubscribe(c.Request.Context(), actorFrom(c).ID, req.Endpoint); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unsubscribed": true}, "push subscription removed", nil)
}
