package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
)

func TestNewsletterUnsubscribeRequiresToken(t *testing.T) {
	h := NewNewsletterHandler(&application.NewsletterService{}, helpers.NopLogger())
	r := gin.New()
	r.GET("/newsletter/unsubscribe", h.Unsubscribe)

	w, env := perform(t, r, http.MethodGet, "/newsletter/unsubscribe", nil)
	if w.Code != http.StatusBadRequest || env.Message != "token is required" {
		t.Fatalf("code = %d message = %q", w.Code, env.Message)
	}
}

func TestBroadcastNeedsABody(t *testing.T) {
	h := NewNewsletterHandler(&application.NewsletterService{}, helpers.NopLogger())
	r := gin.New()
	r.POST("/admin/newsletter/broadcast", h.Broadcast)

	w, _ := perform(t, r, http.MethodPost, "/admin/newsletter/broadcast", map[string]string{"subject": "Hello"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestVAPIDKeyUnavailableWithoutPush(t *testing.T) {
	h := NewNotificationHandler(&application.NotificationService{}, helpers.NopLogger())
	r := gin.New()
	r.GET("/push/vapid-public-key", h.VAPIDPublicKey)

	w, _ := perform(t, r, http.MethodGet, "/push/vapid-public-key", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d", w.Code)
	}
}
