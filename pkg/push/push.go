package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
)

//go:generate mockgen -destination=../../internal/mocks/push_mocks.go -package=mocks github.com/AdityaShome/Secondhome-sub002/pkg/push Sender

// ErrGone means the push service no longer knows the subscription.
var ErrGone = errors.New("push subscription gone")

// Subscription is a browser push endpoint with its encryption keys.
type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Message is the JSON payload the service worker receives.
type Message struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon,omitempty"`
	URL   string         `json:"url,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, sub Subscription, msg Message) error
	PublicKey() string
}

// WebPush signs pushes with VAPID keys.
type WebPush struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
}

func NewWebPush(publicKey, privateKey, subscriber string) *WebPush {
	return &WebPush{publicKey: publicKey, privateKey: privateKey, subscriber: subscriber, ttl: 60}
}

func (w *WebPush) PublicKey() string { return w.publicKey }

// Enabled reports whether VAPID keys are configured.
func (w *WebPush) Enabled() bool { return w.publicKey != "" && w.privateKey != "" }

func (w *WebPush) Send(ctx context.Context, sub Subscription, msg Message) error {
	if !w.Enabled() {
		return nil
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &webpush.Options{
		Subscriber:      w.subscriber,
		VAPIDPublicKey:  w.publicKey,
		VAPIDPrivateKey: w.privateKey,
		TTL:             w.ttl,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return ErrGone
	case resp.StatusCode >= 300:
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

var _ Sender = (*WebPush)(nil)
