package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun sends through one Mailgun domain. Every message carries Tag.
type Mailgun struct {
	From   string
	Tag    string
	client mg.Mailgun
}

// NewMailgun targets the US region unless apiBase is set (mg.APIBaseEU).
func NewMailgun(domain, apiKey, from, apiBase, tag string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{From: from, Tag: tag, client: client}
}

// Send delivers text and, when non-empty, html as alternative bodies.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.From, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if m.Tag != "" {
		_ = msg.AddTag(m.Tag)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}

var _ Sender = (*Mailgun)(nil)
