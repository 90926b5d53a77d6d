package templates

import (
	"time"

	"github.com/AdityaShome/Secondhome-sub002/config"
)

const timeLayout = "02 January 2006, 15:04"

// Option mutates EmailData before it is queued.
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format(timeLayout)
	}
}
func WithAction(url, text string) Option {
	return func(d *EmailData) {
		d.ActionURL = url
		d.ActionText = text
	}
}
func WithDetails(details map[string]string) Option {
	return func(d *EmailData) { d.Details = details }
}
func WithReason(reason string) Option { return func(d *EmailData) { d.Reason = reason } }

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format(timeLayout)
	}
}

// NewBaseEmailData fills the company fields from cfg and applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          recipient,
		RecipientEmail: recipient,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
		UnsubscribeURL: cfg.UnsubscribeURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewOTPData(cfg *config.Config, name, recipient, code, purpose string, expiresAt time.Time, opts ...Option) map[string]any {
	opts = append([]Option{WithExpiresAt(expiresAt)}, opts...)
	d := NewBaseEmailData(cfg, OTP, name, recipient, opts...)
	d.Code = code
	d.Purpose = purpose
	return ToMap(d)
}

func NewLoginNotificationData(cfg *config.Config, name, recipient string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, LoginNotification, name, recipient, opts...))
}

func NewBookingUpdateData(cfg *config.Config, name, recipient, status, listingTitle string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, BookingUpdate, name, recipient, opts...)
	d.Status = status
	d.Title = listingTitle
	return ToMap(d)
}

func NewListingStatusData(cfg *config.Config, name, recipient, status, listingTitle string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, ListingStatus, name, recipient, opts...)
	d.Status = status
	d.Title = listingTitle
	return ToMap(d)
}

func NewNotificationData(cfg *config.Config, name, recipient, title, message string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, Notification, name, recipient, opts...)
	d.Title = title
	d.Message = message
	return ToMap(d)
}

// NewNewsletterData builds a broadcast body. unsubscribeURL overrides the
// configured default so each recipient gets a personal link.
func NewNewsletterData(cfg *config.Config, recipient, title, message, unsubscribeURL string) map[string]any {
	d := NewBaseEmailData(cfg, Newsletter, "", recipient)
	d.Title = title
	d.Message = message
	if unsubscribeURL != "" {
		d.UnsubscribeURL = unsubscribeURL
	}
	return ToMap(d)
}
