package entity

import "time"

// AuditLog rows live in Postgres.
type AuditLog struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id,omitempty"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource,omitempty"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type PaymentEvent string

const (
	PaymentCreated         PaymentEvent = "created"
	PaymentCaptured        PaymentEvent = "captured"
	PaymentFailedEvent     PaymentEvent = "failed"
	PaymentRefundRequested PaymentEvent = "refund_requested"
)

// PaymentTransaction is an append-only ledger entry for a booking payment.
type PaymentTransaction struct {
	ID        int64        `json:"id"`
	BookingID string       `json:"booking_id"`
	UserID    string       `json:"user_id"`
	OrderID   string       `json:"order_id,omitempty"`
	PaymentID string       `json:"payment_id,omitempty"`
	Event     PaymentEvent `json:"event"`
	Amount    int64        `json:"amount"` // minor units
	Currency  string       `json:"currency"`
	CreatedAt time.Time    `json:"created_at"`
}
