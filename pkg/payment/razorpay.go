package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"
)

//go:generate mockgen -destination=../../internal/mocks/payment_mocks.go -package=mocks github.com/AdityaShome/Secondhome-sub002/pkg/payment Gateway

var (
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrNotConfigured    = errors.New("payment gateway not configured")
)

// Order is the subset of a gateway order the booking flow needs.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units (paise)
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	KeyID    string `json:"key_id"`
}

// Gateway creates orders and checks checkout callbacks.
type Gateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) error
}

// Razorpay implements Gateway on top of the Razorpay REST API.
type Razorpay struct {
	client *razorpay.Client
	keyID  string
	secret string
}

func NewRazorpay(keyID, secret string) *Razorpay {
	r := &Razorpay{keyID: keyID, secret: secret}
	if keyID != "" && secret != "" {
		r.client = razorpay.NewClient(keyID, secret)
	}
	return r
}

// ToMinor converts a major-unit amount to paise, rounding to the nearest unit.
func ToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (r *Razorpay) CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]string) (*Order, error) {
	if r.client == nil {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	minor := ToMinor(amount)
	if minor <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %v", amount)
	}
	data := map[string]interface{}{
		"amount":   minor,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}
	body, err := r.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return nil, errors.New("razorpay create order: missing id in response")
	}
	return &Order{ID: id, Amount: minor, Currency: currency, Receipt: receipt, KeyID: r.keyID}, nil
}

// VerifySignature checks the checkout signature, an HMAC-SHA256 of
// "order_id|payment_id" keyed with the API secret.
func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) error {
	if r.secret == "" {
		return ErrNotConfigured
	}
	want := Sign(r.secret, orderID, paymentID)
	if !hmac.Equal([]byte(want), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign computes the hex signature Razorpay sends for a paid order.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

var _ Gateway = (*Razorpay)(nil)
