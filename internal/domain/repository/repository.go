package repository

import "errors"

//go:generate mockgen -destination=../../mocks/repository_mocks.go -package=mocks github.com/AdityaShome/Secondhome-sub002/internal/domain/repository UserRepository,OTPRepository,PropertyRepository,MessRepository,ListingIndex,BookingRepository,NotificationRepository,PushSubscriptionRepository,BlogRepository,NewsletterRepository,AuditRepository,PaymentRepository

// ErrConflict is returned when a conditional update matched nothing.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrConflict  = errors.New("conflicting update")
)

// Page is 1-based pagination input.
type Page struct {
	Page  int
	Limit int
}

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Normalize clamps page and limit to sane bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Skip() int64 {
	n := p.Normalize()
	return int64((n.Page - 1) * n.Limit)
}
