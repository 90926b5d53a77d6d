package repository

import (
	"context"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
)

type AuditFilter struct {
	UserID string
	Action string
	Limit  int
}

// AuditRepository is backed by Postgres.
type AuditRepository interface {
	Insert(ctx context.Context, a *entity.AuditLog) error
	List(ctx context.Context, f AuditFilter) ([]entity.AuditLog, error)
}

// PaymentRepository is the append-only payment ledger in Postgres.
type PaymentRepository interface {
	Insert(ctx context.Context, t *entity.PaymentTransaction) error
	ListByBooking(ctx context.Context, bookingID string) ([]entity.PaymentTransaction, error)
}
