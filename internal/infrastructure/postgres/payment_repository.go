package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) Insert(ctx context.Context, t *entity.PaymentTransaction) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO payment_transactions (booking_id, user_id, order_id, payment_id, event, amount, currency)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
		RETURNING id, created_at`,
		t.BookingID, t.UserID, t.OrderID, t.PaymentID, string(t.Event), t.Amount, t.Currency,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID string) ([]entity.PaymentTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, booking_id, user_id, COALESCE(order_id, ''), COALESCE(payment_id, ''), event, amount, currency, created_at
		FROM payment_transactions WHERE booking_id = $1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.PaymentTransaction, error) {
		var t entity.PaymentTransaction
		err := row.Scan(&t.ID, &t.BookingID, &t.UserID, &t.OrderID, &t.PaymentID, &t.Event, &t.Amount, &t.Currency, &t.CreatedAt)
		return t, err
	})
}

var _ repo.PaymentRepository = (*PaymentRepository)(nil)
