package postgres

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, a *entity.AuditLog) error {
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO audit_logs (user_id, action, resource, ip, user_agent, metadata)
		VALUES (NULLIF($1, ''), $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING id, created_at`,
		a.UserID, a.Action, a.Resource, a.IP, a.UserAgent, meta,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *AuditRepository) List(ctx context.Context, f repo.AuditFilter) ([]entity.AuditLog, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, "user_id = $"+strconv.Itoa(len(args)))
	}
	if f.Action != "" {
		args = append(args, f.Action)
		where = append(where, "action = $"+strconv.Itoa(len(args)))
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)

	q := `SELECT id, COALESCE(user_id, ''), action, COALESCE(resource, ''), COALESCE(ip, ''),
		COALESCE(user_agent, ''), metadata, created_at FROM audit_logs`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.AuditLog{}
	for rows.Next() {
		var (
			a    entity.AuditLog
			meta []byte
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Resource, &a.IP, &a.UserAgent, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &a.Metadata)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ repo.AuditRepository = (*AuditRepository)(nil)
