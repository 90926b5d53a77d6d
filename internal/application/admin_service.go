package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

// AdminService covers user management, platform stats and the audit trail.
// Listing moderation lives on the listing services.
type AdminService struct {
	Users      repo.UserRepository
	Properties repo.PropertyRepository
	Messes     repo.MessRepository
	Bookings   repo.BookingRepository
	Newsletter repo.NewsletterRepository
	AuditLog   repo.AuditRepository
	Sessions   SessionStore
	Audit      *Auditor
	Logger     *logrus.Logger
}

type Stats struct {
	Users       int64                          `json:"users"`
	Properties  map[entity.ListingStatus]int64 `json:"properties"`
	Messes      map[entity.ListingStatus]int64 `json:"messes"`
	Bookings    map[entity.BookingStatus]int64 `json:"bookings"`
	Subscribers int64                          `json:"newsletter_subscribers"`
}

func (s *AdminService) ListUsers(ctx context.Context, f repo.UserFilter) ([]entity.User, int64, error) {
	if f.Role != "" && !f.Role.Valid() {
		return nil, 0, invalid("unknown role %q", f.Role)
	}
	return s.Users.List(ctx, f)
}

func (s *AdminService) targetUser(ctx context.Context, actor Actor, id string) (*entity.User, error) {
	if id == actor.ID {
		return nil, invalid("admins cannot change their own account here")
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	u, err := s.Users.GetByID(ctx, oid)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// SetBanned bans or unbans a user. A ban also ends the user's session.
func (s *AdminService) SetBanned(ctx context.Context, actor Actor, id string, banned bool, meta RequestMeta) (*entity.User, error) {
	u, err := s.targetUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.Users.SetBanned(ctx, u.ID, banned); err != nil {
		return nil, err
	}
	u.IsBanned = banned
	if banned && s.Sessions != nil {
		if err := s.Sessions.Delete(ctx, u.ID.Hex()); err != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("drop session of banned user failed")
		}
	}
	action := "user.unban"
	if banned {
		action = "user.ban"
	}
	s.Audit.Record(ctx, actor.ID, action, "user:"+id, meta, nil)
	return u, nil
}

// SetRole changes a role. The session is dropped so new tokens carry it.
func (s *AdminService) SetRole(ctx context.Context, actor Actor, id string, role entity.Role, meta RequestMeta) (*entity.User, error) {
	if !role.Valid() {
		return nil, invalid("unknown role %q", role)
	}
	u, err := s.targetUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return u, nil
	}
	if err := s.Users.SetRole(ctx, u.ID, role); err != nil {
		return nil, err
	}
	from := u.Role
	u.Role = role
	if s.Sessions != nil {
		_ = s.Sessions.Delete(ctx, u.ID.Hex())
	}
	s.Audit.Record(ctx, actor.ID, "user.role", "user:"+id, meta, map[string]any{"from": string(from), "to": string(role)})
	return u, nil
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.Users, err = s.Users.Count(ctx); err != nil {
		return nil, err
	}
	if st.Properties, err = s.Properties.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if st.Messes, err = s.Messes.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if st.Bookings, err = s.Bookings.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if st.Subscribers, err = s.Newsletter.CountSubscribed(ctx); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *AdminService) AuditTrail(ctx context.Context, f repo.AuditFilter) ([]entity.AuditLog, error) {
	if s.AuditLog == nil {
		return []entity.AuditLog{}, nil
	}
	return s.AuditLog.List(ctx, f)
}
