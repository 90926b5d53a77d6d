package application

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/mailer"
	"github.com/AdityaShome/Secondhome-sub002/pkg/sms"
)

//go:generate mockgen -destination=../mocks/application_mocks.go -package=mocks github.com/AdityaShome/Secondhome-sub002/internal/application Outbox,SessionStore,ListCache,Notifier

// Outbox queues outgoing email and SMS for the workers.
type Outbox interface {
	EnqueueEmail(ctx context.Context, job mailer.EmailJob) error
	EnqueueSMS(ctx context.Context, job sms.Job) error
}

// SessionStore holds the per-user session hash checked by the auth middleware.
type SessionStore interface {
	Save(ctx context.Context, userID string, fields map[string]any) error
	Patch(ctx context.Context, userID string, fields map[string]any) error
	Get(ctx context.Context, userID string) (map[string]string, error)
	Delete(ctx context.Context, userID string) error
}

// ListCache stores public list pages.
type ListCache interface {
	Key(prefix string, params map[string]string) string
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context, prefix string) error
}

type NotifyInput struct {
	UserID  primitive.ObjectID
	Type    entity.NotificationType
	Title   string
	Message string
	Link    string // frontend path used by push and email
	Data    map[string]string
	Email   bool
}

// Notifier stores an in-app notification and fans it out to push and email.
type Notifier interface {
	Notify(ctx context.Context, in NotifyInput) error
}

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role entity.Role
}

func (a Actor) IsAdmin() bool { return a.Role == entity.RoleAdmin }

// RequestMeta carries client details for audit entries and login emails.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Auditor writes audit rows. Failures are logged and never fail the caller.
type Auditor struct {
	Repo   repo.AuditRepository
	Logger *logrus.Logger
}

func NewAuditor(r repo.AuditRepository, logger *logrus.Logger) *Auditor {
	return &Auditor{Repo: r, Logger: logger}
}

func (a *Auditor) Record(ctx context.Context, userID, action, resource string, meta RequestMeta, md map[string]any) {
	if a == nil || a.Repo == nil {
		return
	}
	err := a.Repo.Insert(ctx, &entity.AuditLog{
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  md,
	})
	if err != nil && a.Logger != nil {
		a.Logger.WithError(err).WithFields(logrus.Fields{"action": action, "resource": resource}).Warn("audit insert failed")
	}
}
