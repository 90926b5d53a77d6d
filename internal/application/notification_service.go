package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/config"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/mailer"
	mailtpl "github.com/AdityaShome/Secondhome-sub002/pkg/mailer/templates"
	"github.com/AdityaShome/Secondhome-sub002/pkg/push"
)

const deliveryTimeout = 30 * time.Second

// NotificationService stores in-app notifications and delivers them to push
// endpoints and email on a bounded worker pool.
type NotificationService struct {
	Repo   repo.NotificationRepository
	Subs   repo.PushSubscriptionRepository
	Users  repo.UserRepository
	Push   push.Sender
	Outbox Outbox
	Cfg    *config.Config
	Logger *logrus.Logger

	// Pool runs deliveries. When nil they run inline.
	Pool *workerpool.WorkerPool
}

func NewNotificationService(r repo.NotificationRepository, subs repo.PushSubscriptionRepository, users repo.UserRepository, sender push.Sender, outbox Outbox, cfg *config.Config, logger *logrus.Logger) *NotificationService {
	workers := cfg.NotifyWorkers
	if workers <= 0 {
		workers = 4
	}
	return &NotificationService{
		Repo:   r,
		Subs:   subs,
		Users:  users,
		Push:   sender,
		Outbox: outbox,
		Cfg:    cfg,
		Logger: logger,
		Pool:   workerpool.New(workers),
	}
}

// Close waits for queued deliveries.
func (s *NotificationService) Close() {
	if s.Pool != nil {
		s.Pool.StopWait()
	}
}

func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) error {
	n := &entity.Notification{
		UserID:  in.UserID,
		Type:    in.Type,
		Title:   in.Title,
		Message: in.Message,
		Data:    in.Data,
	}
	if in.Link != "" {
		if n.Data == nil {
			n.Data = map[string]string{}
		}
		n.Data["link"] = in.Link
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return err
	}

	task := func() {
		dctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		s.deliver(dctx, n, in)
	}
	if s.Pool == nil {
		task()
	} else {
		s.Pool.Submit(task)
	}
	return nil
}

func (s *NotificationService) link(path string) string {
	if path == "" {
		return strings.TrimRight(s.Cfg.FrontendURL, "/")
	}
	return strings.TrimRight(s.Cfg.FrontendURL, "/") + path
}

func (s *NotificationService) deliver(ctx context.Context, n *entity.Notification, in NotifyInput) {
	log := s.Logger.WithFields(logrus.Fields{"notification_id": n.ID.Hex(), "user_id": n.UserID.Hex()})

	if s.Push != nil && s.Subs != nil {
		subs, err := s.Subs.ListByUser(ctx, n.UserID)
		if err != nil {
			log.WithError(err).Warn("list push subscriptions failed")
		}
		msg := push.Message{
			Title: n.Title,
			Body:  n.Message,
			Icon:  s.Cfg.LogoURL,
			URL:   s.link(in.Link),
			Data:  map[string]any{"id": n.ID.Hex(), "type": string(n.Type)},
		}
		for _, sub := range subs {
			err := s.Push.Send(ctx, push.Subscription{Endpoint: sub.Endpoint, P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth}, msg)
			switch {
			case errors.Is(err, push.ErrGone):
				if dErr := s.Subs.DeleteByEndpoint(ctx, sub.Endpoint); dErr != nil {
					log.WithError(dErr).Warn("delete stale push subscription failed")
				}
			case err != nil:
				log.WithError(err).Warn("push send failed")
			}
		}
	}

	if in.Email && s.Outbox != nil && s.Users != nil {
		u, err := s.Users.GetByID(ctx, n.UserID)
		if err != nil {
			log.WithError(err).Warn("load notification recipient failed")
			return
		}
		job := s.emailJob(u, n, in)
		if err := s.Outbox.EnqueueEmail(ctx, job); err != nil {
			log.WithError(err).Warn("enqueue notification email failed")
		}
	}
}

// emailJob picks the template for a notification type. Booking and listing
// updates get their own layouts; everything else uses the generic one.
func (s *NotificationService) emailJob(u *entity.User, n *entity.Notification, in NotifyInput) mailer.EmailJob {
	action := mailtpl.WithAction(s.link(in.Link), "Open "+s.Cfg.CompanyName)
	job := mailer.EmailJob{To: u.Email}
	switch n.Type {
	case entity.NotifyBookingCreated, entity.NotifyBookingConfirmed, entity.NotifyBookingRejected,
		entity.NotifyBookingCancelled, entity.NotifyPaymentReceived:
		job.Template = mailtpl.BookingUpdate
		job.Data = mailtpl.NewBookingUpdateData(s.Cfg, u.Name, u.Email, in.Data["status"], in.Data["listing_title"],
			action, mailtpl.WithReason(in.Data["reason"]),
			mailtpl.WithDetails(map[string]string{"Payment": in.Data["payment_status"]}),
		)
	case entity.NotifyListingApproved, entity.NotifyListingRejected:
		job.Template = mailtpl.ListingStatus
		job.Data = mailtpl.NewListingStatusData(s.Cfg, u.Name, u.Email, in.Data["status"], in.Data["listing_title"],
			action, mailtpl.WithReason(in.Data["reason"]),
		)
	default:
		job.Template = mailtpl.Notification
		job.Data = mailtpl.NewNotificationData(s.Cfg, u.Name, u.Email, n.Title, n.Message, action)
	}
	return job
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page repo.Page) ([]entity.Notification, int64, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, 0, ErrForbidden
	}
	return s.Repo.List(ctx, uid, unreadOnly, page)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	uid, err := parseID(userID)
	if err != nil {
		return 0, ErrForbidden
	}
	return s.Repo.CountUnread(ctx, uid)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	uid, err := parseID(userID)
	if err != nil {
		return ErrForbidden
	}
	nid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.MarkRead(ctx, nid, uid); errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	uid, err := parseID(userID)
	if err != nil {
		return 0, ErrForbidden
	}
	return s.Repo.MarkAllRead(ctx, uid)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	uid, err := parseID(userID)
	if err != nil {
		return ErrForbidden
	}
	nid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, nid, uid); errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return nil
}

// VAPIDPublicKey is empty when web push is not configured.
func (s *NotificationService) VAPIDPublicKey() string {
	if s.Push == nil {
		return ""
	}
	return s.Push.PublicKey()
}

type SubscribeInput struct {
	Endpoint  string
	P256dh    string
	Auth      string
	UserAgent string
}

func (s *NotificationService) Subscribe(ctx context.Context, userID string, in SubscribeInput) (*entity.PushSubscription, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, ErrForbidden
	}
	if !strings.HasPrefix(in.Endpoint, "https://") {
		return nil, invalid("endpoint must be an https URL")
	}
	sub := &entity.PushSubscription{
		UserID:    uid,
		Endpoint:  in.Endpoint,
		Keys:      entity.PushKeys{P256dh: in.P256dh, Auth: in.Auth},
		UserAgent: in.UserAgent,
	}
	if err := s.Subs.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *NotificationService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	uid, err := parseID(userID)
	if err != nil {
		return ErrForbidden
	}
	if err := s.Subs.DeleteForUser(ctx, uid, endpoint); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	return nil
}
