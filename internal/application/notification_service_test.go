package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	"github.com/AdityaShome/Secondhome-sub002/internal/mocks"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/mailer"
	"github.com/AdityaShome/Secondhome-sub002/pkg/push"
)

type notifyFixture struct {
	svc    *application.NotificationService
	repo   *mocks.MockNotificationRepository
	subs   *mocks.MockPushSubscriptionRepository
	users  *mocks.MockUserRepository
	sender *mocks.MockSender
	outbox *mocks.MockOutbox
}

// newNotifyFixture runs deliveries inline so expectations are met before Notify returns.
func newNotifyFixture(ctrl *gomock.Controller) notifyFixture {
	f := notifyFixture{
		repo:   mocks.NewMockNotificationRepository(ctrl),
		subs:   mocks.NewMockPushSubscriptionRepository(ctrl),
		users:  mocks.NewMockUserRepository(ctrl),
		sender: mocks.NewMockSender(ctrl),
		outbox: mocks.NewMockOutbox(ctrl),
	}
	f.svc = &application.NotificationService{
		Repo:   f.repo,
		Subs:   f.subs,
		Users:  f.users,
		Push:   f.sender,
		Outbox: f.outbox,
		Cfg:    testConfig(),
		Logger: helpers.NopLogger(),
	}
	return f
}

func TestNotifyPushesAndDropsGoneSubscriptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newNotifyFixture(ctrl)
	uid := primitive.NewObjectID()

	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n *entity.Notification) error {
		if n.Data["link"] != "/bookings/1" || n.Data["booking_id"] != "1" {
			t.Fatalf("unexpected data %v", n.Data)
		}
		n.ID = primitive.NewObjectID()
		return nil
	})
	f.subs.EXPECT().ListByUser(gomock.Any(), uid).Return([]entity.PushSubscription{
		{Endpoint: "https://push.example/live", Keys: entity.PushKeys{P256dh: "p", Auth: "a"}},
		{Endpoint: "https://push.example/gone", Keys: entity.PushKeys{P256dh: "p", Auth: "a"}},
	}, nil)
	f.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, sub push.Subscription, msg push.Message) error {
		if msg.URL != "http://localhost:3000/bookings/1" {
			t.Fatalf("url = %s", msg.URL)
		}
		if sub.Endpoint == "https://push.example/gone" {
			return push.ErrGone
		}
		return nil
	}).Times(2)
	f.subs.EXPECT().DeleteByEndpoint(gomock.Any(), "https://push.example/gone").Return(nil)

	err := f.svc.Notify(context.Background(), application.NotifyInput{
		UserID: uid,
		Type:   entity.NotifyBookingCreated,
		Title:  "New booking",
		Link:   "/bookings/1",
		Data:   map[string]string{"booking_id": "1"},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
}

func TestNotifyQueuesEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newNotifyFixture(ctrl)
	f.svc.Push = nil
	uid := primitive.NewObjectID()

	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.users.EXPECT().GetByID(gomock.Any(), uid).Return(&entity.User{ID: uid, Name: "Asha", Email: "asha@example.com"}, nil)
	f.outbox.EXPECT().EnqueueEmail(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, job mailer.EmailJob) error {
		if job.To != "asha@example.com" || job.Template != "notification" {
			t.Fatalf("unexpected job %+v", job)
		}
		return nil
	})

	err := f.svc.Notify(context.Background(), application.NotifyInput{UserID: uid, Title: "Hi", Message: "There", Email: true})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
}

func TestNotifyEmailTemplateByType(t *testing.T) {
	cases := []struct {
		typ  entity.NotificationType
		want string
	}{
		{entity.NotifyPaymentReceived, "booking_update"},
		{entity.NotifyListingRejected, "listing_status"},
		{entity.NotifySystem, "notification"},
	}
	for _, tc := range cases {
		t.Run(string(tc.typ), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newNotifyFixture(ctrl)
			f.svc.Push = nil
			uid := primitive.NewObjectID()

			f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			f.users.EXPECT().GetByID(gomock.Any(), uid).Return(&entity.User{ID: uid, Name: "Asha", Email: "asha@example.com"}, nil)
			f.outbox.EXPECT().EnqueueEmail(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, job mailer.EmailJob) error {
				if job.Template != tc.want {
					t.Fatalf("template = %s, want %s", job.Template, tc.want)
				}
				if job.Data["Title"] == "" {
					t.Fatalf("missing title in %+v", job.Data)
				}
				return nil
			})

			err := f.svc.Notify(context.Background(), application.NotifyInput{
				UserID:  uid,
				Type:    tc.typ,
				Title:   "Update",
				Message: "Something changed",
				Data:    map[string]string{"status": "rejected", "listing_title": "Sunrise PG", "reason": "blurry photos"},
				Email:   true,
			})
			if err != nil {
				t.Fatalf("notify: %v", err)
			}
		})
	}
}

func TestNotifyStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newNotifyFixture(ctrl)

	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("mongo down"))
	if err := f.svc.Notify(context.Background(), application.NotifyInput{UserID: primitive.NewObjectID()}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSubscribeRequiresHTTPS(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newNotifyFixture(ctrl)

	uid := primitive.NewObjectID().Hex()
	if _, err := f.svc.Subscribe(context.Background(), uid, application.SubscribeInput{Endpoint: "http://insecure"}); !errors.Is(err, application.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}

	f.subs.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	sub, err := f.svc.Subscribe(context.Background(), uid, application.SubscribeInput{Endpoint: "https://push.example/1", P256dh: "p", Auth: "a"})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.UserID.Hex() != uid || sub.Keys.Auth != "a" {
		t.Fatalf("unexpected subscription %+v", sub)
	}
}

func TestNotificationMarkReadNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newNotifyFixture(ctrl)

	uid := primitive.NewObjectID()
	nid := primitive.NewObjectID()
	f.repo.EXPECT().MarkRead(gomock.Any(), nid, uid).Return(repoNotFound())

	if err := f.svc.MarkRead(context.Background(), uid.Hex(), nid.Hex()); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
