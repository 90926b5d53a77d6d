package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/internal/mocks"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/mailer"
)

type authFixture struct {
	svc      *application.Service
	users    *mocks.MockUserRepository
	otps     *mocks.MockOTPRepository
	sessions *mocks.MockSessionStore
	outbox   *mocks.MockOutbox
}

func newAuthFixture(ctrl *gomock.Controller) authFixture {
	f := authFixture{
		users:    mocks.NewMockUserRepository(ctrl),
		otps:     mocks.NewMockOTPRepository(ctrl),
		sessions: mocks.NewMockSessionStore(ctrl),
		outbox:   mocks.NewMockOutbox(ctrl),
	}
	cfg := testConfig()
	otp := application.NewOTPService(f.otps, f.outbox, cfg, helpers.NopLogger())
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	f.svc = application.NewService(f.users, otp, jwt, f.sessions, nil, f.outbox, nil, cfg, helpers.NopLogger())
	return f
}

func userWithPassword(t *testing.T, pw string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword(pw)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &entity.User{ID: primitive.NewObjectID(), Name: "Asha", Email: "asha@example.com", PasswordHash: hash, Role: entity.RoleUser}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAuthFixture(ctrl)

	_, err := f.svc.Register(context.Background(), application.RegisterInput{
		Name: "Eve", Email: "eve@example.com", Password: "Secret123!", Role: entity.RoleAdmin,
	}, application.RequestMeta{})
	if !errors.Is(err, application.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAuthFixture(ctrl)

	f.users.EXPECT().GetByEmail(gomock.Any(), "asha@example.com").Return(&entity.User{}, nil)

	_, err := f.svc.Register(context.Background(), application.RegisterInput{
		Name: "Asha", Email: " Asha@Example.com ", Password: "Secret123!",
	}, application.RequestMeta{})
	if !errors.Is(err, application.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterLostRaceReportsTakenField(t *testing.T) {
	const email, phone = "asha@example.com", "+919876543210"
	taken := &entity.User{ID: primitive.NewObjectID()}

	cases := []struct {
		name    string
		phone   string
		recheck func(f authFixture) // lookups after Create hit a duplicate key
		want    error
	}{
		{
			name:  "phone claimed",
			phone: phone,
			recheck: func(f authFixture) {
				f.users.EXPECT().GetByEmail(gomock.Any(), email).Return(nil, repo.ErrNotFound)
				f.users.EXPECT().GetByPhone(gomock.Any(), phone).Return(taken, nil)
			},
			want: application.ErrPhoneTaken,
		},
		{
			name:  "email claimed",
			phone: phone,
			recheck: func(f authFixture) {
				f.users.EXPECT().GetByEmail(gomock.Any(), email).Return(taken, nil)
			},
			want: application.ErrEmailTaken,
		},
		{
			name: "no phone given",
			recheck: func(f authFixture) {
				f.users.EXPECT().GetByEmail(gomock.Any(), email).Return(nil, repo.ErrNotFound)
			},
			want: application.ErrEmailTaken,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newAuthFixture(ctrl)

			calls := []*gomock.Call{f.users.EXPECT().GetByEmail(gomock.Any(), email).Return(nil, repo.ErrNotFound)}
			if tc.phone != "" {
				calls = append(calls, f.users.EXPECT().GetByPhone(gomock.Any(), phone).Return(nil, repo.ErrNotFound))
			}
			calls = append(calls, f.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repo.ErrDuplicate))
			gomock.InOrder(calls...)
			tc.recheck(f)

			_, err := f.svc.Register(context.Background(), application.RegisterInput{
				Name: "Asha", Email: email, Password: "Secret123!", Phone: tc.phone,
			}, application.RequestMeta{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRegisterSendsVerificationCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAuthFixture(ctrl)

	f.users.EXPECT().GetByEmail(gomock.Any(), "owner@example.com").Return(nil, repo.ErrNotFound)
	f.users.EXPECT().GetByPhone(gomock.Any(), "+919876543210").Return(nil, repo.ErrNotFound)
	f.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *entity.User) error {
		if u.Role != entity.RoleOwner || u.PasswordHash == "" || u.PasswordHash == "Secret123!" {
			t.Fatalf("unexpected user %+v", u)
		}
		u.ID = primitive.NewObjectID()
		return nil
	})
	f.otps.EXPECT().Replace(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, o *entity.OTP) error {
		if o.Purpose != entity.PurposeVerifyEmail || o.Target != "owner@example.com" {
			t.Fatalf("unexpected otp %+v", o)
		}
		return nil
	})
	f.outbox.EXPECT().EnqueueEmail(gomock.Any(), gomock.Any()).Return(nil)

	u, err := f.svc.Register(context.Background(), application.RegisterInput{
		Name: "Ravi", Email: "owner@example.com", Password: "Secret123!", Phone: "+919876543210", Role: entity.RoleOwner,
	}, application.RequestMeta{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.EmailVerified {
		t.Fatal("new account must not be verified")
	}
}

func TestLogin(t *testing.T) {
	u := userWithPassword(t, "Secret123!")

	t.Run("wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newAuthFixture(ctrl)
		f.users.EXPECT().GetByEmail(gomock.Any(), u.Email).Return(u, nil)

		_, _, err := f.svc.Login(context.Background(), u.Email, "nope", application.RequestMeta{})
		if !errors.Is(err, application.ErrInvalidCredentials) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("banned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newAuthFixture(ctrl)
		banned := *u
		banned.IsBanned = true
		f.users.EXPECT().GetByEmail(gomock.Any(), u.Email).Return(&banned, nil)

		_, _, err := f.svc.Login(context.Background(), u.Email, "Secret123!", application.RequestMeta{})
		if !errors.Is(err, application.ErrBanned) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("success stores session and sends login email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newAuthFixture(ctrl)
		cp := *u
		f.users.EXPECT().GetByEmail(gomock.Any(), u.Email).Return(&cp, nil)
		f.users.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		var sid string
		f.sessions.EXPECT().Save(gomock.Any(), u.ID.Hex(), gomock.Any()).DoAndReturn(func(_ context.Context, _ string, fields map[string]any) error {
			sid, _ = fields["sid"].(string)
			return nil
		})
		f.outbox.EXPECT().EnqueueEmail(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, job mailer.EmailJob) error {
			if job.Template != "login_notification" || job.Data["IP"] != "203.0.113.9" {
				t.Fatalf("unexpected login email %+v", job)
			}
			return nil
		})

		_, pair, err := f.svc.Login(context.Background(), u.Email, "Secret123!", application.RequestMeta{IP: "203.0.113.9"})
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		claims, err := f.svc.JWT.ParseAccessToken(pair.AccessToken)
		if err != nil {
			t.Fatalf("parse access: %v", err)
		}
		if claims.UserID != u.ID.Hex() || claims.Role != "user" || claims.SessionID != sid {
			t.Fatalf("unexpected claims %+v (sid %s)", claims, sid)
		}
	})
}

func TestRefreshRequiresMatchingSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAuthFixture(ctrl)
	u := userWithPassword(t, "Secret123!")

	refresh, _, err := f.svc.JWT.GenerateRefreshToken(u.ID.Hex(), "user", "old-sid")
	if err != nil {
		t.Fatal(err)
	}
	f.users.EXPECT().GetByID(gomock.Any(), u.ID).Return(u, nil)
	f.sessions.EXPECT().Get(gomock.Any(), u.ID.Hex()).Return(map[string]string{"sid": "newer-sid"}, nil)

	if _, _, err := f.svc.Refresh(context.Background(), refresh); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAuthFixture(ctrl)

	f.users.EXPECT().GetByEmail(gomock.Any(), "ghost@example.com").Return(nil, repo.ErrNotFound)
	if err := f.svc.ForgotPassword(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("err = %v", err)
	}
}

func TestResetPasswordDropsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAuthFixture(ctrl)
	u := userWithPassword(t, "Secret123!")
	otpID := primitive.NewObjectID()

	f.otps.EXPECT().Reserve(gomock.Any(), u.Email, entity.PurposeResetPassword, gomock.Any(), gomock.Any()).
		Return(&entity.OTP{ID: otpID, Code: "654321", Attempts: 1, ExpiresAt: time.Now().Add(time.Minute)}, nil)
	f.otps.EXPECT().Consume(gomock.Any(), otpID, "654321").Return(nil)
	f.users.EXPECT().GetByEmail(gomock.Any(), u.Email).Return(u, nil)
	f.users.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, got *entity.User) error {
		if !helpers.CompareHashAndPassword(got.PasswordHash, "NewSecret456!") {
			t.Fatal("password not updated")
		}
		return nil
	})
	f.sessions.EXPECT().Delete(gomock.Any(), u.ID.Hex()).Return(nil)

	if err := f.svc.ResetPassword(context.Background(), u.Email, "654321", "NewSecret456!", application.RequestMeta{}); err != nil {
		t.Fatalf("reset: %v", err)
	}
}
