package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/internal/mocks"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
)

type authRig struct {
	router   *gin.Engine
	users    *mocks.MockUserRepository
	sessions *mocks.MockSessionStore
	outbox   *mocks.MockOutbox
}

func newAuthRig(ctrl *gomock.Controller) authRig {
	rig := authRig{
		users:    mocks.NewMockUserRepository(ctrl),
		sessions: mocks.NewMockSessionStore(ctrl),
		outbox:   mocks.NewMockOutbox(ctrl),
	}
	cfg := testConfig()
	otp := application.NewOTPService(mocks.NewMockOTPRepository(ctrl), rig.outbox, cfg, helpers.NopLogger())
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	svc := application.NewService(rig.users, otp, jwt, rig.sessions, nil, rig.outbox, nil, cfg, helpers.NopLogger())
	h := NewAuthHandler(svc, helpers.NopLogger(), "", false)

	rig.router = gin.New()
	rig.router.POST("/auth/register", h.Register)
	rig.router.POST("/auth/login", h.Login)
	rig.router.POST("/auth/password/forgot", h.ForgotPassword)
	return rig
}

func TestRegisterValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	rig := newAuthRig(ctrl)

	w, env := perform(t, rig.router, http.MethodPost, "/auth/register", map[string]string{
		"name": "A", "email": "not-an-email", "password": "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", w.Code)
	}
	if env.Success || len(env.Error) == 0 {
		t.Fatalf("expected validation details, got %s", w.Body.String())
	}
}

func TestRegisterRejectsAdminRoleAtBinding(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	rig := newAuthRig(ctrl)

	w, _ := perform(t, rig.router, http.MethodPost, "/auth/register", map[string]string{
		"name": "Eve", "email": "eve@example.com", "password": "Secret123!", "role": "admin",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestLoginSetsCookies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	rig := newAuthRig(ctrl)

	hash, _ := helpers.HashPassword("Secret123!")
	u := &entity.User{ID: primitive.NewObjectID(), Name: "Asha", Email: "asha@example.com", PasswordHash: hash, Role: entity.RoleOwner}
	rig.users.EXPECT().GetByEmail(gomock.Any(), "asha@example.com").Return(u, nil)
	rig.users.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	rig.sessions.EXPECT().Save(gomock.Any(), u.ID.Hex(), gomock.Any()).Return(nil)
	rig.outbox.EXPECT().EnqueueEmail(gomock.Any(), gomock.Any()).Return(nil)

	w, env := perform(t, rig.router, http.MethodPost, "/auth/login", map[string]string{
		"email": "asha@example.com", "password": "Secret123!",
	})
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("code = %d body = %s", w.Code, w.Body.String())
	}
	names := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		if c.Value != "" && c.HttpOnly {
			names[c.Name] = true
		}
	}
	if !names[helpers.AccessCookie] || !names[helpers.RefreshCookie] {
		t.Fatalf("cookies not set: %v", w.Result().Cookies())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	rig := newAuthRig(ctrl)

	hash, _ := helpers.HashPassword("Secret123!")
	rig.users.EXPECT().GetByEmail(gomock.Any(), "asha@example.com").
		Return(&entity.User{ID: primitive.NewObjectID(), Email: "asha@example.com", PasswordHash: hash}, nil)

	w, _ := perform(t, rig.router, http.MethodPost, "/auth/login", map[string]string{
		"email": "asha@example.com", "password": "nope",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestForgotPasswordDoesNotEnumerate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	rig := newAuthRig(ctrl)

	rig.users.EXPECT().GetByEmail(gomock.Any(), "ghost@example.com").
		DoAndReturn(func(context.Context, string) (*entity.User, error) { return nil, repo.ErrNotFound })

	w, _ := perform(t, rig.router, http.MethodPost, "/auth/password/forgot", map[string]string{"email": "ghost@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
}
