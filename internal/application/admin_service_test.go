package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AdityaShome/Secondhome-sub002/internal/application"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/internal/mocks"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
)

type adminFixture struct {
	svc      *application.AdminService
	users    *mocks.MockUserRepository
	sessions *mocks.MockSessionStore
	admin    application.Actor
}

func newAdminFixture(ctrl *gomock.Controller) adminFixture {
	f := adminFixture{
		users:    mocks.NewMockUserRepository(ctrl),
		sessions: mocks.NewMockSessionStore(ctrl),
		admin:    application.Actor{ID: primitive.NewObjectID().Hex(), Role: entity.RoleAdmin},
	}
	f.svc = &application.AdminService{Users: f.users, Sessions: f.sessions, Logger: helpers.NopLogger()}
	return f
}

func TestBanDropsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAdminFixture(ctrl)

	u := &entity.User{ID: primitive.NewObjectID(), Role: entity.RoleUser}
	f.users.EXPECT().GetByID(gomock.Any(), u.ID).Return(u, nil)
	f.users.EXPECT().SetBanned(gomock.Any(), u.ID, true).Return(nil)
	f.sessions.EXPECT().Delete(gomock.Any(), u.ID.Hex()).Return(nil)

	got, err := f.svc.SetBanned(context.Background(), f.admin, u.ID.Hex(), true, application.RequestMeta{})
	if err != nil || !got.IsBanned {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestUnbanKeepsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAdminFixture(ctrl)

	u := &entity.User{ID: primitive.NewObjectID(), IsBanned: true}
	f.users.EXPECT().GetByID(gomock.Any(), u.ID).Return(u, nil)
	f.users.EXPECT().SetBanned(gomock.Any(), u.ID, false).Return(nil)

	if _, err := f.svc.SetBanned(context.Background(), f.admin, u.ID.Hex(), false, application.RequestMeta{}); err != nil {
		t.Fatalf("unban: %v", err)
	}
}

func TestAdminCannotTargetSelf(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAdminFixture(ctrl)

	_, err := f.svc.SetBanned(context.Background(), f.admin, f.admin.ID, true, application.RequestMeta{})
	if !errors.Is(err, application.ErrInvalidInput) {
		t.Fatalf("ban self: %v", err)
	}
	_, err = f.svc.SetRole(context.Background(), f.admin, f.admin.ID, entity.RoleUser, application.RequestMeta{})
	if !errors.Is(err, application.ErrInvalidInput) {
		t.Fatalf("demote self: %v", err)
	}
}

func TestSetRole(t *testing.T) {
	cases := []struct {
		name    string
		current entity.Role
		to      entity.Role
		wantErr error
		write   bool
	}{
		{"promote", entity.RoleUser, entity.RoleOwner, nil, true},
		{"unchanged", entity.RoleOwner, entity.RoleOwner, nil, false},
		{"unknown role", entity.RoleUser, entity.Role("root"), application.ErrInvalidInput, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newAdminFixture(ctrl)

			u := &entity.User{ID: primitive.NewObjectID(), Role: tc.current}
			if tc.wantErr == nil {
				f.users.EXPECT().GetByID(gomock.Any(), u.ID).Return(u, nil)
			}
			if tc.write {
				f.users.EXPECT().SetRole(gomock.Any(), u.ID, tc.to).Return(nil)
				f.sessions.EXPECT().Delete(gomock.Any(), u.ID.Hex()).Return(nil)
			}

			got, err := f.svc.SetRole(context.Background(), f.admin, u.ID.Hex(), tc.to, application.RequestMeta{})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil || got.Role != tc.to {
				t.Fatalf("got %+v, %v", got, err)
			}
		})
	}
}

func TestSetBannedUnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAdminFixture(ctrl)

	id := primitive.NewObjectID()
	f.users.EXPECT().GetByID(gomock.Any(), id).Return(nil, repo.ErrNotFound)

	_, err := f.svc.SetBanned(context.Background(), f.admin, id.Hex(), true, application.RequestMeta{})
	if !errors.Is(err, application.ErrUserNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestAuditTrailWithoutPostgres(t *testing.T) {
	svc := &application.AdminService{}
	logs, err := svc.AuditTrail(context.Background(), repo.AuditFilter{})
	if err != nil || logs == nil || len(logs) != 0 {
		t.Fatalf("got %v, %v", logs, err)
	}
}
