package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/config"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/mailer"
	mailtpl "github.com/AdityaShome/Secondhome-sub002/pkg/mailer/templates"
	"github.com/AdityaShome/Secondhome-sub002/pkg/storage"
)

// Service handles accounts, sessions and profiles.
type Service struct {
	Repo     repo.UserRepository
	OTP      *OTPService
	JWT      *helpers.JWTManager
	Sessions SessionStore
	Store    storage.Store
	Outbox   Outbox
	Audit    *Auditor
	Cfg      *config.Config
	Logger   *logrus.Logger
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func NewService(r repo.UserRepository, otp *OTPService, jwt *helpers.JWTManager, sessions SessionStore, store storage.Store, outbox Outbox, audit *Auditor, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		Repo:     r,
		OTP:      otp,
		JWT:      jwt,
		Sessions: sessions,
		Store:    store,
		Outbox:   outbox,
		Audit:    audit,
		Cfg:      cfg,
		Logger:   logger,
	}
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     entity.Role
}

// Register creates a user or owner account and sends an email verification code.
func (s *Service) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*entity.User, error) {
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	if role != entity.RoleUser && role != entity.RoleOwner {
		return nil, invalid("role must be user or owner")
	}
	email := normalizeEmail(in.Email)
	phone := strings.TrimSpace(in.Phone)

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if phone != "" {
		if _, err := s.Repo.GetByPhone(ctx, phone); err == nil {
			return nil, ErrPhoneTaken
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, invalid("%v", err)
	}
	u := &entity.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, s.takenErr(ctx, email, phone)
		}
		return nil, err
	}

	if _, err := s.OTP.Issue(ctx, entity.ChannelEmail, u.Email, entity.PurposeVerifyEmail, u.Name); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Warn("send verification code failed")
	}
	s.Audit.Record(ctx, u.ID.Hex(), "register", "user:"+u.ID.Hex(), meta, map[string]any{"role": string(u.Role)})
	return u, nil
}

// takenErr names the unique field a concurrent registration claimed first.
func (s *Service) takenErr(ctx context.Context, email, phone string) error {
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	}
	if phone != "" {
		if _, err := s.Repo.GetByPhone(ctx, phone); err == nil {
			return ErrPhoneTaken
		}
	}
	return ErrEmailTaken
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if u.IsBanned {
		return nil, ErrBanned
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *Service) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	uid := u.ID.Hex()
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(uid, string(u.Role), sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", uid).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(uid, string(u.Role), sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", uid).Error("generate refresh token failed")
		return TokenPair{}, err
	}

	if s.Sessions != nil {
		fields := map[string]any{
			"user_id":    uid,
			"email":      u.Email,
			"name":       u.Name,
			"role":       string(u.Role),
			"avatar_url": u.AvatarURL,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		if err := s.Sessions.Save(ctx, uid, fields); err != nil {
			s.Logger.WithError(err).WithField("user_id", uid).Warn("session save failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// completeLogin issues tokens, stamps the login time and sends the login email.
func (s *Service) completeLogin(ctx context.Context, u *entity.User, method string, meta RequestMeta) (TokenPair, error) {
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, err
	}
	t := time.Now().UTC()
	u.LastLoginAt = &t
	if err := s.Repo.Update(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Warn("update last login failed")
	}

	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.LoginNotification,
		Data: mailtpl.NewLoginNotificationData(s.Cfg, u.Name, u.Email,
			mailtpl.WithIP(meta.IP),
			mailtpl.WithUserAgent(meta.UserAgent),
			mailtpl.WithTime(t),
		),
	}
	if err := s.Outbox.EnqueueEmail(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Warn("enqueue login notification failed")
	}
	s.Audit.Record(ctx, u.ID.Hex(), "login", "user:"+u.ID.Hex(), meta, map[string]any{"method": method})
	return pair, nil
}

func (s *Service) Login(ctx context.Context, email, password string, meta RequestMeta) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.completeLogin(ctx, u, "password", meta)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// StartPhoneLogin sends a login code when an account owns phone. Unknown
// numbers succeed silently.
func (s *Service) StartPhoneLogin(ctx context.Context, phone string) error {
	u, err := s.Repo.GetByPhone(ctx, strings.TrimSpace(phone))
	if errors.Is(err, repo.ErrNotFound) {
		s.Logger.WithField("phone", phone).Debug("otp login for unknown phone")
		return nil
	}
	if err != nil {
		return err
	}
	if u.IsBanned {
		return ErrBanned
	}
	_, err = s.OTP.Issue(ctx, entity.ChannelSMS, u.Phone, entity.PurposeLogin, u.Name)
	return err
}

func (s *Service) ConfirmPhoneLogin(ctx context.Context, phone, code string, meta RequestMeta) (*entity.User, TokenPair, error) {
	phone = strings.TrimSpace(phone)
	if err := s.OTP.Verify(ctx, phone, entity.PurposeLogin, code); err != nil {
		return nil, TokenPair{}, err
	}
	u, err := s.Repo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if u.IsBanned {
		return nil, TokenPair{}, ErrBanned
	}
	// A code delivered to the number proves ownership.
	u.PhoneVerified = true
	pair, err := s.completeLogin(ctx, u, "otp", meta)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh checks the refresh token against the stored session and rotates both.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*entity.User, TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	id, err := parseID(claims.UserID)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil || u == nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if u.IsBanned {
		return nil, TokenPair{}, ErrBanned
	}
	if s.Sessions != nil {
		data, sErr := s.Sessions.Get(ctx, claims.UserID)
		if sErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *Service) Logout(ctx context.Context, userID string, meta RequestMeta) error {
	if s.Sessions != nil && userID != "" {
		if err := s.Sessions.Delete(ctx, userID); err != nil {
			return err
		}
	}
	s.Audit.Record(ctx, userID, "logout", "user:"+userID, meta, nil)
	return nil
}

func (s *Service) StartEmailVerification(ctx context.Context, userID string) (time.Time, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	if u.EmailVerified {
		return time.Time{}, ErrAlreadyVerified
	}
	return s.OTP.Issue(ctx, entity.ChannelEmail, u.Email, entity.PurposeVerifyEmail, u.Name)
}

func (s *Service) ConfirmEmailVerification(ctx context.Context, userID, code string) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.EmailVerified {
		return u, nil
	}
	if err := s.OTP.Verify(ctx, u.Email, entity.PurposeVerifyEmail, code); err != nil {
		return nil, err
	}
	u.EmailVerified = true
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) StartPhoneVerification(ctx context.Context, userID, phone string) (time.Time, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	phone = strings.TrimSpace(phone)
	if other, err := s.Repo.GetByPhone(ctx, phone); err == nil && other.ID != u.ID {
		return time.Time{}, ErrPhoneTaken
	} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return time.Time{}, err
	}
	if u.Phone == phone && u.PhoneVerified {
		return time.Time{}, ErrAlreadyVerified
	}
	return s.OTP.Issue(ctx, entity.ChannelSMS, phone, entity.PurposeVerifyPhone, u.Name)
}

func (s *Service) ConfirmPhoneVerification(ctx context.Context, userID, phone, code string) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	phone = strings.TrimSpace(phone)
	if err := s.OTP.Verify(ctx, phone, entity.PurposeVerifyPhone, code); err != nil {
		return nil, err
	}
	u.Phone = phone
	u.PhoneVerified = true
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrPhoneTaken
		}
		return nil, err
	}
	return u, nil
}

// ForgotPassword never reveals whether the address is registered.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := s.OTP.Issue(ctx, entity.ChannelEmail, u.Email, entity.PurposeResetPassword, u.Name); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Error("issue reset code failed")
	}
	return nil
}

// ResetPassword sets a new password and ends the current session.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string, meta RequestMeta) error {
	email = normalizeEmail(email)
	if err := s.OTP.Verify(ctx, email, entity.PurposeResetPassword, code); err != nil {
		return err
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return ErrInvalidOTP
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return invalid("%v", err)
	}
	u.PasswordHash = hash
	if err := s.Repo.Update(ctx, u); err != nil {
		return err
	}
	if s.Sessions != nil {
		_ = s.Sessions.Delete(ctx, u.ID.Hex())
	}
	s.Audit.Record(ctx, u.ID.Hex(), "password_reset", "user:"+u.ID.Hex(), meta, nil)
	return nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

type UpdateProfileInput struct {
	Name      string
	AvatarURL string
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		u.Name = strings.TrimSpace(in.Name)
	}
	if in.AvatarURL != "" {
		u.AvatarURL = in.AvatarURL
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.patchSession(ctx, u)
	return u, nil
}

// UploadAvatar stores img through the configured driver and updates the profile.
func (s *Service) UploadAvatar(ctx context.Context, userID string, img *storage.Image) (string, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if s.Store == nil {
		return "", errors.New("storage not configured")
	}
	url, err := s.Store.Upload(ctx, storage.ObjectKey("avatars", userID, img.ContentType), img.ContentType, img.Reader())
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	u.AvatarURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return "", err
	}
	s.patchSession(ctx, u)
	return url, nil
}

func (s *Service) patchSession(ctx context.Context, u *entity.User) {
	if s.Sessions == nil {
		return
	}
	if err := s.Sessions.Patch(ctx, u.ID.Hex(), map[string]any{
		"name":       u.Name,
		"avatar_url": u.AvatarURL,
	}); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID.Hex()).Warn("session patch failed")
	}
}
