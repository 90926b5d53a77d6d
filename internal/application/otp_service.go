package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/config"
	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/mailer"
	mailtpl "github.com/AdityaShome/Secondhome-sub002/pkg/mailer/templates"
	"github.com/AdityaShome/Secondhome-sub002/pkg/sms"
)

// OTPService issues and checks single-use codes for one (target, purpose).
type OTPService struct {
	Repo   repo.OTPRepository
	Outbox Outbox
	Cfg    *config.Config
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewOTPService(r repo.OTPRepository, outbox Outbox, cfg *config.Config, logger *logrus.Logger) *OTPService {
	return &OTPService{Repo: r, Outbox: outbox, Cfg: cfg, Logger: logger, Now: time.Now}
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *OTPService) ttl() time.Duration {
	if s.Cfg.OTPTTL > 0 {
		return s.Cfg.OTPTTL
	}
	return 10 * time.Minute
}

func (s *OTPService) maxAttempts() int {
	if s.Cfg.OTPMaxAttempts > 0 {
		return s.Cfg.OTPMaxAttempts
	}
	return 5
}

// Issue replaces any previous code for target and purpose and queues
// delivery. name is used to greet email recipients.
func (s *OTPService) Issue(ctx context.Context, channel entity.OTPChannel, target string, purpose entity.OTPPurpose, name string) (time.Time, error) {
	length := s.Cfg.OTPLength
	if length <= 0 {
		length = 6
	}
	code, err := helpers.GenOTPCode(length)
	if err != nil {
		return time.Time{}, err
	}
	now := s.now()
	o := &entity.OTP{
		Target:    target,
		Channel:   channel,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}
	if err := s.Repo.Replace(ctx, o); err != nil {
		return time.Time{}, fmt.Errorf("store otp: %w", err)
	}

	switch channel {
	case entity.ChannelSMS:
		err = s.Outbox.EnqueueSMS(ctx, sms.Job{
			To:   target,
			Body: sms.OTPBody(s.Cfg.AppName, code, int(s.ttl().Minutes())),
		})
	case entity.ChannelEmail:
		err = s.Outbox.EnqueueEmail(ctx, mailer.EmailJob{
			To:       target,
			Template: mailtpl.OTP,
			Data:     mailtpl.NewOTPData(s.Cfg, name, target, code, string(purpose), o.ExpiresAt),
		})
	default:
		return time.Time{}, invalid("unknown otp channel %q", channel)
	}
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"channel": channel, "purpose": purpose}).Error("enqueue otp failed")
		return time.Time{}, fmt.Errorf("deliver otp: %w", err)
	}
	return o.ExpiresAt, nil
}

// Verify consumes the code on success. Each call spends one attempt before
// the code is compared, and a record that has used them all is dropped.
func (s *OTPService) Verify(ctx context.Context, target string, purpose entity.OTPPurpose, code string) error {
	now, limit := s.now(), s.maxAttempts()
	o, err := s.Repo.Reserve(ctx, target, purpose, limit, now)
	if errors.Is(err, repo.ErrNotFound) {
		if err := s.Repo.Purge(ctx, target, purpose, limit, now); err != nil {
			s.Logger.WithError(err).WithField("purpose", purpose).Warn("purge otp failed")
		}
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}

	err = s.Repo.Consume(ctx, o.ID, code)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if o.Attempts >= limit {
		if err := s.Repo.Delete(ctx, o.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			s.Logger.WithError(err).WithField("purpose", purpose).Warn("drop exhausted otp failed")
		}
	}
	return ErrInvalidOTP
}
