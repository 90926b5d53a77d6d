package queue

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/pkg/mailer"
	"github.com/AdityaShome/Secondhome-sub002/pkg/sms"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, queue string, body any) error
}

// Outbox hands email and SMS jobs to the worker queues. Disabled channels
// are logged and skipped.
type Outbox struct {
	pub         Publisher
	log         *logrus.Logger
	emailQueue  string
	smsQueue    string
	mailEnabled bool
	smsEnabled  bool
}

type Options struct {
	EmailQueue  string
	SMSQueue    string
	MailEnabled bool
	SMSEnabled  bool
}

func NewOutbox(pub Publisher, log *logrus.Logger, opt Options) *Outbox {
	return &Outbox{
		pub:         pub,
		log:         log,
		emailQueue:  opt.EmailQueue,
		smsQueue:    opt.SMSQueue,
		mailEnabled: opt.MailEnabled,
		smsEnabled:  opt.SMSEnabled,
	}
}

func (o *Outbox) EnqueueEmail(ctx context.Context, job mailer.EmailJob) error {
	if !o.mailEnabled || o.pub == nil {
		o.log.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("mail sending disabled, skipping")
		return nil
	}
	if err := job.Validate(); err != nil {
		return err
	}
	return o.pub.PublishJSON(ctx, o.emailQueue, job)
}

func (o *Outbox) EnqueueSMS(ctx context.Context, job sms.Job) error {
	if !o.smsEnabled || o.pub == nil {
		o.log.WithField("to", job.To).Info("sms sending disabled, skipping")
		return nil
	}
	if err := job.Validate(); err != nil {
		return err
	}
	return o.pub.PublishJSON(ctx, o.smsQueue, job)
}
