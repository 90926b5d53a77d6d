package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/AdityaShome/Secondhome-sub002/config"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/mailer"
	mailtpl "github.com/AdityaShome/Secondhome-sub002/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	sender := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase, cfg.AppName)
	resolver := mailtpl.IPAPIResolver{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := func(ctx context.Context, body []byte) error {
		var job mailer.EmailJob
		if err := json.Unmarshal(body, &job); err != nil {
			return fmt.Errorf("%w: decode: %v", helpers.ErrDrop, err)
		}
		subject, text, html, err := mailer.Prepare(ctx, &job, resolver)
		if err != nil {
			return fmt.Errorf("%w: %v", helpers.ErrDrop, err)
		}
		c, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := sender.Send(c, job.To, subject, text, html); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Debug("email sent")
		return nil
	}

	if err := helpers.ConsumeQueue(ctx, logger, cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16, handle); err != nil {
		logger.WithError(err).Fatal("email consumer stopped")
	}
	logger.Info("email worker shut down")
}
