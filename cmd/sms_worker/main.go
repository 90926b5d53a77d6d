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

	"github.com/AdityaShome/Secondhome-sub002/config"
	"github.com/AdityaShome/Secondhome-sub002/pkg/helpers"
	"github.com/AdityaShome/Secondhome-sub002/pkg/sms"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-sms-worker", cfg.Env)

	if !cfg.SMSSendEnabled {
		logger.Warn("SMS_SEND_ENABLED=false; sms worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQSMSQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "" {
		logger.Fatal("Twilio not configured")
	}

	sender := sms.NewTwilio(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := func(ctx context.Context, body []byte) error {
		var job sms.Job
		if err := json.Unmarshal(body, &job); err != nil {
			return fmt.Errorf("%w: decode: %v", helpers.ErrDrop, err)
		}
		if err := job.Validate(); err != nil {
			return fmt.Errorf("%w: %v", helpers.ErrDrop, err)
		}
		c, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return sender.Send(c, job.To, job.Body)
	}

	if err := helpers.ConsumeQueue(ctx, logger, cfg.RabbitMQURL, cfg.RabbitMQSMSQueue, 8, handle); err != nil {
		logger.WithError(err).Fatal("sms consumer stopped")
	}
	logger.Info("sms worker shut down")
}
