package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Job is the JSON payload put on the SMS queue.
type Job struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

func (j Job) Validate() error {
	if !strings.HasPrefix(j.To, "+") || len(j.To) < 8 {
		return fmt.Errorf("sms job: invalid recipient %q", j.To)
	}
	if strings.TrimSpace(j.Body) == "" {
		return errors.New("sms job: empty body")
	}
	return nil
}

// Sender delivers a text message.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Twilio sends messages through the Twilio REST API.
type Twilio struct {
	client *twilio.RestClient
	from   string
}

func NewTwilio(accountSID, authToken, from string) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Twilio{client: client, from: from}
}

func (t *Twilio) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.ErrorCode != nil {
		return fmt.Errorf("twilio error %d", *resp.ErrorCode)
	}
	return nil
}

var _ Sender = (*Twilio)(nil)

// OTPBody is the text used for one-time codes sent by SMS.
func OTPBody(appName, code string, minutes int) string {
	return fmt.Sprintf("%s: your verification code is %s. It expires in %d minutes. Do not share it.", appName, code, minutes)
}
