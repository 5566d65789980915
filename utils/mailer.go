package utils

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// SESMailer sends plain-text mail through Amazon SES.
type SESMailer struct {
	client *ses.Client
	from   string
}

func NewSESMailer(cfg aws.Config, from string) *SESMailer {
	return &SESMailer{client: ses.NewFromConfig(cfg), from: from}
}

// generic SES sender
func (m *SESMailer) send(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(m.from),
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}

func (m *SESMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	return m.send(ctx, to, "Verify your SmartBite account", verificationBody(code))
}

// LogMailer is used when SES is not configured; codes only reach the log.
type LogMailer struct {
	Log *zap.Logger
}

func (m LogMailer) SendVerificationCode(_ context.Context, to, code string) error {
	m.Log.Info("verification code issued", zap.String("to", to), zap.String("code", code))
	return nil
}

func verificationBody(code string) string {
	return fmt.Sprintf("Your SmartBite verification code is: %s\n\nEnter it in the app to confirm your email address.", code)
}
