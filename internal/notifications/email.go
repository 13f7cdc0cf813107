package notifications

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer delivers the badge email
type Mailer interface {
	SendBadge(ctx context.Context, notice BadgeNotice) error
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends mail through Amazon SES
type SESMailer struct {
	client sesAPI
	from   string
}

// NewSESMailer creates a mailer from an AWS config
func NewSESMailer(cfg aws.Config, from string) *SESMailer {
	return &SESMailer{client: sesv2.NewFromConfig(cfg), from: from}
}

// SendBadge emails the learner. Notices without an address are skipped.
func (m *SESMailer) SendBadge(ctx context.Context, notice BadgeNotice) error {
	if notice.Email == "" {
		return nil
	}

	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{notice.Email},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(notice.subject())},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(notice.textBody())},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send badge email: %w", err)
	}
	return nil
}
