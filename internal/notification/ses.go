package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
)

const (
	errCodeMessageRejected  = "MessageRejected"
	errCodeAccountSuspended = "AccountSuspendedException"
	errCodeSendingPaused    = "SendingPausedException"
)

// ErrDeliveryRejected marks failures that will not succeed on retry
var ErrDeliveryRejected = errors.New("email delivery rejected")

// Mailer sends a single email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, email *Email) error
}

// SESMailer delivers email through Amazon SES
type SESMailer struct {
	client *sesv2.Client
	from   string
}

// NewSESMailer creates an SES mailer using the AWS default credential chain
func NewSESMailer(ctx context.Context, region, from string) (*SESMailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESMailer{
		client: sesv2.NewFromConfig(awsCfg),
		from:   from,
	}, nil
}

func (m *SESMailer) Send(ctx context.Context, email *Email) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{email.Recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(email.Subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(email.BodyText)},
					Html: &types.Content{Data: aws.String(email.BodyHTML)},
				},
			},
		},
	}

	_, err := m.client.SendEmail(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case errCodeMessageRejected, errCodeAccountSuspended, errCodeSendingPaused:
				return fmt.Errorf("%w: %s", ErrDeliveryRejected, apiErr.ErrorCode())
			}
		}
		return fmt.Errorf("send email %s: %w", email.ID, err)
	}

	return nil
}
