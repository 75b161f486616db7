package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/murmurhq/murmur/internal/models"
)

// EmailService forwards feedback submissions to the operator inbox via AWS SES
type EmailService struct {
	client    *ses.Client
	fromEmail string
	inbox     string
}

// NewEmailService creates a new email service using AWS SES
func NewEmailService(region, fromEmail, inbox string) (*EmailService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &EmailService{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		inbox:     inbox,
	}, nil
}

// SendFeedback forwards a feedback submission. The submitter stays
// anonymous: only the opaque user id is included, for dedup on our side.
func (e *EmailService) SendFeedback(ctx context.Context, fb *models.Feedback) error {
	subject := "Murmur feedback: feature suggestion"
	if fb.Category == models.FeedbackBugReport {
		subject = "Murmur feedback: bug report"
	}

	textBody := fmt.Sprintf(`Category: %s
Submitted: %s
User: %s

%s

This is an automated message from Murmur.
`, fb.Category, fb.CreatedAt.Format(time.RFC3339), fb.UserID, fb.Message)

	input := &ses.SendEmailInput{
		Source: aws.String(e.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{e.inbox},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := e.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send feedback email: %w", err)
	}

	return nil
}
