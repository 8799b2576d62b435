package notifications

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Channel delivers a notification outside the in-app feed
type Channel interface {
	Deliver(ctx context.Context, prefs *Preferences, n *Notification) error
	Enabled(prefs *Preferences) bool
}

// EmailChannel sends notification emails through SES
type EmailChannel struct {
	client *sesv2.Client
	sender string
}

func NewEmailChannel(ctx context.Context, region, sender string) (*EmailChannel, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &EmailChannel{client: sesv2.NewFromConfig(cfg), sender: sender}, nil
}

func (c *EmailChannel) Enabled(prefs *Preferences) bool {
	return prefs.EmailEnabled && prefs.Email != ""
}

func (c *EmailChannel) Deliver(ctx context.Context, prefs *Preferences, n *Notification) error {
	_, err := c.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.sender),
		Destination: &sestypes.Destination{
			ToAddresses: []string{prefs.Email},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(n.Title)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(n.Body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}

// SMSChannel sends notification texts through SNS
type SMSChannel struct {
	client *sns.Client
}

func NewSMSChannel(ctx context.Context, region string) (*SMSChannel, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SMSChannel{client: sns.NewFromConfig(cfg)}, nil
}

func (c *SMSChannel) Enabled(prefs *Preferences) bool {
	return prefs.SMSEnabled && prefs.Phone != ""
}

func (c *SMSChannel) Deliver(ctx context.Context, prefs *Preferences, n *Notification) error {
	_, err := c.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(prefs.Phone),
		Message:     aws.String(n.Title + ": " + n.Body),
	})
	if err != nil {
		return fmt.Errorf("failed to send notification SMS: %w", err)
	}
	return nil
}
