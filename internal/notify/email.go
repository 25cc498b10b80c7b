package notify

import (
	"context"
	"fmt"

	"activity-signup/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the SES call the email notifier makes. It is an interface so
// tests can substitute a fake.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailNotifier mails the student a confirmation of each roster change.
type EmailNotifier struct {
	ses       SESService
	fromEmail string
}

func NewEmailNotifier(client SESService, fromEmail string) *EmailNotifier {
	return &EmailNotifier{ses: client, fromEmail: fromEmail}
}

func (n *EmailNotifier) Name() string {
	return "email"
}

func (n *EmailNotifier) Notify(ctx context.Context, event models.RosterEvent) error {
	subject, body := renderEmail(event)

	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{event.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.fromEmail),
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", event.Email, err)
	}
	return nil
}

func renderEmail(event models.RosterEvent) (subject, body string) {
	switch event.Type {
	case models.RosterEventUnregister:
		subject = fmt.Sprintf("You have left %s", event.Activity)
		body = fmt.Sprintf("Hello,\n\n%s has been removed from %s. %d students remain signed up.\n\nMergington High School Activities",
			event.Email, event.Activity, event.ParticipantCount)
	default:
		subject = fmt.Sprintf("You are signed up for %s", event.Activity)
		body = fmt.Sprintf("Hello,\n\n%s is now signed up for %s. %d students are signed up so far.\n\nMergington High School Activities",
			event.Email, event.Activity, event.ParticipantCount)
	}
	return subject, body
}
