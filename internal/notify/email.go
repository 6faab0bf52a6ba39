package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// EmailNotifier sends admin notifications through Resend.
type EmailNotifier struct {
	client    *resend.Client
	fromEmail string
	toEmail   string
}

func NewEmailNotifier(apiKey, fromEmail, toEmail string) *EmailNotifier {
	return &EmailNotifier{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}
}

func (n *EmailNotifier) Publish(ctx context.Context, subject, message string) error {
	params := &resend.SendEmailRequest{
		From:    n.fromEmail,
		To:      []string{n.toEmail},
		Subject: subject,
		Html: fmt.Sprintf(`
			<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
				<h2 style="color: #333;">%s</h2>
				<p style="color: #666; white-space: pre-line;">%s</p>
			</div>
		`, subject, message),
	}

	sent, err := n.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	log.Printf("📧 Notification email sent (ID: %s)", sent.Id)
	return nil
}
