package notification

import (
	"fmt"

	"lifeline-backend/httpServices/mailer"
	"lifeline-backend/logger"
	"lifeline-backend/observability"
)

// Notifier dispatches a notification without blocking the caller. Delivery is
// best-effort: failures are logged, never propagated, so no lifecycle
// transition can be gated on mail delivery.
type Notifier interface {
	Notify(toEmail, subject, body string)
}

// EmailNotifier sends emails through the external mail relay, one goroutine
// per message.
type EmailNotifier struct {
	client *mailer.Client
}

func NewEmailNotifier(client *mailer.Client) *EmailNotifier {
	return &EmailNotifier{client: client}
}

func (n *EmailNotifier) Notify(toEmail, subject, body string) {
	go func() {
		err := n.client.Send(mailer.SendRequest{
			ToEmail: toEmail,
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			observability.NotificationsSent.WithLabelValues("failure").Inc()
			logger.Error(fmt.Sprintf("Failed to send email to %s (%s)", toEmail, subject), err)
			return
		}
		observability.NotificationsSent.WithLabelValues("success").Inc()
		logger.Info(fmt.Sprintf("Email sent to %s: %s", toEmail, subject))
	}()
}
