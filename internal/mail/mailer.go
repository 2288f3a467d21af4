package mail

import (
	"context"
	"fmt"
)

// Mailer composes the application's emails and publishes them to the
// mail queue.
type Mailer struct {
	queue   Queue
	baseURL string
}

// NewMailer constructs a Mailer. baseURL is the public address of the
// API server, used to build verification links.
func NewMailer(queue Queue, baseURL string) *Mailer {
	return &Mailer{queue: queue, baseURL: baseURL}
}

// SendVerification queues the account-verification email carrying the
// signed verification token. name is the recipient's display name.
func (m *Mailer) SendVerification(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/users/verify-email?token=%s", m.baseURL, token)
	html := fmt.Sprintf(`<section>
	<h2>Hi %s</h2>
	<p>Please click the link to verify your account</p>
	<a href=%q>Verify Account</a>
</section>`, name, link)
	return m.queue.Publish(ctx, Message{
		To:      to,
		Subject: "account verification",
		HTML:    html,
	})
}

// SendOTP queues the password-reset email carrying the one-time code.
func (m *Mailer) SendOTP(ctx context.Context, to, name, otp string) error {
	html := fmt.Sprintf(`<section>
	<h2>Hi %s</h2>
	<p>Please use the following code to reset your password</p>
	<h4>%s</h4>
</section>`, name, otp)
	return m.queue.Publish(ctx, Message{
		To:      to,
		Subject: "password reset",
		HTML:    html,
	})
}
