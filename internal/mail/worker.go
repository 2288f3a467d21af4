package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/hirehub/apiserver/config"
)

// Worker drains the mail queue and delivers messages over SMTP.
type Worker struct {
	queue Queue
	smtp  config.SMTPConfig
	from  string
}

// NewWorker constructs a Worker delivering through the given relay.
func NewWorker(queue Queue, smtpCfg config.SMTPConfig, from string) *Worker {
	return &Worker{queue: queue, smtp: smtpCfg, from: from}
}

// Run consumes the queue until ctx is cancelled. Delivery failures
// nack the message for redelivery.
func (w *Worker) Run(ctx context.Context) error {
	return w.queue.Subscribe(ctx, func(ctx context.Context, msg Message) error {
		if err := w.deliver(msg); err != nil {
			log.Printf("mail: delivery to %s failed: %v", msg.To, err)
			return err
		}
		return nil
	})
}

func (w *Worker) deliver(msg Message) error {
	addr := fmt.Sprintf("%s:%d", w.smtp.Host, w.smtp.Port)

	var auth smtp.Auth
	if w.smtp.Username != "" {
		auth = smtp.PlainAuth("", w.smtp.Username, w.smtp.Password, w.smtp.Host)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s\r\n", w.from)
	fmt.Fprintf(&body, "To: %s\r\n", msg.To)
	fmt.Fprintf(&body, "Subject: %s\r\n", msg.Subject)
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	body.WriteString("\r\n")
	body.WriteString(msg.HTML)

	return smtp.SendMail(addr, auth, w.from, []string{msg.To}, []byte(body.String()))
}
