// Package mail queues outbound email on a message broker and delivers
// it from a separate worker process. The API process only ever
// publishes; delivery latency and SMTP failures stay off the request
// path except for the publish itself.
package mail

import "context"

// Message is one outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Handler processes a queued message. Return an error to signal a
// redelivery/nack.
type Handler func(ctx context.Context, msg Message) error

// Queue defines the broker-agnostic operations the mailer uses.
type Queue interface {
	Publish(ctx context.Context, msg Message) error
	Subscribe(ctx context.Context, handler Handler) error
	Close() error
}
