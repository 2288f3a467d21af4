package mail

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/hirehub/apiserver/config"
	"google.golang.org/api/option"
)

// PubSubQueue is a mail queue backed by a Google Cloud Pub/Sub topic.
type PubSubQueue struct {
	client             *pubsub.Client
	topic              string
	subscriptionSuffix string
}

// NewPubSubQueue constructs a Pub/Sub mail queue from config.
func NewPubSubQueue(ctx context.Context, cfg config.PubSubConfig, topic string) (*PubSubQueue, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("pubsub project id is required")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("mail topic name is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, err
	}

	suffix := cfg.SubscriptionSuffix
	if suffix == "" {
		suffix = "-sub"
	}

	return &PubSubQueue{
		client:             client,
		topic:              topic,
		subscriptionSuffix: suffix,
	}, nil
}

// Publish enqueues one outbound email.
func (p *PubSubQueue) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}
	result := topic.Publish(ctx, &pubsub.Message{Data: body})
	_, err = result.Get(ctx)
	return err
}

// Subscribe consumes queued email until ctx is cancelled.
func (p *PubSubQueue) Subscribe(ctx context.Context, handler Handler) error {
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}

	sub, err := p.ensureSubscription(ctx, p.topic+p.subscriptionSuffix, topic)
	if err != nil {
		return err
	}

	return sub.Receive(ctx, func(ctx context.Context, raw *pubsub.Message) {
		var msg Message
		if err := json.Unmarshal(raw.Data, &msg); err != nil {
			// Undecodable payloads can never succeed; drop them.
			raw.Ack()
			return
		}
		if err := handler(ctx, msg); err != nil {
			raw.Nack()
			return
		}
		raw.Ack()
	})
}

// Close closes the underlying Pub/Sub client.
func (p *PubSubQueue) Close() error {
	return p.client.Close()
}

func (p *PubSubQueue) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	topic := p.client.Topic(p.topic)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return p.client.CreateTopic(ctx, p.topic)
	}
	return topic, nil
}

func (p *PubSubQueue) ensureSubscription(ctx context.Context, name string, topic *pubsub.Topic) (*pubsub.Subscription, error) {
	sub := p.client.Subscription(name)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return p.client.CreateSubscription(ctx, name, pubsub.SubscriptionConfig{Topic: topic})
	}
	return sub, nil
}
