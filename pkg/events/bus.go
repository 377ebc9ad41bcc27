package events

import (
	"context"
	"fmt"

	"travel-agency/pkg/tracing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const topicPrefix = "travel-agency.events."

// Publisher is what the ledgers depend on. Publishing happens after the
// owning transaction commits.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// NewPublisher returns a Redis Streams publisher when addr is set and an
// in-process channel otherwise. Both inject the trace context into messages.
func NewPublisher(addr string, logger watermill.LoggerAdapter) (message.Publisher, func() error, error) {
	if addr == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{}, logger)
		return tracing.PublisherDecorator{Publisher: ch}, ch.Close, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, logger)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("create redis publisher: %w", err)
	}

	closer := func() error {
		pubErr := pub.Close()
		if err := rdb.Close(); err != nil {
			return err
		}
		return pubErr
	}

	return tracing.PublisherDecorator{Publisher: pub}, closer, nil
}

func NewEventBus(pub message.Publisher) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(pub, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			return topicPrefix + params.EventName, nil
		},
		Marshaler: cqrs.JSONMarshaler{
			GenerateName: cqrs.StructName,
		},
	})
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, any) error { return nil }
