package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/zapan/eventbus/internal/domain/event"
	"github.com/zapan/eventbus/internal/registry"
)

// Publisher is the outbound port the use case publishes through.
type Publisher interface {
	Publish(ctx context.Context, msg event.Message) error
}

type PublishEvent struct {
	registry  *registry.Registry
	publisher Publisher
	exchange  string
}

func NewPublishEvent(reg *registry.Registry, publisher Publisher, exchange string) *PublishEvent {
	return &PublishEvent{
		registry:  reg,
		publisher: publisher,
		exchange:  exchange,
	}
}

type PublishEventParams struct {
	RoutingKey string
	Payload    map[string]any
	Expiration *int64
	Headers    map[string]any
}

// Execute resolves the routing key against the registry, stamps a message
// id into the headers, and publishes. The generated id is returned so the
// caller can correlate the message downstream.
func (uc *PublishEvent) Execute(ctx context.Context, params PublishEventParams) (string, error) {
	if _, err := uc.registry.Get(params.RoutingKey); err != nil {
		return "", err
	}

	messageID := uuid.New().String()

	headers := make(map[string]any, len(params.Headers)+1)
	for k, v := range params.Headers {
		headers[k] = v
	}
	headers["x-message-id"] = messageID

	msg := event.Message{
		Exchange:   uc.exchange,
		RoutingKey: params.RoutingKey,
		Payload:    params.Payload,
		Expiration: params.Expiration,
		Headers:    headers,
	}

	if err := uc.publisher.Publish(ctx, msg); err != nil {
		return "", fmt.Errorf("publish event: %w", err)
	}

	return messageID, nil
}
