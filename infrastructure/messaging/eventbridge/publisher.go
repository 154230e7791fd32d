// Package eventbridge publishes domain events to an EventBridge bus so
// downstream consumers, the websocket broadcaster included, can react
// without coupling to the API process.
package eventbridge

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"boardcore/application/ports"
	"boardcore/domain/events"
	pkgerrors "boardcore/pkg/errors"
)

const eventSource = "boardcore.api"

// Publisher implements ports.EventPublisher over EventBridge
type Publisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *eventbridge.Client, busName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends multiple events. EventBridge accepts at most 10
// entries per call.
func (p *Publisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	entries := make([]types.PutEventsRequestEntry, 0, len(domainEvents))
	for _, event := range domainEvents {
		detail, err := json.Marshal(event)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to marshal event detail")
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.busName),
			Source:       aws.String(eventSource),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
		})
	}

	for i := 0; i < len(entries); i += 10 {
		end := i + 10
		if end > len(entries) {
			end = len(entries)
		}

		result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
			Entries: entries[i:end],
		})
		if err != nil {
			p.logger.Error("Failed to put events", zap.Error(err))
			return pkgerrors.Wrap(err, "failed to put events")
		}
		if result.FailedEntryCount > 0 {
			for _, entry := range result.Entries {
				if entry.ErrorCode != nil {
					p.logger.Error("Event entry rejected",
						zap.String("errorCode", aws.ToString(entry.ErrorCode)),
						zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
					)
				}
			}
			return pkgerrors.NewInternalError("some events failed to publish")
		}
	}

	p.logger.Debug("Published events", zap.Int("count", len(domainEvents)))
	return nil
}
