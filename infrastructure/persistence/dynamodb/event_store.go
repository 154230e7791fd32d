package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"boardcore/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// DynamoDBEventStore persists domain events with an outbox so the
// processor can publish them after the fact.
type DynamoDBEventStore struct {
	client    *dynamodb.Client
	tableName string
}

// PublishStatus represents the publishing status of an event
type PublishStatus string

const (
	PublishStatusPending   PublishStatus = "pending"
	PublishStatusPublished PublishStatus = "published"
	PublishStatusFailed    PublishStatus = "failed"
)

// EventRecord represents how events are stored in DynamoDB
type EventRecord struct {
	PK          string                 `dynamodbav:"PK"` // EVENTS#<board_id>
	SK          string                 `dynamodbav:"SK"` // EVENT#<timestamp>#<event_id>
	EventID     string                 `dynamodbav:"EventID"`
	EventType   string                 `dynamodbav:"EventType"`
	AggregateID string                 `dynamodbav:"AggregateID"`
	EventData   map[string]interface{} `dynamodbav:"EventData"`
	Timestamp   string                 `dynamodbav:"Timestamp"`
	Version     int                    `dynamodbav:"Version"`

	// Outbox pattern fields
	PublishStatus   string `dynamodbav:"PublishStatus"`
	PublishAttempts int    `dynamodbav:"PublishAttempts"`
	LastPublishTry  string `dynamodbav:"LastPublishTry,omitempty"`
	PublishedAt     string `dynamodbav:"PublishedAt,omitempty"`
	ErrorMessage    string `dynamodbav:"ErrorMessage,omitempty"`

	// GSI attributes for querying by type
	GSI2PK string `dynamodbav:"GSI2PK"` // EVENTTYPE#<type>
	GSI2SK string `dynamodbav:"GSI2SK"` // EVENT#<timestamp>

	// TTL for automatic cleanup
	TTL int64 `dynamodbav:"TTL,omitempty"`
}

// NewDynamoDBEventStore creates a new DynamoDB event store
func NewDynamoDBEventStore(client *dynamodb.Client, tableName string) *DynamoDBEventStore {
	return &DynamoDBEventStore{
		client:    client,
		tableName: tableName,
	}
}

// SaveEvents persists domain events to the event store
func (es *DynamoDBEventStore) SaveEvents(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	writeRequests := make([]types.WriteRequest, 0, len(domainEvents))

	for _, event := range domainEvents {
		record, err := es.eventToRecord(event)
		if err != nil {
			return fmt.Errorf("failed to convert event to record: %w", err)
		}

		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("failed to marshal event record: %w", err)
		}

		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{
				Item: item,
			},
		})
	}

	// DynamoDB caps batch writes at 25 items
	for i := 0; i < len(writeRequests); i += 25 {
		end := i + 25
		if end > len(writeRequests) {
			end = len(writeRequests)
		}

		input := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				es.tableName: writeRequests[i:end],
			},
		}

		result, err := es.client.BatchWriteItem(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to write events batch: %w", err)
		}

		if len(result.UnprocessedItems) > 0 {
			return fmt.Errorf("failed to write %d events", len(result.UnprocessedItems[es.tableName]))
		}
	}

	return nil
}

// GetEvents retrieves all events for a board in timestamp order
func (es *DynamoDBEventStore) GetEvents(ctx context.Context, boardID string) ([]events.DomainEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EVENTS#%s", boardID)},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var allEvents []events.DomainEvent

	for {
		result, err := es.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}

		for _, item := range result.Items {
			var record EventRecord
			if err := attributevalue.UnmarshalMap(item, &record); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
			}

			event, err := es.recordToEvent(record)
			if err != nil {
				return nil, fmt.Errorf("failed to convert record to event: %w", err)
			}

			allEvents = append(allEvents, event)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return allEvents, nil
}

// GetEventsByType retrieves the most recent events of a specific type
func (es *DynamoDBEventStore) GetEventsByType(ctx context.Context, eventType string, limit int) ([]events.DomainEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		IndexName:              aws.String("GSI2"),
		KeyConditionExpression: aws.String("GSI2PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EVENTTYPE#%s", eventType)},
		},
		ScanIndexForward: aws.Bool(false),
	}

	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := es.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query events by type: %w", err)
	}

	domainEvents := make([]events.DomainEvent, 0, len(result.Items))
	for _, item := range result.Items {
		var record EventRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
		}

		event, err := es.recordToEvent(record)
		if err != nil {
			return nil, fmt.Errorf("failed to convert record to event: %w", err)
		}

		domainEvents = append(domainEvents, event)
	}

	return domainEvents, nil
}

// eventToRecord converts a domain event to a DynamoDB record
func (es *DynamoDBEventStore) eventToRecord(event events.DomainEvent) (*EventRecord, error) {
	eventData := make(map[string]interface{})

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := json.Unmarshal(eventBytes, &eventData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event to map: %w", err)
	}

	timestamp := event.GetTimestamp()
	eventID := uuid.New().String()

	// Events older than 90 days age out automatically.
	ttl := timestamp.Add(90 * 24 * time.Hour).Unix()

	return &EventRecord{
		PK:          fmt.Sprintf("EVENTS#%s", event.GetAggregateID()),
		SK:          fmt.Sprintf("EVENT#%s#%s", timestamp.Format(time.RFC3339Nano), eventID),
		EventID:     eventID,
		EventType:   event.GetEventType(),
		AggregateID: event.GetAggregateID(),
		EventData:   eventData,
		Timestamp:   timestamp.Format(time.RFC3339),
		Version:     event.GetVersion(),

		PublishStatus:   string(PublishStatusPending),
		PublishAttempts: 0,

		GSI2PK: fmt.Sprintf("EVENTTYPE#%s", event.GetEventType()),
		GSI2SK: fmt.Sprintf("EVENT#%s", timestamp.Format(time.RFC3339Nano)),
		TTL:    ttl,
	}, nil
}

// recordToEvent converts a DynamoDB record back to a domain event.
// Only the types consumers dispatch on get concrete shapes; the rest
// come back as base events.
func (es *DynamoDBEventStore) recordToEvent(record EventRecord) (events.DomainEvent, error) {
	timestamp, err := time.Parse(time.RFC3339, record.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	baseEvent := events.BaseEvent{
		AggregateID: record.AggregateID,
		EventType:   record.EventType,
		Timestamp:   timestamp,
		Version:     record.Version,
	}

	str := func(key string) string {
		value, _ := record.EventData[key].(string)
		return value
	}
	strs := func(key string) []string {
		raw, ok := record.EventData[key].([]interface{})
		if !ok {
			return nil
		}
		out := make([]string, 0, len(raw))
		for _, entry := range raw {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}

	switch record.EventType {
	case "board.created":
		return events.BoardCreated{
			BaseEvent: baseEvent,
			BoardID:   str("board_id"),
			UserID:    str("user_id"),
			Name:      str("name"),
		}, nil

	case "item.added":
		return events.ItemAdded{
			BaseEvent: baseEvent,
			BoardID:   str("board_id"),
			ItemID:    str("item_id"),
			Kind:      str("kind"),
		}, nil

	case "items.deleted":
		return events.ItemsDeleted{
			BaseEvent:     baseEvent,
			BoardID:       str("board_id"),
			ItemIDs:       strs("item_ids"),
			ArrowIDs:      strs("arrow_ids"),
			ConnectionIDs: strs("connection_ids"),
		}, nil

	case "arrow.created":
		return events.ArrowCreated{
			BaseEvent: baseEvent,
			BoardID:   str("board_id"),
			ArrowID:   str("arrow_id"),
			SourceID:  str("source_id"),
			TargetID:  str("target_id"),
		}, nil

	case "connection.created":
		return events.ConnectionCreated{
			BaseEvent:    baseEvent,
			BoardID:      str("board_id"),
			ConnectionID: str("connection_id"),
			FromNodeID:   str("from_node_id"),
			ToNodeID:     str("to_node_id"),
		}, nil

	case "history.restored":
		return events.HistoryRestored{
			BaseEvent: baseEvent,
			BoardID:   str("board_id"),
			Direction: str("direction"),
		}, nil

	default:
		return baseEvent, nil
	}
}

// Outbox Pattern Methods

// GetPendingEvents retrieves events that haven't been published yet
func (es *DynamoDBEventStore) GetPendingEvents(ctx context.Context, limit int32) ([]*EventRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	input := &dynamodb.ScanInput{
		TableName:        aws.String(es.tableName),
		FilterExpression: aws.String("PublishStatus = :status AND begins_with(PK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(PublishStatusPending)},
			":prefix": &types.AttributeValueMemberS{Value: "EVENTS#"},
		},
		Limit: aws.Int32(limit),
	}

	result, err := es.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan pending events: %w", err)
	}

	records := make([]*EventRecord, 0, len(result.Items))
	for _, item := range result.Items {
		var record EventRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			continue
		}
		records = append(records, &record)
	}

	return records, nil
}

// MarkEventAsPublished marks an event as successfully published
func (es *DynamoDBEventStore) MarkEventAsPublished(ctx context.Context, eventPK, eventSK string) error {
	now := time.Now().Format(time.RFC3339)

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK},
			"SK": &types.AttributeValueMemberS{Value: eventSK},
		},
		UpdateExpression: aws.String("SET PublishStatus = :published, PublishedAt = :publishedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":published":   &types.AttributeValueMemberS{Value: string(PublishStatusPublished)},
			":publishedAt": &types.AttributeValueMemberS{Value: now},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := es.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to mark event as published: %w", err)
	}

	return nil
}

// MarkEventAsFailed records a failed publish attempt. Events stay
// pending until the attempt limit, then flip to failed for good.
func (es *DynamoDBEventStore) MarkEventAsFailed(ctx context.Context, eventPK, eventSK string, errorMsg string, attempts int) error {
	now := time.Now().Format(time.RFC3339)

	status := string(PublishStatusFailed)
	if attempts < 3 {
		status = string(PublishStatusPending)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK},
			"SK": &types.AttributeValueMemberS{Value: eventSK},
		},
		UpdateExpression: aws.String("SET PublishStatus = :status, PublishAttempts = :attempts, LastPublishTry = :lastTry, ErrorMessage = :error"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":   &types.AttributeValueMemberS{Value: status},
			":attempts": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", attempts)},
			":lastTry":  &types.AttributeValueMemberS{Value: now},
			":error":    &types.AttributeValueMemberS{Value: errorMsg},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := es.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to mark event as failed: %w", err)
	}

	return nil
}
