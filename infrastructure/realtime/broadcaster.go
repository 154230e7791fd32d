// Package realtime fans board changes out to websocket clients through
// the API Gateway management API. Connections are tracked in DynamoDB
// keyed by connection id, with a GSI over the board they watch.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	pkgerrors "boardcore/pkg/errors"
)

// Connection represents a websocket connection watching a board
type Connection struct {
	ConnectionID string
	UserID       string
	BoardID      string
	Endpoint     string
	ConnectedAt  time.Time
}

// Message is the envelope delivered to websocket clients
type Message struct {
	Type      string                 `json:"type"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Broadcaster delivers board updates to every connection watching a
// board and prunes connections the gateway reports as gone.
type Broadcaster struct {
	dynamoClient *dynamodb.Client
	apigwClient  *apigatewaymanagementapi.Client
	tableName    string
	logger       *zap.Logger
}

// NewBroadcaster creates a broadcaster over the given connections table
func NewBroadcaster(dynamoClient *dynamodb.Client, apigwClient *apigatewaymanagementapi.Client, tableName string, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		dynamoClient: dynamoClient,
		apigwClient:  apigwClient,
		tableName:    tableName,
		logger:       logger,
	}
}

// NewManagementClient builds an API Gateway management client for a
// websocket endpoint of the form "domain/stage".
func NewManagementClient(cfg aws.Config, endpoint string) *apigatewaymanagementapi.Client {
	return apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s", endpoint))
	})
}

// Register stores a connection record. The TTL sweeps connections that
// never disconnect cleanly.
func (b *Broadcaster) Register(ctx context.Context, conn Connection) error {
	ttl := time.Now().Add(24 * time.Hour).Unix()

	item := map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: fmt.Sprintf("CONNECTION#%s", conn.ConnectionID)},
		"SK":           &types.AttributeValueMemberS{Value: "METADATA"},
		"ConnectionID": &types.AttributeValueMemberS{Value: conn.ConnectionID},
		"UserID":       &types.AttributeValueMemberS{Value: conn.UserID},
		"BoardID":      &types.AttributeValueMemberS{Value: conn.BoardID},
		"GSI1PK":       &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", conn.BoardID)},
		"GSI1SK":       &types.AttributeValueMemberS{Value: fmt.Sprintf("CONNECTION#%s", conn.ConnectionID)},
		"Endpoint":     &types.AttributeValueMemberS{Value: conn.Endpoint},
		"ConnectedAt":  &types.AttributeValueMemberS{Value: conn.ConnectedAt.Format(time.RFC3339)},
		"TTL":          &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", ttl)},
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(b.tableName),
		Item:      item,
	}

	if _, err := b.dynamoClient.PutItem(ctx, input); err != nil {
		return pkgerrors.Wrap(err, "failed to store connection")
	}

	b.logger.Debug("Connection registered",
		zap.String("connectionID", conn.ConnectionID),
		zap.String("boardID", conn.BoardID),
		zap.String("userID", conn.UserID),
	)
	return nil
}

// Remove deletes a connection record
func (b *Broadcaster) Remove(ctx context.Context, connectionID string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(b.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CONNECTION#%s", connectionID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	}

	if _, err := b.dynamoClient.DeleteItem(ctx, input); err != nil {
		return pkgerrors.Wrap(err, "failed to remove connection")
	}
	return nil
}

// ConnectionsForBoard lists active connections watching a board
func (b *Broadcaster) ConnectionsForBoard(ctx context.Context, boardID string) ([]Connection, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(b.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", boardID)},
		},
	}

	result, err := b.dynamoClient.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query board connections")
	}

	connections := make([]Connection, 0, len(result.Items))
	for _, item := range result.Items {
		conn := Connection{}
		if v, ok := item["ConnectionID"].(*types.AttributeValueMemberS); ok {
			conn.ConnectionID = v.Value
		}
		if v, ok := item["UserID"].(*types.AttributeValueMemberS); ok {
			conn.UserID = v.Value
		}
		if v, ok := item["BoardID"].(*types.AttributeValueMemberS); ok {
			conn.BoardID = v.Value
		}
		if v, ok := item["Endpoint"].(*types.AttributeValueMemberS); ok {
			conn.Endpoint = v.Value
		}
		if conn.ConnectionID != "" {
			connections = append(connections, conn)
		}
	}

	return connections, nil
}

// BroadcastToBoard sends a message to every connection watching a
// board, except the sender. Gone connections are pruned as they are
// discovered.
func (b *Broadcaster) BroadcastToBoard(ctx context.Context, boardID, excludeConnectionID, messageType string, data map[string]interface{}) (int, error) {
	connections, err := b.ConnectionsForBoard(ctx, boardID)
	if err != nil {
		return 0, err
	}

	message := Message{
		Type:      messageType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to marshal broadcast message")
	}

	sent := 0
	for _, conn := range connections {
		if conn.ConnectionID == excludeConnectionID {
			continue
		}
		if err := b.send(ctx, conn.ConnectionID, payload); err != nil {
			b.logger.Warn("Failed to send to connection",
				zap.String("connectionID", conn.ConnectionID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	b.logger.Debug("Broadcast complete",
		zap.String("boardID", boardID),
		zap.String("type", messageType),
		zap.Int("sent", sent),
		zap.Int("connections", len(connections)),
	)
	return sent, nil
}

// send posts a payload to one connection, pruning it if gone
func (b *Broadcaster) send(ctx context.Context, connectionID string, payload []byte) error {
	input := &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         payload,
	}

	if _, err := b.apigwClient.PostToConnection(ctx, input); err != nil {
		var gone *apigwtypes.GoneException
		if errors.As(err, &gone) {
			b.logger.Debug("Pruning stale connection", zap.String("connectionID", connectionID))
			if removeErr := b.Remove(ctx, connectionID); removeErr != nil {
				b.logger.Warn("Failed to prune stale connection",
					zap.String("connectionID", connectionID),
					zap.Error(removeErr),
				)
			}
			return nil
		}
		return pkgerrors.Wrap(err, "failed to post to connection")
	}
	return nil
}
