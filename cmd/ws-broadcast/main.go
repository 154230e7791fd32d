// Package main implements the websocket broadcast Lambda. It receives
// board events from EventBridge and fans them out to every connection
// watching the affected board.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	infraconfig "boardcore/infrastructure/config"
	"boardcore/infrastructure/realtime"
)

var (
	broadcaster *realtime.Broadcaster
	logger      *zap.Logger
)

// directMessage is the shape accepted for direct invocations, used by
// operational tooling to push a message to a board's watchers.
type directMessage struct {
	BoardID string                 `json:"board_id"`
	Type    string                 `json:"type"`
	Data    map[string]interface{} `json:"data"`
}

func init() {
	cfg, err := infraconfig.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	if cfg.WebSocketEndpoint == "" {
		logger.Fatal("WEBSOCKET_ENDPOINT is required")
	}

	broadcaster = realtime.NewBroadcaster(
		dynamodb.NewFromConfig(awsCfg),
		realtime.NewManagementClient(awsCfg, cfg.WebSocketEndpoint),
		cfg.ConnectionsTable,
		logger,
	)

	logger.Info("Websocket broadcast handler initialized")
}

func handler(ctx context.Context, event json.RawMessage) error {
	// EventBridge delivery of a board event
	var bridgeEvent events.CloudWatchEvent
	if err := json.Unmarshal(event, &bridgeEvent); err == nil && bridgeEvent.DetailType != "" {
		var detail map[string]interface{}
		if err := json.Unmarshal(bridgeEvent.Detail, &detail); err != nil {
			return fmt.Errorf("failed to parse event detail: %w", err)
		}

		boardID := boardIDFromDetail(detail)
		if boardID == "" {
			logger.Warn("Event has no board id, skipping",
				zap.String("detailType", bridgeEvent.DetailType),
			)
			return nil
		}

		return broadcast(ctx, boardID, bridgeEvent.DetailType, detail)
	}

	// Direct invocation
	var direct directMessage
	if err := json.Unmarshal(event, &direct); err == nil && direct.BoardID != "" {
		return broadcast(ctx, direct.BoardID, direct.Type, direct.Data)
	}

	return fmt.Errorf("unable to parse broadcast event")
}

func broadcast(ctx context.Context, boardID, messageType string, data map[string]interface{}) error {
	sent, err := broadcaster.BroadcastToBoard(ctx, boardID, "", messageType, data)
	if err != nil {
		return fmt.Errorf("broadcast to board %s failed: %w", boardID, err)
	}

	logger.Info("Broadcast delivered",
		zap.String("boardID", boardID),
		zap.String("type", messageType),
		zap.Int("sent", sent),
	)
	return nil
}

// boardIDFromDetail finds the board id in an event detail payload.
// Board-scoped events carry board_id; the aggregate id is the board on
// every event this system emits.
func boardIDFromDetail(detail map[string]interface{}) string {
	for _, key := range []string{"board_id", "aggregate_id"} {
		if v, ok := detail[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler)
		return
	}

	// Local smoke test outside Lambda
	log.Println("Running in local test mode")
	test, _ := json.Marshal(directMessage{
		BoardID: "test-board",
		Type:    "item.added",
		Data:    map[string]interface{}{"item_id": "test-item"},
	})
	if err := handler(context.Background(), test); err != nil {
		log.Fatalf("Test message processing failed: %v", err)
	}
	log.Println("Test message processed")
}
