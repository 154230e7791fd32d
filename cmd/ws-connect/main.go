// Package main implements the websocket connect/disconnect Lambda.
// Clients authenticate with a session token and name the board they
// want to watch; the connection is tracked for later broadcasts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"boardcore/application/ports"
	infraauth "boardcore/infrastructure/auth"
	infraconfig "boardcore/infrastructure/config"
	"boardcore/infrastructure/realtime"
	"boardcore/pkg/auth"
)

var (
	broadcaster *realtime.Broadcaster
	verifier    ports.AuthProvider
	logger      *zap.Logger
)

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

	// Connect and disconnect only touch the connections table, so no
	// management API client is needed here.
	broadcaster = realtime.NewBroadcaster(
		dynamodb.NewFromConfig(awsCfg),
		nil,
		cfg.ConnectionsTable,
		logger,
	)

	verifier, err = infraauth.NewJWTProvider(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
	if err != nil {
		logger.Fatal("Failed to create token verifier", zap.Error(err))
	}

	logger.Info("Websocket connect handler initialized")
}

func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.RequestContext.RouteKey {
	case "$disconnect":
		return handleDisconnect(ctx, request)
	default:
		return handleConnect(ctx, request)
	}
}

func handleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	token := request.QueryStringParameters["token"]
	if token == "" {
		token = request.Headers["Authorization"]
	}

	userID, err := verifier.Verify(ctx, token)
	if err != nil {
		logger.Warn("Websocket authentication failed",
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusUnauthorized,
			Body:       `{"error": "unauthorized"}`,
		}, nil
	}

	boardID := request.QueryStringParameters["board"]
	if boardID == "" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Body:       `{"error": "missing board parameter"}`,
		}, nil
	}

	conn := realtime.Connection{
		ConnectionID: connectionID,
		UserID:       userID,
		BoardID:      boardID,
		Endpoint:     fmt.Sprintf("%s/%s", request.RequestContext.DomainName, request.RequestContext.Stage),
		ConnectedAt:  time.Now(),
	}

	if err := broadcaster.Register(ctx, conn); err != nil {
		logger.Error("Failed to register connection",
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "internal server error"}`,
		}, nil
	}

	welcome, _ := json.Marshal(map[string]interface{}{
		"type":         "connection_established",
		"connectionId": connectionID,
		"boardId":      boardID,
		"userId":       userID,
		"timestamp":    time.Now().Unix(),
	})

	logger.Info("Websocket connection established",
		zap.String("connectionID", connectionID),
		zap.String("boardID", boardID),
		zap.String("userID", userID),
	)

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Body:       string(welcome),
	}, nil
}

func handleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	if err := broadcaster.Remove(ctx, connectionID); err != nil {
		logger.Warn("Failed to remove connection",
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
	}

	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler)
		return
	}

	// Local smoke test outside Lambda
	log.Println("Running in local test mode")
	response, err := handler(context.Background(), events.APIGatewayWebsocketProxyRequest{
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			ConnectionID: "test-connection-123",
			DomainName:   "test.execute-api.us-west-2.amazonaws.com",
			Stage:        "dev",
		},
		QueryStringParameters: map[string]string{
			"token": "test-token",
			"board": "test-board",
		},
	})
	if err != nil {
		log.Fatalf("Test request processing failed: %v", err)
	}
	log.Printf("Test response: %+v", response)
}
