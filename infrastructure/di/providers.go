package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"boardcore/application/ports"
	"boardcore/domain/config"
	infraconfig "boardcore/infrastructure/config"
	"boardcore/infrastructure/media"
	ebpublisher "boardcore/infrastructure/messaging/eventbridge"
	dynamodbpersistence "boardcore/infrastructure/persistence/dynamodb"
	"boardcore/interfaces/http/rest"
	"boardcore/pkg/auth"
)

// ProvideConfig loads application configuration from the environment
func ProvideConfig() (*infraconfig.Config, error) {
	return infraconfig.Load()
}

// ProvideDomainConfig selects interaction tuning for the environment
func ProvideDomainConfig(cfg *infraconfig.Config) *config.DomainConfig {
	if cfg.IsProduction() {
		return config.ProductionDomainConfig()
	}
	return config.DevelopmentDomainConfig()
}

// ProvideLogger creates a zap logger based on the environment
func ProvideLogger(cfg *infraconfig.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// ProvideAWSConfig loads AWS configuration for the configured region
func ProvideAWSConfig(ctx context.Context, cfg *infraconfig.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *eventbridge.Client {
	return eventbridge.NewFromConfig(awsCfg)
}

// ProvideBoardRepository creates the DynamoDB board repository
func ProvideBoardRepository(client *dynamodb.Client, cfg *infraconfig.Config, logger *zap.Logger) ports.BoardRepository {
	return dynamodbpersistence.NewBoardRepository(client, cfg.BoardTable, logger)
}

// ProvideEventStore creates the DynamoDB event store
func ProvideEventStore(client *dynamodb.Client, cfg *infraconfig.Config) *dynamodbpersistence.DynamoDBEventStore {
	return dynamodbpersistence.NewDynamoDBEventStore(client, cfg.BoardTable)
}

// ProvideEventPublisher creates the EventBridge event publisher
func ProvideEventPublisher(client *eventbridge.Client, cfg *infraconfig.Config, logger *zap.Logger) ports.EventPublisher {
	return ebpublisher.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideOutboxProcessor creates the outbox processor that drains
// unpublished events from the store to the publisher
func ProvideOutboxProcessor(
	eventStore *dynamodbpersistence.DynamoDBEventStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *dynamodbpersistence.OutboxProcessor {
	return dynamodbpersistence.NewOutboxProcessor(eventStore, publisher, logger)
}

// ProvideBoardLock creates the conditional-write lock that serializes
// full document saves
func ProvideBoardLock(client *dynamodb.Client, cfg *infraconfig.Config, logger *zap.Logger) *dynamodbpersistence.BoardLock {
	return dynamodbpersistence.NewBoardLock(client, cfg.BoardTable, logger)
}

// ProvideCache creates the in-memory cache
func ProvideCache() ports.Cache {
	return NewInMemoryCache()
}

// ProvideBlobStorage creates the media file registry storage with a
// URL cache in front of it
func ProvideBlobStorage(client *dynamodb.Client, cfg *infraconfig.Config, cache ports.Cache, logger *zap.Logger) ports.BlobStorage {
	registry := media.NewRegistryStorage(client, cfg.MediaTable, cfg.MediaCDNBase, logger)
	return media.NewCachingStorage(registry, cache)
}

// ProvideIPRateLimiter creates the per-IP request limiter. Lambda
// instances share state through DynamoDB; the local server keeps the
// windows in memory.
func ProvideIPRateLimiter(client *dynamodb.Client, cfg *infraconfig.Config) *auth.IPRateLimiter {
	if cfg.IsLambda {
		return auth.NewIPRateLimiterBacked(auth.NewDistributedIPRateLimiter(client, cfg.BoardTable, 100))
	}
	return auth.NewIPRateLimiter(100)
}

// ProvideUserRateLimiter creates the per-user request limiter
func ProvideUserRateLimiter(client *dynamodb.Client, cfg *infraconfig.Config) *auth.UserRateLimiter {
	if cfg.IsLambda {
		return auth.NewUserRateLimiterBacked(auth.NewDistributedUserRateLimiter(client, cfg.BoardTable, 200))
	}
	return auth.NewUserRateLimiter(200)
}

// ProvideJWTValidator creates the session token validator
func ProvideJWTValidator(cfg *infraconfig.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
	})
}

// ProvideRouter creates the HTTP router with all handlers wired
func ProvideRouter(
	boards ports.BoardRepository,
	eventStore *dynamodbpersistence.DynamoDBEventStore,
	storage ports.BlobStorage,
	saveLock *dynamodbpersistence.BoardLock,
	validator *auth.JWTValidator,
	ipLimiter *auth.IPRateLimiter,
	userLimiter *auth.UserRateLimiter,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(boards, eventStore, storage, saveLock, validator, ipLimiter, userLimiter, logger)
}
