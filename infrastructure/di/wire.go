//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"boardcore/application/ports"
	domainconfig "boardcore/domain/config"
	infraconfig "boardcore/infrastructure/config"
	dynamodbpersistence "boardcore/infrastructure/persistence/dynamodb"
	"boardcore/interfaces/http/rest"
	"boardcore/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config       *infraconfig.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	BoardRepo    ports.BoardRepository
	EventStore   *dynamodbpersistence.DynamoDBEventStore
	Publisher    ports.EventPublisher
	Outbox       *dynamodbpersistence.OutboxProcessor
	SaveLock     *dynamodbpersistence.BoardLock
	Storage      ports.BlobStorage
	Cache        ports.Cache
	Validator    *auth.JWTValidator
	Router       *rest.Router
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideDomainConfig,
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideBoardRepository,
	ProvideEventStore,
	ProvideEventPublisher,
	ProvideOutboxProcessor,
	ProvideBoardLock,
	ProvideCache,
	ProvideBlobStorage,
	ProvideIPRateLimiter,
	ProvideUserRateLimiter,
	ProvideJWTValidator,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *infraconfig.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
