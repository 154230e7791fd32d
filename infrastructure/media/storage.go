// Package media resolves stored file ids into display URLs. File
// metadata lives in a DynamoDB registry written at upload time; the
// resolver exchanges a file id for the CDN URL recorded there.
package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"boardcore/application/ports"
	pkgerrors "boardcore/pkg/errors"
)

// fileRecord is the registry row for an uploaded file
type fileRecord struct {
	PK          string `dynamodbav:"PK"` // FILE#<file_id>
	SK          string `dynamodbav:"SK"` // METADATA
	FileID      string `dynamodbav:"FileID"`
	StoragePath string `dynamodbav:"StoragePath"`
	URL         string `dynamodbav:"URL,omitempty"`
	ContentType string `dynamodbav:"ContentType,omitempty"`
	SizeBytes   int64  `dynamodbav:"SizeBytes,omitempty"`
}

// RegistryStorage implements ports.BlobStorage over the file registry
type RegistryStorage struct {
	client    *dynamodb.Client
	tableName string
	cdnBase   string
	logger    *zap.Logger
}

// NewRegistryStorage creates a registry-backed blob storage. cdnBase is
// prepended to storage paths that have no absolute URL recorded.
func NewRegistryStorage(client *dynamodb.Client, tableName, cdnBase string, logger *zap.Logger) ports.BlobStorage {
	return &RegistryStorage{
		client:    client,
		tableName: tableName,
		cdnBase:   strings.TrimRight(cdnBase, "/"),
		logger:    logger,
	}
}

// ResolveURL exchanges a stored file id for a display URL
func (s *RegistryStorage) ResolveURL(ctx context.Context, fileID string) (string, error) {
	if fileID == "" {
		return "", pkgerrors.NewValidationError("file id cannot be empty")
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("FILE#%s", fileID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	}

	result, err := s.client.GetItem(ctx, input)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to look up file")
	}
	if result.Item == nil {
		return "", pkgerrors.NewNotFoundError("file not found")
	}

	var record fileRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return "", pkgerrors.Wrap(err, "failed to unmarshal file record")
	}

	if record.URL != "" {
		return record.URL, nil
	}
	if record.StoragePath == "" {
		return "", pkgerrors.NewNotFoundError("file has no stored location")
	}
	if s.cdnBase == "" {
		return "", pkgerrors.NewInternalError("no CDN base configured for relative storage paths")
	}

	return s.cdnBase + "/" + strings.TrimLeft(record.StoragePath, "/"), nil
}

// Delete removes a stored file's registry entry
func (s *RegistryStorage) Delete(ctx context.Context, fileID string) error {
	if fileID == "" {
		return pkgerrors.NewValidationError("file id cannot be empty")
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("FILE#%s", fileID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	}

	if _, err := s.client.DeleteItem(ctx, input); err != nil {
		return pkgerrors.Wrap(err, "failed to delete file record")
	}

	s.logger.Debug("File record deleted", zap.String("fileID", fileID))
	return nil
}
