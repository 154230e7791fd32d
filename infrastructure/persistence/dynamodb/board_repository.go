package dynamodb

import (
	"context"
	"fmt"
	"time"

	"boardcore/application/ports"
	"boardcore/domain/core/aggregates"
	pkgerrors "boardcore/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// BoardRepository implements the BoardRepository interface using DynamoDB
type BoardRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.BoardRepository {
	return &BoardRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// boardItem represents the DynamoDB item structure for a board. The
// whole document rides in one item: boards are bounded by what a single
// user can draw, so the 400KB item limit is not a practical concern and
// a single read hydrates the full scene.
type boardItem struct {
	PK         string                    `dynamodbav:"PK"`
	SK         string                    `dynamodbav:"SK"`
	GSI1PK     string                    `dynamodbav:"GSI1PK,omitempty"` // For board lookups by ID
	GSI1SK     string                    `dynamodbav:"GSI1SK,omitempty"` // Always "METADATA"
	EntityType string                    `dynamodbav:"EntityType"`
	BoardID    string                    `dynamodbav:"BoardID"`
	UserID     string                    `dynamodbav:"UserID"`
	Name       string                    `dynamodbav:"Name"`
	Document   *aggregates.BoardDocument `dynamodbav:"Document"`
	ItemCount  int                       `dynamodbav:"ItemCount"`
	CreatedAt  string                    `dynamodbav:"CreatedAt"`
	UpdatedAt  string                    `dynamodbav:"UpdatedAt"`
	Version    int                       `dynamodbav:"Version"`
}

// Save persists a board to DynamoDB
func (r *BoardRepository) Save(ctx context.Context, board *aggregates.Board) error {
	doc := board.ToDocument()

	item := boardItem{
		PK:         fmt.Sprintf("USER#%s", board.UserID()),
		SK:         fmt.Sprintf("BOARD#%s", board.ID().String()),
		GSI1PK:     fmt.Sprintf("BOARDID#%s", board.ID().String()),
		GSI1SK:     "METADATA",
		EntityType: "BOARD",
		BoardID:    board.ID().String(),
		UserID:     board.UserID(),
		Name:       board.Name(),
		Document:   doc,
		ItemCount:  len(doc.Items),
		CreatedAt:  board.CreatedAt().Format(time.RFC3339),
		UpdatedAt:  board.UpdatedAt().Format(time.RFC3339),
		Version:    board.Version(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal board")
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save board to DynamoDB",
			zap.Error(err),
			zap.String("boardID", board.ID().String()),
		)
		return pkgerrors.Wrap(err, "failed to save board")
	}

	r.logger.Debug("Saved board to DynamoDB",
		zap.String("boardID", board.ID().String()),
		zap.String("userID", board.UserID()),
		zap.Int("itemCount", item.ItemCount),
		zap.Int("version", item.Version),
	)

	return nil
}

// GetByID retrieves a board by its ID
func (r *BoardRepository) GetByID(ctx context.Context, id aggregates.BoardID) (*aggregates.Board, error) {
	// Use GSI1 for efficient lookup by BoardID
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARDID#%s", id.String())},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query board")
	}

	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("board not found")
	}

	var item boardItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal board")
	}

	return r.rebuild(&item)
}

// GetByUserID retrieves all boards for a user
func (r *BoardRepository) GetByUserID(ctx context.Context, userID string) ([]*aggregates.Board, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("USER#%s", userID))).
		And(expression.Key("SK").BeginsWith("BOARD#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build board query")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query boards")
	}

	boards := make([]*aggregates.Board, 0, len(result.Items))
	for _, raw := range result.Items {
		var item boardItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal board item", zap.Error(err))
			continue
		}

		board, err := r.rebuild(&item)
		if err != nil {
			r.logger.Warn("Failed to rebuild board from item",
				zap.String("boardID", item.BoardID),
				zap.Error(err))
			continue
		}
		boards = append(boards, board)
	}

	return boards, nil
}

// Delete removes a board
func (r *BoardRepository) Delete(ctx context.Context, id aggregates.BoardID) error {
	// The key needs the owning user, so look the board up first.
	board, err := r.GetByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to get board for deletion")
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", board.UserID())},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", id.String())},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return pkgerrors.Wrap(err, "failed to delete board")
	}

	r.logger.Debug("Board deleted",
		zap.String("boardID", id.String()),
		zap.String("userID", board.UserID()),
	)

	return nil
}

// rebuild turns a stored item back into an aggregate. Items written
// before the document column existed carry only metadata; those come
// back as empty boards rather than errors.
func (r *BoardRepository) rebuild(item *boardItem) (*aggregates.Board, error) {
	if item.Document != nil {
		return aggregates.FromDocument(item.Document)
	}

	createdAt, err := time.Parse(time.RFC3339, item.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}
	updatedAt, err := time.Parse(time.RFC3339, item.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}
	return aggregates.ReconstructBoard(item.BoardID, item.UserID, item.Name, createdAt, updatedAt)
}
