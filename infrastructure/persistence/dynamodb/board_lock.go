package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// BoardLock serializes full-document board saves using DynamoDB
// conditional writes. Two API instances flushing the same board at
// once would otherwise race last-writer-wins on the whole document.
type BoardLock struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// lockRecord represents a lock row in DynamoDB
type lockRecord struct {
	PK         string `dynamodbav:"PK"` // LOCK#<board_id>
	SK         string `dynamodbav:"SK"` // LOCK
	LockID     string `dynamodbav:"LockID"`
	Owner      string `dynamodbav:"Owner"`
	AcquiredAt string `dynamodbav:"AcquiredAt"`
	ExpiresAt  string `dynamodbav:"ExpiresAt"`
	TTL        int64  `dynamodbav:"TTL"`
}

// NewBoardLock creates a new board lock instance
func NewBoardLock(client *dynamodb.Client, tableName string, logger *zap.Logger) *BoardLock {
	return &BoardLock{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Acquire attempts to take the save lock for a board. Expired locks
// from crashed holders are claimable immediately.
func (bl *BoardLock) Acquire(ctx context.Context, boardID, ownerID string, lockDuration time.Duration) (*Lock, error) {
	lockID := fmt.Sprintf("%s_%d", ownerID, time.Now().UnixNano())
	now := time.Now()
	expiresAt := now.Add(lockDuration)

	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", boardID)},
		"SK":         &types.AttributeValueMemberS{Value: "LOCK"},
		"LockID":     &types.AttributeValueMemberS{Value: lockID},
		"Owner":      &types.AttributeValueMemberS{Value: ownerID},
		"AcquiredAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"ExpiresAt":  &types.AttributeValueMemberS{Value: expiresAt.Format(time.RFC3339)},
		"TTL":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt.Unix())},
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(bl.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	}

	if _, err := bl.client.PutItem(ctx, input); err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			bl.logger.Debug("Board lock already held",
				zap.String("boardID", boardID),
				zap.String("owner", ownerID),
			)
			return nil, fmt.Errorf("lock already held for board: %s", boardID)
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	bl.logger.Debug("Board lock acquired",
		zap.String("boardID", boardID),
		zap.String("lockID", lockID),
		zap.String("owner", ownerID),
		zap.Duration("duration", lockDuration),
	)

	return &Lock{
		boardLock: bl,
		boardID:   boardID,
		lockID:    lockID,
		ownerID:   ownerID,
		expiresAt: expiresAt,
	}, nil
}

// TryAcquire retries Acquire with backoff until the timeout passes
func (bl *BoardLock) TryAcquire(ctx context.Context, boardID, ownerID string, lockDuration, timeout time.Duration) (*Lock, error) {
	deadline := time.Now().Add(timeout)
	retryInterval := 100 * time.Millisecond

	for time.Now().Before(deadline) {
		lock, err := bl.Acquire(ctx, boardID, ownerID, lockDuration)
		if err == nil {
			return lock, nil
		}

		if err.Error() != fmt.Sprintf("lock already held for board: %s", boardID) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
			if retryInterval < time.Second {
				retryInterval = time.Duration(float64(retryInterval) * 1.5)
			}
		}
	}

	return nil, fmt.Errorf("timeout acquiring lock for board: %s", boardID)
}

// release removes the lock row if this holder still owns it
func (bl *BoardLock) release(ctx context.Context, boardID, lockID, ownerID string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(bl.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", boardID)},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("LockID = :lockId AND #owner = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#owner": "Owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lockId": &types.AttributeValueMemberS{Value: lockID},
			":owner":  &types.AttributeValueMemberS{Value: ownerID},
		},
	}

	if _, err := bl.client.DeleteItem(ctx, input); err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			// Already expired and reclaimed. Nothing to release.
			bl.logger.Warn("Board lock already released or taken over",
				zap.String("boardID", boardID),
				zap.String("lockID", lockID),
			)
			return nil
		}
		return fmt.Errorf("failed to release lock: %w", err)
	}

	return nil
}

// Lock represents an acquired board save lock
type Lock struct {
	boardLock *BoardLock
	boardID   string
	lockID    string
	ownerID   string
	expiresAt time.Time
}

// Release releases the lock
func (l *Lock) Release(ctx context.Context) error {
	return l.boardLock.release(ctx, l.boardID, l.lockID, l.ownerID)
}

// IsExpired checks if the lock has expired
func (l *Lock) IsExpired() bool {
	return time.Now().After(l.expiresAt)
}
