package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DistributedRateLimiter counts requests per fixed window in DynamoDB
// so limits hold across Lambda invocations. Rows share the board table
// under a RATELIMIT# key prefix and expire by TTL.
type DistributedRateLimiter struct {
	client    *dynamodb.Client
	tableName string
	limit     int
	window    time.Duration
	keyPrefix string
}

type rateLimitEntry struct {
	PK        string    `dynamodbav:"PK"`
	Count     int       `dynamodbav:"Count"`
	WindowEnd time.Time `dynamodbav:"WindowEnd"`
	TTL       int64     `dynamodbav:"TTL"`
}

// NewDistributedIPRateLimiter creates a rate limiter for IP addresses
func NewDistributedIPRateLimiter(client *dynamodb.Client, tableName string, requestsPerMinute int) *DistributedRateLimiter {
	return NewDistributedRateLimiter(client, tableName, requestsPerMinute, time.Minute, "IP")
}

// NewDistributedUserRateLimiter creates a rate limiter for user ids
func NewDistributedUserRateLimiter(client *dynamodb.Client, tableName string, requestsPerMinute int) *DistributedRateLimiter {
	return NewDistributedRateLimiter(client, tableName, requestsPerMinute, time.Minute, "USER")
}

// NewDistributedRateLimiter creates a generic distributed rate limiter
func NewDistributedRateLimiter(client *dynamodb.Client, tableName string, limit int, window time.Duration, keyPrefix string) *DistributedRateLimiter {
	return &DistributedRateLimiter{
		client:    client,
		tableName: tableName,
		limit:     limit,
		window:    window,
		keyPrefix: keyPrefix,
	}
}

// Allow atomically increments the counter for the current window. A nil
// client allows everything, which keeps local development unblocked.
// Store errors fail open so a DynamoDB outage cannot take the API down
// with it.
func (r *DistributedRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.client == nil {
		return true, nil
	}

	now := time.Now()
	windowStart := now.Truncate(r.window)
	windowEnd := windowStart.Add(r.window)

	pk := r.windowKey(key, windowStart)

	update := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
		},
		UpdateExpression:    aws.String("SET #count = if_not_exists(#count, :zero) + :incr, WindowEnd = :window_end, #ttl = :ttl"),
		ConditionExpression: aws.String("attribute_not_exists(#count) OR #count < :limit"),
		ExpressionAttributeNames: map[string]string{
			"#count": "Count",
			"#ttl":   "TTL",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero":       &types.AttributeValueMemberN{Value: "0"},
			":incr":       &types.AttributeValueMemberN{Value: "1"},
			":limit":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", r.limit)},
			":window_end": &types.AttributeValueMemberS{Value: windowEnd.Format(time.RFC3339)},
			":ttl":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", windowEnd.Add(time.Hour).Unix())},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := r.client.UpdateItem(ctx, update)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return true, fmt.Errorf("rate limiter error (failing open): %w", err)
	}

	var entry rateLimitEntry
	if err := attributevalue.UnmarshalMap(result.Attributes, &entry); err != nil {
		return true, fmt.Errorf("failed to parse rate limit entry (failing open): %w", err)
	}

	return entry.Count <= r.limit, nil
}

// Reset clears the current window for a key
func (r *DistributedRateLimiter) Reset(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}

	windowStart := time.Now().Truncate(r.window)

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: r.windowKey(key, windowStart)},
		},
	}

	_, err := r.client.DeleteItem(ctx, input)
	return err
}

func (r *DistributedRateLimiter) windowKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("RATELIMIT#%s#%s#%d", r.keyPrefix, key, windowStart.Unix())
}
