package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/famwell-api/internal/domain"
)

// MoodRepo provides typed DynamoDB operations for the mood_entries table.
type MoodRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMoodRepo(client *dynamodb.Client, tableName string) *MoodRepo {
	return &MoodRepo{client: client, tableName: tableName}
}

func (r *MoodRepo) Put(ctx context.Context, m *domain.MoodEntry) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal mood entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return storeErr("put mood entry", err)
	}
	return nil
}

// ListByIdentity returns the most recent entries first via the
// identity_id-created_at GSI.
func (r *MoodRepo) ListByIdentity(ctx context.Context, identityID string, limit int32) ([]domain.MoodEntry, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("identity_id-created_at-index"),
		KeyConditionExpression: aws.String("identity_id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: identityID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, storeErr("query mood entries", err)
	}
	var entries []domain.MoodEntry
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
