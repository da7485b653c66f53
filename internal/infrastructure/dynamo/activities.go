package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/famwell-api/internal/domain"
)

// ActivityRepo provides typed DynamoDB operations for the activities table.
type ActivityRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewActivityRepo(client *dynamodb.Client, tableName string) *ActivityRepo {
	return &ActivityRepo{client: client, tableName: tableName}
}

func (r *ActivityRepo) Put(ctx context.Context, a *domain.Activity) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return storeErr("put activity", err)
	}
	return nil
}

func (r *ActivityRepo) Get(ctx context.Context, activityID string) (*domain.Activity, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("activity_id", activityID),
	})
	if err != nil {
		return nil, storeErr("get activity", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("activity not found: %w", domain.ErrNotFound)
	}
	var a domain.Activity
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ActivityRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Activity, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("owner_id-index"),
		KeyConditionExpression: aws.String("owner_id = :o"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":o": &types.AttributeValueMemberS{Value: ownerID},
		},
	})
	if err != nil {
		return nil, storeErr("query activities by owner", err)
	}
	var acts []domain.Activity
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &acts); err != nil {
		return nil, err
	}
	return acts, nil
}

func (r *ActivityRepo) Update(ctx context.Context, activityID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("activity_id", activityID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return storeErr("update activity", err)
	}
	return nil
}

func (r *ActivityRepo) HardDelete(ctx context.Context, activityID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("activity_id", activityID),
	})
	if err != nil {
		return storeErr("delete activity", err)
	}
	return nil
}
