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

// FamilyLinkRepo manages parent→child ownership edges.
// PK: parent_id, SK: child_id.
type FamilyLinkRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewFamilyLinkRepo(client *dynamodb.Client, tableName string) *FamilyLinkRepo {
	return &FamilyLinkRepo{client: client, tableName: tableName}
}

// Put creates or confirms the edge. Re-putting the same pair is a no-op
// overwrite, which makes redemption idempotent at the link layer.
func (r *FamilyLinkRepo) Put(ctx context.Context, l *domain.FamilyLink) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal family link: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return storeErr("put family link", err)
	}
	return nil
}

func (r *FamilyLinkRepo) Exists(ctx context.Context, parentID, childID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("parent_id", parentID, "child_id", childID),
	})
	if err != nil {
		return false, storeErr("get family link", err)
	}
	return out.Item != nil, nil
}

func (r *FamilyLinkRepo) ListChildren(ctx context.Context, parentID string) ([]domain.FamilyLink, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("parent_id = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: parentID},
		},
	})
	if err != nil {
		return nil, storeErr("query family links", err)
	}
	var links []domain.FamilyLink
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &links); err != nil {
		return nil, err
	}
	return links, nil
}
