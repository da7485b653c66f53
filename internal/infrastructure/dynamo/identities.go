package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/famwell-api/internal/domain"
)

// IdentityRepo provides typed DynamoDB operations for the identities table.
type IdentityRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewIdentityRepo(client *dynamodb.Client, tableName string) *IdentityRepo {
	return &IdentityRepo{client: client, tableName: tableName}
}

// Put persists a new identity. The condition guards against double-creation
// under the same identity id; email uniqueness is checked by the caller via
// GetByEmail before this is invoked.
func (r *IdentityRepo) Put(ctx context.Context, i *domain.Identity) error {
	i.Email = strings.ToLower(i.Email)
	item, err := attributevalue.MarshalMap(i)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(identity_id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("identity already exists: %w", domain.ErrConflict)
		}
		return storeErr("put identity", err)
	}
	return nil
}

func (r *IdentityRepo) Get(ctx context.Context, identityID string) (*domain.Identity, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identity_id", identityID),
	})
	if err != nil {
		return nil, storeErr("get identity", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	var i domain.Identity
	if err := attributevalue.UnmarshalMap(out.Item, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

// GetByEmail looks up an identity via the email GSI. The input is case-folded
// to match the stored form, giving case-insensitive exact-match semantics.
func (r *IdentityRepo) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String("email-index"),
		KeyConditionExpression:   aws.String("#e = :v"),
		ExpressionAttributeNames: map[string]string{"#e": "email"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: strings.ToLower(email)},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, storeErr("query identity by email", err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	var i domain.Identity
	if err := attributevalue.UnmarshalMap(out.Items[0], &i); err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *IdentityRepo) Update(ctx context.Context, identityID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("identity_id", identityID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return storeErr("update identity", err)
	}
	return nil
}

// SetPasswordHash stores a new hash and raises the password_set flag in a
// single write. Idempotent.
func (r *IdentityRepo) SetPasswordHash(ctx context.Context, identityID, hash string) error {
	return r.Update(ctx, identityID, map[string]interface{}{
		fieldPasswordHash: hash,
		fieldPasswordSet:  true,
	})
}

// ClearPasswordFlag lowers password_set without touching the hash. Login
// checks the flag before comparing hashes, so the stale hash is inert.
func (r *IdentityRepo) ClearPasswordFlag(ctx context.Context, identityID string) error {
	return r.Update(ctx, identityID, map[string]interface{}{fieldPasswordSet: false})
}

func (r *IdentityRepo) SoftDelete(ctx context.Context, identityID string) error {
	return r.Update(ctx, identityID, map[string]interface{}{fieldEnable: false})
}
