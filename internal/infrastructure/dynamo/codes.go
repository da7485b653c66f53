package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/famwell-api/internal/domain"
)

// OneTimeCodeRepo provides typed DynamoDB operations for the onetime_codes table.
// PK: code. expires_at doubles as the TTL attribute, but every read re-checks
// expiry because TTL deletion is lazy.
//
// Alongside the code rows the table holds one pointer row per target email
// (PK "grant#<email>", which cannot collide with a drawn code since '#' is not
// in the code alphabet). The pointer carries the currently live code and a
// version counter; issuance bumps it in the same transaction that writes the
// new code, so concurrent issuers for one email serialise on its version check.
type OneTimeCodeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOneTimeCodeRepo(client *dynamodb.Client, tableName string) *OneTimeCodeRepo {
	return &OneTimeCodeRepo{client: client, tableName: tableName}
}

const grantPointerPrefix = "grant#"

func grantPointerKey(email string) string { return grantPointerPrefix + email }

// grantPointer is the per-email row that serialises issuance.
type grantPointer struct {
	Key         string `dynamodbav:"code"`
	CurrentCode string `dynamodbav:"current_code"`
	Version     int64  `dynamodbav:"version"`
}

// Issue retires the target's previous grant and stores the new code in one
// TransactWriteItems call. The pointer's version condition guarantees at most
// one of any set of concurrent issuers commits per read of the pointer; the
// new-code condition rejects a draw that collides with a pending grant. Either
// rejection surfaces as ErrConflict so the caller redraws and retries, which
// also re-reads the pointer.
func (r *OneTimeCodeRepo) Issue(ctx context.Context, c *domain.OneTimeCode) error {
	c.TargetEmail = strings.ToLower(c.TargetEmail)
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal one-time code: %w", err)
	}

	prior, err := r.getGrantPointer(ctx, c.TargetEmail)
	if err != nil {
		return err
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: issueTransactItems(r.tableName, item, c, prior, time.Now()),
	})
	if err != nil {
		if isTransactConditionFailed(err) {
			return fmt.Errorf("issuance lost a conditional check: %w", domain.ErrConflict)
		}
		return storeErr("issue one-time code", err)
	}
	return nil
}

func (r *OneTimeCodeRepo) getGrantPointer(ctx context.Context, email string) (*grantPointer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("code", grantPointerKey(email)),
	})
	if err != nil {
		return nil, storeErr("get grant pointer", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	var p grantPointer
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// issueTransactItems builds the writes for one issuance: the new code row
// (only a live pending row blocks the slot), the pointer bump guarded by the
// version that was read, and deletion of the prior code so it can never be
// redeemed once its successor is live. When the fresh draw equals the prior
// live code the delete is skipped; the new-code condition then fails and the
// caller redraws, since a transaction may not touch one item twice.
func issueTransactItems(table string, newItem map[string]types.AttributeValue, c *domain.OneTimeCode, prior *grantPointer, now time.Time) []types.TransactWriteItem {
	items := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:           aws.String(table),
			Item:                newItem,
			ConditionExpression: aws.String("attribute_not_exists(code) OR used = :t OR expires_at <= :now"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t":   &types.AttributeValueMemberBOOL{Value: true},
				":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
			},
		},
	}}

	ptrItem := map[string]types.AttributeValue{
		"code":         &types.AttributeValueMemberS{Value: grantPointerKey(c.TargetEmail)},
		"current_code": &types.AttributeValueMemberS{Value: c.Code},
	}
	ptrPut := &types.Put{TableName: aws.String(table), Item: ptrItem}
	if prior == nil {
		ptrItem["version"] = &types.AttributeValueMemberN{Value: "1"}
		ptrPut.ConditionExpression = aws.String("attribute_not_exists(code)")
	} else {
		ptrItem["version"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(prior.Version+1, 10)}
		ptrPut.ConditionExpression = aws.String("version = :v")
		ptrPut.ExpressionAttributeValues = map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberN{Value: strconv.FormatInt(prior.Version, 10)},
		}
	}
	items = append(items, types.TransactWriteItem{Put: ptrPut})

	if prior != nil && prior.CurrentCode != "" && prior.CurrentCode != c.Code {
		items = append(items, types.TransactWriteItem{Delete: &types.Delete{
			TableName: aws.String(table),
			Key:       strKey("code", prior.CurrentCode),
		}})
	}
	return items
}

// FindPending returns the row only while it is redeemable. Used, expired and
// absent rows all surface as not-found; the lookup layer does not distinguish.
func (r *OneTimeCodeRepo) FindPending(ctx context.Context, code string) (*domain.OneTimeCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("code", code),
	})
	if err != nil {
		return nil, storeErr("get one-time code", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("code not found: %w", domain.ErrNotFound)
	}
	var c domain.OneTimeCode
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	if !c.Pending(time.Now()) {
		return nil, fmt.Errorf("code not pending: %w", domain.ErrNotFound)
	}
	return &c, nil
}

// MarkUsed flips used=true with a single conditional update and reports
// whether this call won. Two concurrent redemptions of the same code get
// exactly one true; the loser sees false, never a partial state. This must
// stay a conditional write — a read-then-write pair here would let both
// redemptions succeed.
func (r *OneTimeCodeRepo) MarkUsed(ctx context.Context, code string) (bool, error) {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("code", code),
		UpdateExpression: aws.String("SET used = :t"),
		ConditionExpression: aws.String(
			"attribute_exists(code) AND used = :f AND expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberBOOL{Value: true},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return false, nil
		}
		return false, storeErr("mark one-time code used", err)
	}
	return true, nil
}

// isConditionalCheckFailed reports whether err is a DynamoDB conditional
// write rejection.
func isConditionalCheckFailed(err error) bool {
	var ccfe *types.ConditionalCheckFailedException
	return errors.As(err, &ccfe)
}

// isTransactConditionFailed reports whether err is a transaction cancelled
// by a failed condition or by a rival transaction on the same items, both of
// which the caller handles by redrawing (as opposed to throttling or a
// transport failure).
func isTransactConditionFailed(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	for _, reason := range tce.CancellationReasons {
		if reason.Code == nil {
			continue
		}
		if *reason.Code == "ConditionalCheckFailed" || *reason.Code == "TransactionConflict" {
			return true
		}
	}
	return false
}
