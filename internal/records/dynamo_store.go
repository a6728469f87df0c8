package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-order-notify/internal/aws"
)

const (
	condNotExists = "attribute_not_exists(id)"
	condExists    = "attribute_exists(id)"
)

// item is the table layout: partition key collection, sort key id.
type item struct {
	Collection string         `dynamodbav:"collection"`
	ID         string         `dynamodbav:"id"`
	Data       map[string]any `dynamodbav:"data"`
	UpdatedAt  string         `dynamodbav:"updated_at"`
}

// DynamoStore encapsulates record operations on a DynamoDB table.
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewDynamoStore creates a new DynamoStore.
func NewDynamoStore(client aws.DynamoDBAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func (s *DynamoStore) key(collection, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"collection": &types.AttributeValueMemberS{Value: collection},
		"id":         &types.AttributeValueMemberS{Value: id},
	}
}

func (s *DynamoStore) List(ctx context.Context, collection string, filter map[string]string) ([]Record, error) {
	out := []Record{}
	var startKey map[string]types.AttributeValue
	for {
		page, err := s.client.Query(ctx, &dyn.QueryInput{
			TableName:                 &s.tableName,
			KeyConditionExpression:    awsString("#c = :c"),
			ExpressionAttributeNames:  map[string]string{"#c": "collection"},
			ExpressionAttributeValues: map[string]types.AttributeValue{":c": &types.AttributeValueMemberS{Value: collection}},
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", collection, err)
		}
		for _, av := range page.Items {
			rec, err := decodeItem(av)
			if err != nil {
				return nil, err
			}
			if rec.Matches(filter) {
				out = append(out, rec)
			}
		}
		if len(page.LastEvaluatedKey) == 0 {
			return out, nil
		}
		startKey = page.LastEvaluatedKey
	}
}

// Get fetches a record. Returns ErrNotFound when absent.
func (s *DynamoStore) Get(ctx context.Context, collection, id string) (Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            s.key(collection, id),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return decodeItem(out.Item)
}

func (s *DynamoStore) Create(ctx context.Context, collection string, rec Record) (Record, error) {
	rec, id, err := prepareCreate(rec)
	if err != nil {
		return nil, err
	}
	if err := s.put(ctx, collection, id, rec, condNotExists); err != nil {
		if isConditionFailed(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return rec, nil
}

func (s *DynamoStore) Replace(ctx context.Context, collection, id string, rec Record) (Record, error) {
	rec, err := prepareReplace(id, rec)
	if err != nil {
		return nil, err
	}
	if err := s.put(ctx, collection, id, rec, condExists); err != nil {
		if isConditionFailed(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Patch reads, merges and writes back. Concurrent patches to one record are last-writer-wins.
func (s *DynamoStore) Patch(ctx context.Context, collection, id string, patch Record) (Record, error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: body must be an object", ErrInvalidRecord)
	}
	cur, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	next := merge(cur, patch)
	if err := s.put(ctx, collection, id, next, condExists); err != nil {
		if isConditionFailed(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return next, nil
}

func (s *DynamoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName:           &s.tableName,
		Key:                 s.key(collection, id),
		ConditionExpression: awsString(condExists),
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *DynamoStore) put(ctx context.Context, collection, id string, rec Record, condition string) error {
	av, err := attributevalue.MarshalMap(item{
		Collection: collection,
		ID:         id,
		Data:       rec,
		UpdatedAt:  s.nowFunc().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                av,
		ConditionExpression: awsString(condition),
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func decodeItem(av map[string]types.AttributeValue) (Record, error) {
	var it item
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	rec := Record(it.Data)
	if rec == nil {
		rec = Record{}
	}
	if _, ok := rec[IDField]; !ok {
		rec[IDField] = it.ID
	}
	return rec, nil
}

// isConditionFailed matches on the API error code so wrapped or generic smithy
// errors from local emulators are classified the same way.
func isConditionFailed(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
