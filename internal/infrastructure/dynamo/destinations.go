package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/med-reminder-api/internal/domain"
)

// DestinationRepo provides typed DynamoDB operations for the destinations table.
// user_id is the partition key, so Put is a natural upsert: one row per user.
type DestinationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDestinationRepo(client *dynamodb.Client, tableName string) *DestinationRepo {
	return &DestinationRepo{client: client, tableName: tableName}
}

func (r *DestinationRepo) Put(ctx context.Context, d *domain.Destination) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal destination: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *DestinationRepo) Get(ctx context.Context, userID string) (*domain.Destination, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("destination not found: %w", domain.ErrNotFound)
	}
	var d domain.Destination
	if err := attributevalue.UnmarshalMap(out.Item, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// List scans all registered destinations, paging through ExclusiveStartKey.
// Cardinality is one row per active user, so a full scan per dispatch run is
// the intended access pattern.
func (r *DestinationRepo) List(ctx context.Context, pageSize int32) ([]domain.Destination, error) {
	var destinations []domain.Destination
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			Limit:             aws.Int32(pageSize),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan destinations: %w", err)
		}
		var page []domain.Destination
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		destinations = append(destinations, page...)
		if out.LastEvaluatedKey == nil {
			return destinations, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *DestinationRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *DestinationRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	return err
}
