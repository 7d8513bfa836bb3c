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

// MedicationRepo provides typed DynamoDB operations for the medications table.
type MedicationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMedicationRepo(client *dynamodb.Client, tableName string) *MedicationRepo {
	return &MedicationRepo{client: client, tableName: tableName}
}

func (r *MedicationRepo) Put(ctx context.Context, m *domain.Medication) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal medication: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *MedicationRepo) Get(ctx context.Context, medicationID string) (*domain.Medication, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("medication_id", medicationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("medication not found: %w", domain.ErrNotFound)
	}
	var m domain.Medication
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MedicationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Medication, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var medications []domain.Medication
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &medications); err != nil {
		return nil, err
	}
	return medications, nil
}

func (r *MedicationRepo) Update(ctx context.Context, medicationID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("medication_id", medicationID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *MedicationRepo) Delete(ctx context.Context, medicationID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("medication_id", medicationID),
	})
	return err
}
