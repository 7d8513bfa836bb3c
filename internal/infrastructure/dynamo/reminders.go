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

// ReminderRepo provides typed DynamoDB operations for the reminders table.
type ReminderRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewReminderRepo(client *dynamodb.Client, tableName string) *ReminderRepo {
	return &ReminderRepo{client: client, tableName: tableName}
}

func (r *ReminderRepo) Put(ctx context.Context, rem *domain.Reminder) error {
	item, err := attributevalue.MarshalMap(rem)
	if err != nil {
		return fmt.Errorf("marshal reminder: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ReminderRepo) Get(ctx context.Context, reminderID string) (*domain.Reminder, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("reminder_id", reminderID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("reminder not found: %w", domain.ErrNotFound)
	}
	var rem domain.Reminder
	if err := attributevalue.UnmarshalMap(out.Item, &rem); err != nil {
		return nil, err
	}
	return &rem, nil
}

// ListEligible scans the table for reminders in the due-set predicate:
// (taken=false AND notification_send=false) OR (repeat_schedule=true AND
// total_reminders_left>0). Pages through ExclusiveStartKey so reminders
// beyond one page are never silently dropped.
func (r *ReminderRepo) ListEligible(ctx context.Context, pageSize int32) ([]domain.Reminder, error) {
	var reminders []domain.Reminder
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName: aws.String(r.tableName),
			FilterExpression: aws.String(
				"(taken = :f AND notification_send = :f) OR (repeat_schedule = :t AND total_reminders_left > :zero)",
			),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":f":    &types.AttributeValueMemberBOOL{Value: false},
				":t":    &types.AttributeValueMemberBOOL{Value: true},
				":zero": &types.AttributeValueMemberN{Value: "0"},
			},
			Limit:             aws.Int32(pageSize),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan eligible reminders: %w", err)
		}
		var page []domain.Reminder
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		reminders = append(reminders, page...)
		if out.LastEvaluatedKey == nil {
			return reminders, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// ListByUserDate queries the user_id-date GSI for one user's reminders on one
// local calendar date.
func (r *ReminderRepo) ListByUserDate(ctx context.Context, userID, date string) ([]domain.Reminder, error) {
	return r.queryByUser(ctx, userID, "#d = :date", map[string]types.AttributeValue{
		":date": &types.AttributeValueMemberS{Value: date},
	})
}

// ListByUserRange queries the user_id-date GSI for one user's reminders with
// dates in [from, to]. Dates sort lexicographically in the YYYY-MM-DD format.
func (r *ReminderRepo) ListByUserRange(ctx context.Context, userID, from, to string) ([]domain.Reminder, error) {
	return r.queryByUser(ctx, userID, "#d BETWEEN :from AND :to", map[string]types.AttributeValue{
		":from": &types.AttributeValueMemberS{Value: from},
		":to":   &types.AttributeValueMemberS{Value: to},
	})
}

func (r *ReminderRepo) queryByUser(ctx context.Context, userID, dateCond string, values map[string]types.AttributeValue) ([]domain.Reminder, error) {
	values[":uid"] = &types.AttributeValueMemberS{Value: userID}
	var reminders []domain.Reminder
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("user_id-date-index"),
			KeyConditionExpression: aws.String("user_id = :uid AND " + dateCond),
			ExpressionAttributeNames: map[string]string{
				"#d": "date",
			},
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Reminder
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		reminders = append(reminders, page...)
		if out.LastEvaluatedKey == nil {
			return reminders, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *ReminderRepo) Update(ctx context.Context, reminderID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("reminder_id", reminderID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// MarkNotified flips notification_send after a successful send. Best-effort:
// the write is not conditional, so overlapping runs can still double-send
// inside the same minute.
func (r *ReminderRepo) MarkNotified(ctx context.Context, reminderID string) error {
	return r.Update(ctx, reminderID, map[string]interface{}{"notification_send": true})
}

func (r *ReminderRepo) Delete(ctx context.Context, reminderID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("reminder_id", reminderID),
	})
	return err
}
