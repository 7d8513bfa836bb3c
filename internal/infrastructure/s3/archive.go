package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/med-reminder-api/internal/domain"
)

// ReportArchive stores dispatch run reports as JSON objects for audit.
// The engine itself never reads them back.
type ReportArchive struct {
	client *s3.Client
	bucket string
}

func NewReportArchive(client *s3.Client, bucket string) *ReportArchive {
	return &ReportArchive{client: client, bucket: bucket}
}

// Archive uploads one run report keyed by its start timestamp.
func (a *ReportArchive) Archive(ctx context.Context, report *domain.RunReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	key := fmt.Sprintf("dispatch-runs/%s.json", report.StartedAt.UTC().Format("2006-01-02T15-04-05Z"))
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload run report: %w", err)
	}
	return nil
}
