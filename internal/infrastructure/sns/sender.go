package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/med-reminder-api/internal/config"
	"github.com/med-reminder-api/internal/domain"
)

// PushSender delivers one push message to one destination address.
// Best-effort: a rejected or stale address is reported through the return
// values, never a panic.
type PushSender interface {
	SendPush(ctx context.Context, to string, msg domain.PushMessage) (status int, body string, err error)
}

type sender struct {
	client *sns.Client
}

// NewSender builds a PushSender backed by SNS mobile-push endpoints. The
// destination address is the platform endpoint ARN registered for the
// user's device token.
func NewSender(cfg *config.Config) (PushSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *sender) SendPush(ctx context.Context, to string, msg domain.PushMessage) (int, string, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return 0, "", fmt.Errorf("marshal push message: %w", err)
	}
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TargetArn: aws.String(to),
		Message:   aws.String(string(payload)),
	})
	if err != nil {
		return 0, "", err
	}
	return 200, aws.ToString(out.MessageId), nil
}
