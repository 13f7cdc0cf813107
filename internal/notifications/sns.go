package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Publisher announces badges to downstream systems
type Publisher interface {
	PublishBadge(ctx context.Context, notice BadgeNotice) error
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes badge notices to an SNS topic
type SNSPublisher struct {
	client   snsAPI
	topicARN string
}

// NewSNSPublisher creates a publisher from an AWS config
func NewSNSPublisher(cfg aws.Config, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: sns.NewFromConfig(cfg), topicARN: topicARN}
}

// PublishBadge publishes the notice without the learner's email address
func (p *SNSPublisher) PublishBadge(ctx context.Context, notice BadgeNotice) error {
	notice.Email = ""
	body, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal badge notice: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String("badge_minted"),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String("badge_minted"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish badge notice: %w", err)
	}
	return nil
}
