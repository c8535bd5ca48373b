// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/psychometric"
)

const (
	EventProfileCreated = "psychometric.profile.created"
	EventProfileUpdated = "psychometric.profile.updated"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client snsAPI
}

func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(cfg)}, nil
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input)
}

// ProfileEvent is the message body published when a profile changes.
type ProfileEvent struct {
	Event        string                 `json:"event"`
	UserID       string                 `json:"user_id"`
	ProfileType  string                 `json:"profile_type"`
	EvaluationID string                 `json:"evaluation_id"`
	OverallScore float64                `json:"overall_score"`
	FitCategory  string                 `json:"fit_category"`
	Profile      map[string]interface{} `json:"profile"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

// ProfileEventPublisher announces profile creations and updates on a topic.
type ProfileEventPublisher struct {
	sns      *SNSClient
	topicARN string
	logger   logger.Logger
	now      func() time.Time
}

var _ psychometric.ProfilePublisher = (*ProfileEventPublisher)(nil)

func NewProfileEventPublisher(client *SNSClient, topicARN string, log logger.Logger) *ProfileEventPublisher {
	return &ProfileEventPublisher{
		sns:      client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"component": "sns-publisher"}),
		now:      time.Now,
	}
}

func (p *ProfileEventPublisher) PublishProfileUpdated(ctx context.Context, prof *psychometric.Profile, created bool) error {
	event := EventProfileUpdated
	if created {
		event = EventProfileCreated
	}

	body, err := json.Marshal(ProfileEvent{
		Event:        event,
		UserID:       prof.UserID,
		ProfileType:  string(prof.ProfileType),
		EvaluationID: prof.EvaluationID,
		OverallScore: prof.OverallScore,
		FitCategory:  prof.Fit.Category,
		Profile:      prof.Document(),
		OccurredAt:   p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal profile event: %w", err)
	}

	out, err := p.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event":        {DataType: aws.String("String"), StringValue: aws.String(event)},
			"profile_type": {DataType: aws.String("String"), StringValue: aws.String(string(prof.ProfileType))},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}

	p.logger.Debug("profile event published", map[string]interface{}{
		"event":     event,
		"userId":    prof.UserID,
		"messageId": aws.ToString(out.MessageId),
	})
	return nil
}
