package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/psychometric"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func newTestPublisher(t *testing.T, api snsAPI) *ProfileEventPublisher {
	p := NewProfileEventPublisher(&SNSClient{client: api}, "arn:aws:sns:us-east-1:123:profiles", logger.NewTestLogger(t))
	p.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func mentorProfile() *psychometric.Profile {
	return &psychometric.Profile{
		UserID:             "m1",
		ProfileType:        psychometric.Mentor,
		PsychometricScores: map[string]float64{"empathy": 9},
		OverallScore:       7.5,
		Fit:                psychometric.Fit{Category: "High", Score: 88},
		EvaluationID:       "ev-9",
		TeachingStyle:      "Socratic",
	}
}

func TestPublishProfileUpdated(t *testing.T) {
	tests := []struct {
		name      string
		created   bool
		wantEvent string
	}{
		{"created", true, EventProfileCreated},
		{"updated", false, EventProfileUpdated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSNS{}
			p := newTestPublisher(t, api)

			require.NoError(t, p.PublishProfileUpdated(context.Background(), mentorProfile(), tt.created))
			require.Len(t, api.inputs, 1)

			in := api.inputs[0]
			assert.Equal(t, "arn:aws:sns:us-east-1:123:profiles", aws.ToString(in.TopicArn))
			assert.Equal(t, tt.wantEvent, aws.ToString(in.MessageAttributes["event"].StringValue))
			assert.Equal(t, "mentor", aws.ToString(in.MessageAttributes["profile_type"].StringValue))

			var ev ProfileEvent
			require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &ev))
			assert.Equal(t, tt.wantEvent, ev.Event)
			assert.Equal(t, "m1", ev.UserID)
			assert.Equal(t, "ev-9", ev.EvaluationID)
			assert.Equal(t, "High", ev.FitCategory)
			assert.Equal(t, 7.5, ev.OverallScore)
			assert.NotEmpty(t, ev.Profile)
			assert.Equal(t, 2026, ev.OccurredAt.Year())
		})
	}
}

func TestPublishProfileUpdated_Error(t *testing.T) {
	api := &fakeSNS{err: errors.New("throttled")}
	p := newTestPublisher(t, api)

	err := p.PublishProfileUpdated(context.Background(), mentorProfile(), false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), EventProfileUpdated)
	assert.Contains(t, err.Error(), "throttled")
}
