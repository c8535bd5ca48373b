package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psychometric-workers/internal/common/config"
)

func TestObservability_WithoutJaeger(t *testing.T) {
	o, err := New(config.ObservabilityConfig{ServiceName: "psychometric-workers-test"})
	require.NoError(t, err)

	ctx, span := o.StartJobSpan(context.Background(), "evaluate-responses", 42)
	require.NotNil(t, span)
	assert.False(t, span.SpanContext().IsSampled())
	span.End()

	o.RecordJobProcessed(ctx, "evaluate-responses", "success")
	o.RecordJobDuration(ctx, "evaluate-responses", 15*time.Millisecond, "success")

	assert.NoError(t, o.Shutdown(context.Background()))
}

func TestObservability_NilIsSafe(t *testing.T) {
	var o *Observability

	ctx, span := o.StartJobSpan(context.Background(), "get-profile", 1)
	span.End()
	o.RecordJobProcessed(ctx, "get-profile", "failed")
	o.RecordJobDuration(ctx, "get-profile", time.Second, "failed")
	assert.NoError(t, o.Shutdown(ctx))
}
