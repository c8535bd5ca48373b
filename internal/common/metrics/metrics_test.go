package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEvaluation(t *testing.T) {
	before := testutil.ToFloat64(Evaluations.WithLabelValues("mentor", "true"))
	RecordEvaluation("mentor", true, 6.5)
	assert.Equal(t, before+1, testutil.ToFloat64(Evaluations.WithLabelValues("mentor", "true")))
}

func TestRecordPersistenceWarning(t *testing.T) {
	before := testutil.ToFloat64(PersistenceWarnings.WithLabelValues("save evaluation"))
	RecordPersistenceWarning("save evaluation")
	RecordPersistenceWarning("save evaluation")
	assert.Equal(t, before+2, testutil.ToFloat64(PersistenceWarnings.WithLabelValues("save evaluation")))
}

func TestRecordSkippedResponse(t *testing.T) {
	before := testutil.ToFloat64(SkippedResponses.WithLabelValues("unknown_question"))
	RecordSkippedResponse("unknown_question")
	assert.Equal(t, before+1, testutil.ToFloat64(SkippedResponses.WithLabelValues("unknown_question")))
}
