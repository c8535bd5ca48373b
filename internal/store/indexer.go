package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"psychometric-workers/internal/common/database"
	"psychometric-workers/internal/psychometric"
)

// EvaluationsMapping is the index mapping for evaluation summaries.
const EvaluationsMapping = `{
  "mappings": {
    "properties": {
      "evaluation_id":      {"type": "keyword"},
      "user_id":            {"type": "keyword"},
      "assessment_id":      {"type": "keyword"},
      "assessment_type":    {"type": "keyword"},
      "overall_score":      {"type": "float"},
      "completion_rate":    {"type": "float"},
      "questions_answered": {"type": "integer"},
      "dimension_scores":   {"type": "object"},
      "fit_category":       {"type": "keyword"},
      "fit_score":          {"type": "float"},
      "analysis_fallback":  {"type": "boolean"},
      "evaluated_at":       {"type": "date"}
    }
  }
}`

type evaluationSummary struct {
	EvaluationID      string             `json:"evaluation_id"`
	UserID            string             `json:"user_id,omitempty"`
	AssessmentID      string             `json:"assessment_id"`
	AssessmentType    string             `json:"assessment_type"`
	OverallScore      float64            `json:"overall_score"`
	CompletionRate    float64            `json:"completion_rate"`
	QuestionsAnswered int                `json:"questions_answered"`
	DimensionScores   map[string]float64 `json:"dimension_scores"`
	FitCategory       string             `json:"fit_category"`
	FitScore          float64            `json:"fit_score"`
	AnalysisFallback  bool               `json:"analysis_fallback"`
	EvaluatedAt       time.Time          `json:"evaluated_at"`
}

// EvaluationIndexer writes evaluation summaries for analytics.
type EvaluationIndexer struct {
	es    *database.ElasticsearchClient
	index string
}

var _ psychometric.EvaluationIndexer = (*EvaluationIndexer)(nil)

func NewEvaluationIndexer(es *database.ElasticsearchClient, index string) *EvaluationIndexer {
	return &EvaluationIndexer{es: es, index: index}
}

func (ix *EvaluationIndexer) Index() string { return ix.index }

func (ix *EvaluationIndexer) IndexEvaluation(ctx context.Context, ev *psychometric.Evaluation) error {
	body, err := json.Marshal(evaluationSummary{
		EvaluationID:      ev.EvaluationID,
		UserID:            ev.UserID,
		AssessmentID:      ev.AssessmentID,
		AssessmentType:    string(ev.AssessmentType),
		OverallScore:      ev.OverallScore,
		CompletionRate:    ev.CompletionRate,
		QuestionsAnswered: ev.QuestionsAnswered,
		DimensionScores:   ev.DimensionScores,
		FitCategory:       ev.Qualitative.Fit.Category,
		FitScore:          ev.Qualitative.Fit.Score,
		AnalysisFallback:  ev.AnalysisFallback,
		EvaluatedAt:       ev.EvaluatedAt,
	})
	if err != nil {
		return err
	}

	c := ix.es.Client
	res, err := c.Index(ix.index, bytes.NewReader(body),
		c.Index.WithContext(ctx),
		c.Index.WithDocumentID(ev.EvaluationID),
	)
	if err != nil {
		return fmt.Errorf("index evaluation: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("index evaluation: %s: %s", res.Status(), msg)
	}
	return nil
}

// EnsureIndex creates the index with EvaluationsMapping if missing.
func (ix *EvaluationIndexer) EnsureIndex(ctx context.Context) error {
	return ix.es.EnsureIndex(ctx, ix.index, EvaluationsMapping)
}
