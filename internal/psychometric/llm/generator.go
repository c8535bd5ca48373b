package llm

import (
	"context"
	"errors"
	"time"

	apperrors "psychometric-workers/internal/common/errors"
	genai "psychometric-workers/internal/common/http"
	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/common/validation"
	"psychometric-workers/internal/psychometric"
)

// stampedKeys are always set locally, whatever the model returned.
var stampedKeys = []string{"generated_at", "total_questions", "schema_version", "assessment_type"}

type Generator struct {
	client Completer
	logger logger.Logger
	now    func() time.Time
}

func NewGenerator(client Completer, log logger.Logger) *Generator {
	return &Generator{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "llm-generator"}),
		now:    time.Now,
	}
}

// Generate asks the model for an assessment and validates it. Anything that
// does not decode or match the assessment schema is MALFORMED_ASSESSMENT.
func (g *Generator) Generate(ctx context.Context, req psychometric.GenerateRequest) (*psychometric.Assessment, error) {
	if req.Type == "" {
		req.Type = psychometric.Entrepreneur
	}
	now := g.now()

	raw, err := g.client.Generate(ctx, generationPrompt(req, now))
	if err != nil {
		return nil, completionError(err)
	}

	doc, repaired, err := decodeObject(raw)
	if err != nil {
		g.logger.Error("assessment output undecodable", map[string]interface{}{"error": err.Error(), "raw": snippet(raw)})
		return nil, apperrors.NewMalformedAssessmentError(err.Error())
	}
	if repaired {
		g.logger.Warn("assessment output required JSON repair", nil)
	}

	if res := validation.AssessmentSchema.Validate(doc); !res.Valid {
		return nil, apperrors.NewMalformedAssessmentError(res.Err().Error())
	}
	for _, k := range stampedKeys {
		delete(doc, k)
	}

	var a psychometric.Assessment
	if err := remarshal(doc, &a); err != nil {
		return nil, apperrors.NewMalformedAssessmentError(err.Error())
	}

	a.AssessmentType = req.Type
	a.TotalQuestions = len(a.Questions)
	a.GeneratedAt = now.UTC()
	a.SchemaVersion = psychometric.SchemaVersion
	if a.EstimatedTimeMinutes <= 0 {
		a.EstimatedTimeMinutes = estimatedMinutes(req.Type, a.TotalQuestions)
	}

	g.logger.Info("assessment generated", map[string]interface{}{
		"assessmentId": a.AssessmentID,
		"requested":    req.Count,
		"generated":    a.TotalQuestions,
	})
	return &a, nil
}

func completionError(err error) error {
	if errors.Is(err, genai.ErrGenAITimeout) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewLLMTimeoutError(err)
	}
	return apperrors.NewGenerationFailedError(err)
}
