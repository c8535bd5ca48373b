package llm

import (
	"context"
	"fmt"

	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/common/validation"
	"psychometric-workers/internal/psychometric"
)

type fitDoc struct {
	OverallFit         string  `json:"overall_fit"`
	FitScore           float64 `json:"fit_score"`
	Reasoning          string  `json:"reasoning"`
	IdealRole          string  `json:"ideal_role"`
	IdealVentureType   string  `json:"ideal_venture_type"`
	MentoringReadiness string  `json:"mentoring_readiness"`
}

func (f fitDoc) fit() psychometric.Fit {
	return psychometric.Fit{
		Category:           f.OverallFit,
		Score:              f.FitScore,
		Reasoning:          f.Reasoning,
		IdealRole:          f.IdealRole,
		IdealVentureType:   f.IdealVentureType,
		MentoringReadiness: f.MentoringReadiness,
	}
}

type entrepreneurDoc struct {
	PersonalityProfile  string            `json:"personality_profile"`
	Strengths           []string          `json:"strengths"`
	AreasForDevelopment []string          `json:"areas_for_development"`
	Fit                 fitDoc            `json:"entrepreneurial_fit"`
	Recommendations     []string          `json:"recommendations"`
	DetailedInsights    map[string]string `json:"detailed_insights"`
}

type mentorDoc struct {
	Summary           string                      `json:"mentor_profile_summary"`
	Strengths         []string                    `json:"strengths"`
	DevelopmentAreas  []string                    `json:"development_areas"`
	Fit               fitDoc                      `json:"mentoring_fit"`
	TeachingStyle     string                      `json:"teaching_style"`
	IdealMentee       *psychometric.MenteeProfile `json:"ideal_mentee_profile"`
	MentoringCapacity string                      `json:"mentoring_capacity"`
	ExpertiseDomains  []string                    `json:"expertise_domains"`
	Recommendations   []string                    `json:"recommendations"`
	DetailedInsights  map[string]string           `json:"detailed_insights"`
}

// Analyzer produces the qualitative layer of an evaluation. Errors are
// returned as-is; the service substitutes its fallback.
type Analyzer struct {
	client Completer
	logger logger.Logger
}

func NewAnalyzer(client Completer, log logger.Logger) *Analyzer {
	return &Analyzer{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "llm-analyzer"}),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, req psychometric.AnalysisRequest) (*psychometric.Qualitative, error) {
	if req.Registry == nil {
		req.Registry = psychometric.RegistryFor(req.Type)
	}

	raw, err := a.client.Generate(ctx, analysisPrompt(req))
	if err != nil {
		return nil, err
	}
	doc, _, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}

	if req.Type == psychometric.Mentor {
		return decodeMentor(doc)
	}
	return decodeEntrepreneur(doc)
}

func decodeEntrepreneur(doc map[string]interface{}) (*psychometric.Qualitative, error) {
	if err := validation.EntrepreneurAnalysisSchema.Validate(doc).Err(); err != nil {
		return nil, err
	}
	var d entrepreneurDoc
	if err := remarshal(doc, &d); err != nil {
		return nil, err
	}
	return &psychometric.Qualitative{
		Strengths:        d.Strengths,
		DevelopmentAreas: d.AreasForDevelopment,
		Fit:              d.Fit.fit(),
		Recommendations:  d.Recommendations,
		NarrativeSummary: d.PersonalityProfile,
		DetailedInsights: d.DetailedInsights,
	}, nil
}

func decodeMentor(doc map[string]interface{}) (*psychometric.Qualitative, error) {
	if err := validation.MentorAnalysisSchema.Validate(doc).Err(); err != nil {
		return nil, err
	}
	var d mentorDoc
	if err := remarshal(doc, &d); err != nil {
		return nil, err
	}
	return &psychometric.Qualitative{
		Strengths:         d.Strengths,
		DevelopmentAreas:  d.DevelopmentAreas,
		Fit:               d.Fit.fit(),
		Recommendations:   d.Recommendations,
		NarrativeSummary:  d.Summary,
		DetailedInsights:  d.DetailedInsights,
		TeachingStyle:     d.TeachingStyle,
		IdealMentee:       d.IdealMentee,
		MentoringCapacity: d.MentoringCapacity,
		ExpertiseDomains:  d.ExpertiseDomains,
	}, nil
}
