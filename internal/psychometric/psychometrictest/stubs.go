package psychometrictest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"psychometric-workers/internal/psychometric"
)

// StubGenerator returns a copy of Assessment, or a SizedAssessment of the
// requested count when Assessment is nil.
type StubGenerator struct {
	Assessment *psychometric.Assessment
	Err        error

	mu    sync.Mutex
	Calls []psychometric.GenerateRequest
}

func (g *StubGenerator) Generate(_ context.Context, req psychometric.GenerateRequest) (*psychometric.Assessment, error) {
	g.mu.Lock()
	g.Calls = append(g.Calls, req)
	g.mu.Unlock()

	if g.Err != nil {
		return nil, g.Err
	}
	if g.Assessment != nil {
		a := *g.Assessment
		return &a, nil
	}
	return SizedAssessment(req.Count, req.Type), nil
}

// StubAnalyzer returns Result or Err and records every request.
type StubAnalyzer struct {
	Result *psychometric.Qualitative
	Err    error

	mu    sync.Mutex
	Calls []psychometric.AnalysisRequest
}

func (a *StubAnalyzer) Analyze(_ context.Context, req psychometric.AnalysisRequest) (*psychometric.Qualitative, error) {
	a.mu.Lock()
	a.Calls = append(a.Calls, req)
	a.mu.Unlock()

	if a.Err != nil {
		return nil, a.Err
	}
	if a.Result == nil {
		return nil, nil
	}
	q := *a.Result
	return &q, nil
}

// StaticRoles resolves users from a fixed map; unknown users are
// entrepreneurs.
type StaticRoles map[string]psychometric.AssessmentType

func (r StaticRoles) ResolveRole(_ context.Context, userID string) (psychometric.AssessmentType, error) {
	if t, ok := r[userID]; ok {
		return t, nil
	}
	return psychometric.Entrepreneur, nil
}

// RecordingIndexer collects indexed evaluation ids.
type RecordingIndexer struct {
	Err error

	mu  sync.Mutex
	IDs []string
}

func (ix *RecordingIndexer) IndexEvaluation(_ context.Context, ev *psychometric.Evaluation) error {
	if ix.Err != nil {
		return ix.Err
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.IDs = append(ix.IDs, ev.EvaluationID)
	return nil
}

type PublishedEvent struct {
	UserID  string
	Type    psychometric.AssessmentType
	Created bool
}

type RecordingPublisher struct {
	Err error

	mu     sync.Mutex
	Events []PublishedEvent
}

func (p *RecordingPublisher) PublishProfileUpdated(_ context.Context, prof *psychometric.Profile, created bool) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, PublishedEvent{UserID: prof.UserID, Type: prof.ProfileType, Created: created})
	return nil
}

// FixedClock returns successive instants one minute apart.
func FixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Minute)
		return t
	}
}

// TwoQuestionAssessment is the canonical leadership / risk tolerance
// fixture: q1 A=8 B=4 leadership, q2 A=6 B=2 risk_tolerance.
func TwoQuestionAssessment() *psychometric.Assessment {
	return &psychometric.Assessment{
		AssessmentID:   "assess-2q",
		Title:          "Entrepreneurial Psychometric Assessment",
		AssessmentType: psychometric.Entrepreneur,
		TotalQuestions: 2,
		Questions: []psychometric.Question{
			{
				QuestionID:   "q1",
				Dimension:    "leadership",
				QuestionText: "Your team disagrees on direction. You:",
				Options: []psychometric.Option{
					{OptionID: "A", Text: "Set a clear direction", ScoreProfile: map[string]float64{"leadership": 8}},
					{OptionID: "B", Text: "Wait for consensus", ScoreProfile: map[string]float64{"leadership": 4}},
				},
			},
			{
				QuestionID:   "q2",
				Dimension:    "risk_tolerance",
				QuestionText: "An uncertain but promising opportunity appears. You:",
				Options: []psychometric.Option{
					{OptionID: "A", Text: "Take a calculated bet", ScoreProfile: map[string]float64{"risk_tolerance": 6}},
					{OptionID: "B", Text: "Pass on it", ScoreProfile: map[string]float64{"risk_tolerance": 2}},
				},
			},
		},
	}
}

// SizedAssessment builds n questions cycling through the registry of t,
// each with options A (score 8) and B (score 3).
func SizedAssessment(n int, t psychometric.AssessmentType) *psychometric.Assessment {
	if t == "" {
		t = psychometric.Entrepreneur
	}
	keys := psychometric.RegistryFor(t).Keys()
	a := &psychometric.Assessment{
		AssessmentID:   fmt.Sprintf("assess_%dq_test", n),
		Title:          "Generated Assessment",
		AssessmentType: t,
		TotalQuestions: n,
		SchemaVersion:  psychometric.SchemaVersion,
	}
	for i := 0; i < n; i++ {
		dim := keys[i%len(keys)]
		a.Questions = append(a.Questions, psychometric.Question{
			QuestionID:   fmt.Sprintf("q%d", i+1),
			Dimension:    dim,
			QuestionText: fmt.Sprintf("Question %d about %s", i+1, dim),
			Options: []psychometric.Option{
				{OptionID: "A", Text: "Strong", ScoreProfile: map[string]float64{dim: 8}},
				{OptionID: "B", Text: "Weak", ScoreProfile: map[string]float64{dim: 3}},
			},
		})
	}
	return a
}

// RichAnalysis is a fully populated qualitative record with more than five
// strengths and development areas.
func RichAnalysis() *psychometric.Qualitative {
	return &psychometric.Qualitative{
		Strengths:        []string{"Vision", "Grit", "Empathy", "Focus", "Clarity", "Curiosity", "Drive"},
		DevelopmentAreas: []string{"Delegation", "Patience", "Finance", "Hiring", "Pricing", "Sales"},
		Fit: psychometric.Fit{
			Category:         "High",
			Score:            85,
			Reasoning:        "Strong leadership with calculated risk appetite",
			IdealRole:        "Founder/CEO",
			IdealVentureType: "High-growth startup",
		},
		Recommendations:  []string{"Find a finance co-founder"},
		NarrativeSummary: "A decisive builder.",
		DetailedInsights: map[string]string{
			"leadership_style":        "Directive",
			"decision_making_pattern": "Fast, data-informed",
		},
	}
}
