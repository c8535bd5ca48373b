package psychometric

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func richQualitative() Qualitative {
	return Qualitative{
		Strengths:        []string{"a", "b", "c", "d", "e", "f", "g"},
		DevelopmentAreas: []string{"1", "2", "3", "4", "5", "6"},
		Fit:              Fit{Category: "High", Score: 82, Reasoning: "r", IdealRole: "Founder"},
		Recommendations:  []string{"rec"},
		NarrativeSummary: "summary",
		DetailedInsights: map[string]string{"leadership_style": "Servant", "decision_making_pattern": "Deliberate"},
	}
}

func evaluationWith(scores map[string]float64, q Qualitative, at time.Time) *Evaluation {
	return &Evaluation{
		EvaluationID:    "ev-" + at.Format("150405"),
		AssessmentType:  Entrepreneur,
		UserName:        "Ada",
		DimensionScores: scores,
		OverallScore:    6.1,
		Qualitative:     q,
		EvaluatedAt:     at,
	}
}

func allScores(v float64) map[string]float64 {
	m := map[string]float64{}
	for _, k := range EntrepreneurRegistry().Keys() {
		m[k] = v
	}
	return m
}

// ==========================
// Synthesizer
// ==========================

func TestSynthesize_Create(t *testing.T) {
	ev := evaluationWith(allScores(7), richQualitative(), t0)

	p := Synthesize(DescriptorFor(Entrepreneur), "u1", ev, nil, t0.Add(time.Second))

	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, Entrepreneur, p.ProfileType)
	assert.Equal(t, t0.Add(time.Second), p.CreatedAt)
	assert.Equal(t, p.CreatedAt, p.LastUpdated)
	assert.NotNil(t, p.History)
	assert.Empty(t, p.History)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, p.TopStrengths)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, p.DevelopmentAreas)
	assert.Equal(t, 100.0, p.ProfileCompleteness)
	assert.Equal(t, ProfileVersion, p.ProfileVersion)
	assert.Equal(t, "High", p.Fit.Category)
	assert.Equal(t, "Various", p.Fit.IdealVentureType)
	assert.Equal(t, "High", p.RiskToleranceLevel)
	assert.Equal(t, []string{"Team & Leadership Evaluation", "Risk Assessment & Mitigation", "Sustainability & Long-term Viability"}, p.ValidationFocusAreas)
}

func TestSynthesize_PreservesCreatedAtAndHistoryAcrossUpdates(t *testing.T) {
	d := DescriptorFor(Entrepreneur)
	created := t0

	p := Synthesize(d, "u1", evaluationWith(allScores(3), richQualitative(), t0), nil, created)
	for i := 1; i <= 3; i++ {
		before := len(p.History)
		p.History = append(p.History, Engagement{Name: "idea", RecordedAt: t0})
		now := t0.Add(time.Duration(i) * time.Hour)

		next := Synthesize(d, "u1", evaluationWith(allScores(float64(3+i)), richQualitative(), now), p, now)

		assert.Equal(t, created, next.CreatedAt)
		assert.Equal(t, now, next.LastUpdated)
		assert.Len(t, next.History, before+1)
		assert.Equal(t, p.History, next.History)
		assert.Equal(t, float64(3+i), next.PsychometricScores["leadership"])
		p = next
	}
}

func TestSynthesize_DoesNotAliasExisting(t *testing.T) {
	d := DescriptorFor(Entrepreneur)
	existing := Synthesize(d, "u1", evaluationWith(allScores(5), richQualitative(), t0), nil, t0)
	existing.History = []Engagement{{Name: "first"}}

	next := Synthesize(d, "u1", evaluationWith(allScores(6), richQualitative(), t0), existing, t0)
	next.History[0].Name = "changed"

	assert.Equal(t, "first", existing.History[0].Name)
}

func TestSynthesize_DefaultsAndCompleteness(t *testing.T) {
	ev := evaluationWith(allScores(5), Qualitative{Strengths: []string{"only"}}, t0)

	p := Synthesize(DescriptorFor(Entrepreneur), "u1", ev, nil, t0)
	assert.Equal(t, "Medium", p.Fit.Category)
	assert.Equal(t, 50.0, p.Fit.Score)
	assert.Equal(t, "Entrepreneur", p.Fit.IdealRole)
	// dimension scores + strengths = 2 of 7
	assert.Equal(t, 28.6, p.ProfileCompleteness)

	m := Synthesize(DescriptorFor(Mentor), "u2", &Evaluation{AssessmentType: Mentor}, nil, t0)
	assert.Equal(t, "Moderate", m.Fit.Category)
	assert.Equal(t, "Needs Development", m.Fit.MentoringReadiness)
	assert.Equal(t, 0.0, m.ProfileCompleteness)
}

func TestCompleteness_BlankSummaryIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    float64
	}{
		{"spaces", "   ", 14.3},
		{"newlines and tabs", "\n\t", 14.3},
		{"text", " driven founder ", 28.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := evaluationWith(map[string]float64{"risk_tolerance": 7}, Qualitative{NarrativeSummary: tt.summary}, t0)
			assert.Equal(t, tt.want, Completeness(ev))
		})
	}
}

func TestSynthesize_MentorFields(t *testing.T) {
	q := mentorFallback(7)
	ev := &Evaluation{AssessmentType: Mentor, DimensionScores: map[string]float64{"empathy": 9}, Qualitative: q}

	p := Synthesize(DescriptorFor(Mentor), "m1", ev, nil, t0)
	assert.Equal(t, "Mixed approach", p.TeachingStyle)
	assert.Equal(t, "3-5 mentees", p.MentoringCapacity)
	require.NotNil(t, p.IdealMentee)
	assert.Equal(t, "Cross-industry", p.IdealMentee.IndustryFit)
	assert.Empty(t, p.ValidationFocusAreas)

	doc := p.Document()
	assert.Equal(t, "Moderate", doc["mentoring_fit"])
	assert.Equal(t, "Various", doc["mentee_experience_level"])
	assert.Contains(t, doc, "mentor_profile_summary")
	assert.Contains(t, doc, "mentoring_history")
	assert.NotContains(t, doc, "entrepreneurial_fit")
}

func TestDescriptor_DocumentVocabulary(t *testing.T) {
	d := DescriptorFor(Entrepreneur)
	p := Synthesize(d, "u1", evaluationWith(allScores(7), richQualitative(), t0), nil, t0)
	p.History = []Engagement{d.NewEngagement(Engagement{Name: "Food truck", ReferenceID: "r1", Score: 7.5}, t0)}

	doc := d.Document(p)
	assert.Equal(t, "High", doc["entrepreneurial_fit"])
	assert.Equal(t, "summary", doc["personality_profile"])
	assert.NotContains(t, doc, "mentoring_fit")

	hist := doc["validation_history"].([]map[string]interface{})
	require.Len(t, hist, 1)
	assert.Equal(t, "Food truck", hist[0]["idea_name"])
	assert.Equal(t, "r1", hist[0]["report_id"])
	assert.Equal(t, "N/A", hist[0]["validation_outcome"])
	assert.Equal(t, "2026-03-01T09:00:00Z", hist[0]["validated_at"])

	_, err := json.Marshal(doc)
	assert.NoError(t, err)
}

// ==========================
// Projector
// ==========================

func TestFocusAreas(t *testing.T) {
	reg := EntrepreneurRegistry()

	tests := []struct {
		name   string
		scores map[string]float64
		want   []string
	}{
		{
			name:   "weak dimensions in registry order",
			scores: map[string]float64{"communication": 2, "leadership": 4.99, "innovation": 5, "risk_tolerance": 8},
			want:   []string{"Team & Leadership Evaluation", "Go-to-Market & Sales"},
		},
		{
			name:   "no weak dimension takes top three",
			scores: map[string]float64{"leadership": 6, "risk_tolerance": 9, "innovation": 7, "persistence": 8, "communication": 5},
			want:   []string{"Risk Assessment & Mitigation", "Execution Capability", "Innovation & Differentiation"},
		},
		{
			name:   "ties broken by registry order",
			scores: map[string]float64{"problem_solving": 7, "resilience": 7, "leadership": 7, "innovation": 7},
			want:   []string{"Team & Leadership Evaluation", "Sustainability & Long-term Viability", "Innovation & Differentiation"},
		},
		{
			name:   "empty scores",
			scores: map[string]float64{},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FocusAreas(reg, tt.scores))
		})
	}
}

func TestRiskCategory(t *testing.T) {
	tests := []struct {
		score *float64
		want  string
	}{
		{f(0), "Low"},
		{f(3.99), "Low"},
		{f(4), "Medium"},
		{f(5.99), "Medium"},
		{f(6), "High"},
		{f(7.99), "High"},
		{f(8), "Very High"},
		{f(10), "Very High"},
		{nil, "Medium"},
	}
	for _, tt := range tests {
		scores := map[string]float64{}
		if tt.score != nil {
			scores["risk_tolerance"] = *tt.score
		}
		assert.Equal(t, tt.want, RiskCategory(scores))
	}
}

func f(v float64) *float64 { return &v }

func TestProject(t *testing.T) {
	d := DescriptorFor(Entrepreneur)
	scores := allScores(7)
	scores["risk_tolerance"] = 8.5
	p := Synthesize(d, "u1", evaluationWith(scores, richQualitative(), t0), nil, t0)
	for _, name := range []string{"one", "two", "three", "four"} {
		p.History = append(p.History, Engagement{Name: name})
	}

	vc := Project(EntrepreneurRegistry(), p)

	assert.True(t, vc.HasProfile)
	assert.Equal(t, "Ada", vc.UserName)
	assert.Equal(t, "High", vc.EntrepreneurialFit)
	assert.Equal(t, 82.0, vc.FitScore)
	assert.Equal(t, "Very High", vc.RiskTolerance)
	assert.Equal(t, 4, vc.ValidationCount)
	assert.Equal(t, []string{"two", "three", "four"}, vc.PreviousIdeas)
	assert.Equal(t, "Servant", vc.LeadershipStyle)
	assert.Equal(t, "Deliberate", vc.DecisionMakingPattern)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, vc.WeakAreas)
	assert.Equal(t, []string{"Risk Assessment & Mitigation", "Team & Leadership Evaluation", "Sustainability & Long-term Viability"}, vc.FocusAreas)
}

func TestProject_NoProfileSentinel(t *testing.T) {
	vc := Project(EntrepreneurRegistry(), nil)
	assert.False(t, vc.HasProfile)

	raw, err := json.Marshal(vc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"has_profile":false,"message":"No psychometric profile available. Standard validation will be performed."}`, string(raw))
}

// ==========================
// Fallbacks
// ==========================

func TestFallbacksAreDeterministic(t *testing.T) {
	for _, typ := range []AssessmentType{Entrepreneur, Mentor} {
		d := DescriptorFor(typ)
		a, b := d.Fallback(6.25), d.Fallback(6.25)
		assert.Equal(t, a, b)
		assert.Equal(t, "Moderate", a.Fit.Category)
		assert.Equal(t, 70.0, a.Fit.Score)
	}
	assert.Contains(t, entrepreneurFallback(6.25).NarrativeSummary, "6.25/10")
	assert.Equal(t, []string{"To be determined"}, mentorFallback(1).ExpertiseDomains)
}
