// internal/psychometric/projector.go
package psychometric

import (
	"encoding/json"
	"sort"
)

const (
	weakThreshold       = 5.0
	defaultRiskScore    = 5.0
	previousIdeasWindow = 3
	topFocusAreas       = 3

	NoProfileMessage = "No psychometric profile available. Standard validation will be performed."
)

var focusAreaByDimension = map[string]string{
	"leadership":             "Team & Leadership Evaluation",
	"risk_tolerance":         "Risk Assessment & Mitigation",
	"resilience":             "Sustainability & Long-term Viability",
	"innovation":             "Innovation & Differentiation",
	"decision_making":        "Business Model & Strategy",
	"emotional_intelligence": "Stakeholder Management",
	"persistence":            "Execution Capability",
	"strategic_thinking":     "Market Strategy & Positioning",
	"communication":          "Go-to-Market & Sales",
	"problem_solving":        "Problem-Solution Fit",
}

// FocusArea maps a dimension to the validation area it informs.
func FocusArea(dimension string) (string, bool) {
	area, ok := focusAreaByDimension[dimension]
	return area, ok
}

// WeakDimensions returns registry dimensions scoring below 5, in registry
// order. Dimensions missing from scores are not considered.
func WeakDimensions(reg *Registry, scores map[string]float64) []string {
	var weak []string
	for _, key := range reg.Keys() {
		if s, ok := scores[key]; ok && s < weakThreshold {
			weak = append(weak, key)
		}
	}
	return weak
}

// FocusAreas maps weak dimensions to focus areas; with nothing weak it
// returns the areas of the three strongest dimensions instead.
func FocusAreas(reg *Registry, scores map[string]float64) []string {
	dims := WeakDimensions(reg, scores)
	if len(dims) == 0 {
		dims = topDimensions(reg, scores, topFocusAreas)
	}
	areas := make([]string, 0, len(dims))
	for _, d := range dims {
		if area, ok := FocusArea(d); ok {
			areas = append(areas, area)
		}
	}
	return areas
}

// topDimensions ranks by score, ties kept in registry order.
func topDimensions(reg *Registry, scores map[string]float64, n int) []string {
	var keys []string
	for _, key := range reg.Keys() {
		if _, ok := scores[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return scores[keys[i]] > scores[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// RiskCategory buckets the risk_tolerance score; lower bounds are
// inclusive. A missing score counts as 5.
func RiskCategory(scores map[string]float64) string {
	score, ok := scores["risk_tolerance"]
	if !ok {
		score = defaultRiskScore
	}
	switch {
	case score >= 8:
		return "Very High"
	case score >= 6:
		return "High"
	case score >= 4:
		return "Medium"
	default:
		return "Low"
	}
}

// ValidationContext is the view of an entrepreneur profile handed to the
// idea-validation engine.
type ValidationContext struct {
	HasProfile            bool               `json:"has_profile"`
	Message               string             `json:"message,omitempty"`
	UserName              string             `json:"user_name"`
	EntrepreneurialFit    string             `json:"entrepreneurial_fit"`
	FitScore              float64            `json:"fit_score"`
	IdealRole             string             `json:"ideal_role"`
	Strengths             []string           `json:"strengths"`
	WeakAreas             []string           `json:"weak_areas"`
	FocusAreas            []string           `json:"focus_areas"`
	RiskTolerance         string             `json:"risk_tolerance"`
	PsychometricScores    map[string]float64 `json:"psychometric_scores"`
	PersonalitySummary    string             `json:"personality_summary"`
	LeadershipStyle       string             `json:"leadership_style"`
	DecisionMakingPattern string             `json:"decision_making_pattern"`
	ValidationCount       int                `json:"validation_count"`
	PreviousIdeas         []string           `json:"previous_ideas"`
}

// NoProfileContext is returned when the user has not been assessed yet.
func NoProfileContext() *ValidationContext {
	return &ValidationContext{HasProfile: false, Message: NoProfileMessage}
}

// MarshalJSON renders the no-profile sentinel as just has_profile and
// message.
func (c ValidationContext) MarshalJSON() ([]byte, error) {
	if !c.HasProfile {
		return json.Marshal(struct {
			HasProfile bool   `json:"has_profile"`
			Message    string `json:"message"`
		}{false, c.Message})
	}
	type plain ValidationContext
	return json.Marshal(plain(c))
}

// Project builds the validation context for p, or the sentinel when p is nil.
func Project(reg *Registry, p *Profile) *ValidationContext {
	if p == nil {
		return NoProfileContext()
	}

	scores := p.PsychometricScores
	userName := p.UserName
	if userName == "" {
		userName = "User"
	}

	history := p.History
	start := len(history) - previousIdeasWindow
	if start < 0 {
		start = 0
	}
	previous := make([]string, 0, previousIdeasWindow)
	for _, e := range history[start:] {
		previous = append(previous, e.Name)
	}

	return &ValidationContext{
		HasProfile:            true,
		UserName:              userName,
		EntrepreneurialFit:    p.Fit.Category,
		FitScore:              p.Fit.Score,
		IdealRole:             p.Fit.IdealRole,
		Strengths:             nonNil(p.TopStrengths),
		WeakAreas:             nonNil(p.DevelopmentAreas),
		FocusAreas:            FocusAreas(reg, scores),
		RiskTolerance:         RiskCategory(scores),
		PsychometricScores:    scores,
		PersonalitySummary:    p.Summary,
		LeadershipStyle:       p.DetailedInsights["leadership_style"],
		DecisionMakingPattern: p.DetailedInsights["decision_making_pattern"],
		ValidationCount:       len(history),
		PreviousIdeas:         previous,
	}
}
