// internal/psychometric/synthesizer.go
package psychometric

import (
	"strings"
	"time"
)

const maxTopItems = 5

// Synthesize builds the profile for ev, merging with existing when the user
// already has one of this type. existing is read, never modified.
//
// On update created_at and the whole history carry over and every derived
// field is replaced. last_updated is always now.
func Synthesize(d *ProfileDescriptor, userID string, ev *Evaluation, existing *Profile, now time.Time) *Profile {
	now = now.UTC()
	q := ev.Qualitative

	p := &Profile{
		UserID:              userID,
		ProfileType:         d.Type,
		UserName:            ev.UserName,
		PsychometricScores:  copyScores(ev.DimensionScores),
		OverallScore:        ev.OverallScore,
		Fit:                 mergeFit(d.DefaultFit, q.Fit),
		TopStrengths:        truncate(q.Strengths, maxTopItems),
		DevelopmentAreas:    truncate(q.DevelopmentAreas, maxTopItems),
		Summary:             q.NarrativeSummary,
		DetailedInsights:    copyInsights(q.DetailedInsights),
		Recommendations:     append([]string{}, q.Recommendations...),
		ProfileCompleteness: Completeness(ev),
		ProfileVersion:      ProfileVersion,
		EvaluationID:        ev.EvaluationID,
		AssessmentDate:      ev.EvaluatedAt.UTC(),
		LastUpdated:         now,
	}

	if existing != nil {
		p.CreatedAt = existing.CreatedAt
		p.History = append([]Engagement{}, existing.History...)
		if p.UserName == "" {
			p.UserName = existing.UserName
		}
	} else {
		p.CreatedAt = now
		p.History = []Engagement{}
	}

	d.derive(p, q)
	return p
}

// Completeness is the share of the seven qualitative checklist fields that
// are filled, as a percentage rounded to one decimal.
func Completeness(ev *Evaluation) float64 {
	q := ev.Qualitative
	checks := []bool{
		len(ev.DimensionScores) > 0,
		q.Fit.Category != "",
		len(q.Strengths) > 0,
		len(q.DevelopmentAreas) > 0,
		strings.TrimSpace(q.NarrativeSummary) != "",
		len(q.DetailedInsights) > 0,
		len(q.Recommendations) > 0,
	}
	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return round(float64(filled)/float64(len(checks))*100, 1)
}

// mergeFit fills missing analyzer fields from the type defaults.
func mergeFit(def, got Fit) Fit {
	out := got
	if out.Category == "" {
		out.Category = def.Category
		if out.Score == 0 {
			out.Score = def.Score
		}
	}
	if out.IdealRole == "" {
		out.IdealRole = def.IdealRole
	}
	if out.IdealVentureType == "" {
		out.IdealVentureType = def.IdealVentureType
	}
	if out.MentoringReadiness == "" {
		out.MentoringReadiness = def.MentoringReadiness
	}
	return out
}

func truncate(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	return append([]string{}, items...)
}

func copyScores(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyInsights(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
