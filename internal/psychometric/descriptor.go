// internal/psychometric/descriptor.go
package psychometric

import "time"

// HistoryFields names the keys a history entry is rendered with.
type HistoryFields struct {
	Name       string
	Reference  string
	RecordedAt string
	Score      string
	Outcome    string
}

// Vocabulary is the field-mapping table of one profile type.
type Vocabulary struct {
	Fit           string
	Summary       string
	History       string
	HistoryFields HistoryFields
}

// ProfileDescriptor parameterizes synthesis and rendering for one profile
// type. It is selected once, at the boundary, from the assessment type.
type ProfileDescriptor struct {
	Type           AssessmentType
	Registry       *Registry
	Vocabulary     Vocabulary
	DefaultFit     Fit
	DefaultOutcome string

	fallback func(overall float64) Qualitative
	derive   func(p *Profile, q Qualitative)
	render   func(p *Profile, doc map[string]interface{})
}

// Fallback returns the neutral qualitative record used when analysis fails.
func (d *ProfileDescriptor) Fallback(overall float64) Qualitative {
	return d.fallback(overall)
}

var entrepreneurDescriptor = &ProfileDescriptor{
	Type:     Entrepreneur,
	Registry: entrepreneurRegistry,
	Vocabulary: Vocabulary{
		Fit:     "entrepreneurial_fit",
		Summary: "personality_profile",
		History: "validation_history",
		HistoryFields: HistoryFields{
			Name:       "idea_name",
			Reference:  "report_id",
			RecordedAt: "validated_at",
			Score:      "overall_score",
			Outcome:    "validation_outcome",
		},
	},
	DefaultFit: Fit{
		Category:         "Medium",
		Score:            50,
		IdealRole:        "Entrepreneur",
		IdealVentureType: "Various",
	},
	DefaultOutcome: "N/A",
	fallback:       entrepreneurFallback,
	derive: func(p *Profile, q Qualitative) {
		p.ValidationFocusAreas = FocusAreas(entrepreneurRegistry, p.PsychometricScores)
		p.RiskToleranceLevel = RiskCategory(p.PsychometricScores)
	},
	render: func(p *Profile, doc map[string]interface{}) {
		doc["ideal_role"] = p.Fit.IdealRole
		doc["ideal_venture_type"] = p.Fit.IdealVentureType
		doc["validation_focus_areas"] = nonNil(p.ValidationFocusAreas)
		doc["risk_tolerance_level"] = p.RiskToleranceLevel
	},
}

var mentorDescriptor = &ProfileDescriptor{
	Type:     Mentor,
	Registry: mentorRegistry,
	Vocabulary: Vocabulary{
		Fit:     "mentoring_fit",
		Summary: "mentor_profile_summary",
		History: "mentoring_history",
		HistoryFields: HistoryFields{
			Name:       "mentee_name",
			Reference:  "engagement_id",
			RecordedAt: "started_at",
			Score:      "rating",
			Outcome:    "outcome",
		},
	},
	DefaultFit: Fit{
		Category:           "Moderate",
		Score:              50,
		MentoringReadiness: "Needs Development",
	},
	DefaultOutcome: "ongoing",
	fallback:       mentorFallback,
	derive: func(p *Profile, q Qualitative) {
		p.TeachingStyle = q.TeachingStyle
		p.MentoringCapacity = q.MentoringCapacity
		p.ExpertiseDomains = append([]string(nil), q.ExpertiseDomains...)
		if q.IdealMentee != nil {
			m := *q.IdealMentee
			p.IdealMentee = &m
		}
	},
	render: func(p *Profile, doc map[string]interface{}) {
		doc["mentoring_readiness"] = p.Fit.MentoringReadiness
		doc["teaching_style"] = p.TeachingStyle
		doc["mentoring_capacity"] = p.MentoringCapacity
		doc["expertise_domains"] = nonNil(p.ExpertiseDomains)
		mentee := MenteeProfile{}
		if p.IdealMentee != nil {
			mentee = *p.IdealMentee
		}
		doc["ideal_mentee_profile"] = mentee
		doc["mentee_experience_level"] = mentee.ExperienceLevel
		doc["mentee_personality_fit"] = mentee.PersonalityFit
		doc["challenge_areas"] = mentee.ChallengeAreas
		doc["industry_fit"] = mentee.IndustryFit
	},
}

// DescriptorFor returns the descriptor for t; anything but Mentor is treated
// as an entrepreneur.
func DescriptorFor(t AssessmentType) *ProfileDescriptor {
	if t == Mentor {
		return mentorDescriptor
	}
	return entrepreneurDescriptor
}

// Document renders p using the descriptor's vocabulary.
func (d *ProfileDescriptor) Document(p *Profile) map[string]interface{} {
	v := d.Vocabulary
	doc := map[string]interface{}{
		"user_id":              p.UserID,
		"profile_type":         string(d.Type),
		"user_name":            p.UserName,
		"psychometric_scores":  p.PsychometricScores,
		"overall_score":        p.OverallScore,
		v.Fit:                  p.Fit.Category,
		"fit_score":            p.Fit.Score,
		"fit_reasoning":        p.Fit.Reasoning,
		"top_strengths":        nonNil(p.TopStrengths),
		"development_areas":    nonNil(p.DevelopmentAreas),
		v.Summary:              p.Summary,
		"detailed_insights":    p.DetailedInsights,
		"recommendations":      nonNil(p.Recommendations),
		"profile_completeness": p.ProfileCompleteness,
		"profile_version":      p.ProfileVersion,
		"evaluation_id":        p.EvaluationID,
		"assessment_date":      formatTime(p.AssessmentDate),
		"created_at":           formatTime(p.CreatedAt),
		"last_updated":         formatTime(p.LastUpdated),
		v.History:              d.renderHistory(p.History),
	}
	d.render(p, doc)
	return doc
}

func (d *ProfileDescriptor) renderHistory(entries []Engagement) []map[string]interface{} {
	f := d.Vocabulary.HistoryFields
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]interface{}{
			f.Name:       e.Name,
			f.Reference:  e.ReferenceID,
			f.RecordedAt: formatTime(e.RecordedAt),
			f.Score:      e.Score,
			f.Outcome:    e.Outcome,
		})
	}
	return out
}

// NewEngagement fills the type's default outcome and the timestamp.
func (d *ProfileDescriptor) NewEngagement(e Engagement, now time.Time) Engagement {
	if e.Outcome == "" {
		e.Outcome = d.DefaultOutcome
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = now.UTC()
	}
	return e
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
