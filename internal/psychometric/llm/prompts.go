package llm

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"psychometric-workers/internal/psychometric"
)

// assessmentID follows assess_{n}q_{YYYYMMDD_HHMM}, prefixed mentor_ for
// mentor assessments.
func assessmentID(t psychometric.AssessmentType, n int, now time.Time) string {
	id := fmt.Sprintf("assess_%dq_%s", n, now.Format("20060102_1504"))
	if t == psychometric.Mentor {
		return "mentor_" + id
	}
	return id
}

func estimatedMinutes(t psychometric.AssessmentType, n int) int {
	floor := 5
	if t == psychometric.Mentor {
		floor = 10
	}
	if n/2 > floor {
		return n / 2
	}
	return floor
}

func questionPrefix(t psychometric.AssessmentType) string {
	if t == psychometric.Mentor {
		return "m"
	}
	return "q"
}

func dimensionList(reg *psychometric.Registry) string {
	var b strings.Builder
	for _, d := range reg.Dimensions() {
		fmt.Fprintf(&b, "- %s (%s): %s\n", d.Key, d.DisplayName, d.Description)
	}
	return b.String()
}

func generationPrompt(req psychometric.GenerateRequest, now time.Time) string {
	reg := psychometric.RegistryFor(req.Type)
	n := req.Count
	prefix := questionPrefix(req.Type)

	var b strings.Builder
	if req.Type == psychometric.Mentor {
		fmt.Fprintf(&b, "Generate EXACTLY %d psychometric questions for MENTORS (not entrepreneurs).\n\n", n)
		b.WriteString("CONTEXT: These mentors will guide entrepreneurs. Assess their mentoring capabilities, not their ability to run a business.\n")
		if len(req.FocusDomains) > 0 {
			fmt.Fprintf(&b, "Focus on these domains: %s\n", strings.Join(req.FocusDomains, ", "))
		}
	} else {
		fmt.Fprintf(&b, "Generate exactly %d psychometric questions for entrepreneurs.\n", n)
	}

	b.WriteString("\nSTRICT REQUIREMENTS:\n")
	b.WriteString("1. Return ONLY valid JSON - no markdown, no explanations, no comments\n")
	b.WriteString("2. Use double quotes for all keys and string values\n")
	b.WriteString("3. Ensure no trailing commas in arrays or objects\n")
	fmt.Fprintf(&b, "4. Cover ALL %d dimensions evenly\n", reg.Len())
	b.WriteString("5. Make options realistic and psychologically nuanced; score_profile values are 0-10\n")
	fmt.Fprintf(&b, "6. Question IDs are %s1, %s2, ..., %s%d\n", prefix, prefix, prefix, n)

	b.WriteString("\nDIMENSIONS (use these keys in dimension and score_profile):\n")
	b.WriteString(dimensionList(reg))

	title := "Entrepreneurial Psychometric Assessment"
	description := "Comprehensive evaluation of entrepreneurial traits and competencies"
	if req.Type == psychometric.Mentor {
		title = "Mentor Capability Assessment"
		description = "Comprehensive evaluation of mentoring skills, expertise, and compatibility for guiding entrepreneurs"
	}
	first := reg.Dimensions()[0].Key

	fmt.Fprintf(&b, `
Return this JSON structure (with ALL %d questions):
{
  "assessment_id": "%s",
  "title": "%s",
  "description": "%s",
  "estimated_time_minutes": %d,
  "questions": [
    {
      "question_id": "%s1",
      "dimension": "%s",
      "question_text": "...",
      "question_type": "situational",
      "scenario_context": "...",
      "options": [
        {"option_id": "A", "text": "...", "score_profile": {"%s": 8}},
        {"option_id": "B", "text": "...", "score_profile": {"%s": 5}}
      ]
    }
  ]
}

Generate all %d questions now:`,
		n, assessmentID(req.Type, n, now), title, description, estimatedMinutes(req.Type, n),
		prefix, first, first, first, n)
	return b.String()
}

type scoredDimension struct {
	dim   psychometric.Dimension
	score float64
}

// rankedScores orders registry dimensions by score, highest first; ties
// keep registry order.
func rankedScores(reg *psychometric.Registry, scores map[string]float64) []scoredDimension {
	out := make([]scoredDimension, 0, reg.Len())
	for _, d := range reg.Dimensions() {
		if s, ok := scores[d.Key]; ok {
			out = append(out, scoredDimension{d, s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}

func analysisPrompt(req psychometric.AnalysisRequest) string {
	if req.Type == psychometric.Mentor {
		return mentorAnalysisPrompt(req)
	}
	return entrepreneurAnalysisPrompt(req)
}

func entrepreneurAnalysisPrompt(req psychometric.AnalysisRequest) string {
	var b strings.Builder
	b.WriteString("Analyze this entrepreneur assessment and return ONLY valid JSON.\n\n")
	b.WriteString("DIMENSION SCORES (out of 10):\n")
	for _, sd := range rankedScores(req.Registry, req.DimensionScores) {
		fmt.Fprintf(&b, "- %s: %.2f/10\n", sd.dim.DisplayName, sd.score)
	}
	fmt.Fprintf(&b, "\nOVERALL SCORE: %.2f/10\n", req.OverallScore)
	b.WriteString(`
Return EXACT JSON structure:
{
  "personality_profile": "Concise 2-3 sentence summary of entrepreneurial personality",
  "strengths": ["Top strength 1", "Top strength 2", "Top strength 3"],
  "areas_for_development": ["Development area 1", "Development area 2"],
  "entrepreneurial_fit": {
    "overall_fit": "High/Medium/Low",
    "fit_score": 0-100,
    "reasoning": "Brief explanation of fit assessment",
    "ideal_role": "Founder/Co-founder/Intrapreneur/Advisor",
    "ideal_venture_type": "Tech startup/Small business/Social enterprise/Corporate venture"
  },
  "recommendations": ["Actionable recommendation 1", "Recommendation 2", "Recommendation 3"],
  "detailed_insights": {
    "leadership_style": "Analysis of leadership approach",
    "decision_making_pattern": "Decision-making tendencies",
    "stress_response": "How handles pressure",
    "growth_potential": "Development outlook",
    "team_dynamics": "Team interaction style",
    "unique_qualities": "Distinctive strengths"
  }
}

Be specific, professional, and actionable. NO MARKDOWN, NO EXTRA TEXT.`)
	return b.String()
}

func mentorAnalysisPrompt(req psychometric.AnalysisRequest) string {
	var b strings.Builder
	b.WriteString("Analyze this MENTOR assessment (not entrepreneur) and return ONLY valid JSON.\n\n")
	b.WriteString("DIMENSION SCORES (weighted, out of 10):\n")
	for _, sd := range rankedScores(req.Registry, req.DimensionScores) {
		fmt.Fprintf(&b, "- %s: %.2f/10 (weight: %g)\n", sd.dim.DisplayName, sd.score, sd.dim.Weight)
	}
	fmt.Fprintf(&b, "\nOVERALL MENTOR SCORE: %.2f/10\n", req.OverallScore)
	fmt.Fprintf(&b, "\nTEACHING STYLES: %s\n", strings.Join(psychometric.TeachingStyles, "; "))
	fmt.Fprintf(&b, "EXPERTISE DOMAINS: %s\n", strings.Join(psychometric.ExpertiseDomains, "; "))
	b.WriteString(`
Return EXACT JSON structure:
{
  "mentor_profile_summary": "2-3 sentence summary of mentoring style, strengths, and approach",
  "strengths": ["Top mentoring strength 1", "Top strength 2", "Top strength 3"],
  "development_areas": ["Area to improve 1", "Area to improve 2"],
  "mentoring_fit": {
    "overall_fit": "Excellent/Good/Moderate/Limited",
    "fit_score": 0-100,
    "reasoning": "Brief explanation of mentoring readiness",
    "mentoring_readiness": "Ready/Needs Development/Not Ready"
  },
  "teaching_style": "One of the teaching styles above",
  "ideal_mentee_profile": {
    "experience_level": "Early-stage/Growth-stage/Scaling founders",
    "personality_fit": "Best mentee personality types",
    "challenge_areas": "Problems mentor is best equipped to help with",
    "industry_fit": "Industries where mentor adds most value"
  },
  "mentoring_capacity": "How many mentees can effectively support: 1-2/3-5/6-10/10+",
  "expertise_domains": ["Primary domain 1", "Secondary domain 2", "Tertiary domain 3"],
  "recommendations": ["Actionable recommendation 1", "Recommendation 2", "Recommendation 3"],
  "detailed_insights": {
    "communication_approach": "How mentor communicates and engages",
    "feedback_style": "How mentor provides feedback",
    "availability_pattern": "Time commitment and responsiveness",
    "network_leverage": "How mentor uses their network",
    "experience_depth": "Real-world experience level",
    "empathy_score": "Emotional intelligence and patience level",
    "unique_value": "Distinctive mentoring strengths"
  }
}

Focus on MENTORING capabilities, not entrepreneurship skills. NO MARKDOWN, NO EXTRA TEXT.`)
	return b.String()
}
