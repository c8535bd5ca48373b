// internal/psychometric/fallback.go
package psychometric

import "fmt"

const fallbackReasoning = "Assessment completed. Individual results vary by dimension."

// entrepreneurFallback is substituted when analysis fails. It depends only on
// the overall score, so the fallback path is deterministic.
func entrepreneurFallback(overall float64) Qualitative {
	return Qualitative{
		NarrativeSummary: fmt.Sprintf("Assessment indicates an overall score of %.2f/10. Further analysis recommended.", overall),
		Strengths:        []string{"Assessment completed successfully"},
		DevelopmentAreas: []string{"Review detailed scores for specific insights"},
		Fit: Fit{
			Category:         "Moderate",
			Score:            70,
			Reasoning:        fallbackReasoning,
			IdealRole:        "Entrepreneur",
			IdealVentureType: "Versatile",
		},
		Recommendations: []string{
			"Review dimension scores in detail",
			"Focus on top 2-3 development areas",
			"Consider coaching for targeted growth",
		},
		DetailedInsights: map[string]string{
			"leadership_style":        "Further analysis needed",
			"decision_making_pattern": "Review response patterns",
			"stress_response":         "Self-assessment recommended",
			"growth_potential":        "Moderate to high",
			"team_dynamics":           "Context-dependent",
			"unique_qualities":        "Individual strengths identified",
		},
	}
}

func mentorFallback(overall float64) Qualitative {
	return Qualitative{
		NarrativeSummary: fmt.Sprintf("Mentor assessment indicates an overall score of %.2f/10. Further analysis recommended.", overall),
		Strengths:        []string{"Assessment completed successfully"},
		DevelopmentAreas: []string{"Review detailed scores for specific insights"},
		Fit: Fit{
			Category:           "Moderate",
			Score:              70,
			Reasoning:          fallbackReasoning,
			MentoringReadiness: "Needs Development",
		},
		TeachingStyle: "Mixed approach",
		IdealMentee: &MenteeProfile{
			ExperienceLevel: "Various",
			PersonalityFit:  "Flexible",
			ChallengeAreas:  "General business challenges",
			IndustryFit:     "Cross-industry",
		},
		MentoringCapacity: "3-5 mentees",
		ExpertiseDomains:  []string{"To be determined"},
		Recommendations: []string{
			"Review dimension scores in detail",
			"Clarify time commitment capacity",
			"Identify primary expertise domains",
		},
		DetailedInsights: map[string]string{
			"communication_approach": "Further analysis needed",
			"feedback_style":         "Review response patterns",
			"availability_pattern":   "Self-assessment recommended",
			"network_leverage":       "Context-dependent",
			"experience_depth":       "Moderate",
			"empathy_score":          "Moderate to high",
			"unique_value":           "Individual strengths identified",
		},
	}
}
