// internal/common/validation/documents.go
package validation

// AssessmentSchema describes a generated assessment before metadata is
// stamped on it.
var AssessmentSchema = MustSchema("assessment", `{
  "type": "object",
  "required": ["assessment_id", "title", "questions"],
  "properties": {
    "assessment_id": {"type": "string", "minLength": 1},
    "title": {"type": "string"},
    "description": {"type": "string"},
    "estimated_time_minutes": {"type": "number"},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question_id", "question_text", "options"],
        "properties": {
          "question_id": {"type": "string", "minLength": 1},
          "dimension": {"type": "string"},
          "question_text": {"type": "string", "minLength": 1},
          "question_type": {"type": "string"},
          "scenario_context": {"type": "string"},
          "options": {
            "type": "array",
            "minItems": 2,
            "items": {
              "type": "object",
              "required": ["option_id", "text", "score_profile"],
              "properties": {
                "option_id": {"type": "string", "minLength": 1},
                "text": {"type": "string"},
                "score_profile": {
                  "type": "object",
                  "additionalProperties": {"type": "number"}
                }
              }
            }
          }
        }
      }
    }
  }
}`)

var fitProperties = `{
  "type": "object",
  "required": ["overall_fit"],
  "properties": {
    "overall_fit": {"type": "string"},
    "fit_score": {"type": "number"},
    "reasoning": {"type": "string"}
  }
}`

// EntrepreneurAnalysisSchema is the analyzer contract for entrepreneurs.
var EntrepreneurAnalysisSchema = MustSchema("entrepreneur-analysis", `{
  "type": "object",
  "required": ["personality_profile", "strengths", "entrepreneurial_fit"],
  "properties": {
    "personality_profile": {"type": "string"},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "areas_for_development": {"type": "array", "items": {"type": "string"}},
    "entrepreneurial_fit": `+fitProperties+`,
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "detailed_insights": {"type": "object", "additionalProperties": {"type": "string"}}
  }
}`)

// MentorAnalysisSchema is the analyzer contract for mentors.
var MentorAnalysisSchema = MustSchema("mentor-analysis", `{
  "type": "object",
  "required": ["mentor_profile_summary", "strengths", "mentoring_fit", "teaching_style"],
  "properties": {
    "mentor_profile_summary": {"type": "string"},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "development_areas": {"type": "array", "items": {"type": "string"}},
    "mentoring_fit": `+fitProperties+`,
    "teaching_style": {"type": "string"},
    "ideal_mentee_profile": {"type": "object", "additionalProperties": {"type": "string"}},
    "mentoring_capacity": {"type": "string"},
    "expertise_domains": {"type": "array", "items": {"type": "string"}},
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "detailed_insights": {"type": "object", "additionalProperties": {"type": "string"}}
  }
}`)
