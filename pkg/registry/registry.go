// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"psychometric-workers/internal/common/validation"
)

const (
	StatusImplemented  = "implemented"
	CategoryAssessment = "psychometric-assessment"
	CategoryProfile    = "psychometric-profile"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &reg, reg.Validate()
}

// Validate checks task type naming and uniqueness.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if err := validation.ValidateTaskType(a.TaskType); err != nil {
			return fmt.Errorf("activity %s: %w", a.ID, err)
		}
		if seen[a.TaskType] {
			return fmt.Errorf("duplicate task type %s", a.TaskType)
		}
		seen[a.TaskType] = true
	}
	return nil
}

func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Enabled returns the activities whose task type passes enabled.
func (r *ActivityRegistry) Enabled(enabled func(taskType string) bool) []Activity {
	out := make([]Activity, 0, len(r.Activities))
	for _, a := range r.Activities {
		if enabled(a.TaskType) {
			out = append(out, a)
		}
	}
	return out
}

// Psychometric is the catalog of job types served by the worker manager.
func Psychometric(version string) *ActivityRegistry {
	activity := func(id, name, category, desc, timeout string, retries int, in, out, codes []string) Activity {
		return Activity{
			ID:                   id,
			DisplayName:          name,
			Description:          desc,
			Category:             category,
			Version:              version,
			TaskType:             "psychometric-" + id,
			ImplementationStatus: StatusImplemented,
			Inputs:               in,
			Outputs:              out,
			ErrorCodes:           codes,
			Timeout:              timeout,
			Retries:              retries,
			Tags:                 []string{"psychometric"},
		}
	}

	return &ActivityRegistry{
		Version: version,
		Activities: []Activity{
			activity("generate-assessment", "Generate Assessment", CategoryAssessment,
				"Generates a scenario-based questionnaire for the user's role.", "120s", 3,
				[]string{"numQuestions", "userId", "userType", "focusDomains"},
				[]string{"assessmentId", "questionsData", "totalQuestions", "warnings"},
				[]string{"INVALID_QUESTION_COUNT", "INVALID_ASSESSMENT_TYPE", "GENERATION_FAILED", "MALFORMED_ASSESSMENT", "LLM_TIMEOUT"}),
			activity("evaluate-responses", "Evaluate Responses", CategoryAssessment,
				"Scores answers, runs qualitative analysis and updates the profile.", "90s", 3,
				[]string{"assessmentId", "questionsData", "responses", "userId", "userName", "userType"},
				[]string{"evaluationId", "overallScore", "completionRate", "profileCreated", "evaluation", "warnings"},
				[]string{"INVALID_RESPONSES", "ASSESSMENT_NOT_FOUND", "MALFORMED_ASSESSMENT"}),
			activity("synthesize-profile", "Synthesize Profile", CategoryProfile,
				"Merges a stored evaluation into the user's profile.", "30s", 3,
				[]string{"userId", "evaluationId", "userType"},
				[]string{"profile", "profileType", "profileCreated", "warnings"},
				[]string{"MISSING_USER", "EVALUATION_NOT_FOUND", "PERSISTENCE_FAILED"}),
			activity("validation-context", "Validation Context", CategoryProfile,
				"Projects an entrepreneur profile for idea validation.", "10s", 3,
				[]string{"userId"},
				[]string{"hasPsychometricProfile", "psychometricContext"},
				[]string{"MISSING_USER", "PERSISTENCE_FAILED"}),
			activity("record-engagement", "Record Engagement", CategoryProfile,
				"Appends an idea validation or mentoring session to the profile history.", "10s", 3,
				[]string{"userId", "profileType", "engagement"},
				[]string{"recorded", "historyLength"},
				[]string{"MISSING_USER", "PROFILE_NOT_FOUND", "PARSE_ERROR", "PERSISTENCE_FAILED"}),
			activity("query-evaluations", "Query Evaluations", CategoryAssessment,
				"Returns one evaluation by id or the user's most recent ones.", "10s", 3,
				[]string{"evaluationId", "userId", "limit"},
				[]string{"evaluations", "count"},
				[]string{"MISSING_USER", "EVALUATION_NOT_FOUND", "PERSISTENCE_FAILED"}),
			activity("get-profile", "Get Profile", CategoryProfile,
				"Loads the stored profile document for a user.", "10s", 3,
				[]string{"userId", "userType"},
				[]string{"found", "profileType", "profile"},
				[]string{"MISSING_USER", "INVALID_ASSESSMENT_TYPE", "PERSISTENCE_FAILED"}),
		},
	}
}
