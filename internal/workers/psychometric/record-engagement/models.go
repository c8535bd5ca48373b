// internal/workers/psychometric/record-engagement/models.go
package recordengagement

import (
	"time"

	"psychometric-workers/internal/psychometric"
)

type Input struct {
	UserID      string          `json:"userId"`
	ProfileType string          `json:"profileType,omitempty"`
	Engagement  EngagementInput `json:"engagement"`
}

// EngagementInput accepts the generic keys as well as the idea-validation
// and mentoring-session spellings used by the calling processes.
type EngagementInput struct {
	Name        string     `json:"name,omitempty"`
	ReferenceID string     `json:"referenceId,omitempty"`
	Score       *float64   `json:"score,omitempty"`
	Outcome     string     `json:"outcome,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	RecordedAt  *time.Time `json:"recordedAt,omitempty"`

	IdeaName          string   `json:"ideaName,omitempty"`
	ReportID          string   `json:"reportId,omitempty"`
	OverallScore      *float64 `json:"overallScore,omitempty"`
	ValidationOutcome string   `json:"validationOutcome,omitempty"`

	MenteeName   string   `json:"menteeName,omitempty"`
	EngagementID string   `json:"engagementId,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstFloat(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func (e *EngagementInput) normalize() {
	e.Name = firstString(e.Name, e.IdeaName, e.MenteeName)
	e.ReferenceID = firstString(e.ReferenceID, e.ReportID, e.EngagementID)
	e.Outcome = firstString(e.Outcome, e.ValidationOutcome)
}

func (e EngagementInput) toEngagement() psychometric.Engagement {
	e.normalize()
	out := psychometric.Engagement{
		Name:        e.Name,
		ReferenceID: e.ReferenceID,
		Score:       firstFloat(e.Score, e.OverallScore, e.Rating),
		Outcome:     e.Outcome,
		Notes:       e.Notes,
	}
	if e.RecordedAt != nil {
		out.RecordedAt = e.RecordedAt.UTC()
	}
	return out
}

type Output struct {
	Recorded      bool `json:"recorded"`
	HistoryLength int  `json:"historyLength"`
}
