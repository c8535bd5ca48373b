// internal/psychometric/scorer.go
package psychometric

import "sort"

// AnsweredQuestion is the reduced record kept for every matched response.
type AnsweredQuestion struct {
	QuestionID       string `json:"question_id"`
	QuestionText     string `json:"question_text"`
	Dimension        string `json:"dimension"`
	SelectedOptionID string `json:"selected_option_id"`
	SelectedText     string `json:"selected_text"`
}

// SkipReason explains why a response did not count.
type SkipReason string

const (
	SkipUnknownQuestion SkipReason = "unknown_question"
	SkipUnknownOption   SkipReason = "unknown_option"
)

type SkippedResponse struct {
	QuestionID string     `json:"question_id"`
	OptionID   string     `json:"option_id"`
	Reason     SkipReason `json:"reason"`
}

// ScoreSheet is the scorer's output: raw per-dimension scores in the order
// they were contributed, plus bookkeeping for completion.
type ScoreSheet struct {
	Raw            map[string][]float64
	Answered       []AnsweredQuestion
	Skipped        []SkippedResponse
	TotalQuestions int
	// IgnoredKeys counts score-profile entries naming a dimension outside
	// the registry.
	IgnoredKeys int
}

// ScoreResponses matches responses against the assessment. Every registry
// dimension gets an entry in Raw, empty when nothing contributed to it.
//
// Responses are visited in question order, then unknown ids in lexical order,
// so the raw lists and answered details are the same for any map iteration.
func ScoreResponses(reg *Registry, a *Assessment, responses ResponseSet) *ScoreSheet {
	lookup := make(map[string]*Question, len(a.Questions))
	position := make(map[string]int, len(a.Questions))
	for i := range a.Questions {
		q := &a.Questions[i]
		if _, seen := lookup[q.QuestionID]; seen {
			continue
		}
		lookup[q.QuestionID] = q
		position[q.QuestionID] = i
	}

	sheet := &ScoreSheet{
		Raw:            make(map[string][]float64, reg.Len()),
		TotalQuestions: len(lookup),
	}
	for _, key := range reg.Keys() {
		sheet.Raw[key] = []float64{}
	}

	for _, qid := range orderedResponseIDs(responses, position) {
		optionID := responses[qid]

		q, ok := lookup[qid]
		if !ok {
			sheet.Skipped = append(sheet.Skipped, SkippedResponse{QuestionID: qid, OptionID: optionID, Reason: SkipUnknownQuestion})
			continue
		}
		opt, ok := q.option(optionID)
		if !ok {
			sheet.Skipped = append(sheet.Skipped, SkippedResponse{QuestionID: qid, OptionID: optionID, Reason: SkipUnknownOption})
			continue
		}

		sheet.Answered = append(sheet.Answered, AnsweredQuestion{
			QuestionID:       q.QuestionID,
			QuestionText:     q.QuestionText,
			Dimension:        q.Dimension,
			SelectedOptionID: opt.OptionID,
			SelectedText:     opt.Text,
		})

		for _, dim := range sortedKeys(opt.ScoreProfile) {
			if !reg.Has(dim) {
				sheet.IgnoredKeys++
				continue
			}
			sheet.Raw[dim] = append(sheet.Raw[dim], opt.ScoreProfile[dim])
		}
	}
	return sheet
}

func orderedResponseIDs(responses ResponseSet, position map[string]int) []string {
	ids := make([]string, 0, len(responses))
	for id := range responses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		pi, iKnown := position[ids[i]]
		pj, jKnown := position[ids[j]]
		switch {
		case iKnown && jKnown:
			return pi < pj
		case iKnown != jKnown:
			return iKnown
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
