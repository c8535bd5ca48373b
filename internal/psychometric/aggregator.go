// internal/psychometric/aggregator.go
package psychometric

import "strconv"

// Aggregate holds the quantitative result of an evaluation.
type Aggregate struct {
	DimensionScores   map[string]float64 `json:"dimension_scores"`
	OverallScore      float64            `json:"overall_score"`
	QuestionsAnswered int                `json:"questions_answered"`
	TotalQuestions    int                `json:"total_questions"`
	CompletionRate    float64            `json:"completion_rate"`
}

// AggregateScores reduces a score sheet to weighted dimension scores.
//
// A dimension with no raw scores is exactly 0.0 and still counts towards the
// overall denominator, which is the sum of every registry weight.
func AggregateScores(reg *Registry, sheet *ScoreSheet) Aggregate {
	agg := Aggregate{
		DimensionScores:   make(map[string]float64, reg.Len()),
		QuestionsAnswered: len(sheet.Answered),
		TotalQuestions:    sheet.TotalQuestions,
	}

	var weighted float64
	for _, d := range reg.dims {
		raw := sheet.Raw[d.Key]
		score := 0.0
		if len(raw) > 0 {
			score = round(mean(raw)*d.Weight, 2)
		}
		agg.DimensionScores[d.Key] = score
		weighted += score
	}

	if total := reg.TotalWeight(); total > 0 {
		agg.OverallScore = round(weighted/total, 2)
	}

	denom := sheet.TotalQuestions
	if denom < 1 {
		denom = 1
	}
	agg.CompletionRate = round(float64(agg.QuestionsAnswered)/float64(denom)*100, 1)
	return agg
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// round rounds the exact binary value half-to-even at the requested
// decimal precision, so 2.675 (stored as 2.67499...) gives 2.67.
func round(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil || r == 0 {
		return 0 // no negative zero
	}
	return r
}
