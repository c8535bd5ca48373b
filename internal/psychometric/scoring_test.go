package psychometric

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func twoQuestionAssessment() *Assessment {
	return &Assessment{
		AssessmentID:   "assess-2q",
		AssessmentType: Entrepreneur,
		TotalQuestions: 2,
		Questions: []Question{
			{
				QuestionID: "q1", Dimension: "leadership", QuestionText: "Lead?",
				Options: []Option{
					{OptionID: "A", Text: "Lead", ScoreProfile: map[string]float64{"leadership": 8}},
					{OptionID: "B", Text: "Follow", ScoreProfile: map[string]float64{"leadership": 4}},
				},
			},
			{
				QuestionID: "q2", Dimension: "risk_tolerance", QuestionText: "Risk?",
				Options: []Option{
					{OptionID: "A", Text: "Bet", ScoreProfile: map[string]float64{"risk_tolerance": 6}},
					{OptionID: "B", Text: "Pass", ScoreProfile: map[string]float64{"risk_tolerance": 2}},
				},
			},
		},
	}
}

// wideAssessment has n questions whose options each touch three dimensions
// with non-integral scores, which is what exposes summation-order effects.
func wideAssessment(n int) *Assessment {
	keys := EntrepreneurRegistry().Keys()
	a := &Assessment{AssessmentID: "wide", TotalQuestions: n}
	for i := 0; i < n; i++ {
		q := Question{QuestionID: fmt.Sprintf("q%d", i), Dimension: keys[i%len(keys)]}
		for o := 0; o < 4; o++ {
			q.Options = append(q.Options, Option{
				OptionID: string(rune('A' + o)),
				ScoreProfile: map[string]float64{
					keys[i%len(keys)]:     float64(o)*2.3 + 0.1,
					keys[(i+3)%len(keys)]: float64(o)*1.7 + 0.3,
					keys[(i+7)%len(keys)]: 9.9 - float64(o)*1.1,
				},
			})
		}
		a.Questions = append(a.Questions, q)
	}
	return a
}

// ==========================
// Registry
// ==========================

func TestRegistries(t *testing.T) {
	e := EntrepreneurRegistry()
	assert.Equal(t, 10, e.Len())
	assert.Equal(t, 10.0, e.TotalWeight())
	for _, d := range e.Dimensions() {
		assert.Equal(t, 1.0, d.Weight, d.Key)
	}

	m := MentorRegistry()
	assert.Equal(t, 10, m.Len())
	empathy, ok := m.Lookup("empathy")
	require.True(t, ok)
	assert.Equal(t, 1.3, empathy.Weight)
	assert.InDelta(t, 10.8, m.TotalWeight(), 1e-9)
	assert.Equal(t, "coaching_ability", m.Keys()[0])

	assert.Same(t, m, RegistryFor(Mentor))
	assert.Same(t, e, RegistryFor(Entrepreneur))
	assert.Same(t, e, RegistryFor(""))
}

func TestNewRegistry_PanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(Dimension{Key: "a", Weight: 1}, Dimension{Key: "a", Weight: 1})
	})
}

func TestParseAssessmentType(t *testing.T) {
	got, err := ParseAssessmentType(" Mentor ")
	require.NoError(t, err)
	assert.Equal(t, Mentor, got)

	got, err = ParseAssessmentType("")
	require.NoError(t, err)
	assert.Equal(t, AssessmentType(""), got)

	_, err = ParseAssessmentType("investor")
	assert.Error(t, err)
}

// ==========================
// Response Scorer
// ==========================

func TestScoreResponses(t *testing.T) {
	tests := []struct {
		name      string
		responses ResponseSet
		validate  func(t *testing.T, s *ScoreSheet)
	}{
		{
			name:      "both answered",
			responses: ResponseSet{"q1": "A", "q2": "A"},
			validate: func(t *testing.T, s *ScoreSheet) {
				assert.Equal(t, []float64{8}, s.Raw["leadership"])
				assert.Equal(t, []float64{6}, s.Raw["risk_tolerance"])
				assert.Empty(t, s.Raw["innovation"])
				assert.NotNil(t, s.Raw["innovation"])
				assert.Len(t, s.Answered, 2)
				assert.Empty(t, s.Skipped)
				assert.Equal(t, 2, s.TotalQuestions)
			},
		},
		{
			name:      "unknown question skipped",
			responses: ResponseSet{"q1": "B", "q99": "A"},
			validate: func(t *testing.T, s *ScoreSheet) {
				assert.Equal(t, []float64{4}, s.Raw["leadership"])
				assert.Len(t, s.Answered, 1)
				require.Len(t, s.Skipped, 1)
				assert.Equal(t, SkippedResponse{QuestionID: "q99", OptionID: "A", Reason: SkipUnknownQuestion}, s.Skipped[0])
			},
		},
		{
			name:      "unknown option skipped",
			responses: ResponseSet{"q1": "Z", "q2": "B"},
			validate: func(t *testing.T, s *ScoreSheet) {
				assert.Empty(t, s.Raw["leadership"])
				assert.Equal(t, []float64{2}, s.Raw["risk_tolerance"])
				require.Len(t, s.Skipped, 1)
				assert.Equal(t, SkipUnknownOption, s.Skipped[0].Reason)
			},
		},
		{
			name:      "answered details keep question order",
			responses: ResponseSet{"q2": "B", "q1": "A"},
			validate: func(t *testing.T, s *ScoreSheet) {
				require.Len(t, s.Answered, 2)
				assert.Equal(t, AnsweredQuestion{
					QuestionID: "q1", QuestionText: "Lead?", Dimension: "leadership",
					SelectedOptionID: "A", SelectedText: "Lead",
				}, s.Answered[0])
				assert.Equal(t, "q2", s.Answered[1].QuestionID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := ScoreResponses(EntrepreneurRegistry(), twoQuestionAssessment(), tt.responses)
			tt.validate(t, sheet)
		})
	}
}

func TestScoreResponses_OptionWithoutProfileStillAnswered(t *testing.T) {
	a := twoQuestionAssessment()
	a.Questions[0].Options[1].ScoreProfile = nil

	sheet := ScoreResponses(EntrepreneurRegistry(), a, ResponseSet{"q1": "B"})
	assert.Len(t, sheet.Answered, 1)
	assert.Empty(t, sheet.Raw["leadership"])
}

func TestScoreResponses_UnknownDimensionKeysIgnored(t *testing.T) {
	a := twoQuestionAssessment()
	a.Questions[0].Options[0].ScoreProfile["charisma"] = 9

	sheet := ScoreResponses(EntrepreneurRegistry(), a, ResponseSet{"q1": "A"})
	assert.Equal(t, 1, sheet.IgnoredKeys)
	_, present := sheet.Raw["charisma"]
	assert.False(t, present)
}

func TestScoreResponses_MultiDimensionOption(t *testing.T) {
	a := &Assessment{Questions: []Question{{
		QuestionID: "m1", Dimension: "coaching_ability",
		Options: []Option{{OptionID: "A", ScoreProfile: map[string]float64{"coaching_ability": 9, "communication": 8, "empathy": 7}}},
	}}}

	sheet := ScoreResponses(MentorRegistry(), a, ResponseSet{"m1": "A"})
	assert.Equal(t, []float64{9}, sheet.Raw["coaching_ability"])
	assert.Equal(t, []float64{8}, sheet.Raw["communication"])
	assert.Equal(t, []float64{7}, sheet.Raw["empathy"])
}

// ==========================
// Aggregator
// ==========================

func TestAggregateScores_TwoQuestionScenario(t *testing.T) {
	reg := EntrepreneurRegistry()
	agg := AggregateScores(reg, ScoreResponses(reg, twoQuestionAssessment(), ResponseSet{"q1": "A", "q2": "A"}))

	assert.Equal(t, 8.0, agg.DimensionScores["leadership"])
	assert.Equal(t, 6.0, agg.DimensionScores["risk_tolerance"])
	for _, key := range reg.Keys() {
		if key != "leadership" && key != "risk_tolerance" {
			assert.Equal(t, 0.0, agg.DimensionScores[key], key)
		}
	}
	assert.Len(t, agg.DimensionScores, 10)
	assert.Equal(t, 1.4, agg.OverallScore)
	assert.Equal(t, 100.0, agg.CompletionRate)
	assert.Equal(t, 2, agg.QuestionsAnswered)
	assert.Equal(t, 2, agg.TotalQuestions)
}

func TestAggregateScores_WeightedMean(t *testing.T) {
	reg := MentorRegistry()
	a := &Assessment{Questions: []Question{
		{QuestionID: "m1", Options: []Option{{OptionID: "A", ScoreProfile: map[string]float64{"empathy": 7}}}},
		{QuestionID: "m2", Options: []Option{{OptionID: "A", ScoreProfile: map[string]float64{"empathy": 8}}}},
		{QuestionID: "m3", Options: []Option{{OptionID: "A", ScoreProfile: map[string]float64{"network_strength": 5}}}},
	}}

	agg := AggregateScores(reg, ScoreResponses(reg, a, ResponseSet{"m1": "A", "m2": "A", "m3": "A"}))

	assert.Equal(t, 9.75, agg.DimensionScores["empathy"]) // 7.5 * 1.3
	assert.Equal(t, 4.5, agg.DimensionScores["network_strength"])
	assert.Equal(t, 0.0, agg.DimensionScores["coaching_ability"])
	assert.Equal(t, round((9.75+4.5)/10.8, 2), agg.OverallScore)
}

func TestAggregateScores_DecimalTieRoundsDown(t *testing.T) {
	reg := MentorRegistry()
	a := &Assessment{}
	resp := ResponseSet{}
	for i, score := range []float64{1, 2, 2, 2} {
		id := fmt.Sprintf("n%d", i)
		a.Questions = append(a.Questions, Question{QuestionID: id, Options: []Option{
			{OptionID: "A", ScoreProfile: map[string]float64{"network_strength": score}},
		}})
		resp[id] = "A"
	}

	agg := AggregateScores(reg, ScoreResponses(reg, a, resp))

	// 1.75 * 0.9 is stored just below 1.575.
	assert.Equal(t, 1.57, agg.DimensionScores["network_strength"])
}

func TestAggregateScores_ZeroDataPolicy(t *testing.T) {
	t.Run("empty registry", func(t *testing.T) {
		reg := NewRegistry()
		agg := AggregateScores(reg, ScoreResponses(reg, twoQuestionAssessment(), ResponseSet{"q1": "A"}))
		assert.Equal(t, 0.0, agg.OverallScore)
		assert.Empty(t, agg.DimensionScores)
	})

	t.Run("zero weights", func(t *testing.T) {
		reg := NewRegistry(Dimension{Key: "leadership", Weight: 0})
		agg := AggregateScores(reg, ScoreResponses(reg, twoQuestionAssessment(), ResponseSet{"q1": "A"}))
		assert.Equal(t, 0.0, agg.OverallScore)
		assert.Equal(t, 0.0, agg.DimensionScores["leadership"])
	})

	t.Run("empty assessment", func(t *testing.T) {
		reg := EntrepreneurRegistry()
		agg := AggregateScores(reg, ScoreResponses(reg, &Assessment{}, ResponseSet{"q1": "A"}))
		assert.Equal(t, 0.0, agg.CompletionRate)
		assert.Equal(t, 0, agg.TotalQuestions)
	})
}

func TestAggregateScores_CompletionRate(t *testing.T) {
	reg := EntrepreneurRegistry()
	a := wideAssessment(3)

	agg := AggregateScores(reg, ScoreResponses(reg, a, ResponseSet{"q0": "A", "q1": "B", "q7": "A"}))
	assert.Equal(t, 66.7, agg.CompletionRate)
	assert.Equal(t, 2, agg.QuestionsAnswered)
}

func TestAggregateScores_FormulaHoldsForEveryDimension(t *testing.T) {
	reg := MentorRegistry()
	a := &Assessment{}
	resp := ResponseSet{}
	for i, key := range reg.Keys() {
		q := Question{QuestionID: key, Options: []Option{{OptionID: "A", ScoreProfile: map[string]float64{key: float64(i%7) + 0.35}}}}
		a.Questions = append(a.Questions, q)
		resp[key] = "A"
	}

	sheet := ScoreResponses(reg, a, resp)
	agg := AggregateScores(reg, sheet)
	for _, d := range reg.Dimensions() {
		want := round(mean(sheet.Raw[d.Key])*d.Weight, 2)
		assert.Equal(t, want, agg.DimensionScores[d.Key], d.Key)
	}
}

func TestAggregateScores_OrderInvariantAndIdempotent(t *testing.T) {
	reg := EntrepreneurRegistry()
	a := wideAssessment(40)
	rng := rand.New(rand.NewSource(42))

	ids := make([]string, 0, len(a.Questions))
	for _, q := range a.Questions {
		ids = append(ids, q.QuestionID)
	}
	choice := make(map[string]string, len(ids))
	for _, id := range ids {
		choice[id] = string(rune('A' + rng.Intn(4)))
	}

	var first Aggregate
	for run := 0; run < 20; run++ {
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		resp := make(ResponseSet, len(ids))
		for _, id := range ids {
			resp[id] = choice[id]
		}
		agg := AggregateScores(reg, ScoreResponses(reg, a, resp))
		if run == 0 {
			first = agg
			continue
		}
		assert.Equal(t, first.OverallScore, agg.OverallScore)
		assert.Equal(t, first.DimensionScores, agg.DimensionScores)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		name   string
		v      float64
		places int
		want   float64
	}{
		{"already exact", 1.4, 2, 1.4},
		{"repeating third", 200.0 / 3.0, 1, 66.7},
		{"binary tie goes even", 0.125, 2, 0.12},
		{"binary tie goes even up", 0.375, 2, 0.38},
		{"decimal tie stored below", 2.675, 2, 2.67},
		{"decimal tie 1.005", 1.005, 2, 1.0},
		{"decimal tie 1.575", 1.575, 2, 1.57},
		{"weighted mean 1.75 x 0.9", 1.75 * 0.9, 2, 1.57},
		{"negative zero", -0.0001, 2, 0},
		{"one place", 14.2857, 1, 14.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := round(tt.v, tt.places)
			assert.Equal(t, tt.want, got)
			assert.False(t, math.Signbit(got) && got == 0)
		})
	}
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkScoreAndAggregate(b *testing.B) {
	reg := EntrepreneurRegistry()
	a := wideAssessment(50)
	resp := ResponseSet{}
	for i, q := range a.Questions {
		resp[q.QuestionID] = string(rune('A' + i%4))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregateScores(reg, ScoreResponses(reg, a, resp))
	}
}
