package grading

import "testing"

func boolPtr(v bool) *bool { return &v }

func choiceQuestion(points float64) Question {
	return Question{
		ID:     "q1",
		Number: 1,
		Text:   "Pick one",
		Type:   QuestionMultipleChoice,
		Points: points,
		Options: []Option{
			{ID: "A", Text: "Alpha"},
			{ID: "B", Text: "Bravo", IsCorrect: true},
			{ID: "C", Text: "Charlie"},
		},
	}
}

func TestMatchChoice(t *testing.T) {
	q := choiceQuestion(2)
	tests := []struct {
		name    string
		answer  Answer
		correct bool
		points  float64
	}{
		{name: "correct option", answer: Answer{AnswerID: "B"}, correct: true, points: 2},
		{name: "wrong option", answer: Answer{AnswerID: "A"}},
		{name: "unknown option id", answer: Answer{AnswerID: "Z"}},
		{name: "no answer", answer: Answer{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Matcher{}.Match(q, tc.answer)
			if got.IsCorrect != tc.correct || got.PointsEarned != tc.points {
				t.Fatalf("got %+v, want correct=%v points=%v", got, tc.correct, tc.points)
			}
			if got.RequiresManualGrading {
				t.Fatalf("choice questions never need manual grading")
			}
		})
	}
}

func TestMatchTrueFalse(t *testing.T) {
	q := Question{
		ID: "q2", Type: QuestionTrueFalse, Points: 1,
		Options: []Option{
			{ID: "true", Text: "True", IsCorrect: true},
			{ID: "false", Text: "False"},
		},
	}
	if got := (Matcher{}).Match(q, Answer{AnswerID: "true"}); !got.IsCorrect || got.PointsEarned != 1 {
		t.Fatalf("true/false correct id: got %+v", got)
	}
	if got := (Matcher{}).Match(q, Answer{AnswerID: "false"}); got.IsCorrect {
		t.Fatalf("true/false wrong id graded correct")
	}
}

func TestMatchShortAnswerExact(t *testing.T) {
	base := Question{ID: "q3", Type: QuestionShortAnswer, Points: 3, MatchType: MatchExact}

	tests := []struct {
		name      string
		keys      []AcceptableAnswer
		caseSens  bool
		submitted string
		correct   bool
	}{
		{name: "trim and fold", keys: []AcceptableAnswer{{Text: "Paris"}}, submitted: "  paris ", correct: true},
		{name: "case sensitive rejects fold", keys: []AcceptableAnswer{{Text: "Paris"}}, caseSens: true, submitted: "paris"},
		{name: "case sensitive exact", keys: []AcceptableAnswer{{Text: "Paris"}}, caseSens: true, submitted: "Paris", correct: true},
		{name: "per-answer override beats question default", keys: []AcceptableAnswer{{Text: "pH", IsCaseSensitive: boolPtr(true)}}, submitted: "ph"},
		{name: "second acceptable answer hits", keys: []AcceptableAnswer{{Text: "Paris"}, {Text: "City of Light"}}, submitted: "city of light", correct: true},
		{name: "relaxed key allows containment", keys: []AcceptableAnswer{{Text: "mitochondria", IsExactMatch: boolPtr(false)}}, submitted: "the mitochondria organelle", correct: true},
		{name: "relaxed key reverse containment", keys: []AcceptableAnswer{{Text: "the full answer text", IsExactMatch: boolPtr(false)}}, submitted: "full answer", correct: true},
		{name: "strict key rejects containment", keys: []AcceptableAnswer{{Text: "mitochondria"}}, submitted: "the mitochondria organelle"},
		{name: "empty submission", keys: []AcceptableAnswer{{Text: "Paris"}}, submitted: "   "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := base
			q.CaseSensitive = tc.caseSens
			q.AcceptableAnswers = tc.keys
			got := Matcher{}.Match(q, Answer{TextAnswer: tc.submitted})
			if got.IsCorrect != tc.correct {
				t.Fatalf("correct=%v, want %v", got.IsCorrect, tc.correct)
			}
			if tc.correct && got.PointsEarned != q.Points {
				t.Fatalf("points=%v, want %v", got.PointsEarned, q.Points)
			}
		})
	}
}

func TestMatchShortAnswerContains(t *testing.T) {
	q := Question{
		ID: "q4", Type: QuestionShortAnswer, Points: 2, MatchType: MatchContains,
		AcceptableAnswers: []AcceptableAnswer{{Text: "mitochondria"}},
	}
	got := Matcher{}.Match(q, Answer{TextAnswer: "the Mitochondria is the powerhouse"})
	if !got.IsCorrect || got.PointsEarned != 2 {
		t.Fatalf("contains match failed: %+v", got)
	}
	if got = (Matcher{}).Match(q, Answer{TextAnswer: "chloroplast"}); got.IsCorrect {
		t.Fatalf("contains matched unrelated text")
	}
}

func TestMatchShortAnswerRegex(t *testing.T) {
	tests := []struct {
		name      string
		key       AcceptableAnswer
		caseSens  bool
		submitted string
		correct   bool
	}{
		{name: "pattern matches", key: AcceptableAnswer{Text: `^4[0-9]$`}, submitted: "42", correct: true},
		{name: "pattern misses", key: AcceptableAnswer{Text: `^4[0-9]$`}, submitted: "52"},
		{name: "case-insensitive by default", key: AcceptableAnswer{Text: `^paris$`}, submitted: "PARIS", correct: true},
		{name: "case-sensitive flag respected", key: AcceptableAnswer{Text: `^paris$`}, caseSens: true, submitted: "PARIS"},
		{name: "invalid pattern never matches", key: AcceptableAnswer{Text: `([unclosed`}, submitted: "([unclosed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := Question{
				ID: "q5", Type: QuestionShortAnswer, Points: 1,
				MatchType:         MatchRegex,
				CaseSensitive:     tc.caseSens,
				AcceptableAnswers: []AcceptableAnswer{tc.key},
			}
			got := Matcher{}.Match(q, Answer{TextAnswer: tc.submitted})
			if got.IsCorrect != tc.correct {
				t.Fatalf("correct=%v, want %v", got.IsCorrect, tc.correct)
			}
		})
	}
}

func TestMatchShortAnswerHeuristicFallback(t *testing.T) {
	q := Question{
		ID: "q6", Type: QuestionShortAnswer, Points: 2,
		Text: `Type "yes" if you have read the syllabus.`,
	}

	// Off by default: unkeyed questions grade as incorrect.
	if got := (Matcher{}).Match(q, Answer{TextAnswer: "yes"}); got.IsCorrect {
		t.Fatalf("heuristic fired while disabled")
	}

	m := Matcher{HeuristicKeys: true}
	if got := m.Match(q, Answer{TextAnswer: "YES"}); !got.IsCorrect || got.PointsEarned != 2 {
		t.Fatalf("heuristic key should match case-insensitively: %+v", got)
	}
	if got := m.Match(q, Answer{TextAnswer: "no"}); got.IsCorrect {
		t.Fatalf("heuristic matched wrong token")
	}

	// Prompt with no lexical cue: still just incorrect, never an error.
	q.Text = "Explain the water cycle."
	if got := m.Match(q, Answer{TextAnswer: "evaporation"}); got.IsCorrect {
		t.Fatalf("no cue should mean no match")
	}
}

func TestExtractPromptKey(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{`Type "yes" to confirm`, "yes"},
		{`Enter the answer 42`, "42"},
		{`Write hello below`, "hello"},
		{`The answer is Paris`, "Paris"},
		{`Describe photosynthesis`, ""},
	}
	for _, tc := range tests {
		if got := extractPromptKey(tc.prompt); got != tc.want {
			t.Errorf("extractPromptKey(%q) = %q, want %q", tc.prompt, got, tc.want)
		}
	}
}

func TestMatchManualTypes(t *testing.T) {
	for _, typ := range []QuestionType{QuestionEssay, QuestionFileUpload} {
		q := Question{ID: "q7", Type: typ, Points: 10}
		got := Matcher{}.Match(q, Answer{TextAnswer: "a long essay", FileKey: "sub/q7.pdf"})
		if !got.RequiresManualGrading || got.PointsEarned != 0 {
			t.Fatalf("%s: got %+v, want manual with zero points", typ, got)
		}
	}
}
