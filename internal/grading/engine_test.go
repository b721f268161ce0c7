package grading

import (
	"encoding/json"
	"reflect"
	"testing"
)

func sampleQuestions() []Question {
	return []Question{
		{
			ID: "mc1", Number: 1, Text: "Capital of France?", Type: QuestionMultipleChoice, Points: 5,
			Options: []Option{
				{ID: "A", Text: "London"},
				{ID: "B", Text: "Paris", IsCorrect: true},
			},
		},
		{
			ID: "sa1", Number: 2, Text: "Powerhouse of the cell?", Type: QuestionShortAnswer, Points: 3,
			MatchType:         MatchContains,
			AcceptableAnswers: []AcceptableAnswer{{Text: "mitochondria"}},
		},
		{
			ID: "es1", Number: 3, Text: "Discuss cell division.", Type: QuestionEssay, Points: 10,
		},
	}
}

func rawAnswers(m map[string]Answer) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		b, _ := json.Marshal(v)
		out[k] = b
	}
	return out
}

func TestGradeMixedSet(t *testing.T) {
	e := NewEngine()
	answers := rawAnswers(map[string]Answer{
		"mc1": {AnswerID: "B"},
		"sa1": {TextAnswer: "the mitochondria is the powerhouse"},
		"es1": {TextAnswer: "Mitosis has phases..."},
	})

	r := e.Grade(sampleQuestions(), answers)

	if r.TotalPossiblePoints != 18 {
		t.Fatalf("total = %v, want 18", r.TotalPossiblePoints)
	}
	if r.EarnedPoints != 8 {
		t.Fatalf("earned = %v, want 8 (essay excluded until graded)", r.EarnedPoints)
	}
	if r.Status != StatusSubmitted || !r.RequiresManualGrading {
		t.Fatalf("mixed set must await manual review: %+v", r)
	}
	if qr := r.PerQuestion["es1"]; qr.IsGraded || !qr.RequiresManualGrading || qr.PointsEarned != 0 {
		t.Fatalf("essay record wrong: %+v", qr)
	}
	if qr := r.PerQuestion["mc1"]; qr.CorrectAnswerText != "Paris" || qr.StudentAnswerText != "Paris" {
		t.Fatalf("mc detail wrong: %+v", qr)
	}
	if qr := r.PerQuestion["es1"]; qr.CorrectAnswerText != "Requires manual grading" {
		t.Fatalf("essay key text wrong: %+v", qr)
	}

	// Sum property: earned == sum of per-question points.
	sum := 0.0
	for _, qr := range r.PerQuestion {
		sum += qr.PointsEarned
	}
	if sum != r.EarnedPoints {
		t.Fatalf("earned %v != per-question sum %v", r.EarnedPoints, sum)
	}
}

func TestGradeAutoOnlySetIsGraded(t *testing.T) {
	qs := sampleQuestions()[:2]
	r := NewEngine().Grade(qs, rawAnswers(map[string]Answer{
		"mc1": {AnswerID: "A"},
		"sa1": {TextAnswer: "mitochondria"},
	}))
	if r.Status != StatusGraded || r.RequiresManualGrading {
		t.Fatalf("auto-only set should finish graded: %+v", r)
	}
	if r.EarnedPoints != 3 || r.TotalPossiblePoints != 8 {
		t.Fatalf("score = %v/%v, want 3/8", r.EarnedPoints, r.TotalPossiblePoints)
	}
}

func TestGradeMissingAndMalformedAnswers(t *testing.T) {
	qs := sampleQuestions()
	answers := rawAnswers(map[string]Answer{"mc1": {AnswerID: "B"}})
	answers["sa1"] = json.RawMessage(`{"text_answer":`) // truncated blob

	r := NewEngine().Grade(qs, answers)

	if r.EarnedPoints != 5 {
		t.Fatalf("earned = %v, want 5 (bad blob degrades to unanswered)", r.EarnedPoints)
	}
	if qr := r.PerQuestion["sa1"]; qr.IsCorrect || qr.PointsEarned != 0 || !qr.IsGraded {
		t.Fatalf("malformed answer should grade as wrong, not abort: %+v", qr)
	}
	if _, ok := r.PerQuestion["es1"]; !ok {
		t.Fatalf("unanswered question missing from detailed results")
	}
}

func TestGradeIsIdempotent(t *testing.T) {
	qs := sampleQuestions()
	answers := rawAnswers(map[string]Answer{
		"mc1": {AnswerID: "B"},
		"sa1": {TextAnswer: "mitochondria"},
		"es1": {TextAnswer: "..."},
	})
	e := NewEngine()
	first := e.Grade(qs, answers)
	second := e.Grade(qs, answers)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("grading is not deterministic:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestApplyManualAward(t *testing.T) {
	qs := sampleQuestions()
	r := NewEngine().Grade(qs, rawAnswers(map[string]Answer{
		"mc1": {AnswerID: "B"},
		"sa1": {TextAnswer: "mitochondria"},
		"es1": {TextAnswer: "an essay"},
	}))
	if r.Status != StatusSubmitted {
		t.Fatalf("precondition: %+v", r)
	}

	ApplyManualAward(&r, "es1", 7)
	if r.EarnedPoints != 15 {
		t.Fatalf("earned = %v, want 15 after award", r.EarnedPoints)
	}
	if r.Status != StatusGraded {
		t.Fatalf("all questions determined, status = %q", r.Status)
	}

	// Overwrite, not accumulate.
	ApplyManualAward(&r, "es1", 4)
	if r.EarnedPoints != 12 {
		t.Fatalf("re-award must overwrite: earned = %v, want 12", r.EarnedPoints)
	}
	if qr := r.PerQuestion["es1"]; qr.IsCorrect {
		t.Fatalf("partial credit should not read as fully correct")
	}

	ApplyManualAward(&r, "es1", 10)
	if qr := r.PerQuestion["es1"]; !qr.IsCorrect {
		t.Fatalf("full credit should read as correct")
	}
}

func TestRedactStripsKeyText(t *testing.T) {
	r := NewEngine().Grade(sampleQuestions(), rawAnswers(map[string]Answer{"mc1": {AnswerID: "B"}}))
	red := Redact(r)
	for id, qr := range red.PerQuestion {
		if qr.CorrectAnswerText != "" {
			t.Fatalf("question %s still exposes key text", id)
		}
	}
	// Original untouched.
	if r.PerQuestion["mc1"].CorrectAnswerText == "" {
		t.Fatalf("redaction mutated the source result")
	}
	if red.EarnedPoints != r.EarnedPoints {
		t.Fatalf("redaction changed the score")
	}
}

func TestHeuristicEngineOption(t *testing.T) {
	qs := []Question{{
		ID: "sa2", Number: 1, Type: QuestionShortAnswer, Points: 1,
		Text: `Enter the answer 42`,
	}}
	answers := rawAnswers(map[string]Answer{"sa2": {TextAnswer: "42"}})

	if r := NewEngine().Grade(qs, answers); r.EarnedPoints != 0 {
		t.Fatalf("heuristic graded while disabled")
	}
	if r := NewEngine(WithHeuristicKeys(true)).Grade(qs, answers); r.EarnedPoints != 1 {
		t.Fatalf("heuristic engine option not applied")
	}
}
