package grading

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// Submission-level statuses produced by grading.
const (
	StatusSubmitted = "submitted" // at least one question awaits a human
	StatusGraded    = "graded"    // every question has a determined score
)

// QuestionResult is the persisted per-question audit record.
type QuestionResult struct {
	QuestionNumber        int     `json:"questionNumber"`
	QuestionText          string  `json:"questionText"`
	QuestionPoints        float64 `json:"questionPoints"`
	StudentAnswerText     string  `json:"studentAnswerText"`
	CorrectAnswerText     string  `json:"correctAnswerText,omitempty"`
	IsCorrect             bool    `json:"isCorrect"`
	PointsEarned          float64 `json:"pointsEarned"`
	RequiresManualGrading bool    `json:"requiresManualGrading"`
	IsGraded              bool    `json:"isGraded"`
}

// Result is the outcome of grading one answer set against one question set.
type Result struct {
	EarnedPoints          float64                   `json:"earnedPoints"`
	TotalPossiblePoints   float64                   `json:"totalPossiblePoints"`
	Status                string                    `json:"status"`
	RequiresManualGrading bool                      `json:"requiresManualGrading"`
	PerQuestion           map[string]QuestionResult `json:"perQuestion"`
}

// Engine iterates a question set against a submitted answer map. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	matcher Matcher
	log     *zap.Logger
}

type EngineOption func(*Engine)

// WithHeuristicKeys turns on prompt-derived keys for unkeyed short-answer
// questions. See Matcher.HeuristicKeys.
func WithHeuristicKeys(on bool) EngineOption {
	return func(e *Engine) { e.matcher.HeuristicKeys = on }
}

func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Grade scores every question in the set. The total possible points are
// recomputed from the live question definitions, so editing points after
// submissions exist moves the denominator on the next (re)grade.
//
// A malformed stored payload for one question degrades to "no answer" for
// that question; it never aborts the rest of the set.
func (e *Engine) Grade(questions []Question, answers map[string]json.RawMessage) Result {
	r := Result{
		Status:      StatusGraded,
		PerQuestion: make(map[string]QuestionResult, len(questions)),
	}
	for _, q := range questions {
		r.TotalPossiblePoints += q.Points

		ans, err := DecodeAnswer(answers[q.ID])
		if err != nil {
			e.log.Warn("malformed answer payload, grading as unanswered",
				zap.String("question_id", q.ID), zap.Error(err))
			ans = Answer{}
		}

		out := e.matcher.Match(q, ans)
		qr := QuestionResult{
			QuestionNumber:        q.Number,
			QuestionText:          q.Text,
			QuestionPoints:        q.Points,
			StudentAnswerText:     studentAnswerText(q, ans),
			CorrectAnswerText:     q.CorrectAnswerText(),
			IsCorrect:             out.IsCorrect,
			PointsEarned:          out.PointsEarned,
			RequiresManualGrading: out.RequiresManualGrading,
			IsGraded:              !out.RequiresManualGrading,
		}
		r.PerQuestion[q.ID] = qr

		if out.RequiresManualGrading {
			r.RequiresManualGrading = true
			r.Status = StatusSubmitted
		} else {
			r.EarnedPoints += out.PointsEarned
		}
	}
	return r
}

// ApplyManualAward records a human-assigned score for one question and
// recomputes the aggregate. Re-awarding the same question overwrites the
// prior value. The caller validates the points range against the question.
func ApplyManualAward(r *Result, questionID string, points float64) {
	qr, ok := r.PerQuestion[questionID]
	if !ok {
		return
	}
	qr.PointsEarned = points
	qr.IsCorrect = points >= qr.QuestionPoints
	qr.IsGraded = true
	r.PerQuestion[questionID] = qr
	RecomputeTotals(r)
}

// RecomputeTotals rebuilds the aggregate score and status from the
// per-question records. Status only reaches "graded" once every question has
// a determined score; it never reverts from there inside this function.
func RecomputeTotals(r *Result) {
	earned := 0.0
	allGraded := true
	for _, qr := range r.PerQuestion {
		if qr.IsGraded {
			earned += qr.PointsEarned
		} else {
			allGraded = false
		}
	}
	r.EarnedPoints = earned
	if allGraded {
		r.Status = StatusGraded
	} else {
		r.Status = StatusSubmitted
	}
}

// Redact strips answer-key text from a result copy. Used when the viewer is
// not the submission owner or the assignment hides correct answers: the field
// is omitted, the operation itself still succeeds.
func Redact(r Result) Result {
	out := r
	out.PerQuestion = make(map[string]QuestionResult, len(r.PerQuestion))
	for id, qr := range r.PerQuestion {
		qr.CorrectAnswerText = ""
		out.PerQuestion[id] = qr
	}
	return out
}

func studentAnswerText(q Question, ans Answer) string {
	switch q.Type {
	case QuestionMultipleChoice, QuestionTrueFalse:
		for _, o := range q.Options {
			if o.ID == ans.AnswerID {
				return o.Text
			}
		}
		return ans.AnswerID
	case QuestionFileUpload:
		return ans.FileKey
	default:
		return strings.TrimSpace(ans.TextAnswer)
	}
}
