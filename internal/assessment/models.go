package assessment

import (
	"encoding/json"
	"time"

	"github.com/Teboho02/BA-Exams-Backend/internal/grading"
)

// AttemptsUnlimited is the allowed_attempts sentinel for "no limit".
const AttemptsUnlimited = -1

type Assignment struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`

	// MaxPoints is display metadata; the grading denominator is always the
	// live sum of question points.
	MaxPoints float64 `json:"max_points"`

	DueAt           *time.Time `json:"due_at,omitempty"`
	AvailableFrom   *time.Time `json:"available_from,omitempty"`
	AvailableUntil  *time.Time `json:"available_until,omitempty"`
	AllowedAttempts int        `json:"allowed_attempts"`

	IsPublished        bool `json:"is_published"`
	ShowCorrectAnswers bool `json:"show_correct_answers"`

	// LegacyImported marks question sets migrated from the old platform,
	// where short-answer questions were often saved without acceptable
	// answers. Only these get the heuristic prompt-key fallback.
	LegacyImported bool `json:"legacy_imported,omitempty"`

	Questions []grading.Question `json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TotalPoints is the live denominator for percentage display.
func (a Assignment) TotalPoints() float64 {
	sum := 0.0
	for _, q := range a.Questions {
		sum += q.Points
	}
	return sum
}

func (a Assignment) Question(id string) (grading.Question, bool) {
	for _, q := range a.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return grading.Question{}, false
}

type SubmissionStatus string

const (
	StatusDraft     SubmissionStatus = "draft"
	StatusSubmitted SubmissionStatus = "submitted"
	StatusGraded    SubmissionStatus = "graded"
)

// QuizData is the serialized blob stored alongside the top-level score and
// status columns. Its JSON shape is the interop contract with the previous
// platform's rows; keep the key names stable.
type QuizData struct {
	Answers             map[string]json.RawMessage        `json:"answers"`
	DetailedResults     map[string]grading.QuestionResult `json:"detailedResults"`
	AutoGradedScore     float64                           `json:"autoGradedScore"`
	TotalPossiblePoints float64                           `json:"totalPossiblePoints"`
}

type Submission struct {
	ID            string           `json:"id"`
	AssignmentID  string           `json:"assignment_id"`
	StudentID     string           `json:"student_id"`
	AttemptNumber int              `json:"attempt_number"`
	Status        SubmissionStatus `json:"status"`

	// Score mirrors the recalculated earned points at the latest grading
	// event; it must stay consistent with Data.DetailedResults.
	Score float64 `json:"score"`

	Data QuizData `json:"quiz_data"`

	StartedAt   time.Time  `json:"time_started"`
	CompletedAt *time.Time `json:"time_completed,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	GradedAt    *time.Time `json:"graded_at,omitempty"`
	GradedBy    string     `json:"graded_by,omitempty"`
}

// SubmissionView is a submission prepared for a specific viewer; correct
// answer text is already redacted when the viewer may not see it.
type SubmissionView struct {
	Submission
	TotalPossiblePoints float64 `json:"total_possible_points"`
}
