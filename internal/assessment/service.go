package assessment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Teboho02/BA-Exams-Backend/internal/grading"
)

// Service wires the lifecycle gate, the grading engine and the store into the
// submission flow. All methods are single-request computations; the only
// shared mutable state is the persisted submission row, protected by the
// store's uniqueness constraint.
type Service struct {
	store Store
	audit AuditLog
	log   *zap.Logger
	now   func() time.Time

	// heuristicDefault applies the prompt-key fallback to every assignment,
	// not just legacy imports. Normally off.
	heuristicDefault bool
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func WithHeuristicDefault(on bool) ServiceOption {
	return func(s *Service) { s.heuristicDefault = on }
}

func NewService(store Store, audit AuditLog, log *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{store: store, audit: audit, log: log, now: time.Now}
	if log == nil {
		s.log = zap.NewNop()
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) engineFor(a Assignment) *grading.Engine {
	return grading.NewEngine(
		grading.WithHeuristicKeys(s.heuristicDefault || a.LegacyImported),
		grading.WithLogger(s.log),
	)
}

// CreateAssignment validates and persists a new assignment.
func (s *Service) CreateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AllowedAttempts == 0 {
		a.AllowedAttempts = 1
	}
	a.CreatedAt = s.now().UTC()
	if len(a.Questions) > 0 {
		if err := grading.ValidateSet(a.Questions); err != nil {
			return Assignment{}, err
		}
	}
	if err := s.store.PutAssignment(ctx, a); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

// ReplaceQuestions swaps the full question set. Partial patches are not
// supported: a type change would silently invalidate stored breakdowns.
func (s *Service) ReplaceQuestions(ctx context.Context, assignmentID string, qs []grading.Question) (Assignment, error) {
	if err := grading.ValidateSet(qs); err != nil {
		return Assignment{}, err
	}
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Assignment{}, err
	}
	a.Questions = qs
	if err := s.store.PutAssignment(ctx, a); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

func (s *Service) SetPublished(ctx context.Context, assignmentID string, published bool) (Assignment, error) {
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Assignment{}, err
	}
	a.IsPublished = published
	if err := s.store.PutAssignment(ctx, a); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

// StartAttempt opens a new draft, or resumes the existing one. The refusal
// reasons are the lifecycle sentinels; a race on the attempt number surfaces
// as ErrDuplicateAttempt.
func (s *Service) StartAttempt(ctx context.Context, assignmentID, studentID string) (Submission, error) {
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Submission{}, err
	}
	prior, err := s.store.ListSubmissions(ctx, SubmissionListOpts{
		AssignmentID: assignmentID, StudentID: studentID,
	})
	if err != nil {
		return Submission{}, err
	}
	now := s.now().UTC()
	if err := CanStartAttempt(a, prior, now); err != nil {
		return Submission{}, err
	}
	for _, p := range prior {
		if p.Status == StatusDraft {
			return p, nil // resume
		}
	}
	sub := Submission{
		ID:            uuid.NewString(),
		AssignmentID:  assignmentID,
		StudentID:     studentID,
		AttemptNumber: NextAttemptNumber(prior),
		Status:        StatusDraft,
		StartedAt:     now,
		Data: QuizData{
			Answers:         map[string]json.RawMessage{},
			DetailedResults: map[string]grading.QuestionResult{},
		},
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return Submission{}, err
	}
	_ = s.audit.Append(ctx, EventAttemptStarted, sub.ID, map[string]interface{}{
		"assignment_id": assignmentID,
		"student_id":    studentID,
		"attempt":       sub.AttemptNumber,
	})
	return sub, nil
}

// SaveAnswers merges answers into an open draft.
func (s *Service) SaveAnswers(ctx context.Context, submissionID, studentID string, answers map[string]json.RawMessage) (Submission, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if sub.StudentID != studentID {
		return Submission{}, ErrNotOwner
	}
	if sub.Status != StatusDraft {
		return Submission{}, ErrAlreadySubmitted
	}
	for qid, payload := range answers {
		sub.Data.Answers[qid] = payload
	}
	if err := s.store.UpdateSubmission(ctx, sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// SubmitAttempt grades the draft and freezes its answer set. Pure
// auto-gradable sets land on "graded" immediately; anything with an essay or
// file-upload question waits on manual review.
func (s *Service) SubmitAttempt(ctx context.Context, submissionID, studentID string) (Submission, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if sub.StudentID != studentID {
		return Submission{}, ErrNotOwner
	}
	if sub.Status != StatusDraft {
		return Submission{}, ErrAlreadySubmitted
	}
	a, err := s.store.GetAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return Submission{}, err
	}

	r := s.engineFor(a).Grade(a.Questions, sub.Data.Answers)
	now := s.now().UTC()
	applyResult(&sub, r)
	sub.SubmittedAt = &now
	sub.CompletedAt = &now
	if sub.Status == StatusGraded {
		sub.GradedAt = &now
	}

	if err := s.store.UpdateSubmission(ctx, sub); err != nil {
		return Submission{}, err
	}
	_ = s.audit.Append(ctx, EventAttemptSubmitted, sub.ID, map[string]interface{}{
		"score":                 sub.Score,
		"total_possible_points": sub.Data.TotalPossiblePoints,
		"status":                sub.Status,
	})
	return sub, nil
}

// Regrade re-runs the engine over the stored answers, typically after a
// question edit. Recorded manual awards survive, capped at the question's
// current points.
func (s *Service) Regrade(ctx context.Context, submissionID, actor string) (Submission, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if sub.Status == StatusDraft {
		return Submission{}, ErrNotSubmitted
	}
	a, err := s.store.GetAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return Submission{}, err
	}

	prior := sub.Data.DetailedResults
	r := s.engineFor(a).Grade(a.Questions, sub.Data.Answers)
	for _, q := range a.Questions {
		old, ok := prior[q.ID]
		if !ok || !old.RequiresManualGrading || !old.IsGraded {
			continue
		}
		points := old.PointsEarned
		if points > q.Points {
			points = q.Points
		}
		grading.ApplyManualAward(&r, q.ID, points)
	}

	applyResult(&sub, r)
	now := s.now().UTC()
	if sub.Status == StatusGraded && sub.GradedAt == nil {
		sub.GradedAt = &now
	}
	if err := s.store.UpdateSubmission(ctx, sub); err != nil {
		return Submission{}, err
	}
	_ = s.audit.Append(ctx, EventRegraded, sub.ID, map[string]interface{}{
		"actor":                 actor,
		"score":                 sub.Score,
		"total_possible_points": sub.Data.TotalPossiblePoints,
	})
	return sub, nil
}

// ApplyManualGrades records human point awards for essay/file-upload
// questions. Re-submitting an award overwrites the previous value. Once no
// ungraded question remains the submission transitions to graded; it never
// reverts to submitted here.
func (s *Service) ApplyManualGrades(ctx context.Context, submissionID string, awards map[string]float64, gradedBy string) (Submission, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if sub.Status == StatusDraft {
		return Submission{}, ErrNotSubmitted
	}
	a, err := s.store.GetAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return Submission{}, err
	}

	r := resultFromSubmission(sub)
	for qid, points := range awards {
		q, ok := a.Question(qid)
		if !ok {
			return Submission{}, ErrQuestionNotFound
		}
		if points < 0 || points > q.Points {
			return Submission{}, ErrPointsOutOfRange
		}
		grading.ApplyManualAward(&r, qid, points)
	}

	wasGraded := sub.Status == StatusGraded
	applyResult(&sub, r)
	if wasGraded {
		sub.Status = StatusGraded
	}
	if sub.Status == StatusGraded {
		now := s.now().UTC()
		sub.GradedAt = &now
		sub.GradedBy = gradedBy
	}
	if err := s.store.UpdateSubmission(ctx, sub); err != nil {
		return Submission{}, err
	}
	_ = s.audit.Append(ctx, EventManualGraded, sub.ID, map[string]interface{}{
		"graded_by": gradedBy,
		"awards":    awards,
		"score":     sub.Score,
	})
	return sub, nil
}

// ViewSubmission prepares a submission for a viewer. Students only see their
// own work; correct-answer text is omitted unless the assignment reveals it
// to the owner. Field redaction is not an authorization failure.
func (s *Service) ViewSubmission(ctx context.Context, submissionID, viewerID string, viewerIsStaff bool) (SubmissionView, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return SubmissionView{}, err
	}
	if !viewerIsStaff && sub.StudentID != viewerID {
		return SubmissionView{}, ErrNotOwner
	}
	a, err := s.store.GetAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return SubmissionView{}, err
	}

	reveal := viewerIsStaff || (sub.StudentID == viewerID && a.ShowCorrectAnswers)
	if !reveal {
		r := resultFromSubmission(sub)
		sub.Data.DetailedResults = grading.Redact(r).PerQuestion
	}
	return SubmissionView{Submission: sub, TotalPossiblePoints: a.TotalPoints()}, nil
}

// AssignmentStatus answers the course-overview question for one student.
func (s *Service) AssignmentStatus(ctx context.Context, assignmentID, studentID string) (Decision, error) {
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Decision{}, err
	}
	prior, err := s.store.ListSubmissions(ctx, SubmissionListOpts{
		AssignmentID: assignmentID, StudentID: studentID,
	})
	if err != nil {
		return Decision{}, err
	}
	return Evaluate(a, prior, s.now().UTC()), nil
}

// BestSubmission returns the canonical attempt for gradebook display.
func (s *Service) BestSubmission(ctx context.Context, assignmentID, studentID string) (Submission, bool, error) {
	subs, err := s.store.ListSubmissions(ctx, SubmissionListOpts{
		AssignmentID: assignmentID, StudentID: studentID,
	})
	if err != nil {
		return Submission{}, false, err
	}
	best, ok := BestAttempt(subs)
	return best, ok, nil
}

func applyResult(sub *Submission, r grading.Result) {
	sub.Data.DetailedResults = r.PerQuestion
	sub.Data.AutoGradedScore = autoPoints(r)
	sub.Data.TotalPossiblePoints = r.TotalPossiblePoints
	sub.Score = r.EarnedPoints
	sub.Status = SubmissionStatus(r.Status)
}

func autoPoints(r grading.Result) float64 {
	sum := 0.0
	for _, qr := range r.PerQuestion {
		if !qr.RequiresManualGrading {
			sum += qr.PointsEarned
		}
	}
	return sum
}

func resultFromSubmission(sub Submission) grading.Result {
	per := make(map[string]grading.QuestionResult, len(sub.Data.DetailedResults))
	for k, v := range sub.Data.DetailedResults {
		per[k] = v
	}
	r := grading.Result{
		EarnedPoints:        sub.Score,
		TotalPossiblePoints: sub.Data.TotalPossiblePoints,
		Status:              string(sub.Status),
		PerQuestion:         per,
	}
	for _, qr := range per {
		if qr.RequiresManualGrading {
			r.RequiresManualGrading = true
		}
	}
	return r
}
