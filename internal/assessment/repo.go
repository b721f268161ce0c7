package assessment

import "context"

type AssignmentListOpts struct {
	CourseID      string
	PublishedOnly bool
	Limit         int
	Offset        int
}

type SubmissionListOpts struct {
	AssignmentID string
	StudentID    string
	Status       SubmissionStatus
	Limit        int
	Offset       int
}

// Store is the narrow persistence interface the core needs. The SQL
// implementation relies on the store's uniqueness constraint on
// (assignment_id, student_id, attempt_number) and reports a violated insert
// as ErrDuplicateAttempt.
type Store interface {
	PutAssignment(ctx context.Context, a Assignment) error
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	ListAssignments(ctx context.Context, opts AssignmentListOpts) ([]Assignment, error)

	CreateSubmission(ctx context.Context, s Submission) error
	UpdateSubmission(ctx context.Context, s Submission) error
	GetSubmission(ctx context.Context, id string) (Submission, error)
	ListSubmissions(ctx context.Context, opts SubmissionListOpts) ([]Submission, error)
}
