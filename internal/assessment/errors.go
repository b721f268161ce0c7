package assessment

import "errors"

// Refusals carry distinct sentinels so callers can render the right guidance
// ("available from X", "all N attempts used") instead of a generic failure.
var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrQuestionNotFound   = errors.New("question not part of this assignment")

	ErrNotPublished  = errors.New("assignment is not published")
	ErrWindowNotOpen = errors.New("assignment is not yet available")
	ErrWindowClosed  = errors.New("assignment is no longer available")
	ErrAttemptLimit  = errors.New("all allowed attempts have been used")

	// ErrDuplicateAttempt surfaces the uniqueness constraint on
	// (assignment, student, attempt_number) when two submissions race.
	ErrDuplicateAttempt = errors.New("attempt already exists")

	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrNotSubmitted     = errors.New("attempt has not been submitted")
	ErrNotOwner         = errors.New("submission belongs to another student")

	ErrPointsOutOfRange = errors.New("points outside the question's range")
)
