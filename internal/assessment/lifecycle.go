package assessment

import "time"

// DisplayStatus is the learner-facing label for an assignment relative to one
// student, derived at read time.
type DisplayStatus string

const (
	DisplayUpcoming  DisplayStatus = "upcoming"
	DisplayExpired   DisplayStatus = "expired"
	DisplayAvailable DisplayStatus = "available"
	DisplayMissing   DisplayStatus = "missing"
	DisplaySubmitted DisplayStatus = "submitted"
	DisplayGraded    DisplayStatus = "graded"
)

// Decision is the lifecycle manager's answer to "may this student start an
// attempt, and what should their course view say".
type Decision struct {
	CanAttempt    bool          `json:"can_attempt"`
	Reason        string        `json:"reason,omitempty"`
	DisplayStatus DisplayStatus `json:"display_status"`
}

// CanStartAttempt gates the creation of a new attempt. A nil error means
// allowed; otherwise the sentinel identifies which boundary was hit.
// An existing draft always may be resumed regardless of the attempt count.
func CanStartAttempt(a Assignment, prior []Submission, now time.Time) error {
	if !a.IsPublished {
		return ErrNotPublished
	}
	if a.AvailableFrom != nil && now.Before(*a.AvailableFrom) {
		return ErrWindowNotOpen
	}
	if a.AvailableUntil != nil && now.After(*a.AvailableUntil) {
		return ErrWindowClosed
	}
	if hasDraft(prior) {
		return nil
	}
	if a.AllowedAttempts == AttemptsUnlimited {
		return nil
	}
	if attemptsUsed(prior) >= a.AllowedAttempts {
		return ErrAttemptLimit
	}
	return nil
}

// Evaluate combines the gate and the display status into one decision.
func Evaluate(a Assignment, prior []Submission, now time.Time) Decision {
	d := Decision{DisplayStatus: StatusFor(a, prior, now)}
	if err := CanStartAttempt(a, prior, now); err != nil {
		d.Reason = err.Error()
	} else {
		d.CanAttempt = true
	}
	return d
}

// StatusFor derives the display label. Submitted work wins over window state:
// a student who already handed something in sees its grading state, not
// "expired".
func StatusFor(a Assignment, prior []Submission, now time.Time) DisplayStatus {
	if best, ok := BestAttempt(prior); ok {
		if best.Status == StatusGraded {
			return DisplayGraded
		}
		return DisplaySubmitted
	}
	if a.AvailableFrom != nil && now.Before(*a.AvailableFrom) {
		return DisplayUpcoming
	}
	if a.AvailableUntil != nil && now.After(*a.AvailableUntil) {
		return DisplayExpired
	}
	if a.DueAt != nil && now.After(*a.DueAt) {
		return DisplayMissing
	}
	return DisplayAvailable
}

// BestAttempt selects the canonical submission when several exist: a graded
// attempt beats a submitted one, then higher score, then most recent
// submission time. Drafts never win. The same ordering backs the course
// overview, the gradebook and the detailed review.
func BestAttempt(subs []Submission) (Submission, bool) {
	var best Submission
	found := false
	for _, s := range subs {
		if s.Status == StatusDraft {
			continue
		}
		if !found || better(s, best) {
			best = s
			found = true
		}
	}
	return best, found
}

func better(a, b Submission) bool {
	ga, gb := a.Status == StatusGraded, b.Status == StatusGraded
	if ga != gb {
		return ga
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return submittedAt(a).After(submittedAt(b))
}

func submittedAt(s Submission) time.Time {
	if s.SubmittedAt != nil {
		return *s.SubmittedAt
	}
	return time.Time{}
}

// LatestAttempt returns the attempt with the highest attempt number,
// regardless of status. Used for draft resumption.
func LatestAttempt(subs []Submission) (Submission, bool) {
	var latest Submission
	found := false
	for _, s := range subs {
		if !found || s.AttemptNumber > latest.AttemptNumber {
			latest = s
			found = true
		}
	}
	return latest, found
}

func hasDraft(subs []Submission) bool {
	for _, s := range subs {
		if s.Status == StatusDraft {
			return true
		}
	}
	return false
}

// attemptsUsed counts attempts that consumed a slot; an open draft has not
// been handed in yet but still occupies its attempt number.
func attemptsUsed(subs []Submission) int {
	n := 0
	for _, s := range subs {
		if s.Status != StatusDraft {
			n++
		}
	}
	return n
}

// NextAttemptNumber yields the 1-based number for a fresh attempt.
func NextAttemptNumber(subs []Submission) int {
	max := 0
	for _, s := range subs {
		if s.AttemptNumber > max {
			max = s.AttemptNumber
		}
	}
	return max + 1
}
