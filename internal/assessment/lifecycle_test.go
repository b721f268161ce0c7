package assessment

import (
	"testing"
	"time"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func tp(t time.Time) *time.Time { return &t }

func windowed(from, until, due *time.Time, attempts int) Assignment {
	return Assignment{
		ID: "a1", IsPublished: true,
		AvailableFrom: from, AvailableUntil: until, DueAt: due,
		AllowedAttempts: attempts,
	}
}

func sub(n int, status SubmissionStatus, score float64, submitted *time.Time) Submission {
	return Submission{
		ID: "s", AssignmentID: "a1", StudentID: "stu",
		AttemptNumber: n, Status: status, Score: score, SubmittedAt: submitted,
	}
}

func TestCanStartAttempt(t *testing.T) {
	tests := []struct {
		name       string
		assignment Assignment
		prior      []Submission
		want       error
	}{
		{
			name:       "unpublished",
			assignment: Assignment{ID: "a1", AllowedAttempts: 1},
			want:       ErrNotPublished,
		},
		{
			name:       "before window",
			assignment: windowed(tp(base.Add(time.Hour)), nil, nil, 1),
			want:       ErrWindowNotOpen,
		},
		{
			name:       "after window",
			assignment: windowed(nil, tp(base.Add(-time.Hour)), nil, 1),
			want:       ErrWindowClosed,
		},
		{
			name:       "open window no attempts",
			assignment: windowed(tp(base.Add(-time.Hour)), tp(base.Add(time.Hour)), nil, 1),
		},
		{
			name:       "unset bounds are unbounded",
			assignment: windowed(nil, nil, nil, 1),
		},
		{
			name:       "limit reached",
			assignment: windowed(nil, nil, nil, 2),
			prior: []Submission{
				sub(1, StatusSubmitted, 0, tp(base)),
				sub(2, StatusGraded, 5, tp(base)),
			},
			want: ErrAttemptLimit,
		},
		{
			name:       "retakes remain",
			assignment: windowed(nil, nil, nil, 2),
			prior:      []Submission{sub(1, StatusGraded, 5, tp(base))},
		},
		{
			name:       "unlimited attempts",
			assignment: windowed(nil, nil, nil, AttemptsUnlimited),
			prior: []Submission{
				sub(1, StatusGraded, 5, tp(base)),
				sub(2, StatusGraded, 6, tp(base)),
				sub(3, StatusGraded, 7, tp(base)),
			},
		},
		{
			name:       "open draft resumes past the limit",
			assignment: windowed(nil, nil, nil, 1),
			prior: []Submission{
				sub(1, StatusSubmitted, 4, tp(base)),
				sub(2, StatusDraft, 0, nil),
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CanStartAttempt(tc.assignment, tc.prior, base)
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		assignment Assignment
		prior      []Submission
		want       DisplayStatus
	}{
		{name: "upcoming", assignment: windowed(tp(base.Add(time.Hour)), nil, nil, 1), want: DisplayUpcoming},
		{name: "expired", assignment: windowed(nil, tp(base.Add(-time.Hour)), nil, 1), want: DisplayExpired},
		{name: "available", assignment: windowed(nil, nil, tp(base.Add(time.Hour)), 1), want: DisplayAvailable},
		{name: "missing past due", assignment: windowed(nil, nil, tp(base.Add(-time.Hour)), 1), want: DisplayMissing},
		{
			name:       "submitted wins over expired window",
			assignment: windowed(nil, tp(base.Add(-time.Hour)), nil, 1),
			prior:      []Submission{sub(1, StatusSubmitted, 3, tp(base.Add(-2 * time.Hour)))},
			want:       DisplaySubmitted,
		},
		{
			name:       "graded attempt",
			assignment: windowed(nil, nil, nil, 1),
			prior:      []Submission{sub(1, StatusGraded, 3, tp(base))},
			want:       DisplayGraded,
		},
		{
			name:       "draft only does not count as submitted",
			assignment: windowed(nil, nil, tp(base.Add(-time.Hour)), 1),
			prior:      []Submission{sub(1, StatusDraft, 0, nil)},
			want:       DisplayMissing,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusFor(tc.assignment, tc.prior, base); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestBestAttempt(t *testing.T) {
	early, late := tp(base.Add(-time.Hour)), tp(base)

	graded := sub(1, StatusGraded, 5, early)
	submittedHigh := sub(2, StatusSubmitted, 9, late)
	if best, ok := BestAttempt([]Submission{submittedHigh, graded}); !ok || best.AttemptNumber != 1 {
		t.Fatalf("graded must beat submitted regardless of score, got #%d", best.AttemptNumber)
	}

	low := sub(1, StatusGraded, 5, early)
	high := sub(2, StatusGraded, 8, early)
	if best, _ := BestAttempt([]Submission{low, high}); best.AttemptNumber != 2 {
		t.Fatalf("higher score must win, got #%d", best.AttemptNumber)
	}

	older := sub(1, StatusGraded, 5, early)
	newer := sub(2, StatusGraded, 5, late)
	if best, _ := BestAttempt([]Submission{older, newer}); best.AttemptNumber != 2 {
		t.Fatalf("tie on status and score falls to recency, got #%d", best.AttemptNumber)
	}

	if _, ok := BestAttempt([]Submission{sub(1, StatusDraft, 0, nil)}); ok {
		t.Fatalf("a lone draft must not be canonical")
	}
}

func TestNextAttemptNumber(t *testing.T) {
	if n := NextAttemptNumber(nil); n != 1 {
		t.Fatalf("first attempt = %d, want 1", n)
	}
	prior := []Submission{sub(1, StatusGraded, 0, tp(base)), sub(2, StatusSubmitted, 0, tp(base))}
	if n := NextAttemptNumber(prior); n != 3 {
		t.Fatalf("next attempt = %d, want 3", n)
	}
}
