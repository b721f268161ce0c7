package assessment

import (
	"context"
	"sort"
	"sync"
)

// memoryStore backs tests and single-process demos. It enforces the same
// attempt-number uniqueness as the SQL schema.
type memoryStore struct {
	mu          sync.RWMutex
	assignments map[string]Assignment
	submissions map[string]Submission
}

func NewInMemoryStore() Store {
	return &memoryStore{
		assignments: map[string]Assignment{},
		submissions: map[string]Submission{},
	}
}

func (m *memoryStore) PutAssignment(_ context.Context, a Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.ID] = a
	return nil
}

func (m *memoryStore) GetAssignment(_ context.Context, id string) (Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return Assignment{}, ErrAssignmentNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAssignments(_ context.Context, opts AssignmentListOpts) ([]Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Assignment
	for _, a := range m.assignments {
		if opts.CourseID != "" && a.CourseID != opts.CourseID {
			continue
		}
		if opts.PublishedOnly && !a.IsPublished {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) CreateSubmission(_ context.Context, s Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.submissions {
		if existing.AssignmentID == s.AssignmentID &&
			existing.StudentID == s.StudentID &&
			existing.AttemptNumber == s.AttemptNumber {
			return ErrDuplicateAttempt
		}
	}
	m.submissions[s.ID] = s
	return nil
}

func (m *memoryStore) UpdateSubmission(_ context.Context, s Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.submissions[s.ID]; !ok {
		return ErrSubmissionNotFound
	}
	m.submissions[s.ID] = s
	return nil
}

func (m *memoryStore) GetSubmission(_ context.Context, id string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.submissions[id]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return s, nil
}

func (m *memoryStore) ListSubmissions(_ context.Context, opts SubmissionListOpts) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Submission
	for _, s := range m.submissions {
		if opts.AssignmentID != "" && s.AssignmentID != opts.AssignmentID {
			continue
		}
		if opts.StudentID != "" && s.StudentID != opts.StudentID {
			continue
		}
		if opts.Status != "" && s.Status != opts.Status {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}
