package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Teboho02/BA-Exams-Backend/internal/grading"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutAssignment(ctx context.Context, a Assignment) error {
	qj, err := json.Marshal(a.Questions)
	if err != nil {
		return fmt.Errorf("assessment: marshal questions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO assignments
		(id, course_id, title, max_points, due_at, available_from, available_until,
		 allowed_attempts, is_published, show_correct_answers, legacy_imported,
		 questions_json, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
		  course_id=EXCLUDED.course_id, title=EXCLUDED.title,
		  max_points=EXCLUDED.max_points, due_at=EXCLUDED.due_at,
		  available_from=EXCLUDED.available_from, available_until=EXCLUDED.available_until,
		  allowed_attempts=EXCLUDED.allowed_attempts, is_published=EXCLUDED.is_published,
		  show_correct_answers=EXCLUDED.show_correct_answers,
		  legacy_imported=EXCLUDED.legacy_imported,
		  questions_json=EXCLUDED.questions_json`,
		a.ID, a.CourseID, a.Title, a.MaxPoints,
		unixOrNil(a.DueAt), unixOrNil(a.AvailableFrom), unixOrNil(a.AvailableUntil),
		a.AllowedAttempts, a.IsPublished, a.ShowCorrectAnswers, a.LegacyImported,
		string(qj), a.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("assessment: put assignment: %w", err)
	}
	return nil
}

func (s *SQLStore) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, course_id, title, max_points,
		due_at, available_from, available_until, allowed_attempts, is_published,
		show_correct_answers, legacy_imported, questions_json, created_at
		FROM assignments WHERE id=$1`, id)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assignment{}, ErrAssignmentNotFound
		}
		return Assignment{}, fmt.Errorf("assessment: get assignment: %w", err)
	}
	return a, nil
}

func (s *SQLStore) ListAssignments(ctx context.Context, opts AssignmentListOpts) ([]Assignment, error) {
	q := `SELECT id, course_id, title, max_points, due_at, available_from,
		available_until, allowed_attempts, is_published, show_correct_answers,
		legacy_imported, questions_json, created_at FROM assignments`
	var conds []string
	var args []interface{}
	if opts.CourseID != "" {
		args = append(args, opts.CourseID)
		conds = append(conds, fmt.Sprintf("course_id=$%d", len(args)))
	}
	if opts.PublishedOnly {
		conds = append(conds, "is_published")
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, opts.Offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("assessment: list assignments: %w", err)
	}
	defer rows.Close()
	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("assessment: list assignments: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateSubmission(ctx context.Context, sub Submission) error {
	blob, err := json.Marshal(sub.Data)
	if err != nil {
		return fmt.Errorf("assessment: marshal quiz data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions
		(id, assignment_id, student_id, attempt_number, status, score, quiz_data,
		 started_at, completed_at, submitted_at, graded_at, graded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		sub.ID, sub.AssignmentID, sub.StudentID, sub.AttemptNumber, string(sub.Status),
		sub.Score, string(blob), sub.StartedAt.Unix(),
		unixOrNil(sub.CompletedAt), unixOrNil(sub.SubmittedAt), unixOrNil(sub.GradedAt),
		nullIfEmpty(sub.GradedBy))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAttempt
		}
		return fmt.Errorf("assessment: create submission: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdateSubmission(ctx context.Context, sub Submission) error {
	blob, err := json.Marshal(sub.Data)
	if err != nil {
		return fmt.Errorf("assessment: marshal quiz data: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET
		status=$1, score=$2, quiz_data=$3, completed_at=$4, submitted_at=$5,
		graded_at=$6, graded_by=$7
		WHERE id=$8`,
		string(sub.Status), sub.Score, string(blob),
		unixOrNil(sub.CompletedAt), unixOrNil(sub.SubmittedAt), unixOrNil(sub.GradedAt),
		nullIfEmpty(sub.GradedBy), sub.ID)
	if err != nil {
		return fmt.Errorf("assessment: update submission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (s *SQLStore) GetSubmission(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, assignment_id, student_id,
		attempt_number, status, score, quiz_data, started_at, completed_at,
		submitted_at, graded_at, graded_by
		FROM submissions WHERE id=$1`, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, fmt.Errorf("assessment: get submission: %w", err)
	}
	return sub, nil
}

func (s *SQLStore) ListSubmissions(ctx context.Context, opts SubmissionListOpts) ([]Submission, error) {
	q := `SELECT id, assignment_id, student_id, attempt_number, status, score,
		quiz_data, started_at, completed_at, submitted_at, graded_at, graded_by
		FROM submissions`
	var conds []string
	var args []interface{}
	if opts.AssignmentID != "" {
		args = append(args, opts.AssignmentID)
		conds = append(conds, fmt.Sprintf("assignment_id=$%d", len(args)))
	}
	if opts.StudentID != "" {
		args = append(args, opts.StudentID)
		conds = append(conds, fmt.Sprintf("student_id=$%d", len(args)))
	}
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		conds = append(conds, fmt.Sprintf("status=$%d", len(args)))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY started_at DESC"
	limit := opts.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, opts.Offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("assessment: list submissions: %w", err)
	}
	defer rows.Close()
	var out []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("assessment: list submissions: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssignment(row rowScanner) (Assignment, error) {
	var a Assignment
	var due, from, until sql.NullInt64
	var created int64
	var qjson string
	if err := row.Scan(&a.ID, &a.CourseID, &a.Title, &a.MaxPoints,
		&due, &from, &until, &a.AllowedAttempts, &a.IsPublished,
		&a.ShowCorrectAnswers, &a.LegacyImported, &qjson, &created); err != nil {
		return Assignment{}, err
	}
	a.DueAt = timeOrNil(due)
	a.AvailableFrom = timeOrNil(from)
	a.AvailableUntil = timeOrNil(until)
	a.CreatedAt = time.Unix(created, 0).UTC()
	if err := json.Unmarshal([]byte(qjson), &a.Questions); err != nil {
		return Assignment{}, fmt.Errorf("questions blob: %w", err)
	}
	return a, nil
}

func scanSubmission(row rowScanner) (Submission, error) {
	var sub Submission
	var status, blob string
	var started int64
	var completed, submitted, graded sql.NullInt64
	var gradedBy sql.NullString
	if err := row.Scan(&sub.ID, &sub.AssignmentID, &sub.StudentID,
		&sub.AttemptNumber, &status, &sub.Score, &blob, &started,
		&completed, &submitted, &graded, &gradedBy); err != nil {
		return Submission{}, err
	}
	sub.Status = SubmissionStatus(status)
	sub.StartedAt = time.Unix(started, 0).UTC()
	sub.CompletedAt = timeOrNil(completed)
	sub.SubmittedAt = timeOrNil(submitted)
	sub.GradedAt = timeOrNil(graded)
	sub.GradedBy = gradedBy.String
	// A corrupt blob must not make the row unreadable; the engine treats the
	// answers as missing and the next regrade rewrites the blob.
	if err := json.Unmarshal([]byte(blob), &sub.Data); err != nil {
		sub.Data = QuizData{}
	}
	if sub.Data.Answers == nil {
		sub.Data.Answers = map[string]json.RawMessage{}
	}
	if sub.Data.DetailedResults == nil {
		sub.Data.DetailedResults = map[string]grading.QuestionResult{}
	}
	return sub, nil
}

func unixOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation recognizes a violated uniqueness constraint on either
// supported driver: SQLSTATE 23505 from postgres, constraint text from the
// sqlite driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed")
}
