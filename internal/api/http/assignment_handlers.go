package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Teboho02/BA-Exams-Backend/internal/assessment"
	"github.com/Teboho02/BA-Exams-Backend/internal/grading"
	"github.com/Teboho02/BA-Exams-Backend/internal/rbac"
)

type createAssignmentReq struct {
	CourseID string `json:"course_id" validate:"required"`
	Title    string `json:"title" validate:"required"`

	MaxPoints       float64    `json:"max_points" validate:"gte=0"`
	DueAt           *time.Time `json:"due_at,omitempty"`
	AvailableFrom   *time.Time `json:"available_from,omitempty"`
	AvailableUntil  *time.Time `json:"available_until,omitempty"`
	AllowedAttempts int        `json:"allowed_attempts" validate:"gte=-1"`

	ShowCorrectAnswers bool `json:"show_correct_answers"`
	LegacyImported     bool `json:"legacy_imported"`

	Questions []grading.Question `json:"questions,omitempty"`
}

// POST /assignments
func CreateAssignmentHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAssignmentReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a, err := svc.CreateAssignment(r.Context(), assessment.Assignment{
			CourseID:           req.CourseID,
			Title:              req.Title,
			MaxPoints:          req.MaxPoints,
			DueAt:              req.DueAt,
			AvailableFrom:      req.AvailableFrom,
			AvailableUntil:     req.AvailableUntil,
			AllowedAttempts:    req.AllowedAttempts,
			ShowCorrectAnswers: req.ShowCorrectAnswers,
			LegacyImported:     req.LegacyImported,
			Questions:          req.Questions,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, a)
	}
}

// PUT /assignments/{assignmentID}/questions
// Replaces the entire question set; partial patches are rejected by design of
// the service, since a type change invalidates stored breakdowns.
func ReplaceQuestionsHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "assignmentID"))
		if id == "" {
			http.Error(w, "assignmentID required", http.StatusBadRequest)
			return
		}
		var qs []grading.Question
		if err := json.NewDecoder(r.Body).Decode(&qs); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		a, err := svc.ReplaceQuestions(r.Context(), id, qs)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, a)
	}
}

// POST /assignments/{assignmentID}/publish  { "published": true }
func PublishAssignmentHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "assignmentID"))
		var req struct {
			Published bool `json:"published"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		a, err := svc.SetPublished(r.Context(), id, req.Published)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, a)
	}
}

// GET /assignments/{assignmentID}
// Staff receive the full assignment. Students only see published assignments,
// with answer keys stripped from the questions.
func GetAssignmentHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "assignmentID"))
		a, err := store.GetAssignment(r.Context(), id)
		if err != nil {
			httpError(w, err)
			return
		}
		if !rbac.IsStaff(rbac.RoleFromContext(r.Context())) {
			if !a.IsPublished {
				httpError(w, assessment.ErrAssignmentNotFound)
				return
			}
			a.Questions = grading.StripKeys(a.Questions)
		}
		writeJSON(w, a)
	}
}

// GET /assignments?course_id=...&limit=50&offset=0
func ListAssignmentsHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff := rbac.IsStaff(rbac.RoleFromContext(r.Context()))
		list, err := store.ListAssignments(r.Context(), assessment.AssignmentListOpts{
			CourseID:      strings.TrimSpace(r.URL.Query().Get("course_id")),
			PublishedOnly: !staff,
			Limit:         parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:        parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			httpError(w, err)
			return
		}
		if !staff {
			for i := range list {
				list[i].Questions = grading.StripKeys(list[i].Questions)
			}
		}
		writeJSON(w, list)
	}
}

// GET /assignments/{assignmentID}/status
// Answers "what does this assignment look like for me right now": display
// status plus whether a new attempt may start and why not.
func AssignmentStatusHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "assignmentID"))
		studentID := subjectOrParam(r)
		d, err := svc.AssignmentStatus(r.Context(), id, studentID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, d)
	}
}

// GET /assignments/{assignmentID}/best?student_id=...
// The canonical gradebook attempt. Students are always scoped to themselves.
func BestSubmissionHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "assignmentID"))
		studentID := subjectOrParam(r)
		best, ok, err := svc.BestSubmission(r.Context(), id, studentID)
		if err != nil {
			httpError(w, err)
			return
		}
		if !ok {
			httpError(w, assessment.ErrSubmissionNotFound)
			return
		}
		writeJSON(w, best)
	}
}
