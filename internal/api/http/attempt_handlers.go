package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Teboho02/BA-Exams-Backend/internal/assessment"
	authmw "github.com/Teboho02/BA-Exams-Backend/internal/auth/middleware"
	"github.com/Teboho02/BA-Exams-Backend/internal/rbac"
)

// POST /attempts  { "assignment_id": "..." }
// Opens a draft, or resumes the student's existing one.
func StartAttemptHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AssignmentID string `json:"assignment_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.AssignmentID) == "" {
			http.Error(w, "assignment_id required", http.StatusBadRequest)
			return
		}
		sub, err := svc.StartAttempt(r.Context(), req.AssignmentID, authmw.SubjectFromContext(r.Context()))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, sub)
	}
}

// POST /attempts/{submissionID}/answers  { "answers": { questionID: payload } }
// Merges the payloads into the open draft; unmentioned questions keep their
// previously saved answers.
func SaveAnswersHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "submissionID"))
		var req struct {
			Answers map[string]json.RawMessage `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		sub, err := svc.SaveAnswers(r.Context(), id, authmw.SubjectFromContext(r.Context()), req.Answers)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, sub)
	}
}

// POST /attempts/{submissionID}/submit
func SubmitAttemptHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "submissionID"))
		sub, err := svc.SubmitAttempt(r.Context(), id, authmw.SubjectFromContext(r.Context()))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, sub)
	}
}

// GET /attempts/{submissionID}
// Staff see everything; owners see their own work with correct-answer text
// included only when the assignment reveals it.
func GetAttemptHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "submissionID"))
		viewer := authmw.SubjectFromContext(r.Context())
		staff := rbac.IsStaff(rbac.RoleFromContext(r.Context()))
		view, err := svc.ViewSubmission(r.Context(), id, viewer, staff)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, view)
	}
}

// GET /attempts?assignment_id=...&student_id=...&status=...&limit=50&offset=0
// Callers without attempt:view-all are forced onto their own student_id.
func ListAttemptsHandler(store assessment.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
		if !rbac.IsStaff(rbac.RoleFromContext(r.Context())) {
			studentID = authmw.SubjectFromContext(r.Context())
		}
		list, err := store.ListSubmissions(r.Context(), assessment.SubmissionListOpts{
			AssignmentID: strings.TrimSpace(r.URL.Query().Get("assignment_id")),
			StudentID:    studentID,
			Status:       assessment.SubmissionStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
			Limit:        parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:       parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, list)
	}
}
