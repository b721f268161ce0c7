package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Teboho02/BA-Exams-Backend/internal/assessment"
	authmw "github.com/Teboho02/BA-Exams-Backend/internal/auth/middleware"
)

type applyGradesReq struct {
	// Awards maps question id to the points the grader gives it. Re-posting
	// an award overwrites the previous one.
	Awards map[string]float64 `json:"awards"`
}

// GET /attempts/{submissionID}/grading
// The unredacted grading view: answers, per-question breakdown and keys.
func GetAttemptGradingHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "submissionID"))
		if id == "" {
			http.Error(w, "submissionID required", http.StatusBadRequest)
			return
		}
		view, err := svc.ViewSubmission(r.Context(), id, authmw.SubjectFromContext(r.Context()), true)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, view)
	}
}

// POST /attempts/{submissionID}/grading
func ApplyAttemptGradingHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "submissionID"))
		var req applyGradesReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Awards) == 0 {
			http.Error(w, "awards required", http.StatusBadRequest)
			return
		}
		sub, err := svc.ApplyManualGrades(r.Context(), id, req.Awards, authmw.SubjectFromContext(r.Context()))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, sub)
	}
}

// POST /attempts/{submissionID}/regrade
// Re-runs auto-grading over the stored answers, typically after a question
// edit. Manual awards survive, capped at the question's current points.
func RegradeAttemptHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "submissionID"))
		sub, err := svc.Regrade(r.Context(), id, authmw.SubjectFromContext(r.Context()))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, sub)
	}
}
