package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Teboho02/BA-Exams-Backend/internal/assessment"
	authmw "github.com/Teboho02/BA-Exams-Backend/internal/auth/middleware"
	"github.com/Teboho02/BA-Exams-Backend/internal/grading"
	"github.com/Teboho02/BA-Exams-Backend/internal/rbac"
	"github.com/Teboho02/BA-Exams-Backend/internal/storage"
)

// POST /attempts/{submissionID}/files/{questionID}  (multipart, field "file")
// Stores the blob and records its key as the question's answer. One file per
// question; re-uploading overwrites.
func UploadAnswerFileHandler(svc *assessment.Service, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID := strings.TrimSpace(chi.URLParam(r, "submissionID"))
		questionID := strings.TrimSpace(chi.URLParam(r, "questionID"))

		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		key := storage.AnswerKey(submissionID, questionID, hdr.Filename)
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		payload, _ := json.Marshal(grading.Answer{FileKey: key})
		sub, err := svc.SaveAnswers(r.Context(), submissionID, authmw.SubjectFromContext(r.Context()),
			map[string]json.RawMessage{questionID: payload})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]interface{}{"key": key, "submission": sub})
	}
}

// GET /attempts/{submissionID}/files/{questionID}
// Streams the uploaded answer back to its owner or to staff.
func GetAnswerFileHandler(svc *assessment.Service, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID := strings.TrimSpace(chi.URLParam(r, "submissionID"))
		questionID := strings.TrimSpace(chi.URLParam(r, "questionID"))

		viewer := authmw.SubjectFromContext(r.Context())
		staff := rbac.IsStaff(rbac.RoleFromContext(r.Context()))
		view, err := svc.ViewSubmission(r.Context(), submissionID, viewer, staff)
		if err != nil {
			httpError(w, err)
			return
		}
		ans, err := grading.DecodeAnswer(view.Data.Answers[questionID])
		if err != nil || ans.FileKey == "" {
			http.Error(w, "no file for question", http.StatusNotFound)
			return
		}
		rc, err := bs.Get(ans.FileKey)
		if err != nil {
			http.Error(w, "not found: "+err.Error(), http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	}
}
