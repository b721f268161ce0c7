package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Teboho02/BA-Exams-Backend/internal/assessment"
	authmw "github.com/Teboho02/BA-Exams-Backend/internal/auth/middleware"
	"github.com/Teboho02/BA-Exams-Backend/internal/rbac"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// httpError maps the domain sentinels onto status codes while keeping the
// specific reason text for the caller.
func httpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, assessment.ErrAssignmentNotFound),
		errors.Is(err, assessment.ErrSubmissionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, assessment.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, assessment.ErrNotPublished),
		errors.Is(err, assessment.ErrWindowNotOpen),
		errors.Is(err, assessment.ErrWindowClosed):
		status = http.StatusForbidden
	case errors.Is(err, assessment.ErrAttemptLimit),
		errors.Is(err, assessment.ErrDuplicateAttempt),
		errors.Is(err, assessment.ErrAlreadySubmitted),
		errors.Is(err, assessment.ErrNotSubmitted):
		status = http.StatusConflict
	case errors.Is(err, assessment.ErrPointsOutOfRange),
		errors.Is(err, assessment.ErrQuestionNotFound):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
}

// subjectOrParam resolves which student a request is about. Staff may name any
// student via ?student_id=; everyone else is scoped to their own subject.
func subjectOrParam(r *http.Request) string {
	if rbac.IsStaff(rbac.RoleFromContext(r.Context())) {
		if sid := strings.TrimSpace(r.URL.Query().Get("student_id")); sid != "" {
			return sid
		}
	}
	return authmw.SubjectFromContext(r.Context())
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
