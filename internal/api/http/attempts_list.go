package http

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/assessment"
)

// GET /attempts?subject=...&state=...&include_practice=true&limit=50&offset=0
// Always scoped to the caller.
func ListOwnAttemptsHandler(life *assessment.Lifecycle, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := attemptOpts(r, true)
		opts.StudentID = actorFrom(r).ID
		list, err := life.ListAttempts(r.Context(), opts)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(list))
	}
}

// GET /reports/attempts?subject=...&student_id=...&include_practice=false
func ReportAttemptsHandler(life *assessment.Lifecycle, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := attemptOpts(r, false)
		if v := strings.TrimSpace(r.URL.Query().Get("student_id")); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				http.Error(w, "bad student_id", http.StatusBadRequest)
				return
			}
			opts.StudentID = id
		}
		list, err := life.ListAttempts(r.Context(), opts)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(list))
	}
}

// GET /reports/summary?subject=...
func ReportSummaryHandler(life *assessment.Lifecycle, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := life.Summarize(r.Context(), r.URL.Query().Get("subject"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func attemptOpts(r *http.Request, practiceDefault bool) assessment.AttemptListOpts {
	q := r.URL.Query()
	return assessment.AttemptListOpts{
		Subject:         strings.TrimSpace(q.Get("subject")),
		State:           assessment.AttemptState(strings.TrimSpace(q.Get("state"))),
		IncludePractice: parseBoolDefault(q.Get("include_practice"), practiceDefault),
		Limit:           parseIntDefault(q.Get("limit"), 50),
		Offset:          parseIntDefault(q.Get("offset"), 0),
	}
}
