package http

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

// GET /reports/events?after=0&limit=100
// Pages through the append-only event log, oldest first.
func ListEventsHandler(db *sql.DB, events *syncx.EventRepo, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after := int64(parseIntDefault(r.URL.Query().Get("after"), 0))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		if limit > 1000 {
			limit = 1000
		}
		list, err := events.Since(r.Context(), db, after, limit)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(list))
	}
}
