package http

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/assessment"
	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
)

// Presentation time limits, in seconds. The engine does not enforce them.
const (
	DiagnosticTimeLimitSec = 300
	QuizTimeLimitSec       = 3600
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps engine and storage errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, assessment.ErrValidation),
		errors.Is(err, storage.ErrUnsupportedMedia):
		return http.StatusBadRequest
	case errors.Is(err, assessment.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, assessment.ErrGateNotSatisfied),
		errors.Is(err, assessment.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, assessment.ErrNoQuestionsAvailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, assessment.ErrNotFound),
		errors.Is(err, storage.ErrInvalidKey),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		msg = "internal error"
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func actorFrom(r *http.Request) assessment.Actor {
	return assessment.Actor{
		ID:   auth.AccountIDFromContext(r.Context()),
		Role: assessment.Role(rbac.RoleFromContext(r.Context())),
	}
}

func parseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseBoolDefault(s string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return b
}
