package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/assessment"
)

// GET /dashboard
func DashboardHandler(eng *assessment.Engine, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := actorFrom(r).ID
		resp := map[string]any{"diagnostic_completed": false}

		d, err := eng.Gate.Recommendation(r.Context(), sid)
		switch {
		case err == nil:
			resp["diagnostic_completed"] = true
			resp["recommended_level"] = d.RecommendedLevel
		case errors.Is(err, assessment.ErrGateNotSatisfied):
		default:
			writeError(w, log, err)
			return
		}

		recent, err := eng.Lifecycle.ListAttempts(r.Context(), assessment.AttemptListOpts{
			StudentID:       sid,
			IncludePractice: true,
			Limit:           10,
		})
		if err != nil {
			writeError(w, log, err)
			return
		}
		resp["recent_attempts"] = nonNil(recent)
		writeJSON(w, http.StatusOK, resp)
	}
}

// GET /diagnostic
func GetDiagnosticHandler(eng *assessment.Engine, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		done, err := eng.Gate.HasCompleted(r.Context(), actorFrom(r).ID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		if done {
			writeJSON(w, http.StatusOK, map[string]any{"completed": true, "questions": []assessment.Question{}})
			return
		}
		qs, err := eng.Bank.FindDiagnosticSet(r.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"completed":      false,
			"questions":      nonNil(qs),
			"time_limit_sec": DiagnosticTimeLimitSec,
		})
	}
}

// POST /diagnostic  { "answers": { "answer_1": "...", ... } }
func SubmitDiagnosticHandler(eng *assessment.Engine, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		d, err := eng.Gate.Submit(r.Context(), actorFrom(r).ID, req.Answers)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, d)
	}
}

// POST /quizzes  { "subject": "...", "grade": "...", "cap": 10 }
func StartQuizHandler(eng *assessment.Engine, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Subject string `json:"subject"`
			Grade   string `json:"grade"`
			Cap     int    `json:"cap"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		a, qs, err := eng.Lifecycle.Start(r.Context(), actorFrom(r).ID, req.Subject, req.Grade, req.Cap)
		if err != nil {
			writeError(w, log, err)
			return
		}
		passages, err := passagesFor(r, eng.Bank, qs)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"attempt":        a,
			"questions":      qs,
			"passages":       passages,
			"time_limit_sec": QuizTimeLimitSec,
		})
	}
}

// passagesFor loads the parent passages referenced by qs, in first-use order.
func passagesFor(r *http.Request, bank *assessment.Bank, qs []assessment.Question) ([]assessment.Question, error) {
	seen := map[int64]bool{}
	out := []assessment.Question{}
	for _, q := range qs {
		if q.PassageID == nil || seen[*q.PassageID] {
			continue
		}
		seen[*q.PassageID] = true
		p, err := bank.Get(r.Context(), *q.PassageID)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// POST /quizzes/{attemptID}/submit  { "practice_mode": false, "answers": {...} }
func SubmitQuizHandler(eng *assessment.Engine, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "attemptID"), 10, 64)
		if err != nil {
			http.Error(w, "bad attempt id", http.StatusBadRequest)
			return
		}
		var req struct {
			PracticeMode bool              `json:"practice_mode"`
			Answers      map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		a, err := eng.Lifecycle.Submit(r.Context(), actorFrom(r).ID, id, req.PracticeMode, req.Answers)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}
