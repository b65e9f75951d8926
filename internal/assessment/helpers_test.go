package assessment

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

var (
	teacher = Actor{ID: 1, Role: RoleTeacher}
	student = Actor{ID: 2, Role: RoleStudent}
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func openTestEngine(t *testing.T, opts ...Option) (*Engine, *sql.DB) {
	t.Helper()
	h := openTestDB(t)
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	base := []Option{
		WithClock(func() time.Time { return clock }),
		WithAttemptScorer(grading.RandomScorer{Min: 50, Max: 95}),
	}
	return NewEngine(NewSQLStore(h, nil), append(base, opts...)...), h
}

func mustCreate(t *testing.T, e *Engine, in NewQuestion) Question {
	t.Helper()
	if in.Text == "" {
		in.Text = "What is the SI unit of force?"
	}
	if in.Subject == "" {
		in.Subject = "Physics"
	}
	if in.Grade == "" {
		in.Grade = "10th"
	}
	if in.Difficulty == "" {
		in.Difficulty = Intermediate
	}
	q, err := e.Bank.CreateQuestion(context.Background(), teacher, in)
	require.NoError(t, err)
	return q
}

func countRows(t *testing.T, h *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, h.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func answers(n int) map[string]string {
	out := map[string]string{"csrf_token": "x"}
	for i := 0; i < n; i++ {
		out["answer_"+string(rune('a'+i))] = "Paris"
	}
	return out
}

func ptr[T any](v T) *T { return &v }
