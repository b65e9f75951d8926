package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-quiz/internal/accounts"
	"github.com/mind-engage/mindengage-quiz/internal/assessment"
	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })

	users := accounts.NewStore(dbh)
	_, err = users.Create(ctx, "teacher1", "password", accounts.RoleTeacher)
	require.NoError(t, err)
	_, err = users.Create(ctx, "student1", "password", accounts.RoleStudent)
	require.NoError(t, err)

	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	eng := assessment.NewEngine(assessment.NewSQLStore(dbh, nil),
		assessment.WithAttemptScorer(grading.AttemptScorerFunc(func(context.Context, grading.Submission) (float64, error) {
			return 80, nil
		})))

	srv := httptest.NewServer(NewRouter(Deps{
		DB:     dbh,
		Engine: eng,
		Users:  users,
		Auth:   auth.NewAuthService("test-secret", time.Hour),
		Blobs:  blobs,
	}))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": "password"})
	require.Equal(s.t, http.StatusOK, code, string(body))
	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(body, &out))
	return out.AccessToken
}

func (s *testServer) do(method, path, token string, body any) (int, []byte) {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, rd)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	return s.send(req, token)
}

func (s *testServer) send(req *http.Request, token string) (int, []byte) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, b
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "student1", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRoleBoundaries(t *testing.T) {
	s := newTestServer(t)
	tt, st := s.login("teacher1"), s.login("student1")

	code, _ := s.do(http.MethodPost, "/questions", st, map[string]any{"text": "x", "difficulty": "easy", "subject": "Math", "grade": "9th"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodGet, "/reports/summary", st, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodPost, "/quizzes", tt, map[string]any{"subject": "Math", "grade": "9th"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodPost, "/diagnostic", tt, map[string]any{"answers": map[string]string{}})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestQuestionValidationMapsTo400(t *testing.T) {
	s := newTestServer(t)
	tt := s.login("teacher1")

	code, body := s.do(http.MethodPost, "/questions", tt, map[string]any{"text": "x", "difficulty": "extreme", "subject": "Math", "grade": "9th"})
	assert.Equal(t, http.StatusBadRequest, code, string(body))

	code, body = s.do(http.MethodPost, "/questions", tt, map[string]any{"text": "x", "difficulty": "easy", "subject": "Math", "grade": "9th", "passage_id": 999})
	assert.Equal(t, http.StatusBadRequest, code, string(body))
}

func TestMultipartQuestionWithMedia(t *testing.T) {
	s := newTestServer(t)
	tt, st := s.login("teacher1"), s.login("student1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"text": "Label the diagram", "difficulty": "easy", "subject": "Biology", "grade": "8th"} {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("media_file", "cell diagram.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.URL+"/questions", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, body := s.send(req, tt)
	require.Equal(t, http.StatusCreated, code, string(body))
	q := decode[assessment.Question](t, body)
	require.NotEmpty(t, q.MediaRef)
	assert.Contains(t, q.MediaRef, "cell_diagram.png")

	code, body = s.do(http.MethodGet, "/media/"+q.MediaRef, st, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "png-bytes", string(body))

	code, _ = s.do(http.MethodGet, "/media/uploads/missing.png", st, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// unsupported extension
	buf.Reset()
	mw = multipart.NewWriter(&buf)
	for k, v := range map[string]string{"text": "x", "difficulty": "easy", "subject": "Biology", "grade": "8th"} {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err = mw.CreateFormFile("media_file", "run.exe")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("MZ"))
	require.NoError(t, mw.Close())
	req, err = http.NewRequest(http.MethodPost, s.URL+"/questions", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, _ = s.send(req, tt)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStudentJourney(t *testing.T) {
	s := newTestServer(t)
	tt, st := s.login("teacher1"), s.login("student1")

	code, body := s.do(http.MethodPost, "/questions", tt, map[string]any{
		"text": "Read the passage about projectile motion.", "difficulty": "easy",
		"subject": "Physics", "grade": "10th", "is_passage": true,
	})
	require.Equal(t, http.StatusCreated, code, string(body))
	passage := decode[assessment.Question](t, body)

	for i := 0; i < 4; i++ {
		in := map[string]any{"text": fmt.Sprintf("Hard %d", i), "difficulty": "hard", "subject": "Physics", "grade": "10th"}
		if i == 0 {
			in["passage_id"] = passage.ID
		}
		code, body = s.do(http.MethodPost, "/questions", tt, in)
		require.Equal(t, http.StatusCreated, code, string(body))
	}
	code, body = s.do(http.MethodPost, "/questions", tt, map[string]any{"text": "Mid", "difficulty": "intermediate", "subject": "Physics", "grade": "10th"})
	require.Equal(t, http.StatusCreated, code, string(body))

	code, body = s.do(http.MethodGet, "/questions/passages", tt, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]assessment.Question](t, body), 1)

	// gate closed
	code, _ = s.do(http.MethodPost, "/quizzes", st, map[string]any{"subject": "Physics", "grade": "10th"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(http.MethodGet, "/diagnostic", st, nil)
	require.Equal(t, http.StatusOK, code)
	diag := decode[map[string]any](t, body)
	assert.Equal(t, false, diag["completed"])
	assert.EqualValues(t, DiagnosticTimeLimitSec, diag["time_limit_sec"])

	answers := map[string]string{"answer_1": "a", "answer_2": "b", "answer_3": "c", "answer_4": "d", "csrf_token": "x"}
	code, body = s.do(http.MethodPost, "/diagnostic", st, map[string]any{"answers": answers})
	require.Equal(t, http.StatusCreated, code, string(body))
	assert.Equal(t, assessment.Hard, decode[assessment.DiagnosticAttempt](t, body).RecommendedLevel)

	code, _ = s.do(http.MethodPost, "/diagnostic", st, map[string]any{"answers": answers})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/quizzes", st, map[string]any{"subject": "Chemistry", "grade": "10th"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body = s.do(http.MethodPost, "/quizzes", st, map[string]any{"subject": "Physics", "grade": "10th"})
	require.Equal(t, http.StatusCreated, code, string(body))
	started := decode[struct {
		Attempt      assessment.QuizAttempt `json:"attempt"`
		Questions    []assessment.Question  `json:"questions"`
		Passages     []assessment.Question  `json:"passages"`
		TimeLimitSec int                    `json:"time_limit_sec"`
	}](t, body)
	assert.Len(t, started.Questions, 5)
	require.Len(t, started.Passages, 1)
	assert.Equal(t, passage.ID, started.Passages[0].ID)
	assert.Equal(t, QuizTimeLimitSec, started.TimeLimitSec)

	submitPath := fmt.Sprintf("/quizzes/%d/submit", started.Attempt.ID)
	code, body = s.do(http.MethodPost, submitPath, st, map[string]any{"answers": map[string]string{"q1": "a"}})
	require.Equal(t, http.StatusOK, code, string(body))
	done := decode[assessment.QuizAttempt](t, body)
	assert.Equal(t, 80.0, done.Score)
	assert.NotNil(t, done.EndTime)

	code, _ = s.do(http.MethodPost, submitPath, st, map[string]any{"answers": map[string]string{}})
	assert.Equal(t, http.StatusConflict, code)
	code, _ = s.do(http.MethodPost, "/quizzes/9999/submit", st, map[string]any{})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(http.MethodGet, "/dashboard", st, nil)
	require.Equal(t, http.StatusOK, code)
	dash := decode[map[string]any](t, body)
	assert.Equal(t, true, dash["diagnostic_completed"])
	assert.Equal(t, "hard", dash["recommended_level"])
	assert.Len(t, dash["recent_attempts"], 1)

	code, body = s.do(http.MethodGet, "/reports/summary?subject=Physics", tt, nil)
	require.Equal(t, http.StatusOK, code)
	sum := decode[assessment.Summary](t, body)
	assert.Equal(t, 1, sum.Attempts)
	assert.Equal(t, 80.0, sum.Average)

	code, body = s.do(http.MethodGet, "/reports/events?limit=1000", tt, nil)
	require.Equal(t, http.StatusOK, code)
	var types []string
	for _, e := range decode[[]syncx.Event](t, body) {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, syncx.TypeQuestionCreated)
	assert.Contains(t, types, syncx.TypeDiagnosticCompleted)
	assert.Contains(t, types, syncx.TypeQuizStarted)
	assert.Contains(t, types, syncx.TypeQuizSubmitted)
	code, _ = s.do(http.MethodGet, "/reports/events", st, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestPracticeSubmissionExcludedFromReports(t *testing.T) {
	s := newTestServer(t)
	tt, st := s.login("teacher1"), s.login("student1")

	code, _ := s.do(http.MethodPost, "/questions", tt, map[string]any{"text": "Q", "difficulty": "easy", "subject": "Math", "grade": "9th"})
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, "/diagnostic", st, map[string]any{"answers": map[string]string{}})
	require.Equal(t, http.StatusCreated, code)

	code, body := s.do(http.MethodPost, "/quizzes", st, map[string]any{"subject": "Math", "grade": "9th"})
	require.Equal(t, http.StatusCreated, code, string(body))
	started := decode[struct {
		Attempt assessment.QuizAttempt `json:"attempt"`
	}](t, body)

	code, body = s.do(http.MethodPost, fmt.Sprintf("/quizzes/%d/submit", started.Attempt.ID), st,
		map[string]any{"practice_mode": true, "answers": map[string]string{}})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, 0.0, decode[assessment.QuizAttempt](t, body).Score)

	code, body = s.do(http.MethodGet, "/reports/attempts?subject=Math", tt, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]assessment.QuizAttempt](t, body))

	code, body = s.do(http.MethodGet, "/attempts", st, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]assessment.QuizAttempt](t, body), 1)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		assessment.ErrValidation:           http.StatusBadRequest,
		assessment.ErrAlreadyCompleted:     http.StatusConflict,
		assessment.ErrGateNotSatisfied:     http.StatusForbidden,
		assessment.ErrForbidden:            http.StatusForbidden,
		assessment.ErrNoQuestionsAvailable: http.StatusUnprocessableEntity,
		assessment.ErrNotFound:             http.StatusNotFound,
		storage.ErrUnsupportedMedia:        http.StatusBadRequest,
		io.ErrUnexpectedEOF:                http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}
