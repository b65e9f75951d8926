package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	assert.True(t, c.Has("teacher", PermQuestionCreate))
	assert.True(t, c.Has("teacher", PermQuestionList))
	assert.True(t, c.Has("teacher", PermReportView))
	assert.False(t, c.Has("teacher", PermQuizStart))
	assert.False(t, c.Has("teacher", PermDiagnosticTake))

	assert.True(t, c.Has("student", PermQuizStart))
	assert.True(t, c.Has("student", PermQuizSubmit))
	assert.False(t, c.Has("student", PermQuestionCreate))
	assert.False(t, c.Has("student", PermReportView))

	assert.False(t, c.Has("admin", PermReportView))
	assert.False(t, c.Has("", PermMediaView))
}

func TestPermissions(t *testing.T) {
	assert.Equal(t, []string{"media:view", "question:create", "question:list", "report:view"}, Permissions("teacher"))
	assert.Equal(t, []string{"attempt:view-own", "diagnostic:take", "media:view", "quiz:start", "quiz:submit"}, Permissions("student"))
	assert.Empty(t, Permissions("guest"))
}

func TestRequire(t *testing.T) {
	h := Require(PermQuestionCreate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := map[string]int{
		"teacher": http.StatusNoContent,
		"student": http.StatusForbidden,
		"":        http.StatusForbidden,
	}
	for role, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "/questions", nil)
		req = req.WithContext(WithRole(context.Background(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}
