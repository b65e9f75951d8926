package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "QUIZ_CAP", "SCORE_MIN", "SCORE_MAX", "CORS_ORIGINS", "SEED_ON_START"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()

	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 10, cfg.QuizCap)
	assert.Equal(t, 50, cfg.ScoreMin)
	assert.Equal(t, 95, cfg.ScoreMax)
	assert.Equal(t, "answer_", cfg.DiagnosticAnswerPrefix)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.True(t, cfg.SeedOnStart)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("QUIZ_CAP", "25")
	t.Setenv("SCORE_MAX", "not-a-number")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("SEED_ON_START", "")

	cfg := FromEnv()
	assert.Equal(t, ModeOnline, cfg.Mode)
	assert.Equal(t, 25, cfg.QuizCap)
	assert.Equal(t, 95, cfg.ScoreMax)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.SeedOnStart)
}
