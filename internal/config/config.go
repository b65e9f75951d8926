package config

import (
	"os"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string // sqlite|postgres
	DBDSN    string

	BlobBasePath string // media uploads root

	AuthSecret    string
	TokenTTLHours int

	CORSOrigins []string

	LogDir   string // empty disables the rotating file core
	LogLevel string

	SeedOnStart bool // demo accounts + diagnostic set

	// Engine tuning
	QuizCap                int
	ScoreMin               int
	ScoreMax               int
	DiagnosticAnswerPrefix string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	defOrigins := "http://localhost:3000"
	if mode == ModeOnline {
		defOrigins = ""
	}
	return Config{
		Mode:                   mode,
		HTTPAddr:               envOr("HTTP_ADDR", ":8080"),
		DBDriver:               envOr("DB_DRIVER", "sqlite"),
		DBDSN:                  envOr("DB_DSN", ""),
		BlobBasePath:           envOr("BLOB_BASE_PATH", "./data/uploads"),
		AuthSecret:             envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TokenTTLHours:          envInt("TOKEN_TTL_HOURS", 8),
		CORSOrigins:            csvOr("CORS_ORIGINS", defOrigins),
		LogDir:                 os.Getenv("LOG_DIR"),
		LogLevel:               envOr("LOG_LEVEL", "info"),
		SeedOnStart:            envBool("SEED_ON_START", mode == ModeOffline),
		QuizCap:                envInt("QUIZ_CAP", 10),
		ScoreMin:               envInt("SCORE_MIN", 50),
		ScoreMax:               envInt("SCORE_MAX", 95),
		DiagnosticAnswerPrefix: envOr("DIAGNOSTIC_ANSWER_PREFIX", "answer_"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
