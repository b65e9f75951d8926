package http

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/accounts"
	"github.com/mind-engage/mindengage-quiz/internal/assessment"
	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/logging"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

type Deps struct {
	DB          *sql.DB
	Engine      *assessment.Engine
	Users       *accounts.Store
	Auth        *auth.AuthService
	Blobs       storage.BlobStore
	Events      *syncx.EventRepo // read side of the event log; nil uses the default site
	Log         *zap.Logger
	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	events := d.Events
	if events == nil {
		events = syncx.NewEventRepo("")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(log.Named("http")), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Users, log.Named("auth")))

	// Protected API (JWT → stored role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth), auth.AttachRoleFromDB(d.Users, log))

		// Teacher
		pr.With(rbac.Require(rbac.PermQuestionCreate)).
			Post("/questions", CreateQuestionHandler(d.Engine.Bank, d.Blobs, log))
		pr.With(rbac.Require(rbac.PermQuestionList)).
			Get("/questions", ListQuestionsHandler(d.Engine.Bank, log))
		pr.With(rbac.Require(rbac.PermQuestionList)).
			Get("/questions/passages", ListPassagesHandler(d.Engine.Bank, log))
		pr.With(rbac.Require(rbac.PermReportView)).
			Get("/reports/attempts", ReportAttemptsHandler(d.Engine.Lifecycle, log))
		pr.With(rbac.Require(rbac.PermReportView)).
			Get("/reports/summary", ReportSummaryHandler(d.Engine.Lifecycle, log))
		pr.With(rbac.Require(rbac.PermReportView)).
			Get("/reports/events", ListEventsHandler(d.DB, events, log))

		// Student
		pr.With(rbac.Require(rbac.PermAttemptViewOwn)).
			Get("/dashboard", DashboardHandler(d.Engine, log))
		pr.With(rbac.Require(rbac.PermDiagnosticTake)).
			Get("/diagnostic", GetDiagnosticHandler(d.Engine, log))
		pr.With(rbac.Require(rbac.PermDiagnosticTake)).
			Post("/diagnostic", SubmitDiagnosticHandler(d.Engine, log))
		pr.With(rbac.Require(rbac.PermQuizStart)).
			Post("/quizzes", StartQuizHandler(d.Engine, log))
		pr.With(rbac.Require(rbac.PermQuizSubmit)).
			Post("/quizzes/{attemptID}/submit", SubmitQuizHandler(d.Engine, log))
		pr.With(rbac.Require(rbac.PermAttemptViewOwn)).
			Get("/attempts", ListOwnAttemptsHandler(d.Engine.Lifecycle, log))

		pr.With(rbac.Require(rbac.PermMediaView)).Route("/media", func(mr chi.Router) {
			MountMedia(mr, d.Blobs, log)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.DB != nil {
			if err := d.DB.PingContext(r.Context()); err != nil {
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}
