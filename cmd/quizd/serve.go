package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/accounts"
	api "github.com/mind-engage/mindengage-quiz/internal/api/http"
	"github.com/mind-engage/mindengage-quiz/internal/assessment"
	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/seed"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		return serve(cmd.Context(), rt)
	},
}

func serve(ctx context.Context, rt *runtime) error {
	cfg, log := rt.cfg, rt.log

	siteID := "local"
	if cfg.Mode == config.ModeOnline {
		siteID = "online"
	}
	events := syncx.NewEventRepo(siteID)
	store := assessment.NewSQLStore(rt.db, events)
	eng := assessment.NewEngine(store,
		assessment.WithLogger(log),
		assessment.WithDefaultCap(cfg.QuizCap),
		assessment.WithDiagnosticScorer(grading.ParticipationScorer{Prefix: cfg.DiagnosticAnswerPrefix}),
		assessment.WithAttemptScorer(grading.NewRandomScorer(cfg.ScoreMin, cfg.ScoreMax)),
	)
	users := accounts.NewStore(rt.db)

	if cfg.SeedOnStart {
		if _, err := seed.Run(ctx, users, eng.Bank, log.Named("seed")); err != nil {
			return err
		}
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		DB:          rt.db,
		Engine:      eng,
		Users:       users,
		Auth:        auth.NewAuthService(cfg.AuthSecret, time.Duration(cfg.TokenTTLHours)*time.Hour),
		Blobs:       bs,
		Events:      events,
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("mode", string(cfg.Mode)), zap.String("db", cfg.DBDriver))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
