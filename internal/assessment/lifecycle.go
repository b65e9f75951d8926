package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

// Lifecycle runs main-quiz attempts: started, then submitted exactly once.
type Lifecycle struct {
	gate   *Gate
	asm    *Assembler
	store  AttemptStore
	scorer grading.AttemptScorer
	now    func() time.Time
	log    *zap.Logger
}

func NewLifecycle(gate *Gate, asm *Assembler, store AttemptStore, scorer grading.AttemptScorer, log *zap.Logger) *Lifecycle {
	if scorer == nil {
		scorer = grading.NewRandomScorer(50, 95)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{gate: gate, asm: asm, store: store, scorer: scorer, now: time.Now, log: log}
}

// Start opens an attempt for the student's recommended level. Nothing is
// written unless the gate is satisfied and at least one question matches.
func (l *Lifecycle) Start(ctx context.Context, studentID int64, subject, grade string, limit int) (QuizAttempt, []Question, error) {
	diag, err := l.gate.Recommendation(ctx, studentID)
	if err != nil {
		return QuizAttempt{}, nil, err
	}
	questions, err := l.asm.Assemble(ctx, studentID, subject, grade, diag.RecommendedLevel, limit)
	if err != nil {
		return QuizAttempt{}, nil, err
	}
	if len(questions) == 0 {
		return QuizAttempt{}, nil, fmt.Errorf("%s/%s at %s: %w", subject, grade, diag.RecommendedLevel, ErrNoQuestionsAvailable)
	}

	a, err := l.store.CreateAttempt(ctx, QuizAttempt{
		StudentID: studentID,
		Subject:   strings.TrimSpace(subject),
		Grade:     strings.TrimSpace(grade),
		StartTime: l.now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return QuizAttempt{}, nil, err
	}
	l.log.Info("quiz started",
		zap.Int64("attempt_id", a.ID),
		zap.Int64("student_id", studentID),
		zap.String("subject", a.Subject),
		zap.String("level", string(diag.RecommendedLevel)),
		zap.Int("questions", len(questions)))
	return a, questions, nil
}

// Submit closes the attempt. Practice submissions score 0 and never reach
// the scorer. Attempts of other students are reported as not found.
func (l *Lifecycle) Submit(ctx context.Context, studentID, attemptID int64, practice bool, answers map[string]string) (QuizAttempt, error) {
	a, err := l.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return QuizAttempt{}, err
	}
	if a.StudentID != studentID {
		return QuizAttempt{}, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
	}
	if a.State() == StateSubmitted {
		return QuizAttempt{}, fmt.Errorf("attempt %d: %w", attemptID, ErrAlreadyCompleted)
	}

	score := 0.0
	if !practice {
		score, err = l.scorer.Score(ctx, grading.Submission{
			AttemptID: a.ID,
			StudentID: a.StudentID,
			Subject:   a.Subject,
			Grade:     a.Grade,
			Answers:   answers,
		})
		if err != nil {
			return QuizAttempt{}, fmt.Errorf("score attempt %d: %w", attemptID, err)
		}
	}

	done, err := l.store.CompleteAttempt(ctx, attemptID, l.now().UTC().Truncate(time.Second), practice, score)
	if err != nil {
		if errors.Is(err, ErrAlreadyCompleted) {
			l.log.Warn("concurrent quiz submission rejected", zap.Int64("attempt_id", attemptID))
		}
		return QuizAttempt{}, err
	}
	l.log.Info("quiz submitted",
		zap.Int64("attempt_id", done.ID),
		zap.Int64("student_id", done.StudentID),
		zap.Bool("practice", done.IsPractice),
		zap.Float64("score", done.Score))
	return done, nil
}

func (l *Lifecycle) Get(ctx context.Context, attemptID int64) (QuizAttempt, error) {
	return l.store.GetAttempt(ctx, attemptID)
}

// ListAttempts is the read side consumed by report exporters.
func (l *Lifecycle) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]QuizAttempt, error) {
	return l.store.ListAttempts(ctx, opts)
}

// Summarize aggregates submitted attempts for a subject; practice is excluded.
func (l *Lifecycle) Summarize(ctx context.Context, subject string) (Summary, error) {
	return l.store.SummarizeAttempts(ctx, strings.TrimSpace(subject))
}
