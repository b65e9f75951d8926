package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

// Gate is the one-time diagnostic check. A student moves from not attempted
// to completed exactly once; there is no way back.
type Gate struct {
	store  DiagnosticStore
	scorer grading.DiagnosticScorer
	now    func() time.Time
	log    *zap.Logger
}

func NewGate(store DiagnosticStore, scorer grading.DiagnosticScorer, log *zap.Logger) *Gate {
	if scorer == nil {
		scorer = grading.ParticipationScorer{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{store: store, scorer: scorer, now: time.Now, log: log}
}

// Recommend maps a raw diagnostic score to a difficulty tier.
func Recommend(score int) Difficulty {
	switch {
	case score >= 4:
		return Hard
	case score >= 2:
		return Intermediate
	default:
		return Easy
	}
}

func (g *Gate) HasCompleted(ctx context.Context, studentID int64) (bool, error) {
	_, err := g.store.GetDiagnostic(ctx, studentID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Recommendation returns the student's diagnostic record, or
// ErrGateNotSatisfied if there is none.
func (g *Gate) Recommendation(ctx context.Context, studentID int64) (DiagnosticAttempt, error) {
	d, err := g.store.GetDiagnostic(ctx, studentID)
	if errors.Is(err, ErrNotFound) {
		return DiagnosticAttempt{}, fmt.Errorf("student %d: %w", studentID, ErrGateNotSatisfied)
	}
	return d, err
}

// Submit scores the diagnostic and records the recommendation. A second
// submission, concurrent or not, fails with ErrAlreadyCompleted.
func (g *Gate) Submit(ctx context.Context, studentID int64, answers map[string]string) (DiagnosticAttempt, error) {
	if studentID == 0 {
		return DiagnosticAttempt{}, fmt.Errorf("%w: student id required", ErrValidation)
	}
	score, err := g.scorer.Score(ctx, answers)
	if err != nil {
		return DiagnosticAttempt{}, fmt.Errorf("score diagnostic: %w", err)
	}
	d, err := g.store.CreateDiagnostic(ctx, DiagnosticAttempt{
		StudentID:        studentID,
		CompletedAt:      g.now().UTC().Truncate(time.Second),
		RecommendedLevel: Recommend(score),
		RawScore:         score,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCompleted) {
			g.log.Warn("duplicate diagnostic submission", zap.Int64("student_id", studentID))
		}
		return DiagnosticAttempt{}, err
	}
	g.log.Info("diagnostic completed",
		zap.Int64("student_id", studentID),
		zap.Int("raw_score", score),
		zap.String("recommended_level", string(d.RecommendedLevel)))
	return d, nil
}
