package grading

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
)

// Submission is a minimal view of a quiz submission needed for scoring.
// Keep this in sync with assessment.QuizAttempt.
type Submission struct {
	AttemptID int64
	StudentID int64
	Subject   string
	Grade     string
	Answers   map[string]string
}

// DiagnosticScorer turns a diagnostic answer sheet into a raw score.
type DiagnosticScorer interface {
	Score(ctx context.Context, answers map[string]string) (int, error)
}

// AttemptScorer scores a non-practice quiz submission.
type AttemptScorer interface {
	Score(ctx context.Context, s Submission) (float64, error)
}

// AttemptScorerFunc adapts a plain function to AttemptScorer.
type AttemptScorerFunc func(ctx context.Context, s Submission) (float64, error)

func (f AttemptScorerFunc) Score(ctx context.Context, s Submission) (float64, error) {
	return f(ctx, s)
}

// DiagnosticScorerFunc adapts a plain function to DiagnosticScorer.
type DiagnosticScorerFunc func(ctx context.Context, answers map[string]string) (int, error)

func (f DiagnosticScorerFunc) Score(ctx context.Context, answers map[string]string) (int, error) {
	return f(ctx, answers)
}

const DefaultAnswerPrefix = "answer_"

// ParticipationScorer counts answer fields, ignoring their values.
//
// This is a participation count and not a correctness check. Kept as-is for
// compatibility with existing recommendations; swap in a real scorer to grade.
type ParticipationScorer struct {
	Prefix string
}

func (p ParticipationScorer) Score(_ context.Context, answers map[string]string) (int, error) {
	prefix := p.Prefix
	if prefix == "" {
		prefix = DefaultAnswerPrefix
	}
	n := 0
	for k := range answers {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n, nil
}

// RandomScorer draws a uniform integer score in [Min, Max].
type RandomScorer struct {
	Min, Max int
	IntN     func(n int) int // nil uses math/rand/v2
}

func NewRandomScorer(lo, hi int) RandomScorer {
	return RandomScorer{Min: lo, Max: hi}
}

func (r RandomScorer) Score(_ context.Context, _ Submission) (float64, error) {
	if r.Max < r.Min {
		return 0, errors.New("random scorer: max below min")
	}
	intN := r.IntN
	if intN == nil {
		intN = rand.IntN
	}
	return float64(r.Min + intN(r.Max-r.Min+1)), nil
}
