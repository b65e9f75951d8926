package assessment

import (
	"context"
	"fmt"
	"strings"
)

const DefaultQuizCap = 10

type gateChecker interface {
	HasCompleted(ctx context.Context, studentID int64) (bool, error)
}

type questionFinder interface {
	FindByFilter(ctx context.Context, f Filter) ([]Question, error)
}

// Assembler picks the questions for a main quiz.
type Assembler struct {
	gate       gateChecker
	bank       questionFinder
	defaultCap int
}

func NewAssembler(gate *Gate, bank *Bank, defaultCap int) *Assembler {
	if defaultCap <= 0 {
		defaultCap = DefaultQuizCap
	}
	return &Assembler{gate: gate, bank: bank, defaultCap: defaultCap}
}

// Assemble returns at most limit questions whose difficulty is the recommended
// level or intermediate, matching subject and grade exactly. Intermediate is
// always blended in regardless of level. An empty result is not an error.
func (a *Assembler) Assemble(ctx context.Context, studentID int64, subject, grade string, level Difficulty, limit int) ([]Question, error) {
	ok, err := a.gate.HasCompleted(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("student %d: %w", studentID, ErrGateNotSatisfied)
	}

	subject, grade = strings.TrimSpace(subject), strings.TrimSpace(grade)
	if subject == "" || grade == "" {
		return nil, fmt.Errorf("%w: subject and grade required", ErrValidation)
	}
	if !level.Recommendable() {
		return nil, fmt.Errorf("%w: %q is not a quiz level", ErrValidation, level)
	}
	if limit <= 0 {
		limit = a.defaultCap
	}

	tiers := []Difficulty{level}
	if level != Intermediate {
		tiers = append(tiers, Intermediate)
	}
	return a.bank.FindByFilter(ctx, Filter{
		Difficulties: tiers,
		Subject:      subject,
		Grade:        grade,
		Limit:        limit,
	})
}
