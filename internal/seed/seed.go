package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/accounts"
	"github.com/mind-engage/mindengage-quiz/internal/assessment"
)

const (
	DemoTeacher  = "teacher1"
	DemoStudent  = "student1"
	DemoPassword = "password"

	diagnosticCount = 5
)

type Result struct {
	TeacherCreated    bool
	StudentCreated    bool
	DiagnosticCreated int
}

// Run creates the demo accounts and the diagnostic question set. Each part
// is skipped when it already exists, so Run is safe on every start.
func Run(ctx context.Context, users *accounts.Store, bank *assessment.Bank, log *zap.Logger) (Result, error) {
	var res Result
	teacher, created, err := users.Ensure(ctx, DemoTeacher, DemoPassword, accounts.RoleTeacher)
	if err != nil {
		return res, fmt.Errorf("seed teacher: %w", err)
	}
	res.TeacherCreated = created
	if _, res.StudentCreated, err = users.Ensure(ctx, DemoStudent, DemoPassword, accounts.RoleStudent); err != nil {
		return res, fmt.Errorf("seed student: %w", err)
	}

	existing, err := bank.FindDiagnosticSet(ctx)
	if err != nil {
		return res, err
	}
	if len(existing) == 0 {
		actor := assessment.Actor{ID: teacher.ID, Role: assessment.Role(teacher.Role)}
		for i := 1; i <= diagnosticCount; i++ {
			_, err := bank.CreateQuestion(ctx, actor, assessment.NewQuestion{
				Text:       fmt.Sprintf("Diagnostic Question %d: What is the capital of France?", i),
				Difficulty: assessment.Diagnostic,
				Subject:    "General",
				Grade:      "All",
				Topic:      "Basic Knowledge",
			})
			if err != nil {
				return res, fmt.Errorf("seed diagnostic question %d: %w", i, err)
			}
			res.DiagnosticCreated++
		}
	}

	if log != nil {
		log.Info("seed complete",
			zap.Bool("teacher_created", res.TeacherCreated),
			zap.Bool("student_created", res.StudentCreated),
			zap.Int("diagnostic_created", res.DiagnosticCreated))
	}
	return res, nil
}
