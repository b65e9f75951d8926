package assessment

import (
	"context"
	"time"
)

type QuestionStore interface {
	// CreateQuestion inserts q. When q.PassageID is set the parent is
	// checked in the same transaction: it must exist and be a passage.
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestion(ctx context.Context, id int64) (Question, error)
	ListQuestions(ctx context.Context, opts QuestionListOpts) ([]Question, error)
	FindQuestions(ctx context.Context, f Filter) ([]Question, error)
}

type DiagnosticStore interface {
	// CreateDiagnostic fails with ErrAlreadyCompleted when the student
	// already has a record; uniqueness is enforced by the storage layer.
	CreateDiagnostic(ctx context.Context, d DiagnosticAttempt) (DiagnosticAttempt, error)
	GetDiagnostic(ctx context.Context, studentID int64) (DiagnosticAttempt, error)
}

type AttemptStore interface {
	CreateAttempt(ctx context.Context, a QuizAttempt) (QuizAttempt, error)
	GetAttempt(ctx context.Context, id int64) (QuizAttempt, error)
	// CompleteAttempt moves a started attempt to submitted. It only applies
	// while end_time is still null; otherwise ErrAlreadyCompleted.
	CompleteAttempt(ctx context.Context, id int64, end time.Time, practice bool, score float64) (QuizAttempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]QuizAttempt, error)
	SummarizeAttempts(ctx context.Context, subject string) (Summary, error)
}

// Store is everything the engine persists.
type Store interface {
	QuestionStore
	DiagnosticStore
	AttemptStore
}
