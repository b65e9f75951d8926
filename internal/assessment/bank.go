package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Bank is the question bank. It owns Question records; every other
// component only reads them.
type Bank struct {
	store QuestionStore
	now   func() time.Time
	log   *zap.Logger
}

func NewBank(store QuestionStore, log *zap.Logger) *Bank {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bank{store: store, now: time.Now, log: log}
}

// CreateQuestion stores a question authored by actor.
//
// Passage linkage is a forest of depth one: only passages can be parents,
// and a passage never has a parent.
func (b *Bank) CreateQuestion(ctx context.Context, actor Actor, in NewQuestion) (Question, error) {
	if actor.Role != RoleTeacher {
		return Question{}, fmt.Errorf("create question as %q: %w", actor.Role, ErrForbidden)
	}
	in.Text = strings.TrimSpace(in.Text)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Grade = strings.TrimSpace(in.Grade)
	in.Topic = strings.TrimSpace(in.Topic)

	switch {
	case in.Text == "":
		return Question{}, fmt.Errorf("%w: text required", ErrValidation)
	case in.Subject == "" || in.Grade == "":
		return Question{}, fmt.Errorf("%w: subject and grade required", ErrValidation)
	case !in.Difficulty.Valid():
		return Question{}, fmt.Errorf("%w: unknown difficulty %q", ErrValidation, in.Difficulty)
	case in.IsPassage && in.PassageID != nil:
		return Question{}, fmt.Errorf("%w: a passage cannot be attached to another passage", ErrValidation)
	}

	q, err := b.store.CreateQuestion(ctx, Question{
		TeacherID:  actor.ID,
		Text:       in.Text,
		Difficulty: in.Difficulty,
		Subject:    in.Subject,
		Grade:      in.Grade,
		Topic:      in.Topic,
		MediaRef:   in.MediaRef,
		IsPassage:  in.IsPassage,
		PassageID:  in.PassageID,
		CreatedAt:  b.now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return Question{}, err
	}
	b.log.Info("question created",
		zap.Int64("question_id", q.ID),
		zap.Int64("teacher_id", q.TeacherID),
		zap.String("difficulty", string(q.Difficulty)),
		zap.Bool("is_passage", q.IsPassage))
	return q, nil
}

func (b *Bank) Get(ctx context.Context, id int64) (Question, error) {
	return b.store.GetQuestion(ctx, id)
}

// ListByTeacher returns the teacher's questions, most recent first.
func (b *Bank) ListByTeacher(ctx context.Context, teacherID int64) ([]Question, error) {
	return b.store.ListQuestions(ctx, QuestionListOpts{TeacherID: teacherID})
}

// ListPassagesByTeacher feeds the parent picker when authoring child questions.
func (b *Bank) ListPassagesByTeacher(ctx context.Context, teacherID int64) ([]Question, error) {
	return b.store.ListQuestions(ctx, QuestionListOpts{TeacherID: teacherID, PassagesOnly: true})
}

// FindByFilter returns matching questions ordered by ascending id, so the same
// filter over an unchanged bank always yields the same sequence.
func (b *Bank) FindByFilter(ctx context.Context, f Filter) ([]Question, error) {
	if len(f.Difficulties) == 0 {
		return nil, fmt.Errorf("%w: at least one difficulty required", ErrValidation)
	}
	for _, d := range f.Difficulties {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: unknown difficulty %q", ErrValidation, d)
		}
	}
	if f.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", ErrValidation)
	}
	return b.store.FindQuestions(ctx, f)
}

func (b *Bank) FindDiagnosticSet(ctx context.Context) ([]Question, error) {
	return b.store.FindQuestions(ctx, Filter{Difficulties: []Difficulty{Diagnostic}})
}
