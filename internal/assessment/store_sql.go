package assessment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	events *syncx.EventRepo
}

func NewSQLStore(db *sql.DB, events *syncx.EventRepo) *SQLStore {
	if events == nil {
		events = syncx.NewEventRepo("")
	}
	return &SQLStore{db: db, events: events}
}

var _ Store = (*SQLStore)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ---- questions ----

const questionCols = `id,teacher_id,text,difficulty,subject,grade,topic,media_ref,is_passage,passage_id,created_at`

func scanQuestion(sc scanner) (Question, error) {
	var (
		q         Question
		diff      string
		mediaRef  sql.NullString
		passageID sql.NullInt64
		created   int64
	)
	if err := sc.Scan(&q.ID, &q.TeacherID, &q.Text, &diff, &q.Subject, &q.Grade, &q.Topic,
		&mediaRef, &q.IsPassage, &passageID, &created); err != nil {
		return Question{}, err
	}
	q.Difficulty = Difficulty(diff)
	q.MediaRef = mediaRef.String
	if passageID.Valid {
		id := passageID.Int64
		q.PassageID = &id
	}
	q.CreatedAt = time.Unix(created, 0).UTC()
	return q, nil
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if q.PassageID != nil {
			var isPassage bool
			err := tx.QueryRowContext(ctx, `SELECT is_passage FROM questions WHERE id=$1`, *q.PassageID).Scan(&isPassage)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: passage %d does not exist", ErrValidation, *q.PassageID)
			}
			if err != nil {
				return fmt.Errorf("load passage: %w", err)
			}
			if !isPassage {
				return fmt.Errorf("%w: question %d is not a passage", ErrValidation, *q.PassageID)
			}
		}

		var mediaRef sql.NullString
		if q.MediaRef != "" {
			mediaRef = sql.NullString{String: q.MediaRef, Valid: true}
		}
		var passageID sql.NullInt64
		if q.PassageID != nil {
			passageID = sql.NullInt64{Int64: *q.PassageID, Valid: true}
		}
		err := tx.QueryRowContext(ctx,
			`INSERT INTO questions (teacher_id,text,difficulty,subject,grade,topic,media_ref,is_passage,passage_id,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
			q.TeacherID, q.Text, string(q.Difficulty), q.Subject, q.Grade, q.Topic,
			mediaRef, q.IsPassage, passageID, q.CreatedAt.Unix(),
		).Scan(&q.ID)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		return s.events.Append(ctx, tx, syncx.TypeQuestionCreated, strconv.FormatInt(q.ID, 10), map[string]any{
			"teacher_id": q.TeacherID, "difficulty": q.Difficulty, "subject": q.Subject, "grade": q.Grade,
			"is_passage": q.IsPassage, "passage_id": q.PassageID,
		})
	})
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id int64) (Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Question{}, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, opts QuestionListOpts) ([]Question, error) {
	query := `SELECT ` + questionCols + ` FROM questions WHERE teacher_id=$1`
	if opts.PassagesOnly {
		query += ` AND is_passage = TRUE`
	}
	query += ` ORDER BY id DESC`
	return s.queryQuestions(ctx, query, opts.TeacherID)
}

func (s *SQLStore) FindQuestions(ctx context.Context, f Filter) ([]Question, error) {
	var (
		where []string
		args  []any
	)
	if len(f.Difficulties) > 0 {
		ph := make([]string, len(f.Difficulties))
		for i, d := range f.Difficulties {
			args = append(args, string(d))
			ph[i] = "$" + strconv.Itoa(len(args))
		}
		where = append(where, "difficulty IN ("+strings.Join(ph, ",")+")")
	}
	if f.Subject != "" {
		args = append(args, f.Subject)
		where = append(where, "subject=$"+strconv.Itoa(len(args)))
	}
	if f.Grade != "" {
		args = append(args, f.Grade)
		where = append(where, "grade=$"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + questionCols + ` FROM questions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id ASC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	return s.queryQuestions(ctx, query, args...)
}

func (s *SQLStore) queryQuestions(ctx context.Context, query string, args ...any) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ---- diagnostics ----

func (s *SQLStore) CreateDiagnostic(ctx context.Context, d DiagnosticAttempt) (DiagnosticAttempt, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO diagnostic_attempts (student_id,completed_at,recommended_level,raw_score)
			 VALUES ($1,$2,$3,$4)
			 ON CONFLICT (student_id) DO NOTHING
			 RETURNING id`,
			d.StudentID, d.CompletedAt.Unix(), string(d.RecommendedLevel), d.RawScore,
		).Scan(&d.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("diagnostic for student %d: %w", d.StudentID, ErrAlreadyCompleted)
		}
		if err != nil {
			return fmt.Errorf("insert diagnostic: %w", err)
		}
		return s.events.Append(ctx, tx, syncx.TypeDiagnosticCompleted, strconv.FormatInt(d.StudentID, 10), map[string]any{
			"recommended_level": d.RecommendedLevel, "raw_score": d.RawScore,
		})
	})
	if err != nil {
		return DiagnosticAttempt{}, err
	}
	return d, nil
}

func (s *SQLStore) GetDiagnostic(ctx context.Context, studentID int64) (DiagnosticAttempt, error) {
	var (
		d         DiagnosticAttempt
		level     string
		completed int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id,student_id,completed_at,recommended_level,raw_score FROM diagnostic_attempts WHERE student_id=$1`,
		studentID,
	).Scan(&d.ID, &d.StudentID, &completed, &level, &d.RawScore)
	if errors.Is(err, sql.ErrNoRows) {
		return DiagnosticAttempt{}, fmt.Errorf("diagnostic for student %d: %w", studentID, ErrNotFound)
	}
	if err != nil {
		return DiagnosticAttempt{}, fmt.Errorf("get diagnostic: %w", err)
	}
	d.RecommendedLevel = Difficulty(level)
	d.CompletedAt = time.Unix(completed, 0).UTC()
	return d, nil
}

// ---- quiz attempts ----

const attemptCols = `id,student_id,subject,grade,start_time,end_time,is_practice,score`

func scanAttempt(sc scanner) (QuizAttempt, error) {
	var (
		a     QuizAttempt
		start int64
		end   sql.NullInt64
	)
	if err := sc.Scan(&a.ID, &a.StudentID, &a.Subject, &a.Grade, &start, &end, &a.IsPractice, &a.Score); err != nil {
		return QuizAttempt{}, err
	}
	a.StartTime = time.Unix(start, 0).UTC()
	if end.Valid {
		t := time.Unix(end.Int64, 0).UTC()
		a.EndTime = &t
	}
	return a, nil
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a QuizAttempt) (QuizAttempt, error) {
	a.EndTime = nil
	a.IsPractice = false
	a.Score = 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO quiz_attempts (student_id,subject,grade,start_time,is_practice,score)
			 VALUES ($1,$2,$3,$4,FALSE,0) RETURNING id`,
			a.StudentID, a.Subject, a.Grade, a.StartTime.Unix(),
		).Scan(&a.ID)
		if err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		return s.events.Append(ctx, tx, syncx.TypeQuizStarted, strconv.FormatInt(a.ID, 10), map[string]any{
			"student_id": a.StudentID, "subject": a.Subject, "grade": a.Grade,
		})
	})
	if err != nil {
		return QuizAttempt{}, err
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id int64) (QuizAttempt, error) {
	return getAttempt(ctx, s.db, id)
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getAttempt(ctx context.Context, q rowQueryer, id int64) (QuizAttempt, error) {
	a, err := scanAttempt(q.QueryRowContext(ctx, `SELECT `+attemptCols+` FROM quiz_attempts WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return QuizAttempt{}, fmt.Errorf("attempt %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return QuizAttempt{}, fmt.Errorf("get attempt: %w", err)
	}
	return a, nil
}

func (s *SQLStore) CompleteAttempt(ctx context.Context, id int64, end time.Time, practice bool, score float64) (QuizAttempt, error) {
	var out QuizAttempt
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE quiz_attempts SET end_time=$1, is_practice=$2, score=$3
			 WHERE id=$4 AND end_time IS NULL`,
			end.Unix(), practice, score, id)
		if err != nil {
			return fmt.Errorf("complete attempt: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("complete attempt: %w", err)
		}
		if n == 0 {
			// either missing or lost the race to another submitter
			if _, err := getAttempt(ctx, tx, id); err != nil {
				return err
			}
			return fmt.Errorf("attempt %d: %w", id, ErrAlreadyCompleted)
		}
		if out, err = getAttempt(ctx, tx, id); err != nil {
			return err
		}
		return s.events.Append(ctx, tx, syncx.TypeQuizSubmitted, strconv.FormatInt(id, 10), map[string]any{
			"student_id": out.StudentID, "subject": out.Subject, "is_practice": practice, "score": score,
		})
	})
	if err != nil {
		return QuizAttempt{}, err
	}
	return out, nil
}

func attemptWhere(opts AttemptListOpts) (string, []any) {
	var (
		where []string
		args  []any
	)
	if opts.StudentID != 0 {
		args = append(args, opts.StudentID)
		where = append(where, "student_id=$"+strconv.Itoa(len(args)))
	}
	if opts.Subject != "" {
		args = append(args, opts.Subject)
		where = append(where, "subject=$"+strconv.Itoa(len(args)))
	}
	switch opts.State {
	case StateStarted:
		where = append(where, "end_time IS NULL")
	case StateSubmitted:
		where = append(where, "end_time IS NOT NULL")
	}
	if !opts.IncludePractice {
		where = append(where, "is_practice = FALSE")
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]QuizAttempt, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	where, args := attemptWhere(opts)
	args = append(args, limit, offset)
	query := `SELECT ` + attemptCols + ` FROM quiz_attempts` + where +
		` ORDER BY id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()
	out := []QuizAttempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) SummarizeAttempts(ctx context.Context, subject string) (Summary, error) {
	where, args := attemptWhere(AttemptListOpts{Subject: subject, State: StateSubmitted})
	var (
		sum   = Summary{Subject: subject}
		count int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(score),0), COALESCE(MIN(score),0), COALESCE(MAX(score),0) FROM quiz_attempts`+where,
		args...,
	).Scan(&count, &sum.Average, &sum.Min, &sum.Max)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize attempts: %w", err)
	}
	sum.Attempts = int(count)
	return sum, nil
}
