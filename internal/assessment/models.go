package assessment

import "time"

type Difficulty string

const (
	Diagnostic   Difficulty = "diagnostic"
	Easy         Difficulty = "easy"
	Intermediate Difficulty = "intermediate"
	Hard         Difficulty = "hard"
)

// Valid reports whether d is one of the four authored tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case Diagnostic, Easy, Intermediate, Hard:
		return true
	}
	return false
}

// Recommendable reports whether d can be the output of a diagnostic.
func (d Difficulty) Recommendable() bool {
	return d == Easy || d == Intermediate || d == Hard
}

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Actor is the caller of an engine operation, resolved by the account provider.
type Actor struct {
	ID   int64
	Role Role
}

type Question struct {
	ID         int64      `json:"id"`
	TeacherID  int64      `json:"teacher_id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	Subject    string     `json:"subject"`
	Grade      string     `json:"grade"`
	Topic      string     `json:"topic"`
	MediaRef   string     `json:"media_ref,omitempty"` // opaque handle from the media store
	IsPassage  bool       `json:"is_passage"`
	PassageID  *int64     `json:"passage_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewQuestion is the authoring input for Bank.CreateQuestion.
type NewQuestion struct {
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	Subject    string     `json:"subject"`
	Grade      string     `json:"grade"`
	Topic      string     `json:"topic"`
	IsPassage  bool       `json:"is_passage"`
	PassageID  *int64     `json:"passage_id,omitempty"`
	MediaRef   string     `json:"media_ref,omitempty"`
}

type DiagnosticAttempt struct {
	ID               int64      `json:"id"`
	StudentID        int64      `json:"student_id"`
	CompletedAt      time.Time  `json:"completed_at"`
	RecommendedLevel Difficulty `json:"recommended_level"`
	RawScore         int        `json:"raw_score"`
}

type AttemptState string

const (
	StateStarted   AttemptState = "started"
	StateSubmitted AttemptState = "submitted"
)

type QuizAttempt struct {
	ID         int64      `json:"id"`
	StudentID  int64      `json:"student_id"`
	Subject    string     `json:"subject"`
	Grade      string     `json:"grade"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	IsPractice bool       `json:"is_practice"`
	Score      float64    `json:"score"`
}

func (a QuizAttempt) State() AttemptState {
	if a.EndTime == nil {
		return StateStarted
	}
	return StateSubmitted
}

// Filter selects questions from the bank. Results are ordered by ascending id.
type Filter struct {
	Difficulties []Difficulty
	Subject      string
	Grade        string
	Limit        int // 0 = no limit
}

type QuestionListOpts struct {
	TeacherID    int64
	PassagesOnly bool
}

type AttemptListOpts struct {
	StudentID       int64  // 0 = any student
	Subject         string // optional
	State           AttemptState
	IncludePractice bool
	Limit           int
	Offset          int
}

// Summary aggregates submitted, non-practice attempts.
type Summary struct {
	Subject  string  `json:"subject,omitempty"`
	Attempts int     `json:"attempts"`
	Average  float64 `json:"average"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}
