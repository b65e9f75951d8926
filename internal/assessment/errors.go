package assessment

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrAlreadyCompleted     = errors.New("already completed")
	ErrGateNotSatisfied     = errors.New("diagnostic not completed")
	ErrNoQuestionsAvailable = errors.New("no questions available")
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
)
