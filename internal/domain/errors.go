package domain

import "github.com/pkg/errors"

var (
	// ErrEmptyPool is returned when no entries match the requested filter.
	ErrEmptyPool = errors.New("no entries match the filter")
	// ErrMalformedSelection indicates the wrong number of chosen answers.
	ErrMalformedSelection = errors.New("malformed selection")
	// ErrRemoteLoad indicates the record store could not provide the user record.
	ErrRemoteLoad = errors.New("remote load failed")
	// ErrRemoteWrite indicates a write-back to the record store failed.
	ErrRemoteWrite = errors.New("remote write failed")
	// ErrUserNotFound is returned when the record store has no matching user.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotLoaded is returned when acting on a user whose record was never loaded.
	ErrNotLoaded = errors.New("user record not loaded")
	// ErrSessionNotFound is returned when a quiz session does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionFinished is returned when answering after the last question.
	ErrSessionFinished = errors.New("quiz session finished")
	// ErrQuestionScored is returned when the current question was already answered.
	ErrQuestionScored = errors.New("question already scored")
	ErrStageMismatch  = errors.New("operation not valid in the current stage")
	ErrNotReview      = errors.New("operation requires a review session")
	// ErrIndexOutOfRange is returned for wrong-list indexes outside the list.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// OpError attaches a classifying sentinel (such as ErrRemoteLoad) to the
// underlying failure. errors.Is matches both.
type OpError struct {
	Kind error
	Err  error
}

// WrapOp returns nil when err is nil.
func WrapOp(kind, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Kind: kind, Err: err}
}

func (e *OpError) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
