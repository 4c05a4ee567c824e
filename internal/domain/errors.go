package domain

import "errors"

var (
	// ErrNotFound covers both missing records and records outside the caller's
	// scope. Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("record not found")

	ErrAccountDeleted = errors.New("account has been closed")

	// ErrStaleState is returned by guarded updates whose WHERE clause on the
	// current state matched no row.
	ErrStaleState = errors.New("record changed since it was read")

	ErrDuplicatePending = errors.New("a pending request already exists")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")

	ErrMalwareDetected = errors.New("file rejected by malware scan")
)

// PreconditionError is a business rule violation. Message is user-facing and
// names the unmet condition.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func precondition(msg string) error {
	return &PreconditionError{Message: msg}
}

func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
