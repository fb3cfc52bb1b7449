package apperror

import "errors"

// Error kinds shared by every domain. Domain errors wrap one of these so
// transports can classify them with errors.Is.
var (
	ErrInvalidState       = errors.New("invalid state")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// New returns a sentinel error with its own message that also matches kind.
func New(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}
