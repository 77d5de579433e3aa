package state

import "errors"

var (
	ErrEmptyInput         = errors.New("empty input")
	ErrMissingFields      = errors.New("missing required fields")
	ErrNoValidEntries     = errors.New("no valid entries")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidLabel       = errors.New("invalid label")
	ErrInvalidBiasType    = errors.New("invalid bias type")
	ErrTripletNotFound    = errors.New("triplet not found")
	ErrAlreadyGenerated   = errors.New("triplet already generated")
	ErrStaleAssignment    = errors.New("stale assignment")
)

// ValidationError is a rejected user input. Message is the text shown to the
// user; Err is the sentinel callers match with errors.Is.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func reject(err error, message string) error {
	return &ValidationError{Err: err, Message: message}
}

// Message returns the user-facing text of err, or fallback when err is not
// a ValidationError.
func Message(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return fallback
}
