package utils

// kindError tags a cause with one of the package-level error kinds so callers
// can test for the kind with errors.Is and still reach the cause with errors.As.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *kindError) Unwrap() error {
	return e.cause
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

// WithKind marks cause as an error of the given kind. A nil cause yields nil.
func WithKind(kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &kindError{kind: kind, cause: cause}
}
