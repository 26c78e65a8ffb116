package manager

// modelNotFoundError signals a model name absent from the registry.
type modelNotFoundError struct{ name string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.name }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(name string) error { return modelNotFoundError{name: name} }

// IsModelNotFound reports whether the error indicates a missing model name.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// insufficientResourcesError signals a failed memory precheck. No state was
// mutated; the caller may retry after freeing resources or pick a smaller
// model.
type insufficientResourcesError struct{ msg string }

func (e insufficientResourcesError) Error() string { return "insufficient resources: " + e.msg }

// ErrInsufficientResources constructs an insufficientResourcesError.
func ErrInsufficientResources(msg string) error { return insufficientResourcesError{msg: msg} }

// IsInsufficientResources reports whether err indicates a failed precheck.
func IsInsufficientResources(err error) bool {
	_, ok := err.(insufficientResourcesError)
	return ok
}

// engineFailureError wraps any failure during pipeline construction or
// sampling. Generation converts it into a placeholder result; switches
// surface it.
type engineFailureError struct {
	msg   string
	cause error
}

func (e engineFailureError) Error() string {
	if e.cause != nil {
		return "engine failure: " + e.msg + ": " + e.cause.Error()
	}
	return "engine failure: " + e.msg
}

func (e engineFailureError) Unwrap() error { return e.cause }

// ErrEngineFailure constructs an engineFailureError.
func ErrEngineFailure(msg string, cause error) error {
	return engineFailureError{msg: msg, cause: cause}
}

// IsEngineFailure reports whether err came from the engine path.
func IsEngineFailure(err error) bool {
	_, ok := err.(engineFailureError)
	return ok
}

// placeholderFailureError is the one fatal generation error: the fallback
// itself failed and no further fallback exists.
type placeholderFailureError struct{ cause error }

func (e placeholderFailureError) Error() string {
	return "placeholder generation failed: " + e.cause.Error()
}

func (e placeholderFailureError) Unwrap() error { return e.cause }

// ErrPlaceholderFailure constructs a placeholderFailureError.
func ErrPlaceholderFailure(cause error) error { return placeholderFailureError{cause: cause} }

// IsPlaceholderFailure reports whether err means both generation paths are
// exhausted.
func IsPlaceholderFailure(err error) bool {
	_, ok := err.(placeholderFailureError)
	return ok
}
