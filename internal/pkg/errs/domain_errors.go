package errs

// Error categories shared by every layer. Domain sentinels are marked with one
// of these so that the HTTP layer can map them without knowing each sentinel.
var (
	ErrValidation            = New("validation error")
	ErrNotFound              = New("not found")
	ErrConflict              = New("conflict")
	ErrForbidden             = New("forbidden")
	ErrDependencyUnavailable = New("dependency unavailable")
)

// Validation returns a sentinel carrying the validation category.
func Validation(msg string) error {
	return Mark(New(msg), ErrValidation)
}

func NotFound(msg string) error {
	return Mark(New(msg), ErrNotFound)
}

func Conflict(msg string) error {
	return Mark(New(msg), ErrConflict)
}

func Forbidden(msg string) error {
	return Mark(New(msg), ErrForbidden)
}
