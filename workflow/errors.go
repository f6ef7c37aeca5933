package workflow

import "fmt"

// ValidationError reports missing or invalid caller input. It is raised
// before any write happens; callers should surface it as a form error and
// not retry automatically.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an operation against an approval record id that does
// not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("approval request %s not found", e.ID)
}
