package problemgen

import "fmt"

// Validator checks one generated problem. Implementations are stateless.
type Validator interface {
	Name() string
	Validate(c *Content, in GenerateInput) *ValidationError
}

// ValidationError explains why a problem was dropped.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

func reject(v Validator, format string, args ...any) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
}
