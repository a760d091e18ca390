package widget

import "fmt"

// ValidationError reports a submission rejected before any request is issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var ErrEmptyQuery = &ValidationError{Field: "query", Message: "Please type your request."}
