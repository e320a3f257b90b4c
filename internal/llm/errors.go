package llm

import "fmt"

// APICallError represents a failed call to the model provider
type APICallError struct {
	Model   string
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model call to %s failed: %s: %v", e.Model, e.Message, e.Cause)
	}
	return fmt.Sprintf("model call to %s failed: %s", e.Model, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// SchemaError represents a model response that does not conform to the requested schema
type SchemaError struct {
	Schema   string
	Response string
	Cause    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("response does not match schema %s: %v", e.Schema, e.Cause)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}
