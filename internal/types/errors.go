// Package types provides type definitions for structured data used throughout the factory onboarding system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// InvariantViolation is a single broken FactoryConfig invariant
type InvariantViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InvariantError lists every invariant a config breaks
type InvariantError struct {
	Violations []InvariantViolation
}

func (e *InvariantError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "invariant violation: " + strings.Join(parts, "; ")
}

// DecodeError represents a payload that could not be decoded into its DTO
type DecodeError struct {
	Type       string
	Message    string
	Violations []InvariantViolation
	Cause      error
}

func (e *DecodeError) Error() string {
	if len(e.Violations) > 0 {
		parts := make([]string, 0, len(e.Violations))
		for _, v := range e.Violations {
			parts = append(parts, fmt.Sprintf("%s %s", v.Field, v.Message))
		}
		return fmt.Sprintf("decode %s: %s", e.Type, strings.Join(parts, "; "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("decode %s: %s", e.Type, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
