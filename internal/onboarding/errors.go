package onboarding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/factory-onboarding/internal/types"
)

// ErrorCode is one of the four failure classes an onboarding attempt can end in
type ErrorCode string

const (
	// CodeLLMFailure means a model call at the coarse or fine stage failed
	CodeLLMFailure ErrorCode = "LLM_FAILURE"
	// CodeInvalidStructure means entity identity was broken, IDs were duplicated
	// or a due time fell outside the modeled day
	CodeInvalidStructure ErrorCode = "INVALID_STRUCTURE"
	// CodeNormalizationFailed means repairs would have dropped a whole job
	CodeNormalizationFailed ErrorCode = "NORMALIZATION_FAILED"
	// CodeCoverageMismatch means an explicitly named ID is missing from the result
	CodeCoverageMismatch ErrorCode = "COVERAGE_MISMATCH"
)

// maxErrorMessageLen bounds the underlying error text carried in LLM_FAILURE details
const maxErrorMessageLen = 300

// ExtractionError is the only error type that leaves a pipeline pass
type ExtractionError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Cause   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// IdentityError reports that the fine stage did not keep the coarse stage's IDs
type IdentityError struct {
	Axis    string // "machine" or "job"
	Kind    string // "added", "removed" or "renamed"
	Added   []string
	Removed []string
}

func (e *IdentityError) Error() string {
	switch e.Kind {
	case "added":
		return fmt.Sprintf("fine extraction added %s ids %v", e.Axis, e.Added)
	case "removed":
		return fmt.Sprintf("fine extraction removed %s ids %v", e.Axis, e.Removed)
	default:
		return fmt.Sprintf("fine extraction renamed %s ids %v to %v", e.Axis, e.Removed, e.Added)
	}
}

// classify maps a stage failure onto the error taxonomy
func classify(stage string, err error) *ExtractionError {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr
	}

	var idErr *IdentityError
	if errors.As(err, &idErr) {
		return &ExtractionError{
			Code:    CodeInvalidStructure,
			Message: idErr.Error(),
			Details: map[string]any{
				"stage":   stage,
				"axis":    idErr.Axis,
				"kind":    idErr.Kind,
				"added":   nonNil(idErr.Added),
				"removed": nonNil(idErr.Removed),
			},
			Cause: err,
		}
	}

	msg := truncate(err.Error(), maxErrorMessageLen)
	return &ExtractionError{
		Code:    CodeLLMFailure,
		Message: fmt.Sprintf("%s extraction failed: %s", stage, msg),
		Details: map[string]any{
			"stage":         stage,
			"error_type":    fmt.Sprintf("%T", err),
			"error_message": msg,
		},
		Cause: err,
	}
}

func invalidStructure(message string, details map[string]any) *ExtractionError {
	return &ExtractionError{Code: CodeInvalidStructure, Message: message, Details: details}
}

// invariantFailure converts a violated FactoryConfig invariant into INVALID_STRUCTURE
func invariantFailure(err error) *ExtractionError {
	details := map[string]any{}
	var inv *types.InvariantError
	if errors.As(err, &inv) {
		details["violations"] = inv.Violations
	}
	return &ExtractionError{
		Code:    CodeInvalidStructure,
		Message: err.Error(),
		Details: details,
		Cause:   err,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - len("...")
	// Avoid splitting a multi-byte rune
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}
