// Package types provides type definitions for structured data used throughout the factory onboarding system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata and is safe for concurrent use
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so violations line up with the wire format
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeCoarseStructure strictly decodes and validates a coarse extraction payload
func DecodeCoarseStructure(data []byte) (*CoarseStructure, error) {
	var out CoarseStructure
	if err := decodeStrict(data, &out); err != nil {
		return nil, &DecodeError{Type: "CoarseStructure", Message: "invalid JSON", Cause: err}
	}
	out.trim()
	if err := validate.Struct(&out); err != nil {
		return nil, &DecodeError{Type: "CoarseStructure", Violations: violationsFromValidator(err)}
	}
	return &out, nil
}

// DecodeRawFactoryConfig strictly decodes and validates a fine extraction payload
func DecodeRawFactoryConfig(data []byte) (*RawFactoryConfig, error) {
	var out RawFactoryConfig
	if err := decodeStrict(data, &out); err != nil {
		return nil, &DecodeError{Type: "RawFactoryConfig", Message: "invalid JSON", Cause: err}
	}
	out.trim()
	if err := validate.Struct(&out); err != nil {
		return nil, &DecodeError{Type: "RawFactoryConfig", Violations: violationsFromValidator(err)}
	}
	return &out, nil
}

// DecodeFactoryConfig strictly decodes a FactoryConfig and checks every invariant
func DecodeFactoryConfig(data []byte) (*FactoryConfig, error) {
	var out FactoryConfig
	if err := decodeStrict(data, &out); err != nil {
		return nil, &DecodeError{Type: "FactoryConfig", Message: "invalid JSON", Cause: err}
	}
	out.trim()
	if err := out.Validate(); err != nil {
		var inv *InvariantError
		if errors.As(err, &inv) {
			return nil, &DecodeError{Type: "FactoryConfig", Violations: inv.Violations}
		}
		return nil, &DecodeError{Type: "FactoryConfig", Message: "validation failed", Cause: err}
	}
	return &out, nil
}

func decodeStrict(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected trailing data after JSON document")
	}
	return nil
}

func violationsFromValidator(err error) []InvariantViolation {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []InvariantViolation{{Field: "(root)", Message: err.Error()}}
	}
	out := make([]InvariantViolation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, InvariantViolation{
			Field:   fieldPath(fe.Namespace()),
			Message: describeTag(fe),
		})
	}
	return out
}

// fieldPath drops the leading struct type name from a validator namespace
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
