// Package schemas provides JSON Schema validation for model responses and config files.
// The documents the pipeline depends on are embedded at compile time.
package schemas

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Names of the embedded schema documents
const (
	CoarseStructure  = "coarse_structure"
	RawFactoryConfig = "raw_factory_config"
	FactoryConfig    = "factory_config"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Get returns the embedded schema document with the given name
func Get(name string) (string, error) {
	data, err := schemaFiles.ReadFile(name + ".schema.json")
	if err != nil {
		return "", &SchemaLoadError{Path: name, Message: "unknown schema", Cause: err}
	}
	return string(data), nil
}

// MustGet returns the embedded schema document, panicking if it does not exist.
// Use this for schemas that are required at initialization time.
func MustGet(name string) string {
	doc, err := Get(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load schema: %v", err))
	}
	return doc
}

// Names lists the embedded schema documents
func Names() []string {
	entries, err := schemaFiles.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".schema.json"))
	}
	sort.Strings(names)
	return names
}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// compiled caches parsed schemas by document text. Model responses are
// validated on every call against one of a handful of fixed documents.
var compiled sync.Map // string -> *gojsonschema.Schema

func compile(doc, label string) (*gojsonschema.Schema, error) {
	if s, ok := compiled.Load(doc); ok {
		return s.(*gojsonschema.Schema), nil
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, &SchemaLoadError{Path: label, Message: "invalid schema", Cause: err}
	}
	actual, _ := compiled.LoadOrStore(doc, s)
	return actual.(*gojsonschema.Schema), nil
}

// ValidateJSONString validates JSON content against schema content
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validate(schemaContent, gojsonschema.NewStringLoader(jsonContent), "(string schema)")
}

// ValidateNamed validates JSON content against one of the embedded schemas
func ValidateNamed(name string, jsonContent []byte) error {
	doc, err := Get(name)
	if err != nil {
		return err
	}
	return validate(doc, gojsonschema.NewBytesLoader(jsonContent), name)
}

func validate(doc string, document gojsonschema.JSONLoader, label string) error {
	schema, err := compile(doc, label)
	if err != nil {
		return err
	}
	result, err := schema.Validate(document)
	if err != nil {
		// The schema compiled, so this is the document failing to parse.
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	if result.Valid() {
		return nil
	}

	out := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		out.Errors = append(out.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return out
}
