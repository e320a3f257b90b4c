package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/factory-onboarding/internal/schemas"
)

// Schema is a named JSON Schema document a structured response must satisfy
type Schema struct {
	Name     string
	Document string
}

// StructuredCaller returns a JSON document that already conforms to the given schema.
// Implementations do not retry; callers decide what a failure means.
type StructuredCaller interface {
	CallStructured(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error)
}

// StructuredClient adapts a Client into a StructuredCaller at a fixed tier
type StructuredClient struct {
	client Client
	tier   ModelTier
}

// NewStructuredClient wraps client so every call uses tier
func NewStructuredClient(client Client, tier ModelTier) *StructuredClient {
	if tier == "" {
		tier = TierStandard
	}
	return &StructuredClient{client: client, tier: tier}
}

// CallStructured sends prompt with the schema appended and validates the reply
func (s *StructuredClient) CallStructured(ctx context.Context, prompt string, schema Schema) (json.RawMessage, error) {
	model := s.client.GetModel(s.tier)

	text, err := s.client.GenerateJSON(ctx, withSchema(prompt, schema), s.tier)
	if err != nil {
		return nil, &APICallError{Model: model, Message: "generate JSON", Cause: err}
	}

	text = CleanJSONBlock(text)
	if text == "" {
		return nil, &APICallError{Model: model, Message: "empty response"}
	}
	if !json.Valid([]byte(text)) {
		return nil, &SchemaError{Schema: schema.Name, Response: text, Cause: fmt.Errorf("response is not valid JSON")}
	}

	if schema.Document != "" {
		if err := schemas.ValidateJSONString(schema.Document, text); err != nil {
			return nil, &SchemaError{Schema: schema.Name, Response: text, Cause: err}
		}
	}

	return json.RawMessage(text), nil
}

func withSchema(prompt string, schema Schema) string {
	if schema.Document == "" {
		return prompt
	}
	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nThe response MUST validate against this JSON Schema (")
	sb.WriteString(schema.Name)
	sb.WriteString("):\n")
	sb.WriteString(schema.Document)
	sb.WriteString("\n")
	return sb.String()
}
