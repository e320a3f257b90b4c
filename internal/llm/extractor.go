package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes one structured extraction request.
type ExtractionSchema struct {
	Name        string
	Description string
	Fields      []SchemaField
	// Instructions is stage-specific text rendered verbatim after the output shape.
	Instructions string
}

// SchemaField is one top-level key of the expected JSON object.
type SchemaField struct {
	Name        string
	Type        string // shape hint; empty means string
	Description string
	Required    bool
}

// baseRules apply to every extraction.
var baseRules = []string{
	"Use only what the text states; do not invent machines, jobs or numbers.",
	"Return ONLY the JSON object, no markdown, no explanation, no code blocks.",
}

// BuildExtractionPrompt renders the task description, the JSON shape, the
// stage instructions, the base rules and the description text, in that order. The text is fenced with
// <description> tags so quotes inside it cannot end the block early.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", strings.TrimSpace(schema.Description))

	lines := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		hint := f.Type
		if hint == "" {
			hint = "string"
		}
		line := fmt.Sprintf("  %q: %s", f.Name, hint)
		if f.Required {
			line += " (required)"
		}
		if f.Description != "" {
			line += " // " + f.Description
		}
		lines = append(lines, line)
	}
	fmt.Fprintf(&sb, "Return ONLY valid JSON matching this exact structure:\n{\n%s\n}\n\n", strings.Join(lines, ",\n"))

	if text := strings.TrimSpace(schema.Instructions); text != "" {
		fmt.Fprintf(&sb, "%s\n\n", text)
	}

	sb.WriteString("Always:\n")
	for _, rule := range baseRules {
		fmt.Fprintf(&sb, "- %s\n", rule)
	}

	fmt.Fprintf(&sb, "\n<description>\n%s\n</description>\n", strings.TrimSpace(inputText))
	return sb.String()
}

// CoarseStructureSchema lists machines and jobs with names only.
func CoarseStructureSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "CoarseStructure",
		Description: `You are reading a description of a small factory.
List every machine and every job it mentions. Do not extract routings, durations or due times yet.
Machine IDs look like M1, M2, M_CUT. Job IDs look like J1, J2, J_WIDGET.`,
		Fields: []SchemaField{
			{
				Name:        "machines",
				Type:        `[{"id": "string", "name": "string"}]`,
				Description: "every machine, with a short human-readable name",
				Required:    true,
			},
			{
				Name:        "jobs",
				Type:        `[{"id": "string", "name": "string"}]`,
				Description: "every job, with a short human-readable name",
				Required:    true,
			},
		},
	}
}

// RawFactoryConfigSchema asks for routings, durations and due times over a fixed entity set.
func RawFactoryConfigSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "RawFactoryConfig",
		Description: `You are reading a description of a small factory whose machines and jobs are already known.
For each job, give its ordered routing (steps), the duration of each step in hours and its due time in hours.
Use exactly the machine and job IDs you are given. Never add, drop or rename one.`,
		Fields: []SchemaField{
			{
				Name:        "machines",
				Type:        `[{"id": "string", "name": "string"}]`,
				Description: "the given machines, unchanged",
				Required:    true,
			},
			{
				Name:        "jobs",
				Type:        `[{"id": "string", "name": "string", "steps": [{"machine_id": "string", "duration_hours": number|null}], "due_time_hour": number|null}]`,
				Description: "the given jobs with routings; use null when the text gives no number",
				Required:    true,
			},
		},
	}
}
