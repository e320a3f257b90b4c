package onboarding

import (
	"context"
	"strings"

	"github.com/jonathan/factory-onboarding/internal/llm"
	"github.com/jonathan/factory-onboarding/internal/prompts"
	"github.com/jonathan/factory-onboarding/internal/schemas"
	"github.com/jonathan/factory-onboarding/internal/types"
)

// ExtractCoarse asks the model for the machine and job list, seeded with the
// IDs found verbatim in the text. Failures are returned as-is; the caller
// decides how to classify them.
func ExtractCoarse(ctx context.Context, caller llm.StructuredCaller, text string, explicit types.ExplicitIDs) (*types.CoarseStructure, error) {
	rules := prompts.Stage(prompts.CoarseEntities, map[string]string{
		"MachineIDs": joinOrNone(explicit.MachineIDs.Sorted()),
		"JobIDs":     joinOrNone(explicit.JobIDs.Sorted()),
	})

	schema := llm.CoarseStructureSchema()
	schema.Instructions = rules
	prompt := llm.BuildExtractionPrompt(schema, text)

	payload, err := caller.CallStructured(ctx, prompt, llm.Schema{
		Name:     schema.Name,
		Document: schemas.MustGet(schemas.CoarseStructure),
	})
	if err != nil {
		return nil, err
	}
	return types.DecodeCoarseStructure(payload)
}

func describeEntities(entities []types.CoarseEntity) string {
	if len(entities) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for i, e := range entities {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- ")
		sb.WriteString(e.ID)
		sb.WriteString(": ")
		sb.WriteString(e.Name)
	}
	return sb.String()
}
