package onboarding

import (
	"context"
	"sort"

	"github.com/jonathan/factory-onboarding/internal/llm"
	"github.com/jonathan/factory-onboarding/internal/prompts"
	"github.com/jonathan/factory-onboarding/internal/schemas"
	"github.com/jonathan/factory-onboarding/internal/types"
)

// ExtractFine asks the model for routings, durations and due times over the
// entities fixed by the coarse stage. The returned machine and job ID sets
// equal the coarse sets, in coarse order; any deviation is an *IdentityError.
func ExtractFine(ctx context.Context, caller llm.StructuredCaller, text string, coarse *types.CoarseStructure) (*types.RawFactoryConfig, error) {
	rules := prompts.Stage(prompts.FineParameters, map[string]string{
		"Machines": describeEntities(coarse.Machines),
		"Jobs":     describeEntities(coarse.Jobs),
	})

	schema := llm.RawFactoryConfigSchema()
	schema.Instructions = rules
	prompt := llm.BuildExtractionPrompt(schema, text)

	payload, err := caller.CallStructured(ctx, prompt, llm.Schema{
		Name:     schema.Name,
		Document: schemas.MustGet(schemas.RawFactoryConfig),
	})
	if err != nil {
		return nil, err
	}

	raw, err := types.DecodeRawFactoryConfig(payload)
	if err != nil {
		return nil, err
	}

	if err := checkIdentity("machine", coarse.MachineIDs(), raw.MachineIDs()); err != nil {
		return nil, err
	}
	if err := checkIdentity("job", coarse.JobIDs(), raw.JobIDs()); err != nil {
		return nil, err
	}

	reorder(raw, coarse)
	return raw, nil
}

// checkIdentity requires got to be set-equal to want
func checkIdentity(axis string, want, got types.IDSet) error {
	added := got.Difference(want)
	removed := want.Difference(got)
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}

	kind := "renamed"
	switch {
	case len(removed) == 0:
		kind = "added"
	case len(added) == 0:
		kind = "removed"
	}
	return &IdentityError{Axis: axis, Kind: kind, Added: added, Removed: removed}
}

// reorder sorts machines and jobs into the coarse stage's order
func reorder(raw *types.RawFactoryConfig, coarse *types.CoarseStructure) {
	machineRank := rank(coarse.Machines)
	sort.SliceStable(raw.Machines, func(i, j int) bool {
		return machineRank[raw.Machines[i].ID] < machineRank[raw.Machines[j].ID]
	})

	jobRank := rank(coarse.Jobs)
	sort.SliceStable(raw.Jobs, func(i, j int) bool {
		return jobRank[raw.Jobs[i].ID] < jobRank[raw.Jobs[j].ID]
	})
}

func rank(entities []types.CoarseEntity) map[string]int {
	out := make(map[string]int, len(entities))
	for i, e := range entities {
		if _, seen := out[e.ID]; !seen {
			out[e.ID] = i
		}
	}
	return out
}
