package onboarding

import (
	"sort"

	"github.com/jonathan/factory-onboarding/internal/types"
)

// DiffFactories reports how config b (pass to) differs from config a (pass from).
// Machines are compared by name, jobs by name and due time, and routings
// step by step.
func DiffFactories(from, to int, a, b *types.FactoryConfig) types.FactoryDiff {
	diff := types.FactoryDiff{FromPass: from, ToPass: to}

	aMachines := make(map[string]types.Machine, len(a.Machines))
	for _, m := range a.Machines {
		aMachines[m.ID] = m
	}
	bMachines := make(map[string]types.Machine, len(b.Machines))
	for _, m := range b.Machines {
		bMachines[m.ID] = m
	}
	for id, bm := range bMachines {
		am, ok := aMachines[id]
		switch {
		case !ok:
			diff.AddedMachines = append(diff.AddedMachines, id)
		case am.Name != bm.Name:
			diff.ChangedMachines = append(diff.ChangedMachines, id)
		}
	}
	for id := range aMachines {
		if _, ok := bMachines[id]; !ok {
			diff.RemovedMachines = append(diff.RemovedMachines, id)
		}
	}

	aJobs := make(map[string]types.Job, len(a.Jobs))
	for _, j := range a.Jobs {
		aJobs[j.ID] = j
	}
	bJobs := make(map[string]types.Job, len(b.Jobs))
	for _, j := range b.Jobs {
		bJobs[j.ID] = j
	}
	for id, bj := range bJobs {
		aj, ok := aJobs[id]
		if !ok {
			diff.AddedJobs = append(diff.AddedJobs, id)
			continue
		}
		if aj.Name != bj.Name || aj.DueTimeHour != bj.DueTimeHour {
			diff.ChangedJobs = append(diff.ChangedJobs, id)
		}
		if !sameSteps(aj.Steps, bj.Steps) {
			if diff.StepChanges == nil {
				diff.StepChanges = make(map[string]types.StepListChange)
			}
			diff.StepChanges[id] = types.StepListChange{
				From: append([]types.Step(nil), aj.Steps...),
				To:   append([]types.Step(nil), bj.Steps...),
			}
		}
	}
	for id := range aJobs {
		if _, ok := bJobs[id]; !ok {
			diff.RemovedJobs = append(diff.RemovedJobs, id)
		}
	}

	sort.Strings(diff.AddedMachines)
	sort.Strings(diff.RemovedMachines)
	sort.Strings(diff.ChangedMachines)
	sort.Strings(diff.AddedJobs)
	sort.Strings(diff.RemovedJobs)
	sort.Strings(diff.ChangedJobs)
	return diff
}

func sameSteps(a, b []types.Step) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Consensus compares every pair of successful passes and scores their agreement.
// The ratio is the share of identical pairs scaled by the share of passes that
// succeeded; a single successful pass agrees with itself.
func Consensus(passes []types.OnboardingPassResult) types.MultiPassResult {
	result := types.MultiPassResult{
		Passes:       passes,
		Diffs:        []types.FactoryDiff{},
		SelectedPass: -1,
	}

	var ok []types.OnboardingPassResult
	for _, p := range passes {
		if p.Failed || p.Config == nil {
			result.FailedPasses++
			continue
		}
		result.SuccessfulPasses++
		ok = append(ok, p)
		if result.SelectedPass < 0 || p.Index < result.SelectedPass {
			result.SelectedPass = p.Index
		}
	}
	if len(passes) == 0 || len(ok) == 0 {
		return result
	}

	pairs, identical := 0, 0
	for i := 0; i < len(ok); i++ {
		for j := i + 1; j < len(ok); j++ {
			pairs++
			diff := DiffFactories(ok[i].Index, ok[j].Index, ok[i].Config, ok[j].Config)
			if diff.IsEmpty() {
				identical++
				continue
			}
			result.Diffs = append(result.Diffs, diff)
		}
	}

	pairAgreement := 1.0
	if pairs > 0 {
		pairAgreement = float64(identical) / float64(pairs)
	}
	result.AgreementRatio = pairAgreement * float64(len(ok)) / float64(len(passes))
	return result
}
