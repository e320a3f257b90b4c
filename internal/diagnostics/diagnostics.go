// Package diagnostics turns the warnings and failures of an onboarding run into
// severity-tagged issues and an advisory trust level. It never alters a result.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/factory-onboarding/internal/types"
)

const codeCoverageMismatch = "COVERAGE_MISMATCH"

// Input is everything Build looks at
type Input struct {
	// Passes holds one entry per pipeline pass, in index order
	Passes []types.OnboardingPassResult
	// Diffs are the non-empty pairwise differences between successful passes
	Diffs []types.FactoryDiff
	// Selected is the index of the pass whose config was used, or -1 on fallback
	Selected int
}

// Build aggregates the issues of a run and reduces them to a trust level
func Build(in Input) types.Diagnostics {
	issues := []types.OnboardingIssue{}
	add := func(t types.IssueType, sev types.Severity, msg string) {
		issues = append(issues, types.OnboardingIssue{Type: t, Severity: sev, Message: msg})
	}

	if sel := findPass(in.Passes, in.Selected); sel != nil {
		for _, w := range sel.Warnings {
			add(types.IssueRepair, types.SeverityWarning, w)
		}
		for _, a := range sel.Assumptions {
			add(types.IssueAssumption, types.SeverityInfo, a)
		}
	} else if len(in.Passes) > 0 {
		first := in.Passes[0]
		add(types.IssueExtractionFailure, types.SeverityError, failureText(first))
	}

	multi := len(in.Passes) > 1
	failed := 0
	for _, p := range in.Passes {
		if !p.Failed {
			continue
		}
		failed++
		if p.ErrorCode == codeCoverageMismatch {
			add(types.IssueCoverageShortfall, types.SeverityError, shortfallText(p))
		}
		if multi {
			add(types.IssuePassFailure, types.SeverityWarning,
				fmt.Sprintf("pass %d failed: %s", p.Index, failureText(p)))
		}
	}

	for _, d := range in.Diffs {
		if d.IsEmpty() {
			continue
		}
		add(types.IssuePassDisagreement, types.SeverityWarning, disagreementText(d))
	}

	return types.Diagnostics{
		Issues: issues,
		Trust:  score(issues, failed, len(in.Passes)),
	}
}

// score maps issues to a trust level. Pass failures only count as repair-class
// while they affect fewer than half of the passes.
func score(issues []types.OnboardingIssue, failed, total int) types.OnboardingTrust {
	if total > 0 && failed > 0 && failed*2 >= total {
		return types.TrustLow
	}

	trust := types.TrustHigh
	for _, issue := range issues {
		switch issue.Type {
		case types.IssueCoverageShortfall, types.IssuePassDisagreement, types.IssueExtractionFailure:
			return types.TrustLow
		case types.IssueRepair, types.IssuePassFailure:
			trust = types.TrustMedium
		}
	}
	return trust
}

func findPass(passes []types.OnboardingPassResult, index int) *types.OnboardingPassResult {
	if index < 0 {
		return nil
	}
	for i := range passes {
		if passes[i].Index == index && !passes[i].Failed {
			return &passes[i]
		}
	}
	return nil
}

func failureText(p types.OnboardingPassResult) string {
	if p.ErrorCode == "" {
		return p.ErrorMessage
	}
	return p.ErrorCode + ": " + p.ErrorMessage
}

func shortfallText(p types.OnboardingPassResult) string {
	if p.Coverage == nil {
		return fmt.Sprintf("pass %d lost explicitly named ids", p.Index)
	}
	return fmt.Sprintf("pass %d lost explicitly named ids: machines [%s] (%.2f), jobs [%s] (%.2f)",
		p.Index,
		strings.Join(p.Coverage.MissingMachines, ", "), p.Coverage.MachineCoverage,
		strings.Join(p.Coverage.MissingJobs, ", "), p.Coverage.JobCoverage)
}

func disagreementText(d types.FactoryDiff) string {
	var parts []string
	appendIDs := func(label string, ids []string) {
		if len(ids) > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", label, strings.Join(ids, ", ")))
		}
	}
	appendIDs("added machines", d.AddedMachines)
	appendIDs("removed machines", d.RemovedMachines)
	appendIDs("changed machines", d.ChangedMachines)
	appendIDs("added jobs", d.AddedJobs)
	appendIDs("removed jobs", d.RemovedJobs)
	appendIDs("changed jobs", d.ChangedJobs)
	if len(d.StepChanges) > 0 {
		ids := make([]string, 0, len(d.StepChanges))
		for id := range d.StepChanges {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		appendIDs("rerouted jobs", ids)
	}
	return fmt.Sprintf("passes %d and %d disagree: %s", d.FromPass, d.ToPass, strings.Join(parts, "; "))
}
