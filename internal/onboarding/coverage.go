package onboarding

import (
	"fmt"

	"github.com/jonathan/factory-onboarding/internal/types"
)

// ComputeCoverage compares the IDs named in the text with those in cfg
func ComputeCoverage(explicit types.ExplicitIDs, cfg *types.FactoryConfig) types.CoverageReport {
	parsedMachines := cfg.MachineIDs()
	parsedJobs := cfg.JobIDs()
	missingMachines := explicit.MachineIDs.Difference(parsedMachines)
	missingJobs := explicit.JobIDs.Difference(parsedJobs)

	return types.CoverageReport{
		DetectedMachines: explicit.MachineIDs.Sorted(),
		DetectedJobs:     explicit.JobIDs.Sorted(),
		ParsedMachines:   parsedMachines.Sorted(),
		ParsedJobs:       parsedJobs.Sorted(),
		MissingMachines:  missingMachines,
		MissingJobs:      missingJobs,
		MachineCoverage:  ratio(explicit.MachineIDs.Len(), len(missingMachines)),
		JobCoverage:      ratio(explicit.JobIDs.Len(), len(missingJobs)),
	}
}

// ratio is 1.0 when nothing was detected
func ratio(detected, missing int) float64 {
	if detected == 0 {
		return 1.0
	}
	return float64(detected-missing) / float64(detected)
}

// CheckCoverage rejects any report where an explicitly named ID was lost
func CheckCoverage(report types.CoverageReport) error {
	if report.IsComplete() {
		return nil
	}
	return &ExtractionError{
		Code: CodeCoverageMismatch,
		Message: fmt.Sprintf("explicit ids missing from config: machines %s, jobs %s",
			joinOrNone(report.MissingMachines), joinOrNone(report.MissingJobs)),
		Details: map[string]any{
			"missing_machines": report.MissingMachines,
			"missing_jobs":     report.MissingJobs,
			"machine_coverage": report.MachineCoverage,
			"job_coverage":     report.JobCoverage,
		},
	}
}
