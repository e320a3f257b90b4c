// Package types provides type definitions for structured data used throughout the factory onboarding system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CoverageReport compares explicitly mentioned IDs with the parsed config
type CoverageReport struct {
	DetectedMachines []string `json:"detected_machines"`
	DetectedJobs     []string `json:"detected_jobs"`
	ParsedMachines   []string `json:"parsed_machines"`
	ParsedJobs       []string `json:"parsed_jobs"`
	MissingMachines  []string `json:"missing_machines"`
	MissingJobs      []string `json:"missing_jobs"`
	MachineCoverage  float64  `json:"machine_coverage"`
	JobCoverage      float64  `json:"job_coverage"`
}

// IsComplete reports whether every detected ID made it into the config
func (r *CoverageReport) IsComplete() bool {
	return r.MachineCoverage == 1.0 && r.JobCoverage == 1.0
}

// Outcome is the externally observable result class of an onboarding attempt
type Outcome string

const (
	// OutcomeOK means the model output was used with no repairs
	OutcomeOK Outcome = "OK"
	// OutcomeDegraded means the model output was used after deterministic repairs
	OutcomeDegraded Outcome = "DEGRADED"
	// OutcomeFallback means the default factory replaced a failed extraction
	OutcomeFallback Outcome = "FALLBACK"
)

// OnboardingMeta is the caller-visible metadata accompanying a FactoryConfig
type OnboardingMeta struct {
	UsedDefaultFactory  bool     `json:"used_default_factory"`
	OnboardingErrors    []string `json:"onboarding_errors"`
	InferredAssumptions []string `json:"inferred_assumptions"`
}

// OnboardingPassResult is the outcome of one full extraction pass
type OnboardingPassResult struct {
	Index        int             `json:"index"`
	Config       *FactoryConfig  `json:"config,omitempty"`
	Coverage     *CoverageReport `json:"coverage,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
	Assumptions  []string        `json:"assumptions,omitempty"`
	Failed       bool            `json:"failed"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// StepListChange records a job whose routing differs between two passes
type StepListChange struct {
	From []Step `json:"from"`
	To   []Step `json:"to"`
}

// FactoryDiff records how one pass's config differs from another's
type FactoryDiff struct {
	FromPass        int                       `json:"from_pass"`
	ToPass          int                       `json:"to_pass"`
	AddedMachines   []string                  `json:"added_machines,omitempty"`
	RemovedMachines []string                  `json:"removed_machines,omitempty"`
	ChangedMachines []string                  `json:"changed_machines,omitempty"`
	AddedJobs       []string                  `json:"added_jobs,omitempty"`
	RemovedJobs     []string                  `json:"removed_jobs,omitempty"`
	ChangedJobs     []string                  `json:"changed_jobs,omitempty"`
	StepChanges     map[string]StepListChange `json:"step_changes,omitempty"`
}

// IsEmpty reports whether the two passes agreed completely
func (d *FactoryDiff) IsEmpty() bool {
	return len(d.AddedMachines) == 0 &&
		len(d.RemovedMachines) == 0 &&
		len(d.ChangedMachines) == 0 &&
		len(d.AddedJobs) == 0 &&
		len(d.RemovedJobs) == 0 &&
		len(d.ChangedJobs) == 0 &&
		len(d.StepChanges) == 0
}

// MultiPassResult aggregates N independent passes over the same input
type MultiPassResult struct {
	Passes           []OnboardingPassResult `json:"passes"`
	Diffs            []FactoryDiff          `json:"diffs"`
	SuccessfulPasses int                    `json:"successful_passes"`
	FailedPasses     int                    `json:"failed_passes"`
	AgreementRatio   float64                `json:"agreement_ratio"`
	// SelectedPass is the index of the pass whose config was used, or -1
	SelectedPass int `json:"selected_pass"`
}

// Severity classifies an onboarding issue
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// IssueType classifies where an onboarding issue came from
type IssueType string

const (
	IssueRepair            IssueType = "REPAIR"
	IssueAssumption        IssueType = "ASSUMPTION"
	IssueCoverageShortfall IssueType = "COVERAGE_SHORTFALL"
	IssuePassDisagreement  IssueType = "PASS_DISAGREEMENT"
	IssuePassFailure       IssueType = "PASS_FAILURE"
	IssueExtractionFailure IssueType = "EXTRACTION_FAILURE"
)

// OnboardingIssue is one diagnostic finding
type OnboardingIssue struct {
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// OnboardingTrust is the advisory confidence level of a result
type OnboardingTrust string

const (
	TrustHigh   OnboardingTrust = "HIGH"
	TrustMedium OnboardingTrust = "MEDIUM"
	TrustLow    OnboardingTrust = "LOW"
)

// Diagnostics is the severity-classified issue list plus the overall trust level
type Diagnostics struct {
	Issues []OnboardingIssue `json:"issues"`
	Trust  OnboardingTrust   `json:"trust"`
}

// OnboardingResult is everything a caller gets back from one onboarding request
type OnboardingResult struct {
	RunID       string           `json:"run_id"`
	Config      FactoryConfig    `json:"config"`
	Meta        OnboardingMeta   `json:"meta"`
	Outcome     Outcome          `json:"outcome"`
	ErrorCode   string           `json:"error_code,omitempty"`
	Coverage    *CoverageReport  `json:"coverage,omitempty"`
	MultiPass   *MultiPassResult `json:"multi_pass,omitempty"`
	Diagnostics Diagnostics      `json:"diagnostics"`
}
