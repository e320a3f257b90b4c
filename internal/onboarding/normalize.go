package onboarding

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jonathan/factory-onboarding/internal/types"
)

// NormalizationReport lists what the normalizer had to repair or assume
type NormalizationReport struct {
	Warnings    []string `json:"warnings"`
	Assumptions []string `json:"assumptions"`
}

// HasWarnings reports whether any repair was applied
func (r *NormalizationReport) HasWarnings() bool {
	return len(r.Warnings) > 0
}

func (r *NormalizationReport) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *NormalizationReport) assume(format string, args ...any) {
	r.Assumptions = append(r.Assumptions, fmt.Sprintf(format, args...))
}

// ValidateAndNormalize converts a permissive extraction into a strict config.
// Small defects are repaired and reported; anything that would lose a job,
// duplicate an ID or place a due time outside the modeled day is an
// *ExtractionError. A returned config always satisfies FactoryConfig.Validate.
func ValidateAndNormalize(raw *types.RawFactoryConfig) (*types.FactoryConfig, *NormalizationReport, error) {
	report := &NormalizationReport{Warnings: []string{}, Assumptions: []string{}}

	if err := checkEntities(raw); err != nil {
		return nil, nil, err
	}

	cfg := &types.FactoryConfig{
		Machines: make([]types.Machine, 0, len(raw.Machines)),
		Jobs:     make([]types.Job, 0, len(raw.Jobs)),
	}
	for _, m := range raw.Machines {
		cfg.Machines = append(cfg.Machines, types.Machine{ID: m.ID, Name: m.Name})
	}

	known := raw.MachineIDs()
	for _, rawJob := range raw.Jobs {
		due, err := strictDueTime(rawJob, report)
		if err != nil {
			return nil, nil, err
		}

		steps := repairSteps(rawJob, known, report)
		if len(steps) == 0 {
			// Job loss is reported below with the full raw/normalized comparison
			continue
		}

		cfg.Jobs = append(cfg.Jobs, types.Job{
			ID:          rawJob.ID,
			Name:        rawJob.Name,
			Steps:       steps,
			DueTimeHour: due,
		})
	}

	rawJobIDs := raw.JobIDs()
	normalizedJobIDs := cfg.JobIDs()
	if missing := rawJobIDs.Difference(normalizedJobIDs); len(missing) > 0 {
		return nil, nil, &ExtractionError{
			Code:    CodeNormalizationFailed,
			Message: fmt.Sprintf("jobs left without valid steps: %s", joinOrNone(missing)),
			Details: map[string]any{
				"raw_job_ids":        rawJobIDs.Sorted(),
				"normalized_job_ids": normalizedJobIDs.Sorted(),
				"missing_job_ids":    missing,
			},
		}
	}

	if dupMachines, dupJobs := cfg.DuplicateIDs(); len(dupMachines) > 0 || len(dupJobs) > 0 {
		return nil, nil, invalidStructure(
			fmt.Sprintf("duplicate ids: machines %s, jobs %s", joinOrNone(dupMachines), joinOrNone(dupJobs)),
			map[string]any{
				"duplicate_machine_ids": nonNil(dupMachines),
				"duplicate_job_ids":     nonNil(dupJobs),
			},
		)
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("normalizer produced an invalid config: %v", err))
	}
	return cfg, report, nil
}

// checkEntities rejects blank IDs or names that bypassed the decode step
func checkEntities(raw *types.RawFactoryConfig) error {
	for i, m := range raw.Machines {
		if m.ID == "" || m.Name == "" {
			return invalidStructure(fmt.Sprintf("machine %d has no id or name", i),
				map[string]any{"field": fmt.Sprintf("machines[%d]", i)})
		}
	}
	for i, j := range raw.Jobs {
		if j.ID == "" || j.Name == "" {
			return invalidStructure(fmt.Sprintf("job %d has no id or name", i),
				map[string]any{"field": fmt.Sprintf("jobs[%d]", i)})
		}
	}
	return nil
}

// strictDueTime defaults a missing due time to the end of the day and rounds
// fractional ones. Anything outside [0, 24] after rounding is rejected.
func strictDueTime(job types.RawJob, report *NormalizationReport) (int, error) {
	if job.DueTimeHour == nil {
		report.assume("job %s: no due time given, assumed hour %d", job.ID, types.MaxDueTimeHour)
		return types.MaxDueTimeHour, nil
	}

	value := *job.DueTimeHour
	rounded := roundHalfUp(value)
	if rounded < 0 || rounded > types.MaxDueTimeHour {
		return 0, invalidStructure(
			fmt.Sprintf("job %s: due_time_hour %s is outside 0-%d", job.ID, formatHours(value), types.MaxDueTimeHour),
			map[string]any{
				"field":  "due_time_hour",
				"job_id": job.ID,
				"value":  value,
			},
		)
	}
	due := int(rounded)
	if rounded != value {
		report.warn("job %s: due_time_hour %s rounded to %d", job.ID, formatHours(value), due)
	}
	return due, nil
}

// repairSteps drops steps on unknown machines and repairs their durations
func repairSteps(job types.RawJob, known types.IDSet, report *NormalizationReport) []types.Step {
	steps := make([]types.Step, 0, len(job.Steps))
	for i, s := range job.Steps {
		if !known.Has(s.MachineID) {
			report.warn("job %s: dropped step %d on unknown machine %q", job.ID, i+1, s.MachineID)
			continue
		}
		duration, repaired := repairDuration(s.DurationHours)
		if repaired {
			report.warn("job %s: step %d on %s duration_hours %s repaired to %d",
				job.ID, i+1, s.MachineID, describeHours(s.DurationHours), duration)
		}
		steps = append(steps, types.Step{MachineID: s.MachineID, DurationHours: duration})
	}
	return steps
}

// MaxStepHours caps a repaired step duration so it always fits an int.
const MaxStepHours = math.MaxInt32

// repairDuration rounds half-up and clamps to [1, MaxStepHours]
func repairDuration(hours *float64) (int, bool) {
	if hours == nil {
		return 1, true
	}
	d := min(max(roundHalfUp(*hours), 1), MaxStepHours)
	return int(d), d != *hours
}

// roundHalfUp stays in float64 so callers range-check before converting.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func describeHours(v *float64) string {
	if v == nil {
		return "(missing)"
	}
	return formatHours(*v)
}
