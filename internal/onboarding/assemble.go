package onboarding

import (
	"fmt"
	"math"

	"github.com/jonathan/factory-onboarding/internal/types"
)

// NormalizeFactory is the permissive repair path. Unlike ValidateAndNormalize
// it never fails: duplicates and jobs left without steps are dropped with a
// warning, and a negative due time is clamped to the end of the day. Due times
// above 24 are left for FactoryConfig.Validate to reject.
func NormalizeFactory(raw *types.RawFactoryConfig) (types.FactoryConfig, []string) {
	report := &NormalizationReport{Warnings: []string{}}
	cfg := types.FactoryConfig{
		Machines: make([]types.Machine, 0, len(raw.Machines)),
		Jobs:     make([]types.Job, 0, len(raw.Jobs)),
	}

	known := make(types.IDSet, len(raw.Machines))
	for _, m := range raw.Machines {
		if m.ID == "" {
			report.warn("dropped machine with no id")
			continue
		}
		if known.Has(m.ID) {
			report.warn("dropped duplicate machine %s", m.ID)
			continue
		}
		name := m.Name
		if name == "" {
			name = m.ID
			report.warn("machine %s: no name given, using its id", m.ID)
		}
		known.Add(m.ID)
		cfg.Machines = append(cfg.Machines, types.Machine{ID: m.ID, Name: name})
	}

	seenJobs := make(types.IDSet, len(raw.Jobs))
	for _, rawJob := range raw.Jobs {
		if rawJob.ID == "" {
			report.warn("dropped job with no id")
			continue
		}
		if seenJobs.Has(rawJob.ID) {
			report.warn("dropped duplicate job %s", rawJob.ID)
			continue
		}

		steps := repairSteps(rawJob, known, report)
		if len(steps) == 0 {
			report.warn("dropped job %s: no valid steps", rawJob.ID)
			continue
		}
		seenJobs.Add(rawJob.ID)

		name := rawJob.Name
		if name == "" {
			name = rawJob.ID
			report.warn("job %s: no name given, using its id", rawJob.ID)
		}
		cfg.Jobs = append(cfg.Jobs, types.Job{
			ID:          rawJob.ID,
			Name:        name,
			Steps:       steps,
			DueTimeHour: permissiveDueTime(rawJob, report),
		})
	}

	return cfg, report.Warnings
}

func permissiveDueTime(job types.RawJob, report *NormalizationReport) int {
	if job.DueTimeHour == nil {
		report.warn("job %s: no due time given, using hour %d", job.ID, types.MaxDueTimeHour)
		return types.MaxDueTimeHour
	}
	value := *job.DueTimeHour
	rounded := roundHalfUp(value)
	switch {
	case rounded < 0:
		report.warn("job %s: negative due_time_hour %s clamped to %d", job.ID, formatHours(value), types.MaxDueTimeHour)
		return types.MaxDueTimeHour
	case rounded > types.MaxDueTimeHour:
		// Kept past the day so Validate rejects it; saturated so it fits an int.
		report.warn("job %s: due_time_hour %s is past hour %d", job.ID, formatHours(value), types.MaxDueTimeHour)
		return int(min(rounded, math.MaxInt32))
	}
	due := int(rounded)
	if rounded != value {
		report.warn("job %s: due_time_hour %s rounded to %d", job.ID, formatHours(value), due)
	}
	return due
}

// Assemble runs the permissive repair path and then enforces every invariant.
// Violations, including due times above 24, are INVALID_STRUCTURE.
func Assemble(raw *types.RawFactoryConfig) (*types.FactoryConfig, []string, error) {
	cfg, warnings := NormalizeFactory(raw)
	if cfg.IsEmpty() {
		return nil, warnings, invalidStructure(
			fmt.Sprintf("assembled config is empty: %d machines, %d jobs", len(cfg.Machines), len(cfg.Jobs)),
			map[string]any{"machines": len(cfg.Machines), "jobs": len(cfg.Jobs)},
		)
	}
	if err := cfg.Validate(); err != nil {
		return nil, warnings, invariantFailure(err)
	}
	return &cfg, warnings, nil
}
