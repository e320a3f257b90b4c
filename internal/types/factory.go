// Package types provides type definitions for structured data used throughout the factory onboarding system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"sort"
)

// MaxDueTimeHour is the end of the modeled day
const MaxDueTimeHour = 24

// Machine is a resource a job step runs on
type Machine struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// Step is one visit of a job to a machine
type Step struct {
	MachineID     string `json:"machine_id" validate:"required"`
	DurationHours int    `json:"duration_hours" validate:"min=1"`
}

// Job is an ordered routing over machines with a due time
type Job struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Steps       []Step `json:"steps" validate:"min=1,dive"`
	DueTimeHour int    `json:"due_time_hour" validate:"min=0,max=24"`
}

// FactoryConfig is the strict configuration handed to the scheduler
type FactoryConfig struct {
	Machines []Machine `json:"machines" validate:"required,dive"`
	Jobs     []Job     `json:"jobs" validate:"required,dive"`
}

// MachineIDs returns the set of machine IDs in the config
func (c *FactoryConfig) MachineIDs() IDSet {
	set := make(IDSet, len(c.Machines))
	for _, m := range c.Machines {
		set.Add(m.ID)
	}
	return set
}

// JobIDs returns the set of job IDs in the config
func (c *FactoryConfig) JobIDs() IDSet {
	set := make(IDSet, len(c.Jobs))
	for _, j := range c.Jobs {
		set.Add(j.ID)
	}
	return set
}

// IsEmpty reports whether the config has no machines or no jobs
func (c *FactoryConfig) IsEmpty() bool {
	return len(c.Machines) == 0 || len(c.Jobs) == 0
}

// Clone returns a deep copy of the config
func (c *FactoryConfig) Clone() FactoryConfig {
	out := FactoryConfig{
		Machines: append([]Machine(nil), c.Machines...),
		Jobs:     make([]Job, len(c.Jobs)),
	}
	for i, job := range c.Jobs {
		job.Steps = append([]Step(nil), job.Steps...)
		out.Jobs[i] = job
	}
	return out
}

// ToRaw widens the config back into the permissive extraction shape
func (c *FactoryConfig) ToRaw() RawFactoryConfig {
	raw := RawFactoryConfig{
		Machines: make([]CoarseEntity, 0, len(c.Machines)),
		Jobs:     make([]RawJob, 0, len(c.Jobs)),
	}
	for _, m := range c.Machines {
		raw.Machines = append(raw.Machines, CoarseEntity{ID: m.ID, Name: m.Name})
	}
	for _, j := range c.Jobs {
		steps := make([]RawStep, 0, len(j.Steps))
		for _, s := range j.Steps {
			d := float64(s.DurationHours)
			steps = append(steps, RawStep{MachineID: s.MachineID, DurationHours: &d})
		}
		due := float64(j.DueTimeHour)
		raw.Jobs = append(raw.Jobs, RawJob{ID: j.ID, Name: j.Name, Steps: steps, DueTimeHour: &due})
	}
	return raw
}

// Validate checks every invariant the scheduler relies on: unique IDs,
// non-empty routings, known machine references and in-range integers.
func (c *FactoryConfig) Validate() error {
	var violations []InvariantViolation

	if err := validate.Struct(c); err != nil {
		violations = append(violations, violationsFromValidator(err)...)
	}

	if dups := duplicateMachineIDs(c.Machines); len(dups) > 0 {
		violations = append(violations, InvariantViolation{
			Field:   "machines",
			Message: fmt.Sprintf("duplicate machine ids: %v", dups),
		})
	}
	if dups := duplicateJobIDs(c.Jobs); len(dups) > 0 {
		violations = append(violations, InvariantViolation{
			Field:   "jobs",
			Message: fmt.Sprintf("duplicate job ids: %v", dups),
		})
	}

	known := c.MachineIDs()
	for i, job := range c.Jobs {
		for k, step := range job.Steps {
			if step.MachineID != "" && !known.Has(step.MachineID) {
				violations = append(violations, InvariantViolation{
					Field:   fmt.Sprintf("jobs[%d].steps[%d].machine_id", i, k),
					Message: fmt.Sprintf("unknown machine %q", step.MachineID),
				})
			}
		}
	}

	if len(violations) > 0 {
		return &InvariantError{Violations: violations}
	}
	return nil
}

// DuplicateIDs returns the sorted machine and job IDs that appear more than once
func (c *FactoryConfig) DuplicateIDs() (machines []string, jobs []string) {
	return duplicateMachineIDs(c.Machines), duplicateJobIDs(c.Jobs)
}

func duplicateMachineIDs(machines []Machine) []string {
	ids := make([]string, len(machines))
	for i, m := range machines {
		ids[i] = m.ID
	}
	return duplicates(ids)
}

func duplicateJobIDs(jobs []Job) []string {
	ids := make([]string, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	return duplicates(ids)
}

func duplicates(ids []string) []string {
	seen := make(map[string]int, len(ids))
	for _, id := range ids {
		seen[id]++
	}
	var dups []string
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	return dups
}
