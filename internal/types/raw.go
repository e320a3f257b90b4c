// Package types provides type definitions for structured data used throughout the factory onboarding system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// CoarseEntity is a machine or job as proposed by the coarse extraction stage
type CoarseEntity struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// CoarseStructure is the entity-only extraction result (no routing or timing)
type CoarseStructure struct {
	Machines []CoarseEntity `json:"machines" validate:"required,dive"`
	Jobs     []CoarseEntity `json:"jobs" validate:"required,dive"`
}

// MachineIDs returns the set of machine IDs
func (c *CoarseStructure) MachineIDs() IDSet {
	return entityIDs(c.Machines)
}

// JobIDs returns the set of job IDs
func (c *CoarseStructure) JobIDs() IDSet {
	return entityIDs(c.Jobs)
}

// RawStep is a permissive step: duration may be missing, zero, negative or fractional
type RawStep struct {
	MachineID     string   `json:"machine_id"`
	DurationHours *float64 `json:"duration_hours"`
}

// RawJob is a permissive job: steps may be empty and the due time absent or fractional
type RawJob struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Steps       []RawStep `json:"steps"`
	DueTimeHour *float64  `json:"due_time_hour"`
}

// RawFactoryConfig is the full permissive result of the fine extraction stage
type RawFactoryConfig struct {
	Machines []CoarseEntity `json:"machines" validate:"required,dive"`
	Jobs     []RawJob       `json:"jobs" validate:"required,dive"`
}

// MachineIDs returns the set of machine IDs
func (r *RawFactoryConfig) MachineIDs() IDSet {
	return entityIDs(r.Machines)
}

// JobIDs returns the set of job IDs
func (r *RawFactoryConfig) JobIDs() IDSet {
	set := make(IDSet, len(r.Jobs))
	for _, j := range r.Jobs {
		set.Add(j.ID)
	}
	return set
}

func entityIDs(entities []CoarseEntity) IDSet {
	set := make(IDSet, len(entities))
	for _, e := range entities {
		set.Add(e.ID)
	}
	return set
}

func (c *CoarseStructure) trim() {
	trimEntities(c.Machines)
	trimEntities(c.Jobs)
}

func (r *RawFactoryConfig) trim() {
	trimEntities(r.Machines)
	for i := range r.Jobs {
		job := &r.Jobs[i]
		job.ID = strings.TrimSpace(job.ID)
		job.Name = strings.TrimSpace(job.Name)
		for k := range job.Steps {
			job.Steps[k].MachineID = strings.TrimSpace(job.Steps[k].MachineID)
		}
	}
}

func (c *FactoryConfig) trim() {
	for i := range c.Machines {
		c.Machines[i].ID = strings.TrimSpace(c.Machines[i].ID)
		c.Machines[i].Name = strings.TrimSpace(c.Machines[i].Name)
	}
	for i := range c.Jobs {
		job := &c.Jobs[i]
		job.ID = strings.TrimSpace(job.ID)
		job.Name = strings.TrimSpace(job.Name)
		for k := range job.Steps {
			job.Steps[k].MachineID = strings.TrimSpace(job.Steps[k].MachineID)
		}
	}
}

func trimEntities(entities []CoarseEntity) {
	for i := range entities {
		entities[i].ID = strings.TrimSpace(entities[i].ID)
		entities[i].Name = strings.TrimSpace(entities[i].Name)
	}
}
