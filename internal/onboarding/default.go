package onboarding

import "github.com/jonathan/factory-onboarding/internal/types"

// DefaultFactory returns the fallback configuration: three machines with M2 as
// the shared bottleneck and three jobs that all pass through it. Each call
// returns a fresh copy.
func DefaultFactory() types.FactoryConfig {
	return types.FactoryConfig{
		Machines: []types.Machine{
			{ID: "M1", Name: "Cutting"},
			{ID: "M2", Name: "Assembly"},
			{ID: "M3", Name: "Packaging"},
		},
		Jobs: []types.Job{
			{
				ID:   "J1",
				Name: "Widget A",
				Steps: []types.Step{
					{MachineID: "M1", DurationHours: 1},
					{MachineID: "M2", DurationHours: 3},
					{MachineID: "M3", DurationHours: 1},
				},
				DueTimeHour: 12,
			},
			{
				ID:   "J2",
				Name: "Widget B",
				Steps: []types.Step{
					{MachineID: "M1", DurationHours: 2},
					{MachineID: "M2", DurationHours: 2},
					{MachineID: "M3", DurationHours: 1},
				},
				DueTimeHour: 14,
			},
			{
				ID:   "J3",
				Name: "Gizmo",
				Steps: []types.Step{
					{MachineID: "M2", DurationHours: 4},
					{MachineID: "M3", DurationHours: 2},
				},
				DueTimeHour: 16,
			},
		},
	}
}
