//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfig() FactoryConfig {
	return FactoryConfig{
		Machines: []Machine{
			{ID: "M1", Name: "Cutter"},
			{ID: "M2", Name: "Press"},
		},
		Jobs: []Job{
			{ID: "J1", Name: "Bracket", DueTimeHour: 12, Steps: []Step{
				{MachineID: "M1", DurationHours: 2},
				{MachineID: "M2", DurationHours: 3},
			}},
			{ID: "J2", Name: "Panel", DueTimeHour: 24, Steps: []Step{
				{MachineID: "M2", DurationHours: 1},
			}},
		},
	}
}

func TestFactoryConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*FactoryConfig)
		wantErr    bool
		wantFields []string
	}{
		{
			name:   "valid config",
			mutate: func(*FactoryConfig) {},
		},
		{
			name:       "duplicate machine id",
			mutate:     func(c *FactoryConfig) { c.Machines = append(c.Machines, Machine{ID: "M1", Name: "Other"}) },
			wantErr:    true,
			wantFields: []string{"machines"},
		},
		{
			name:       "duplicate job id",
			mutate:     func(c *FactoryConfig) { c.Jobs = append(c.Jobs, c.Jobs[1]) },
			wantErr:    true,
			wantFields: []string{"jobs"},
		},
		{
			name:       "job without steps",
			mutate:     func(c *FactoryConfig) { c.Jobs[1].Steps = []Step{} },
			wantErr:    true,
			wantFields: []string{"jobs[1].steps"},
		},
		{
			name:       "unknown machine reference",
			mutate:     func(c *FactoryConfig) { c.Jobs[0].Steps[1].MachineID = "M9" },
			wantErr:    true,
			wantFields: []string{"jobs[0].steps[1].machine_id"},
		},
		{
			name:       "zero duration",
			mutate:     func(c *FactoryConfig) { c.Jobs[0].Steps[0].DurationHours = 0 },
			wantErr:    true,
			wantFields: []string{"jobs[0].steps[0].duration_hours"},
		},
		{
			name:       "due time past end of day",
			mutate:     func(c *FactoryConfig) { c.Jobs[0].DueTimeHour = 25 },
			wantErr:    true,
			wantFields: []string{"jobs[0].due_time_hour"},
		},
		{
			name:       "negative due time",
			mutate:     func(c *FactoryConfig) { c.Jobs[1].DueTimeHour = -1 },
			wantErr:    true,
			wantFields: []string{"jobs[1].due_time_hour"},
		},
		{
			name:       "missing machine name",
			mutate:     func(c *FactoryConfig) { c.Machines[0].Name = "" },
			wantErr:    true,
			wantFields: []string{"machines[0].name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sampleConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var inv *InvariantError
			require.True(t, errors.As(err, &inv), "error should be InvariantError")

			fields := make([]string, 0, len(inv.Violations))
			for _, v := range inv.Violations {
				fields = append(fields, v.Field)
			}
			for _, want := range tt.wantFields {
				assert.Contains(t, fields, want)
			}
		})
	}
}

func TestFactoryConfig_DuplicateIDs(t *testing.T) {
	cfg := sampleConfig()
	cfg.Machines = append(cfg.Machines, Machine{ID: "M2", Name: "Again"})
	cfg.Jobs = append(cfg.Jobs, cfg.Jobs[0], cfg.Jobs[0])

	machines, jobs := cfg.DuplicateIDs()
	assert.Equal(t, []string{"M2"}, machines)
	assert.Equal(t, []string{"J1"}, jobs)
}

func TestFactoryConfig_CloneIsDeep(t *testing.T) {
	cfg := sampleConfig()
	clone := cfg.Clone()

	clone.Machines[0].Name = "Changed"
	clone.Jobs[0].Steps[0].DurationHours = 99

	assert.Equal(t, "Cutter", cfg.Machines[0].Name)
	assert.Equal(t, 2, cfg.Jobs[0].Steps[0].DurationHours)
}

func TestFactoryConfig_ToRaw(t *testing.T) {
	cfg := sampleConfig()
	raw := cfg.ToRaw()

	require.Len(t, raw.Machines, 2)
	require.Len(t, raw.Jobs, 2)
	assert.Equal(t, "M1", raw.Machines[0].ID)
	require.NotNil(t, raw.Jobs[0].DueTimeHour)
	assert.Equal(t, 12.0, *raw.Jobs[0].DueTimeHour)
	require.NotNil(t, raw.Jobs[0].Steps[1].DurationHours)
	assert.Equal(t, 3.0, *raw.Jobs[0].Steps[1].DurationHours)
	assert.True(t, raw.MachineIDs().Equal(cfg.MachineIDs()))
	assert.True(t, raw.JobIDs().Equal(cfg.JobIDs()))
}

func TestFactoryConfig_IsEmpty(t *testing.T) {
	cfg := sampleConfig()
	assert.False(t, cfg.IsEmpty())

	cfg.Jobs = nil
	assert.True(t, cfg.IsEmpty())
}

func TestFactoryConfig_JSONFieldNames(t *testing.T) {
	cfg := sampleConfig()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"machine_id":"M1"`)
	assert.Contains(t, string(data), `"duration_hours":2`)
	assert.Contains(t, string(data), `"due_time_hour":12`)

	decoded, err := DecodeFactoryConfig(data)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, *decoded); diff != "" {
		t.Errorf("decoded config mismatch (-want +got):\n%s", diff)
	}
}
