package onboarding

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/factory-onboarding/internal/types"
)

func singleStepConfig(duration, due *float64) *types.RawFactoryConfig {
	return &types.RawFactoryConfig{
		Machines: []types.CoarseEntity{entity("M1", "Press")},
		Jobs: []types.RawJob{
			{ID: "J1", Name: "Lid", Steps: []types.RawStep{step("M1", duration)}, DueTimeHour: due},
		},
	}
}

func TestValidateAndNormalize_Durations(t *testing.T) {
	tests := []struct {
		name     string
		input    *float64
		expected int
		repaired bool
	}{
		{name: "valid integer unchanged", input: f64(3), expected: 3},
		{name: "zero", input: f64(0), expected: 1, repaired: true},
		{name: "negative", input: f64(-5), expected: 1, repaired: true},
		{name: "fraction rounds up at half", input: f64(2.5), expected: 3, repaired: true},
		{name: "one and a half", input: f64(1.5), expected: 2, repaired: true},
		{name: "half hour", input: f64(0.5), expected: 1, repaired: true},
		{name: "quarter rounds down", input: f64(2.25), expected: 2, repaired: true},
		{name: "large fraction", input: f64(3.7), expected: 4, repaired: true},
		{name: "tiny fraction clamps to one", input: f64(0.2), expected: 1, repaired: true},
		{name: "missing", input: nil, expected: 1, repaired: true},
		{name: "past int range is capped", input: f64(1e19), expected: MaxStepHours, repaired: true},
		{name: "far negative", input: f64(-1e19), expected: 1, repaired: true},
		{name: "at the cap unchanged", input: f64(MaxStepHours), expected: MaxStepHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, report, err := ValidateAndNormalize(singleStepConfig(tt.input, f64(8)))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Jobs[0].Steps[0].DurationHours)
			assert.Equal(t, tt.repaired, report.HasWarnings())
		})
	}
}

func TestValidateAndNormalize_DueTimes(t *testing.T) {
	tests := []struct {
		name        string
		input       *float64
		expected    int
		warning     bool
		assumption  bool
		wantInvalid bool
	}{
		{name: "in range", input: f64(17), expected: 17},
		{name: "start of day", input: f64(0), expected: 0},
		{name: "end of day", input: f64(24), expected: 24},
		{name: "missing defaults to end of day", input: nil, expected: 24, assumption: true},
		{name: "fraction rounds", input: f64(9.5), expected: 10, warning: true},
		{name: "just under limit rounds to 24", input: f64(24.4), expected: 24, warning: true},
		{name: "above the day", input: f64(25), wantInvalid: true},
		{name: "rounds above the day", input: f64(24.5), wantInvalid: true},
		{name: "negative", input: f64(-1), wantInvalid: true},
		{name: "past int range", input: f64(1e19), wantInvalid: true},
		{name: "far negative", input: f64(-1e19), wantInvalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, report, err := ValidateAndNormalize(singleStepConfig(f64(1), tt.input))
			if tt.wantInvalid {
				var extErr *ExtractionError
				require.True(t, errors.As(err, &extErr))
				assert.Equal(t, CodeInvalidStructure, extErr.Code)
				assert.Equal(t, "due_time_hour", extErr.Details["field"])
				assert.Equal(t, "J1", extErr.Details["job_id"])
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Jobs[0].DueTimeHour)
			assert.Equal(t, tt.warning, report.HasWarnings())
			assert.Equal(t, tt.assumption, len(report.Assumptions) > 0)
		})
	}
}

func TestValidateAndNormalize_UnknownMachineStepDropped(t *testing.T) {
	raw := &types.RawFactoryConfig{
		Machines: []types.CoarseEntity{entity("M1", "Press")},
		Jobs: []types.RawJob{
			{ID: "J1", Name: "Lid", Steps: []types.RawStep{step("M1", f64(2)), step("M7", f64(1))}, DueTimeHour: f64(8)},
		},
	}

	cfg, report, err := ValidateAndNormalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Step{{MachineID: "M1", DurationHours: 2}}, cfg.Jobs[0].Steps)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], `"M7"`)
}

func TestValidateAndNormalize_JobLossFails(t *testing.T) {
	raw := &types.RawFactoryConfig{
		Machines: []types.CoarseEntity{entity("M1", "Press")},
		Jobs: []types.RawJob{
			{ID: "J1", Name: "Lid", Steps: []types.RawStep{step("M1", f64(2))}, DueTimeHour: f64(8)},
			{ID: "J2", Name: "Base", Steps: []types.RawStep{step("M99", f64(2))}, DueTimeHour: f64(8)},
			{ID: "J3", Name: "Spare", Steps: []types.RawStep{}, DueTimeHour: f64(8)},
		},
	}

	cfg, _, err := ValidateAndNormalize(raw)
	assert.Nil(t, cfg)

	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, CodeNormalizationFailed, extErr.Code)
	assert.Equal(t, []string{"J1", "J2", "J3"}, extErr.Details["raw_job_ids"])
	assert.Equal(t, []string{"J1"}, extErr.Details["normalized_job_ids"])
	assert.Equal(t, []string{"J2", "J3"}, extErr.Details["missing_job_ids"])
}

func TestValidateAndNormalize_Duplicates(t *testing.T) {
	raw := &types.RawFactoryConfig{
		Machines: []types.CoarseEntity{entity("M1", "Press"), entity("M1", "Press again")},
		Jobs: []types.RawJob{
			{ID: "J1", Name: "Lid", Steps: []types.RawStep{step("M1", f64(2))}, DueTimeHour: f64(8)},
			{ID: "J1", Name: "Lid", Steps: []types.RawStep{step("M1", f64(2))}, DueTimeHour: f64(8)},
		},
	}

	_, _, err := ValidateAndNormalize(raw)
	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, CodeInvalidStructure, extErr.Code)
	assert.Equal(t, []string{"M1"}, extErr.Details["duplicate_machine_ids"])
	assert.Equal(t, []string{"J1"}, extErr.Details["duplicate_job_ids"])
}

func TestValidateAndNormalize_BlankEntity(t *testing.T) {
	raw := singleStepConfig(f64(1), f64(8))
	raw.Jobs[0].Name = ""

	_, _, err := ValidateAndNormalize(raw)
	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, CodeInvalidStructure, extErr.Code)
}

func TestValidateAndNormalize_Idempotent(t *testing.T) {
	raw := &types.RawFactoryConfig{
		Machines: []types.CoarseEntity{entity("M1", "Press"), entity("M2", "Oven")},
		Jobs: []types.RawJob{
			{ID: "J1", Name: "Lid", Steps: []types.RawStep{step("M1", f64(0)), step("M2", f64(2.5)), step("M5", f64(1))}, DueTimeHour: nil},
			{ID: "J2", Name: "Base", Steps: []types.RawStep{step("M2", nil)}, DueTimeHour: f64(11.5)},
		},
	}

	first, report, err := ValidateAndNormalize(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, report.Warnings)

	again := first.ToRaw()
	second, secondReport, err := ValidateAndNormalize(&again)
	require.NoError(t, err)
	assert.Empty(t, secondReport.Warnings)
	assert.Empty(t, secondReport.Assumptions)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("normalization is not idempotent (-first +second):\n%s", diff)
	}
	assert.NoError(t, second.Validate())
}

func TestNormalizeFactory_Permissive(t *testing.T) {
	raw := &types.RawFactoryConfig{
		Machines: []types.CoarseEntity{entity("M1", "Press"), entity("M1", "Duplicate")},
		Jobs: []types.RawJob{
			{ID: "J1", Name: "Lid", Steps: []types.RawStep{step("M1", f64(1))}, DueTimeHour: f64(-3)},
			{ID: "J2", Name: "Base", Steps: []types.RawStep{step("M9", f64(1))}, DueTimeHour: f64(5)},
			{ID: "J1", Name: "Lid again", Steps: []types.RawStep{step("M1", f64(1))}, DueTimeHour: f64(5)},
			{ID: "J3", Name: "Late", Steps: []types.RawStep{step("M1", f64(1))}, DueTimeHour: f64(30)},
		},
	}

	cfg, warnings := NormalizeFactory(raw)

	assert.Equal(t, []types.Machine{{ID: "M1", Name: "Press"}}, cfg.Machines)
	require.Len(t, cfg.Jobs, 2)
	assert.Equal(t, "J1", cfg.Jobs[0].ID)
	assert.Equal(t, types.MaxDueTimeHour, cfg.Jobs[0].DueTimeHour, "negative due time is clamped to end of day")
	assert.Equal(t, "J3", cfg.Jobs[1].ID)
	assert.Equal(t, 30, cfg.Jobs[1].DueTimeHour, "due time above the day is left for strict validation")
	assert.NotEmpty(t, warnings)
}

func TestNormalizeFactory_DueTimeWarnings(t *testing.T) {
	tests := []struct {
		name     string
		due      float64
		expected int
		warning  string
	}{
		{name: "negative clamped", due: -3, expected: types.MaxDueTimeHour, warning: "negative due_time_hour -3 clamped to 24"},
		{name: "small negative rounds to zero", due: -0.3, expected: 0, warning: "due_time_hour -0.3 rounded to 0"},
		{name: "past the day kept", due: 30, expected: 30, warning: "due_time_hour 30 is past hour 24"},
		{name: "past int range saturates", due: 1e19, expected: math.MaxInt32, warning: "due_time_hour 10000000000000000000 is past hour 24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, warnings := NormalizeFactory(singleStepConfig(f64(1), f64(tt.due)))
			require.Len(t, cfg.Jobs, 1)
			assert.Equal(t, tt.expected, cfg.Jobs[0].DueTimeHour)
			require.Len(t, warnings, 1)
			assert.Contains(t, warnings[0], tt.warning)
		})
	}
}

func TestAssemble(t *testing.T) {
	t.Run("valid after repair", func(t *testing.T) {
		cfg, warnings, err := Assemble(singleStepConfig(f64(0), f64(-2)))
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Jobs[0].Steps[0].DurationHours)
		assert.Equal(t, 24, cfg.Jobs[0].DueTimeHour)
		assert.Len(t, warnings, 2)
	})

	t.Run("due time above the day rejected", func(t *testing.T) {
		_, _, err := Assemble(singleStepConfig(f64(1), f64(26)))
		var extErr *ExtractionError
		require.True(t, errors.As(err, &extErr))
		assert.Equal(t, CodeInvalidStructure, extErr.Code)
		assert.Contains(t, extErr.Message, "due_time_hour")
	})

	t.Run("huge due time rejected not clamped", func(t *testing.T) {
		_, warnings, err := Assemble(singleStepConfig(f64(1e19), f64(1e19)))
		var extErr *ExtractionError
		require.True(t, errors.As(err, &extErr))
		assert.Equal(t, CodeInvalidStructure, extErr.Code)
		for _, w := range warnings {
			assert.NotContains(t, w, "negative")
		}
	})

	t.Run("empty rejected", func(t *testing.T) {
		raw := singleStepConfig(f64(1), f64(8))
		raw.Jobs[0].Steps = []types.RawStep{step("M4", f64(1))}
		_, _, err := Assemble(raw)
		var extErr *ExtractionError
		require.True(t, errors.As(err, &extErr))
		assert.Equal(t, CodeInvalidStructure, extErr.Code)
	})
}
