package observability

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/factory-onboarding/internal/onboarding"
	"github.com/jonathan/factory-onboarding/internal/types"
)

func sampleResult() *types.OnboardingResult {
	return &types.OnboardingResult{
		RunID:   "run-123",
		Config:  onboarding.DefaultFactory(),
		Outcome: types.OutcomeDegraded,
		Meta: types.OnboardingMeta{
			OnboardingErrors:    []string{},
			InferredAssumptions: []string{"job J3: no due time given, assumed 24"},
		},
		Coverage: &types.CoverageReport{
			DetectedMachines: []string{"M1", "M2", "M3"},
			DetectedJobs:     []string{"J1", "J2", "J3", "J4"},
			MissingJobs:      []string{"J4"},
			MachineCoverage:  1,
			JobCoverage:      0.75,
		},
		Diagnostics: types.Diagnostics{
			Trust: types.TrustLow,
			Issues: []types.OnboardingIssue{
				{Type: types.IssueAssumption, Severity: types.SeverityInfo, Message: "J3 due time assumed"},
				{Type: types.IssueCoverageShortfall, Severity: types.SeverityError, Message: "J4 missing"},
				{Type: types.IssueRepair, Severity: types.SeverityWarning, Message: "duration repaired"},
			},
		},
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintResult(sampleResult())
	output := buf.String()

	for _, want := range []string{
		"ONBOARDING", "DEGRADED", "LOW", "run-123", "assumed 24",
		"FACTORY CONFIG", "Machines (3)", "Cutting", "Jobs (3)", "due 12:00",
		"COVERAGE", "75%", "J4",
		"DIAGNOSTICS", "COVERAGE_SHORTFALL",
	} {
		assert.Contains(t, output, want)
	}
	assert.NotContains(t, output, "MULTI-PASS")
	assert.NotContains(t, output, "\x1b[", "no ANSI codes when writing to a buffer")
}

func TestPrintResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResult(nil)
	p.PrintSummary(nil)
	p.PrintFactoryConfig(nil)
	p.PrintCoverage(nil)
	p.PrintMultiPass(nil)

	assert.Empty(t, buf.String())
}

func TestPrintSummary_Fallback(t *testing.T) {
	var buf bytes.Buffer
	result := &types.OnboardingResult{
		Outcome:   types.OutcomeFallback,
		ErrorCode: "LLM_FAILURE",
		Meta: types.OnboardingMeta{
			UsedDefaultFactory: true,
			OnboardingErrors:   []string{"LLM_FAILURE: quota"},
		},
	}

	NewPrinter(&buf).PrintSummary(result)
	output := buf.String()

	assert.Contains(t, output, "FALLBACK")
	assert.Regexp(t, `Error:\s+LLM_FAILURE`, output)
	assert.Contains(t, output, "Default factory in use")
	assert.Contains(t, output, "✗ LLM_FAILURE: quota")
}

func TestPrintDiagnostics_OrdersBySeverity(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDiagnostics(sampleResult().Diagnostics)
	output := buf.String()

	errIdx := strings.Index(output, "[ERROR]")
	warnIdx := strings.Index(output, "[WARNING]")
	infoIdx := strings.Index(output, "[INFO]")
	assert.True(t, errIdx >= 0 && errIdx < warnIdx && warnIdx < infoIdx, output)
}

func TestPrintDiagnostics_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDiagnostics(types.Diagnostics{Trust: types.TrustHigh})
	assert.Contains(t, buf.String(), "No issues")
}

func TestPrintFactoryConfig_Truncates(t *testing.T) {
	cfg := types.FactoryConfig{Machines: []types.Machine{{ID: "M1", Name: "Saw"}}}
	for i := 0; i < maxItemsToShow+3; i++ {
		cfg.Jobs = append(cfg.Jobs, types.Job{
			ID: "J", Name: "Batch", DueTimeHour: 24,
			Steps: []types.Step{{MachineID: "M1", DurationHours: 1}},
		})
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintFactoryConfig(&cfg)
	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintMultiPass(t *testing.T) {
	mp := &types.MultiPassResult{
		Passes: []types.OnboardingPassResult{
			{Index: 0, Warnings: []string{"w"}},
			{Index: 1, Failed: true, ErrorCode: "LLM_FAILURE"},
		},
		SuccessfulPasses: 1,
		FailedPasses:     1,
		AgreementRatio:   0.5,
		SelectedPass:     0,
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintMultiPass(mp)
	output := buf.String()

	assert.Contains(t, output, "1 ok, 1 failed")
	assert.Contains(t, output, "Agreement: 0.50")
	assert.Contains(t, output, "Selected pass: 0")
	assert.Regexp(t, `pass 1\s+LLM_FAILURE`, output)
	assert.Regexp(t, `pass 0\s+1 warnings`, output)
}

func TestFormatRouting(t *testing.T) {
	tests := []struct {
		name  string
		steps []types.Step
		want  string
	}{
		{"empty", nil, "(no steps)"},
		{"single", []types.Step{{MachineID: "M1", DurationHours: 2}}, "M1 (2h)"},
		{"chain", []types.Step{{MachineID: "M1", DurationHours: 2}, {MachineID: "M2", DurationHours: 1}}, "M1 (2h) → M2 (1h)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRouting(tt.steps))
		})
	}
}

func TestPrintProgress_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(pass int) {
			defer wg.Done()
			p.PrintProgress(onboarding.ProgressEvent{Pass: pass, Step: onboarding.StageCoarse, Message: "2 machines, 3 jobs"})
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	for _, line := range lines {
		assert.Contains(t, line, "coarse_structure")
		assert.True(t, strings.HasSuffix(line, "2 machines, 3 jobs"))
	}
}
