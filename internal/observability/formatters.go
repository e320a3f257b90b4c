// Package observability provides formatted terminal output for onboarding results.
package observability

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/factory-onboarding/internal/onboarding"
	"github.com/jonathan/factory-onboarding/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

var (
	accent  = lipgloss.Color("#D97706")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	warning = lipgloss.Color("#F59E0B")
	danger  = lipgloss.Color("#EF4444")
)

// Printer handles formatted output for the CLI
type Printer struct {
	mu  sync.Mutex
	out io.Writer

	box     lipgloss.Style
	title   lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	caution lipgloss.Style
	bad     lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer.
// Colors are only emitted when out is a color-capable terminal.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out: out,
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			Width(boxWidth),
		title:   r.NewStyle().Bold(true).Foreground(accent),
		muted:   r.NewStyle().Foreground(dim),
		good:    r.NewStyle().Foreground(success).Bold(true),
		caution: r.NewStyle().Foreground(warning).Bold(true),
		bad:     r.NewStyle().Foreground(danger).Bold(true),
	}
}

// printBox prints a bordered box with a title line and content
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	body := p.title.Render(title)
	if content != "" {
		body += "\n\n" + content
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.box.Render(body))
}

func (p *Printer) outcomeStyle(outcome types.Outcome) lipgloss.Style {
	switch outcome {
	case types.OutcomeOK:
		return p.good
	case types.OutcomeDegraded:
		return p.caution
	default:
		return p.bad
	}
}

func (p *Printer) trustStyle(trust types.OnboardingTrust) lipgloss.Style {
	switch trust {
	case types.TrustHigh:
		return p.good
	case types.TrustMedium:
		return p.caution
	default:
		return p.bad
	}
}

// PrintResult outputs every section of an onboarding result
func (p *Printer) PrintResult(result *types.OnboardingResult) {
	if result == nil {
		return
	}
	p.PrintSummary(result)
	p.PrintFactoryConfig(&result.Config)
	p.PrintCoverage(result.Coverage)
	p.PrintMultiPass(result.MultiPass)
	p.PrintDiagnostics(result.Diagnostics)
}

// PrintSummary outputs the outcome, trust level and any onboarding errors.
func (p *Printer) PrintSummary(result *types.OnboardingResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Outcome:  %s\n", p.outcomeStyle(result.Outcome).Render(string(result.Outcome)))
	fmt.Fprintf(&sb, "Trust:    %s\n", p.trustStyle(result.Diagnostics.Trust).Render(string(result.Diagnostics.Trust)))
	if result.ErrorCode != "" {
		fmt.Fprintf(&sb, "Error:    %s\n", result.ErrorCode)
	}
	fmt.Fprintf(&sb, "Run:      %s\n", p.muted.Render(result.RunID))
	if result.Meta.UsedDefaultFactory {
		sb.WriteString(p.bad.Render("Default factory in use: the description could not be onboarded") + "\n")
	}
	for _, msg := range result.Meta.OnboardingErrors {
		fmt.Fprintf(&sb, "  ✗ %s\n", msg)
	}
	for _, msg := range result.Meta.InferredAssumptions {
		fmt.Fprintf(&sb, "  ~ %s\n", msg)
	}

	p.printBox("ONBOARDING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFactoryConfig outputs machines and job routings
func (p *Printer) PrintFactoryConfig(cfg *types.FactoryConfig) {
	if cfg == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Machines (%d):\n", len(cfg.Machines))
	for _, m := range cfg.Machines {
		fmt.Fprintf(&sb, "  • %s  %s\n", m.ID, m.Name)
	}

	fmt.Fprintf(&sb, "\nJobs (%d):\n", len(cfg.Jobs))
	count := min(len(cfg.Jobs), maxItemsToShow)
	for _, job := range cfg.Jobs[:count] {
		fmt.Fprintf(&sb, "  • %s  %s  %s\n", job.ID, job.Name, p.muted.Render(fmt.Sprintf("due %02d:00", job.DueTimeHour)))
		fmt.Fprintf(&sb, "    %s\n", FormatRouting(job.Steps))
	}
	if len(cfg.Jobs) > maxItemsToShow {
		fmt.Fprintf(&sb, "  ... and %d more\n", len(cfg.Jobs)-maxItemsToShow)
	}

	p.printBox("FACTORY CONFIG", strings.TrimSuffix(sb.String(), "\n"))
}

// FormatRouting renders steps as "M1 (2h) → M2 (1h)"
func FormatRouting(steps []types.Step) string {
	if len(steps) == 0 {
		return "(no steps)"
	}
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = fmt.Sprintf("%s (%dh)", s.MachineID, s.DurationHours)
	}
	return strings.Join(parts, " → ")
}

// PrintCoverage outputs explicit-ID coverage
func (p *Printer) PrintCoverage(report *types.CoverageReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Machines: %.0f%% (%d detected)\n", report.MachineCoverage*100, len(report.DetectedMachines))
	fmt.Fprintf(&sb, "Jobs:     %.0f%% (%d detected)\n", report.JobCoverage*100, len(report.DetectedJobs))
	if len(report.MissingMachines) > 0 {
		fmt.Fprintf(&sb, "Missing machines: %s\n", p.bad.Render(strings.Join(report.MissingMachines, ", ")))
	}
	if len(report.MissingJobs) > 0 {
		fmt.Fprintf(&sb, "Missing jobs: %s\n", p.bad.Render(strings.Join(report.MissingJobs, ", ")))
	}

	p.printBox("COVERAGE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMultiPass outputs per-pass status and agreement
func (p *Printer) PrintMultiPass(mp *types.MultiPassResult) {
	if mp == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Passes: %d ok, %d failed\n", mp.SuccessfulPasses, mp.FailedPasses)
	fmt.Fprintf(&sb, "Agreement: %.2f\n", mp.AgreementRatio)
	if mp.SelectedPass >= 0 {
		fmt.Fprintf(&sb, "Selected pass: %d\n", mp.SelectedPass)
	}
	for _, pass := range mp.Passes {
		if pass.Failed {
			fmt.Fprintf(&sb, "  %s pass %d  %s\n", p.bad.Render("✗"), pass.Index, pass.ErrorCode)
			continue
		}
		fmt.Fprintf(&sb, "  %s pass %d  %d warnings\n", p.good.Render("✓"), pass.Index, len(pass.Warnings))
	}

	p.printBox("MULTI-PASS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDiagnostics outputs the issue list grouped by severity
func (p *Printer) PrintDiagnostics(d types.Diagnostics) {
	if len(d.Issues) == 0 {
		p.printBox("DIAGNOSTICS", p.good.Render("No issues"))
		return
	}

	var sb strings.Builder
	for _, severity := range []types.Severity{types.SeverityError, types.SeverityWarning, types.SeverityInfo} {
		for _, issue := range d.Issues {
			if issue.Severity != severity {
				continue
			}
			fmt.Fprintf(&sb, "%s %s: %s\n", p.severityTag(severity), issue.Type, issue.Message)
		}
	}

	p.printBox("DIAGNOSTICS", strings.TrimSuffix(sb.String(), "\n"))
}

func (p *Printer) severityTag(severity types.Severity) string {
	tag := "[" + string(severity) + "]"
	switch severity {
	case types.SeverityError:
		return p.bad.Render(tag)
	case types.SeverityWarning:
		return p.caution.Render(tag)
	default:
		return p.muted.Render(tag)
	}
}

// PrintProgress outputs a one-line stage update. It can be used directly as a
// ProgressCallback, including for multi-pass runs.
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func (p *Printer) PrintProgress(event onboarding.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", p.muted.Render(fmt.Sprintf("[pass %d] %-20s", event.Pass, event.Step)), event.Message)
}
