// Package onboarding turns a free-form factory description into a strictly
// validated FactoryConfig, falling back to a known-good default when any stage fails.
package onboarding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/factory-onboarding/internal/ids"
	"github.com/jonathan/factory-onboarding/internal/llm"
	"github.com/jonathan/factory-onboarding/internal/types"
)

// Stage names, used for progress events and stored artifacts
const (
	StageExplicitIDs = "explicit_ids"
	StageCoarse      = "coarse_structure"
	StageFine        = "raw_factory_config"
	StageNormalize   = "factory_config"
	StageCoverage    = "coverage_report"
	StageResult      = "onboarding_result"
)

// Progress categories
const (
	CategoryExtraction    = "extraction"
	CategoryNormalization = "normalization"
	CategoryAudit         = "audit"
)

// ProgressEvent represents a progress update during a pass
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Pass     int    `json:"pass"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. In multi-pass runs
// it is called from several goroutines at once.
type ProgressCallback func(event ProgressEvent)

// Pipeline runs the five onboarding stages in order for one pass
type Pipeline struct {
	caller     llm.StructuredCaller
	logger     *zap.Logger
	OnProgress ProgressCallback
}

// NewPipeline creates a pipeline over the given model capability
func NewPipeline(caller llm.StructuredCaller, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{caller: caller, logger: logger}
}

func (p *Pipeline) emit(runID string, pass int, step, category, message string, content any) {
	if p.OnProgress != nil {
		p.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    runID,
			Pass:     pass,
			Content:  content,
		})
	}
}

// RunPass executes explicit-ID scan, coarse extraction, fine extraction,
// normalization and the coverage audit. The returned result is never nil; on
// failure it is marked Failed and the error is an *ExtractionError.
func (p *Pipeline) RunPass(ctx context.Context, runID string, index int, text string) (*types.OnboardingPassResult, error) {
	result := &types.OnboardingPassResult{Index: index}
	logger := p.logger.With(zap.Int("pass", index))

	fail := func(err *ExtractionError) (*types.OnboardingPassResult, error) {
		result.Failed = true
		result.Config = nil
		result.ErrorCode = string(err.Code)
		result.ErrorMessage = err.Message
		logger.Warn("onboarding pass failed",
			zap.String("code", string(err.Code)),
			zap.String("message", err.Message),
			zap.Any("details", err.Details))
		return result, err
	}

	// Explicit IDs
	explicit := ids.ExtractExplicitIDs(text)
	logger.Debug("explicit ids detected",
		zap.Strings("machines", explicit.MachineIDs.Sorted()),
		zap.Strings("jobs", explicit.JobIDs.Sorted()))
	p.emit(runID, index, StageExplicitIDs, CategoryExtraction,
		fmt.Sprintf("Detected %d machine and %d job ids", explicit.MachineIDs.Len(), explicit.JobIDs.Len()), explicit)

	// Coarse entities
	coarse, err := ExtractCoarse(ctx, p.caller, text, explicit)
	if err != nil {
		return fail(classify("coarse", err))
	}
	logger.Debug("coarse structure extracted",
		zap.Int("machines", len(coarse.Machines)),
		zap.Int("jobs", len(coarse.Jobs)))
	p.emit(runID, index, StageCoarse, CategoryExtraction,
		fmt.Sprintf("Extracted %d machines and %d jobs", len(coarse.Machines), len(coarse.Jobs)), coarse)

	// Fine parameters
	raw, err := ExtractFine(ctx, p.caller, text, coarse)
	if err != nil {
		return fail(classify("fine", err))
	}
	p.emit(runID, index, StageFine, CategoryExtraction, "Extracted routings, durations and due times", raw)

	// Normalize
	cfg, report, err := ValidateAndNormalize(raw)
	if err != nil {
		return fail(classify("normalize", err))
	}
	result.Warnings = report.Warnings
	result.Assumptions = report.Assumptions
	if cfg.IsEmpty() {
		return fail(invalidStructure(
			fmt.Sprintf("extracted config is empty: %d machines, %d jobs", len(cfg.Machines), len(cfg.Jobs)),
			map[string]any{"machines": len(cfg.Machines), "jobs": len(cfg.Jobs)},
		))
	}
	for _, w := range report.Warnings {
		logger.Info("repair applied", zap.String("warning", w))
	}
	p.emit(runID, index, StageNormalize, CategoryNormalization,
		fmt.Sprintf("Normalized config with %d repairs", len(report.Warnings)), cfg)

	// Coverage audit
	coverage := ComputeCoverage(explicit, cfg)
	result.Coverage = &coverage
	p.emit(runID, index, StageCoverage, CategoryAudit,
		fmt.Sprintf("Coverage machines=%.2f jobs=%.2f", coverage.MachineCoverage, coverage.JobCoverage), coverage)
	if err := CheckCoverage(coverage); err != nil {
		return fail(classify("coverage", err))
	}

	result.Config = cfg
	return result, nil
}
