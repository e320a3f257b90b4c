package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/factory-onboarding/internal/diagnostics"
	"github.com/jonathan/factory-onboarding/internal/llm"
	"github.com/jonathan/factory-onboarding/internal/types"
)

// DefaultMaxParallel bounds concurrent passes in a multi-pass run
const DefaultMaxParallel = 4

// ArtifactSink persists stage artifacts of a run. Implementations must be safe
// for concurrent use; sink failures are logged and never affect the result.
type ArtifactSink interface {
	CreateRun(ctx context.Context, runID uuid.UUID, passes int) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) error
	CompleteRun(ctx context.Context, runID uuid.UUID, outcome, errorCode string) error
}

// Options configures a Service
type Options struct {
	Caller      llm.StructuredCaller
	Logger      *zap.Logger
	Sink        ArtifactSink
	OnProgress  ProgressCallback
	MaxParallel int
}

// Service is the onboarding boundary: it always returns a usable config
type Service struct {
	caller      llm.StructuredCaller
	logger      *zap.Logger
	sink        ArtifactSink
	onProgress  ProgressCallback
	maxParallel int
}

// NewService creates a Service. A model capability is required.
func NewService(opts Options) (*Service, error) {
	if opts.Caller == nil {
		return nil, errors.New("onboarding: a structured caller is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxParallel := opts.MaxParallel
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallel
	}
	return &Service{
		caller:      opts.Caller,
		logger:      logger,
		sink:        opts.Sink,
		onProgress:  opts.OnProgress,
		maxParallel: maxParallel,
	}, nil
}

// WithProgress returns a copy of s that also reports stage events to cb.
// The receiver is not modified.
func (s *Service) WithProgress(cb ProgressCallback) *Service {
	out := *s
	prev := s.onProgress
	out.onProgress = func(event ProgressEvent) {
		if prev != nil {
			prev(event)
		}
		cb(event)
	}
	return &out
}

// Onboard runs a single pass and applies the fallback ladder
func (s *Service) Onboard(ctx context.Context, text string) *types.OnboardingResult {
	runID := uuid.New()
	logger := s.logger.With(zap.String("run_id", runID.String()))
	s.startRun(ctx, runID, 1, logger)

	pass := s.safeRunPass(ctx, runID, 0, text, logger)
	selected := -1
	if !pass.Failed {
		selected = pass.Index
	}

	result := s.buildResult(runID, []types.OnboardingPassResult{pass}, selected)
	result.Diagnostics = diagnostics.Build(diagnostics.Input{
		Passes:   []types.OnboardingPassResult{pass},
		Selected: selected,
	})

	s.finishRun(ctx, runID, result, logger)
	return result
}

// OnboardMultiPass runs passes independent pipeline passes in parallel and
// uses the lowest-index successful one. Failed passes lower trust but never
// abort the batch; if every pass fails the default factory is used.
func (s *Service) OnboardMultiPass(ctx context.Context, text string, passes int) *types.OnboardingResult {
	if passes <= 1 {
		return s.Onboard(ctx, text)
	}

	runID := uuid.New()
	logger := s.logger.With(zap.String("run_id", runID.String()), zap.Int("passes", passes))
	s.startRun(ctx, runID, passes, logger)

	results := make([]types.OnboardingPassResult, passes)
	var g errgroup.Group
	g.SetLimit(s.maxParallel)
	for i := 0; i < passes; i++ {
		g.Go(func() error {
			results[i] = s.safeRunPass(ctx, runID, i, text, logger)
			return nil
		})
	}
	_ = g.Wait()

	consensus := Consensus(results)
	logger.Info("multi-pass consensus",
		zap.Int("successful", consensus.SuccessfulPasses),
		zap.Int("failed", consensus.FailedPasses),
		zap.Float64("agreement", consensus.AgreementRatio),
		zap.Int("selected", consensus.SelectedPass))

	result := s.buildResult(runID, results, consensus.SelectedPass)
	result.MultiPass = &consensus
	result.Diagnostics = diagnostics.Build(diagnostics.Input{
		Passes:   results,
		Diffs:    consensus.Diffs,
		Selected: consensus.SelectedPass,
	})

	s.finishRun(ctx, runID, result, logger)
	return result
}

// safeRunPass runs one pass and converts a panic into an INVALID_STRUCTURE failure
func (s *Service) safeRunPass(ctx context.Context, runID uuid.UUID, index int, text string, logger *zap.Logger) (out types.OnboardingPassResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("onboarding pass panicked", zap.Int("pass", index), zap.Any("panic", r))
			out = types.OnboardingPassResult{
				Index:        index,
				Failed:       true,
				ErrorCode:    string(CodeInvalidStructure),
				ErrorMessage: fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	pipeline := NewPipeline(s.caller, logger)
	pipeline.OnProgress = s.progressHandler(ctx, runID, logger)

	res, _ := pipeline.RunPass(ctx, runID.String(), index, text)
	return *res
}

// buildResult applies the fallback ladder to the selected pass
func (s *Service) buildResult(runID uuid.UUID, passes []types.OnboardingPassResult, selected int) *types.OnboardingResult {
	result := &types.OnboardingResult{RunID: runID.String()}

	var chosen *types.OnboardingPassResult
	for i := range passes {
		if passes[i].Index == selected && !passes[i].Failed {
			chosen = &passes[i]
			break
		}
	}

	if chosen == nil {
		first := passes[0]
		result.Config = DefaultFactory()
		result.Outcome = types.OutcomeFallback
		result.ErrorCode = first.ErrorCode
		result.Coverage = first.Coverage
		result.Meta = types.OnboardingMeta{
			UsedDefaultFactory:  true,
			OnboardingErrors:    []string{first.ErrorCode + ": " + first.ErrorMessage},
			InferredAssumptions: []string{},
		}
		return result
	}

	result.Config = chosen.Config.Clone()
	result.Coverage = chosen.Coverage
	result.Meta = types.OnboardingMeta{
		UsedDefaultFactory:  false,
		OnboardingErrors:    append([]string{}, chosen.Warnings...),
		InferredAssumptions: append([]string{}, chosen.Assumptions...),
	}
	result.Outcome = types.OutcomeOK
	if len(chosen.Warnings) > 0 {
		result.Outcome = types.OutcomeDegraded
	}
	return result
}

func (s *Service) progressHandler(ctx context.Context, runID uuid.UUID, logger *zap.Logger) ProgressCallback {
	return func(event ProgressEvent) {
		if s.onProgress != nil {
			s.onProgress(event)
		}
		if s.sink == nil {
			return
		}
		step := fmt.Sprintf("pass_%d/%s", event.Pass, event.Step)
		if err := s.sink.SaveArtifact(ctx, runID, step, event.Category, event.Content); err != nil {
			logger.Warn("failed to save artifact", zap.String("step", step), zap.Error(err))
		}
	}
}

func (s *Service) startRun(ctx context.Context, runID uuid.UUID, passes int, logger *zap.Logger) {
	logger.Info("onboarding started")
	if s.sink == nil {
		return
	}
	if err := s.sink.CreateRun(ctx, runID, passes); err != nil {
		logger.Warn("failed to record run", zap.Error(err))
	}
}

func (s *Service) finishRun(ctx context.Context, runID uuid.UUID, result *types.OnboardingResult, logger *zap.Logger) {
	logger.Info("onboarding finished",
		zap.String("outcome", string(result.Outcome)),
		zap.String("error_code", result.ErrorCode),
		zap.String("trust", string(result.Diagnostics.Trust)),
		zap.Bool("used_default_factory", result.Meta.UsedDefaultFactory))
	if s.sink == nil {
		return
	}
	if err := s.sink.SaveArtifact(ctx, runID, StageResult, CategoryAudit, result); err != nil {
		logger.Warn("failed to save result", zap.Error(err))
	}
	if err := s.sink.CompleteRun(ctx, runID, string(result.Outcome), result.ErrorCode); err != nil {
		logger.Warn("failed to complete run", zap.Error(err))
	}
}
