package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/factory-onboarding/internal/types"
)

// sequential runs passes one at a time so queued fake responses map to pass indexes
func sequential(o *Options) { o.MaxParallel = 1 }

func TestOnboardMultiPass_AllAgree(t *testing.T) {
	coarse, raw := twoByTwo()
	caller := newFakeCaller().coarse(coarse).fine(raw)

	result := newTestService(t, caller).OnboardMultiPass(context.Background(), twoByTwoText, 4)

	assert.Equal(t, types.OutcomeOK, result.Outcome)
	require.NotNil(t, result.MultiPass)
	assert.Len(t, result.MultiPass.Passes, 4)
	assert.Equal(t, 4, result.MultiPass.SuccessfulPasses)
	assert.Equal(t, 0, result.MultiPass.FailedPasses)
	assert.Equal(t, 1.0, result.MultiPass.AgreementRatio)
	assert.Equal(t, 0, result.MultiPass.SelectedPass)
	assert.Empty(t, result.MultiPass.Diffs)
	assert.Equal(t, types.TrustHigh, result.Diagnostics.Trust)
	assert.Len(t, caller.promptsFor("CoarseStructure"), 4)
}

func TestOnboardMultiPass_Disagreement(t *testing.T) {
	coarse, raw := twoByTwo()
	_, other := twoByTwo()
	other.Jobs[1].Steps = []types.RawStep{step("M1", f64(1)), step("M2", f64(3))}
	caller := newFakeCaller().coarse(coarse).fine(raw).fine(other)

	result := newTestService(t, caller, sequential).OnboardMultiPass(context.Background(), twoByTwoText, 2)

	assert.Equal(t, types.OutcomeOK, result.Outcome)
	require.NotNil(t, result.MultiPass)
	assert.Equal(t, 0.0, result.MultiPass.AgreementRatio)
	require.Len(t, result.MultiPass.Diffs, 1)
	assert.Contains(t, result.MultiPass.Diffs[0].StepChanges, "J2")
	assert.Equal(t, 0, result.MultiPass.SelectedPass)
	assert.Equal(t, 3, result.Config.Jobs[1].Steps[0].DurationHours)
	assert.Equal(t, types.TrustLow, result.Diagnostics.Trust)
}

func TestOnboardMultiPass_MinorityFailure(t *testing.T) {
	coarse, raw := twoByTwo()
	caller := newFakeCaller().
		fail("CoarseStructure", errors.New("timeout")).
		coarse(coarse).
		fine(raw)

	result := newTestService(t, caller, sequential).OnboardMultiPass(context.Background(), twoByTwoText, 3)

	require.NotNil(t, result.MultiPass)
	assert.True(t, result.MultiPass.Passes[0].Failed)
	assert.Equal(t, string(CodeLLMFailure), result.MultiPass.Passes[0].ErrorCode)
	assert.Equal(t, 2, result.MultiPass.SuccessfulPasses)
	assert.Equal(t, 1, result.MultiPass.SelectedPass)
	assert.InDelta(t, 2.0/3.0, result.MultiPass.AgreementRatio, 1e-9)
	assert.Equal(t, types.OutcomeOK, result.Outcome)
	assert.False(t, result.Meta.UsedDefaultFactory)
	assert.Equal(t, types.TrustMedium, result.Diagnostics.Trust)
}

func TestOnboardMultiPass_MajorityFailureIsLowTrust(t *testing.T) {
	coarse, raw := twoByTwo()
	caller := newFakeCaller().
		fail("CoarseStructure", errors.New("timeout")).
		coarse(coarse).
		fine(raw)

	result := newTestService(t, caller, sequential).OnboardMultiPass(context.Background(), twoByTwoText, 2)

	assert.Equal(t, types.OutcomeOK, result.Outcome)
	assert.Equal(t, 0.5, result.MultiPass.AgreementRatio)
	assert.Equal(t, types.TrustLow, result.Diagnostics.Trust)
}

func TestOnboardMultiPass_AllFail(t *testing.T) {
	coarse, raw := twoByTwo()
	raw.Jobs[0].DueTimeHour = f64(30)
	caller := newFakeCaller().
		coarse(coarse).fine(raw).
		fail("CoarseStructure", errors.New("timeout"))

	result := newTestService(t, caller, sequential).OnboardMultiPass(context.Background(), twoByTwoText, 3)

	assertFallback(t, result, CodeInvalidStructure)
	require.NotNil(t, result.MultiPass)
	assert.Equal(t, 3, result.MultiPass.FailedPasses)
	assert.Equal(t, -1, result.MultiPass.SelectedPass)
	assert.Equal(t, 0.0, result.MultiPass.AgreementRatio)
}

func TestOnboardMultiPass_SinglePassDelegates(t *testing.T) {
	coarse, raw := twoByTwo()
	caller := newFakeCaller().coarse(coarse).fine(raw)

	result := newTestService(t, caller).OnboardMultiPass(context.Background(), twoByTwoText, 1)

	assert.Equal(t, types.OutcomeOK, result.Outcome)
	assert.Nil(t, result.MultiPass)
}

func TestOnboardMultiPass_PanicInOnePass(t *testing.T) {
	coarse, raw := twoByTwo()
	caller := newFakeCaller().
		panics("CoarseStructure").
		coarse(coarse).
		fine(raw)

	result := newTestService(t, caller, sequential).OnboardMultiPass(context.Background(), twoByTwoText, 3)

	assert.Equal(t, types.OutcomeOK, result.Outcome)
	assert.True(t, result.MultiPass.Passes[0].Failed)
	assert.Equal(t, string(CodeInvalidStructure), result.MultiPass.Passes[0].ErrorCode)
}
