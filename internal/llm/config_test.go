package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.InDelta(t, 0.1, config.Temperature, 1e-6)
}

func TestGetModel(t *testing.T) {
	tests := []struct {
		name   string
		models map[ModelTier]string
		tier   ModelTier
		want   string
	}{
		{name: "exact tier", models: map[ModelTier]string{TierAdvanced: "pro"}, tier: TierAdvanced, want: "pro"},
		{name: "falls back to standard", models: map[ModelTier]string{TierStandard: "flash", TierLite: "lite"}, tier: TierAdvanced, want: "flash"},
		{name: "then to lite", models: map[ModelTier]string{TierLite: "lite"}, tier: "unknown", want: "lite"},
		{name: "nothing configured", models: map[ModelTier]string{}, tier: TierAdvanced, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{Provider: ProviderGemini, Models: tt.models}
			assert.Equal(t, tt.want, config.GetModel(tt.tier))
		})
	}
}

func TestModelFor(t *testing.T) {
	name, err := DefaultConfig().modelFor(TierStandard)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", name)

	_, err = (&Config{Models: map[ModelTier]string{}}).modelFor(TierLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model configured for tier lite")
}

func TestWithModel_DoesNotMutateReceiver(t *testing.T) {
	config := DefaultConfig()
	custom := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", custom.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", custom.GetModel(TierLite))
}

func TestWithProvider_DoesNotMutateReceiver(t *testing.T) {
	config := DefaultConfig()
	genaiConfig := config.WithProvider(ProviderGenAI)

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, ProviderGenAI, genaiConfig.Provider)
	assert.Equal(t, config.Models, genaiConfig.Models)
	assert.Equal(t, config.Temperature, genaiConfig.Temperature)
}
