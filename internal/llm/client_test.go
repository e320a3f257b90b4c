package llm

import (
	"errors"
	"testing"

	gemini "github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *gemini.GenerateContentResponse
		want    string
		wantErr string
	}{
		{name: "nil response", wantErr: "no text"},
		{
			name:    "blocked prompt",
			resp:    &gemini.GenerateContentResponse{PromptFeedback: &gemini.PromptFeedback{BlockReason: gemini.BlockReasonSafety}},
			wantErr: "prompt blocked",
		},
		{name: "no candidates", resp: &gemini.GenerateContentResponse{}, wantErr: "no text"},
		{
			name: "joins text parts",
			resp: &gemini.GenerateContentResponse{Candidates: []*gemini.Candidate{{
				Content: &gemini.Content{Parts: []gemini.Part{gemini.Text(`{"machines": `), gemini.Text(`[]}`)}},
			}}},
			want: `{"machines": []}`,
		},
		{
			name: "candidate without content",
			resp: &gemini.GenerateContentResponse{Candidates: []*gemini.Candidate{{
				FinishReason: gemini.FinishReasonMaxTokens,
			}}},
			wantErr: "finish reason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := geminiText(tt.resp)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrNoText))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenAIText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr string
	}{
		{name: "nil response", wantErr: "no text"},
		{
			name:    "blocked prompt",
			resp:    &genai.GenerateContentResponse{PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety}},
			wantErr: "prompt blocked",
		},
		{
			name: "skips thought parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "thinking about M1", Thought: true},
					{Text: `{"jobs": []}`},
					nil,
				}},
			}}},
			want: `{"jobs": []}`,
		},
		{
			name: "only thoughts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content:      &genai.Content{Parts: []*genai.Part{{Text: "hmm", Thought: true}}},
				FinishReason: genai.FinishReasonMaxTokens,
			}}},
			wantErr: "finish reason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := genaiText(tt.resp)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrNoText)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
