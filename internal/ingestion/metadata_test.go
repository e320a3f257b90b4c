package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHash(t *testing.T) {
	assert.Equal(t, computeHash("M1"), computeHash("M1"))
	assert.NotEqual(t, computeHash("M1"), computeHash("M2"))
	assert.Len(t, computeHash(""), 64)
}

func TestNewMetadata(t *testing.T) {
	meta := NewMetadata("Presse für Blech", SourceURL, "https://wiki.example.com/plant")

	assert.Equal(t, SourceURL, meta.Source)
	assert.Equal(t, "https://wiki.example.com/plant", meta.Location)
	assert.Equal(t, 16, meta.Chars)

	_, err := time.Parse(time.RFC3339, meta.Timestamp)
	require.NoError(t, err)
}

func TestMetadata_ToJSON(t *testing.T) {
	meta := NewMetadata("M1", SourceFile, "factory.txt")

	out, err := meta.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"source": "file"`)
	assert.Contains(t, string(out), `"location": "factory.txt"`)
	assert.NotContains(t, string(out), "content_type")
}
