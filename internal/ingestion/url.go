package ingestion

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/factory-onboarding/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions configures IngestFromURL
type URLOptions struct {
	Fetch  *fetch.Options
	Logger *zap.Logger
}

// IngestFromURL fetches a factory description page, extracts its main text and cleans it.
// HTML pages go through selector-based extraction; plain text bodies are used as-is.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	logger.Debug("fetched description",
		zap.String("url", urlStr),
		zap.String("final_url", result.FinalURL),
		zap.Int("bytes", len(result.Body)),
		zap.String("content_type", result.ContentType),
	)
	if result.Truncated {
		logger.Warn("description page exceeds size cap; extracting from the truncated body",
			zap.String("url", urlStr), zap.Int("bytes", len(result.Body)))
	}

	text := result.Body
	if result.IsHTML() {
		text, err = fetch.ExtractMainText(result.Body, fetch.DefaultTextSelectors())
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
		}
		logger.Debug("extracted page text", zap.Int("chars", len(text)))
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%s: %w", urlStr, ErrEmptyInput)
	}

	meta := NewMetadata(cleaned, SourceURL, urlStr)
	meta.ContentType = result.ContentType
	return cleaned, meta, nil
}
