package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Source kinds recorded in Metadata
const (
	SourceFile  = "file"
	SourceURL   = "url"
	SourceStdin = "stdin"
)

// Metadata contains metadata about an ingested factory description
type Metadata struct {
	Source      string `json:"source"`
	Location    string `json:"location,omitempty"`     // file path or URL
	ContentType string `json:"content_type,omitempty"` // only set for URLs
	Timestamp   string `json:"timestamp"`              // RFC3339 format
	Hash        string `json:"hash"`                   // SHA256 hex digest of the cleaned text
	Chars       int    `json:"chars"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content, source, location string) *Metadata {
	return &Metadata{
		Source:    source,
		Location:  location,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		Chars:     len([]rune(content)),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
