package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run status values besides the onboarding outcomes
const (
	StatusRunning = "running"
)

// StepResult is the artifact step holding the final OnboardingResult
const StepResult = "onboarding_result"

// Run represents an onboarding run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Passes      int        `json:"passes"`
	Status      string     `json:"status"`
	ErrorCode   string     `json:"error_code,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsComplete reports whether the run has finished
func (r *Run) IsComplete() bool {
	return r.CompletedAt != nil
}

// Artifact represents a stored stage artifact
type Artifact struct {
	ID        uuid.UUID       `json:"id"`
	RunID     uuid.UUID       `json:"run_id"`
	Step      string          `json:"step"`
	Category  string          `json:"category,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
