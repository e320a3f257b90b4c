package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/factory-onboarding/internal/db"
	"github.com/jonathan/factory-onboarding/internal/ids"
	"github.com/jonathan/factory-onboarding/internal/onboarding"
	"github.com/jonathan/factory-onboarding/internal/types"
)

// OnboardRequest represents the request body for /onboard and /onboard/stream
type OnboardRequest struct {
	Text   string `json:"text" validate:"required"`
	Passes int    `json:"passes,omitempty" validate:"min=0"`
}

// NormalizeResponse represents the response for /normalize
type NormalizeResponse struct {
	Config   *types.FactoryConfig `json:"config"`
	Warnings []string             `json:"warnings"`
}

// ExtractIDsRequest represents the request body for /extract-ids
type ExtractIDsRequest struct {
	Text string `json:"text" validate:"required"`
}

// RunResponse represents the response for /runs/{id}
type RunResponse struct {
	Run    *db.Run                 `json:"run"`
	Result *types.OnboardingResult `json:"result,omitempty"`
}

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

func (s *Server) decodeOnboardRequest(w http.ResponseWriter, r *http.Request) (*OnboardRequest, error) {
	var req OnboardRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		return nil, err
	}
	if req.Passes > s.maxPasses {
		return nil, &ErrValidation{Field: "passes", Message: "at most " + strconv.Itoa(s.maxPasses) + " passes are allowed"}
	}
	return &req, nil
}

// handleOnboard runs onboarding synchronously and returns the full result
func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeOnboardRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	result := s.service.OnboardMultiPass(r.Context(), req.Text, req.Passes)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleOnboardStream runs onboarding and streams stage progress via SSE
func (s *Server) handleOnboardStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeOnboardRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	svc := s.service.WithProgress(func(event onboarding.ProgressEvent) {
		if err := sse.WriteProgress(event); err != nil {
			s.logger.Debug("failed to write SSE event", zap.Error(err))
		}
	})

	result := svc.OnboardMultiPass(r.Context(), req.Text, req.Passes)
	if err := sse.WriteEvent(eventResult, result); err != nil {
		s.logger.Debug("failed to write SSE result", zap.Error(err), zap.Int("events_sent", sse.Sent()))
		return
	}
	sse.WriteComplete(result.RunID, string(result.Outcome))
}

// handleNormalize repairs and validates a raw config without calling a model
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}

	raw, err := types.DecodeRawFactoryConfig(body)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	cfg, warnings, err := onboarding.Assemble(raw)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if warnings == nil {
		warnings = []string{}
	}
	s.jsonResponse(w, http.StatusOK, NormalizeResponse{Config: cfg, Warnings: warnings})
}

// handleExtractIDs returns the machine and job IDs named explicitly in the text
func (s *Server) handleExtractIDs(w http.ResponseWriter, r *http.Request) {
	var req ExtractIDsRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ids.ExtractExplicitIDs(req.Text))
}

// handleListRuns lists recent runs, newest first
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, &ErrUnavailable{Feature: "run history"})
		return
	}

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRunsLimit {
			s.errorResponse(w, &ErrValidation{Field: "limit", Message: "must be between 1 and " + strconv.Itoa(maxRunsLimit)})
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

// handleGetRun returns a run and its final result
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runID(w, r)
	if !ok {
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if run == nil {
		s.errorResponse(w, &ErrNotFound{Resource: "run", ID: runID.String()})
		return
	}

	result, err := s.store.GetResult(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, RunResponse{Run: run, Result: result})
}

// handleRunArtifacts lists every stage artifact of a run
func (s *Server) handleRunArtifacts(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runID(w, r)
	if !ok {
		return
	}

	artifacts, err := s.store.ListArtifacts(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if artifacts == nil {
		artifacts = []db.Artifact{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"run_id": runID, "artifacts": artifacts})
}

// runID parses the {id} path value and checks that a store is configured
func (s *Server) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.store == nil {
		s.errorResponse(w, &ErrUnavailable{Feature: "run history"})
		return uuid.Nil, false
	}
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "id", Message: "invalid run ID format"})
		return uuid.Nil, false
	}
	return runID, true
}
