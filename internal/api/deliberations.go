package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/council-mode/council/internal/core"
	"github.com/council-mode/council/internal/council"
)

const maxRequestBody = 1 << 20 // 1 MiB

// createDeliberationRequest is the POST /deliberations payload.
type createDeliberationRequest struct {
	Query            string         `json:"query"`
	UserID           string         `json:"user_id,omitempty"`
	Tier             string         `json:"tier,omitempty"`
	Models           []string       `json:"models,omitempty"`
	History          []core.Message `json:"history,omitempty"`
	PreferAggressive bool           `json:"prefer_aggressive,omitempty"`
}

// createDeliberationResponse reports the trigger decision and, when the
// council ran, the finished deliberation.
type createDeliberationResponse struct {
	Triggered    bool                      `json:"triggered"`
	Reason       string                    `json:"reason"`
	Conditions   []string                  `json:"conditions,omitempty"`
	Display      core.DisplayState         `json:"display,omitempty"`
	Deliberation *core.CouncilDeliberation `json:"deliberation,omitempty"`
}

func (s *Server) handleCreateDeliberation(w http.ResponseWriter, r *http.Request) {
	var req createDeliberationRequest
	body := io.LimitReader(r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.respondError(w, core.ErrValidation("INVALID_BODY", "request body is not valid JSON"))
		return
	}

	outcome, err := s.engine.Deliberate(r.Context(), council.DeliberateRequest{
		Query:   req.Query,
		UserID:  req.UserID,
		Context: s.triggerContext(r.Context(), &req),
		History: req.History,
		Models:  req.Models,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp := createDeliberationResponse{
		Triggered:  outcome.Decision.ShouldTrigger,
		Reason:     outcome.Decision.Reason,
		Conditions: outcome.Decision.Conditions,
	}
	status := http.StatusOK
	if outcome.Deliberation != nil {
		resp.Display = outcome.Display
		resp.Deliberation = outcome.Deliberation
		status = http.StatusCreated
	}
	respondJSON(w, status, resp)
}

// triggerContext assembles the trigger evaluator's view of the caller. A
// request without a user identity gets no context, which the evaluator
// treats as manual-invocation-only.
func (s *Server) triggerContext(ctx context.Context, req *createDeliberationRequest) *council.TriggerContext {
	if req.UserID == "" {
		return nil
	}

	tc := &council.TriggerContext{
		UserID:           req.UserID,
		Tier:             core.TierFree,
		PreferAggressive: req.PreferAggressive,
	}
	if req.Tier != "" {
		tc.Tier = core.Tier(req.Tier)
	}
	if s.quota != nil {
		used, err := s.quota.UsedToday(ctx, req.UserID)
		if err != nil {
			s.logger.Warn("failed to read quota, assuming zero usage", "user", req.UserID, "error", err)
		} else {
			tc.QueriesUsedToday = used
		}
	}
	return tc
}

func (s *Server) handleGetDeliberation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "deliberationID")

	d, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "deliberationID")

	d, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, council.FormatSummary(d))
}

func (s *Server) handleListDeliberations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			s.respondError(w, core.ErrValidation("INVALID_LIMIT", "limit must be an integer between 1 and 500"))
			return
		}
		limit = n
	}

	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"deliberations": summaries,
		"count":         len(summaries),
	})
}
