package api

import (
	"errors"
	"net/http"

	"github.com/council-mode/council/internal/core"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func httpStatusForDomainError(err error) (int, bool) {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr == nil {
		return 0, false
	}

	switch domErr.Category {
	case core.ErrCatValidation:
		return http.StatusUnprocessableEntity, true
	case core.ErrCatNotFound:
		return http.StatusNotFound, true
	case core.ErrCatQuota:
		return http.StatusTooManyRequests, true
	case core.ErrCatTimeout:
		return http.StatusGatewayTimeout, true
	case core.ErrCatConsensus, core.ErrCatExecution, core.ErrCatNetwork:
		return http.StatusBadGateway, true
	default:
		return http.StatusInternalServerError, true
	}
}

// respondError maps domain errors onto HTTP statuses and hides internal
// detail for everything unclassified.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, ok := httpStatusForDomainError(err)
	if !ok {
		status = http.StatusInternalServerError
	}

	resp := errorResponse{Error: "internal error"}
	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		resp.Error = domErr.Message
		resp.Code = domErr.Code
		resp.Details = domErr.Details
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	respondJSON(w, status, resp)
}
