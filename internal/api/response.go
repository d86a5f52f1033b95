// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shadowscan/internal/logging"
	"github.com/tomtom215/shadowscan/internal/models"
	"github.com/tomtom215/shadowscan/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeNotReady            = "NOT_READY"
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
)

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func metadata(r *http.Request, start time.Time) models.Metadata {
	md := models.Metadata{Timestamp: time.Now().UTC()}
	if r != nil {
		md.RequestID = logging.RequestIDFromContext(r.Context())
	}
	if !start.IsZero() {
		md.QueryTimeMS = time.Since(start).Milliseconds()
	}
	return md
}

// respondData writes a success envelope.
func respondData(w http.ResponseWriter, r *http.Request, status int, start time.Time, data any) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: metadata(r, start),
	})
}

// respondPage writes a success envelope with pagination metadata.
func respondPage(w http.ResponseWriter, r *http.Request, start time.Time, data any, page models.PaginationInfo) {
	md := metadata(r, start)
	md.Pagination = &page
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: md,
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: metadata(r, time.Time{}),
		Error:    apiErr,
	})
}

// respondServiceError maps a service error onto the envelope. Server-side
// failures are logged; client errors are not.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classifyError(err)
	if status >= http.StatusInternalServerError {
		logging.CtxErr(r.Context(), err).
			Str("code", apiErr.Code).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "30")
	}
	respondError(w, r, status, apiErr)
}

// classifyError turns the domain error taxonomy into a status code and an
// API error. Messages of internal errors are not exposed.
func classifyError(err error) (int, *models.APIError) {
	var (
		reqErr      *validation.RequestValidationError
		valErr      *models.ValidationError
		notFound    *models.NotFoundError
		conflict    *models.ConflictError
		transition  *models.TransitionError
		unavailable *models.UpstreamUnavailableError
	)

	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.ToAPIError()
	case errors.As(err, &valErr):
		return http.StatusBadRequest, &models.APIError{
			Code:    ErrCodeValidation,
			Message: valErr.Error(),
			Details: map[string]interface{}{"field": valErr.Field},
		}
	case errors.As(err, &notFound):
		return http.StatusNotFound, &models.APIError{
			Code:    ErrCodeNotFound,
			Message: notFound.Error(),
			Details: map[string]interface{}{"entity": notFound.Entity, "id": notFound.ID},
		}
	case errors.As(err, &transition):
		return http.StatusConflict, &models.APIError{
			Code:    ErrCodeInvalidTransition,
			Message: transition.Error(),
			Details: map[string]interface{}{"from": transition.From, "to": transition.To},
		}
	case errors.As(err, &conflict):
		return http.StatusConflict, &models.APIError{
			Code:    ErrCodeConflict,
			Message: conflict.Error(),
		}
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable, &models.APIError{
			Code:    ErrCodeUpstreamUnavailable,
			Message: "upstream " + unavailable.Service + " unavailable, retry later",
			Details: map[string]interface{}{"service": unavailable.Service, "retryable": true},
		}
	default:
		return http.StatusInternalServerError, &models.APIError{
			Code:    ErrCodeInternal,
			Message: "internal error",
		}
	}
}
