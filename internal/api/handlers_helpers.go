// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/validation"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Error codes used in APIError.Code.
const (
	codeValidation  = "VALIDATION_ERROR"
	codeNotFound    = "NOT_FOUND"
	codeConflict    = "CONFLICT"
	codeForbidden   = "FORBIDDEN"
	codeDatabase    = "DATABASE_ERROR"
	codeUnavailable = "SERVICE_UNAVAILABLE"
	codeInternal    = "INTERNAL_ERROR"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

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

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a weak ETag from data using FNV-1a
func generateETag(data []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(data)
	return strconv.FormatUint(uint64(h.Sum32()), 16)
}

// respondSuccess wraps data in a success envelope. Slices also report their length.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time, count int) {
	meta := models.Metadata{
		Timestamp:   time.Now().UTC(),
		QueryTimeMS: time.Since(start).Milliseconds(),
	}
	if count >= 0 {
		meta.Count = &count
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}
	respondAPIError(w, status, &models.APIError{Code: code, Message: message})
}

func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: apiErr,
	})
}

// respondStoreError maps store errors onto status codes.
func respondStoreError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, what+" not found", nil)
	case errors.Is(err, models.ErrAlreadyPurchased):
		respondError(w, http.StatusConflict, codeConflict, what+" already purchased", nil)
	default:
		respondError(w, http.StatusInternalServerError, codeDatabase, "Failed to access "+what, err)
	}
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes
// the error response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, codeValidation, "Request body too large", nil)
		return false
	}
	if len(body) == 0 {
		respondError(w, http.StatusBadRequest, codeValidation, "Request body is required", nil)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body", nil)
		return false
	}
	if apiErr := validateRequest(dst); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return false
	}
	return true
}

// queryValues returns the non-empty values of a repeatable query
// parameter. Comma-separated values are split.
func queryValues(r *http.Request, key string) []string {
	var result []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}

// requireUserID reads the user_id query parameter.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		respondAPIError(w, http.StatusBadRequest, &models.APIError{
			Code:    codeValidation,
			Message: "user_id is required",
			Details: map[string]interface{}{"field": "user_id", "tag": "required"},
		})
		return "", false
	}
	return userID, true
}
