package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/jpay/wallet/internal/middleware"
	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/services"
)

const maxBodyBytes = 1_048_576

// decodeJSON reads exactly one JSON object into dst and validates it. On
// failure it has already written the error response.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *services.ValidationHelper, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	if err := v.ValidateStruct(dst); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondOK(w http.ResponseWriter, body map[string]any) {
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidField),
		errors.Is(err, models.ErrSelfTransfer),
		errors.Is(err, models.ErrRecurrenceNotAllowed),
		errors.Is(err, services.ErrInvalidPaymentRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrWrongPassword),
		errors.Is(err, models.ErrInvalidOrExpiredCode):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotVerifiedAccount),
		errors.Is(err, models.ErrBiometricsDisabled):
		return http.StatusForbidden
	case errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrRecipientNotFound),
		errors.Is(err, models.ErrGoalNotFound),
		errors.Is(err, models.ErrInstructionNotFound),
		errors.Is(err, models.ErrFlowNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicatePhone),
		errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrVerificationFailed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func errorBody(err error) services.ErrorResponse {
	status := statusFor(err)
	resp := services.ErrorResponse{Error: err.Error(), Retryable: models.IsRetryable(err)}
	if status == http.StatusInternalServerError {
		resp.Error = "Internal server error"
	}

	var fe *models.FieldError
	if errors.As(err, &fe) {
		resp.Details = map[string]string{fe.Field: fe.Reason}
	}
	return resp
}

func sendServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] Unhandled error: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody(err))
}

func requirePhone(w http.ResponseWriter, r *http.Request) (string, bool) {
	phone, ok := middleware.PhoneFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
	}
	return phone, ok
}
