package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{4}\s\d{4}\s\d{4}\s\d{4}$`)
	cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])\/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3}$`)
	ngPhonePattern    = regexp.MustCompile(`^0\d{10}$`)
	digits10Pattern   = regexp.MustCompile(`^\d{10}$`)
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error     string            `json:"error"`               // Error message
	Details   map[string]string `json:"details,omitempty"`   // Validation details
	Retryable bool              `json:"retryable,omitempty"` // Set when the request may succeed if repeated
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper with the wallet's custom tags registered
func NewValidationHelper() *ValidationHelper {
	v := validator.New()
	registerPattern(v, "card_number", cardNumberPattern)
	registerPattern(v, "card_expiry", cardExpiryPattern)
	registerPattern(v, "cvv", cvvPattern)
	registerPattern(v, "ng_phone", ngPhonePattern)
	registerPattern(v, "digits10", digits10Pattern)

	return &ValidationHelper{
		validator: v,
	}
}

func registerPattern(v *validator.Validate, tag string, re *regexp.Regexp) {
	// only fails on an empty tag or a non-func, neither of which can happen here
	_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// ValidateVar checks a single value against a tag list such as "required,ng_phone"
func (vh *ValidationHelper) ValidateVar(field any, tag string) error {
	return vh.validator.Var(field, tag)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	var verrs validator.ValidationErrors
	if validationErr != nil && errors.As(validationErr, &verrs) {
		errorResp.Details = make(map[string]string)
		for _, err := range verrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}
