package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jpay/wallet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid signup", func(t *testing.T) {
		req := models.SignUpRequest{Name: "Ada Obi", Phone: "08011112222", Password: "secret1"}
		assert.NoError(t, vh.ValidateStruct(&req))
	})

	t.Run("invalid signup", func(t *testing.T) {
		req := models.SignUpRequest{Name: "A", Phone: "+2348011112222", Password: "123"}

		err := vh.ValidateStruct(&req)
		require.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		require.True(t, ok)
		assert.Len(t, validationErrors, 3)
	})

	t.Run("transfer account number must be ten digits", func(t *testing.T) {
		req := models.TransferRequest{AccountNumber: "30303030", Amount: "100"}

		err := vh.ValidateStruct(&req)
		require.Error(t, err)

		validationErrors := err.(validator.ValidationErrors)
		assert.Equal(t, "AccountNumber", validationErrors[0].Field())
		assert.Equal(t, "digits10", validationErrors[0].Tag())
	})
}

func TestValidationHelper_FundingCard(t *testing.T) {
	vh := NewValidationHelper()

	tests := []struct {
		name    string
		card    models.FundingCard
		wantTag string
	}{
		{"valid", models.FundingCard{Number: "4242 4242 4242 4242", Expiry: "09/27", CVV: "123"}, ""},
		{"ungrouped number", models.FundingCard{Number: "4242424242424242", Expiry: "09/27", CVV: "123"}, "card_number"},
		{"month 13", models.FundingCard{Number: "4242 4242 4242 4242", Expiry: "13/27", CVV: "123"}, "card_expiry"},
		{"four digit cvv", models.FundingCard{Number: "4242 4242 4242 4242", Expiry: "01/30", CVV: "1234"}, "cvv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := vh.ValidateStruct(&tt.card)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantTag, err.(validator.ValidationErrors)[0].Tag())
		})
	}
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("error response without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("error response with validation errors", func(t *testing.T) {
		vh := NewValidationHelper()
		validationErr := vh.ValidateStruct(&models.LoginRequest{Phone: "123"})
		require.Error(t, validationErr)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, validationErr)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Validation failed", response.Error)
		assert.Contains(t, response.Details, "Phone")
		assert.Contains(t, response.Details, "Password")
	})

	t.Run("non validation error carries no details", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Unauthorized access", http.StatusUnauthorized, errors.New("boom"))

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Unauthorized access", response.Error)
		assert.Nil(t, response.Details)
	})
}
