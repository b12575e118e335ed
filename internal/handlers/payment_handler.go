package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/services"
)

type PaymentHandler struct {
	payments  *services.PaymentService
	validator *services.ValidationHelper
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		payments:  payments,
		validator: services.NewValidationHelper(),
	}
}

type startFlowRequest struct {
	Service models.ServiceID `json:"service" validate:"required" example:"airtime"`
}

type submitFlowRequest struct {
	Fields models.FormData `json:"fields" validate:"required"`
}

type proceedFlowRequest struct {
	Recurring bool             `json:"recurring"`
	Frequency models.Frequency `json:"frequency" example:"monthly"`
}

type confirmFlowRequest struct {
	Password string `json:"password" validate:"required"`
}

// respondFlow writes the flow snapshot; on error the snapshot rides along
// with the error so the app can render the state it was returned to.
func respondFlow(w http.ResponseWriter, status int, flow *services.Flow, err error) {
	if err == nil {
		writeJSON(w, status, map[string]any{"success": true, "flow": flow})
		return
	}
	if flow == nil {
		sendServiceError(w, err)
		return
	}

	body := errorBody(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	json.NewEncoder(w).Encode(map[string]any{
		"error":     body.Error,
		"details":   body.Details,
		"retryable": body.Retryable,
		"flow":      flow,
	})
}

// Start opens a payment flow
// @Summary Start payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body startFlowRequest true "Service"
// @Success 201 {object} services.Flow
// @Failure 400 {object} services.ErrorResponse
// @Router /payments [post]
func (h *PaymentHandler) Start(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	var req startFlowRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	flow, err := h.payments.Start(phone, req.Service)
	respondFlow(w, http.StatusCreated, flow, err)
}

// StartEdit opens a flow that re-times an existing recurring payment
// @Summary Edit recurring payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instruction ID"
// @Success 201 {object} services.Flow
// @Failure 404 {object} services.ErrorResponse
// @Router /recurring/{id}/edit [post]
func (h *PaymentHandler) StartEdit(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	flow, err := h.payments.StartEdit(phone, chi.URLParam(r, "id"))
	respondFlow(w, http.StatusCreated, flow, err)
}

// Get returns the current state of a flow
// @Summary Get payment flow
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param flowID path string true "Flow ID"
// @Success 200 {object} services.Flow
// @Failure 404 {object} services.ErrorResponse
// @Router /payments/{flowID} [get]
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	flow, err := h.payments.Get(phone, chi.URLParam(r, "flowID"))
	respondFlow(w, http.StatusOK, flow, err)
}

// Submit sends form fields and moves the flow to preview
// @Summary Submit payment form
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param flowID path string true "Flow ID"
// @Param request body submitFlowRequest true "Form fields"
// @Success 200 {object} services.Flow
// @Failure 400 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /payments/{flowID}/submit [post]
func (h *PaymentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	var req submitFlowRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	flow, err := h.payments.Submit(r.Context(), phone, chi.URLParam(r, "flowID"), req.Fields)
	respondFlow(w, http.StatusOK, flow, err)
}

// Back steps the flow back one screen
// @Summary Go back
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param flowID path string true "Flow ID"
// @Success 200 {object} services.Flow
// @Failure 409 {object} services.ErrorResponse
// @Router /payments/{flowID}/back [post]
func (h *PaymentHandler) Back(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	flow, err := h.payments.Back(phone, chi.URLParam(r, "flowID"))
	respondFlow(w, http.StatusOK, flow, err)
}

// Proceed records the recurrence choice and asks for the password
// @Summary Proceed to confirmation
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param flowID path string true "Flow ID"
// @Param request body proceedFlowRequest true "Recurrence"
// @Success 200 {object} services.Flow
// @Failure 400 {object} services.ErrorResponse
// @Router /payments/{flowID}/proceed [post]
func (h *PaymentHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	var req proceedFlowRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	flow, err := h.payments.Proceed(phone, chi.URLParam(r, "flowID"), req.Recurring, req.Frequency)
	respondFlow(w, http.StatusOK, flow, err)
}

// Confirm checks the password and commits the payment
// @Summary Confirm payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param flowID path string true "Flow ID"
// @Param request body confirmFlowRequest true "Password"
// @Success 200 {object} services.Flow
// @Failure 401 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /payments/{flowID}/confirm [post]
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	var req confirmFlowRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	flow, err := h.payments.Confirm(r.Context(), phone, chi.URLParam(r, "flowID"), req.Password)
	respondFlow(w, http.StatusOK, flow, err)
}

// Cancel abandons the flow
// @Summary Cancel payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param flowID path string true "Flow ID"
// @Success 200 {object} services.Flow
// @Router /payments/{flowID}/cancel [post]
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	flow, err := h.payments.Cancel(phone, chi.URLParam(r, "flowID"))
	respondFlow(w, http.StatusOK, flow, err)
}
