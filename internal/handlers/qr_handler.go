package handlers

import (
	"net/http"

	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/services"
)

type QRHandler struct {
	service   *services.QRService
	validator *services.ValidationHelper
}

func NewQRHandler(service *services.QRService) *QRHandler {
	return &QRHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// GenerateQR generates a payment request QR code for the signed-in wallet
// @Summary Generate QR Code
// @Description Generate a single-use QR code asking for a payment into this wallet. Amount is optional.
// @Tags QR
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{amount=string} true "QR generation request"
// @Success 200 {object} object{qrCode=string,qrImage=string}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /qr/generate [post]
func (h *QRHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	var amount int64
	if req.Amount != "" {
		parsed, err := models.ParseAmount(req.Amount)
		if err != nil {
			sendServiceError(w, err)
			return
		}
		amount = parsed
	}

	qrCode, qrImage, err := h.service.GenerateQRCode(r.Context(), phone, amount)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	respondOK(w, map[string]any{
		"qrCode":  qrCode,
		"qrImage": qrImage,
	})
}

// ProcessQR resolves a scanned QR code
// @Summary Process QR Code
// @Description Resolve a scanned payment request into the recipient and amount for a J pay transfer
// @Tags QR
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{qrData=string} true "QR processing request"
// @Success 200 {object} services.PaymentRequest
// @Failure 400 {object} services.ErrorResponse
// @Router /qr/process [post]
func (h *QRHandler) ProcessQR(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QRData string `json:"qrData" validate:"required"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	result, err := h.service.ProcessQRCode(r.Context(), req.QRData)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	respondOK(w, map[string]any{"data": result})
}
