package handlers

import (
	"net/http"

	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/services"
)

type AuthHandler struct {
	auth      *services.AuthService
	validator *services.ValidationHelper
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		validator: services.NewValidationHelper(),
	}
}

// SignUp registers a new wallet
// @Summary Sign up
// @Description Create an unverified wallet and send a verification code to the phone
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.SignUpRequest true "Signup details"
// @Success 201 {object} models.SignUpResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	result, err := h.auth.SignUp(r.Context(), req.Name, req.Phone, req.Password)
	if err != nil && result == nil {
		sendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":        true,
		"accountCreated": result.AccountCreated,
		"codeIssued":     result.CodeIssued,
		"accountNumber":  result.AccountNumber,
	})
}

// VerifySignup confirms the phone with the code sent at signup
// @Summary Verify signup code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.VerifyCodeRequest true "Phone and code"
// @Success 200 {object} object{account=models.Account}
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/verify [post]
func (h *AuthHandler) VerifySignup(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCodeRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	account, err := h.auth.VerifySignup(r.Context(), req.Phone, req.Code)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"account": account})
}

// Login authenticates with phone and password
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	resp, err := h.auth.Login(r.Context(), req.Phone, req.Password)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"token": resp.Token, "account": resp.Account})
}

// LoginWithBiometrics signs in a wallet that has biometrics enabled
// @Summary Biometric login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.BiometricLoginRequest true "Phone"
// @Success 200 {object} models.AuthResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /auth/login/biometric [post]
func (h *AuthHandler) LoginWithBiometrics(w http.ResponseWriter, r *http.Request) {
	var req models.BiometricLoginRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	resp, err := h.auth.LoginWithBiometrics(r.Context(), req.Phone)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"token": resp.Token, "account": resp.Account})
}

// ForgotPassword sends a password reset code
// @Summary Request password reset
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.PasswordResetRequest true "Phone"
// @Success 200 {object} object{codeIssued=bool}
// @Failure 404 {object} services.ErrorResponse
// @Router /auth/password/forgot [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	if _, err := h.auth.RequestPasswordReset(r.Context(), req.Phone); err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"codeIssued": true})
}

// ResetPassword replaces the password using a reset code
// @Summary Reset password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Code and new password"
// @Success 200 {object} object{success=bool}
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/password/reset [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Phone, req.Code, req.NewPassword); err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{})
}

// CheckPassword verifies the signed-in user's current password
// @Summary Check current password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PasswordCheckRequest true "Password"
// @Success 200 {object} object{valid=bool}
// @Router /auth/password/check [post]
func (h *AuthHandler) CheckPassword(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	var req models.PasswordCheckRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	respondOK(w, map[string]any{"valid": h.auth.VerifyCurrentPassword(phone, req.Password)})
}

// GetAccount returns the signed-in wallet
// @Summary Get account
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{account=models.Account}
// @Failure 401 {object} services.ErrorResponse
// @Router /account [get]
func (h *AuthHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	account, err := h.auth.Account(phone)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"account": account})
}

// UpdateProfile changes the display name
// @Summary Update profile
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ProfileUpdateRequest true "Profile"
// @Success 200 {object} object{account=models.Account}
// @Router /account/profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	var req models.ProfileUpdateRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	account, err := h.auth.UpdateProfile(phone, req.Name)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"account": account})
}

// SetBiometrics toggles biometric login
// @Summary Toggle biometrics
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BiometricsRequest true "Setting"
// @Success 200 {object} object{account=models.Account}
// @Router /account/biometrics [put]
func (h *AuthHandler) SetBiometrics(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	var req models.BiometricsRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	account, err := h.auth.SetBiometrics(phone, req.Enabled)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"account": account})
}
