package models

// SignUpRequest represents the signup request payload
// @Description Signup request structure
type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100" example:"Destiny Ogedengbe"` // Full name
	Phone    string `json:"phone" validate:"required,ng_phone" example:"08012345678"`          // Contact handle
	Password string `json:"password" validate:"required,min=6" example:"password123"`          // Plain password
}

// VerifyCodeRequest carries an OTP for signup verification
type VerifyCodeRequest struct {
	Phone string `json:"phone" validate:"required,ng_phone" example:"08012345678"`
	Code  string `json:"code" validate:"required,numeric" example:"123456"`
}

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required,ng_phone" example:"08012345678"`
	Password string `json:"password" validate:"required" example:"password123"`
}

type BiometricLoginRequest struct {
	Phone string `json:"phone" validate:"required,ng_phone" example:"08012345678"`
}

type PasswordResetRequest struct {
	Phone string `json:"phone" validate:"required,ng_phone" example:"08012345678"`
}

type ResetPasswordRequest struct {
	Phone       string `json:"phone" validate:"required,ng_phone" example:"08012345678"`
	Code        string `json:"code" validate:"required,numeric" example:"123456"`
	NewPassword string `json:"newPassword" validate:"required,min=6" example:"newpassword"`
}

type PasswordCheckRequest struct {
	Password string `json:"password" validate:"required"`
}

type ProfileUpdateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type BiometricsRequest struct {
	Enabled bool `json:"enabled"`
}

// AuthResponse represents the authentication response
// @Description Authentication response structure
type AuthResponse struct {
	Token   string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."` // JWT token
	Account *Account `json:"account"`
}

// SignUpResult mirrors {accountCreated, codeIssued}
type SignUpResult struct {
	AccountCreated bool   `json:"accountCreated"`
	CodeIssued     bool   `json:"codeIssued"`
	AccountNumber  string `json:"accountNumber"`
	Code           string `json:"-"`
}

// MoneyRequest is the body of the debit and credit endpoints; Amount is a naira string
type MoneyRequest struct {
	Amount      string    `json:"amount" validate:"required" example:"5000.00"`
	Description string    `json:"description" validate:"required,max=200" example:"Airtime"`
	Service     ServiceID `json:"service" validate:"required" example:"airtime"`
}

type TransferRequest struct {
	AccountNumber string `json:"accountNumber" validate:"required,digits10" example:"3030303030"`
	Amount        string `json:"amount" validate:"required" example:"2500"`
	Narration     string `json:"narration" validate:"max=200"`
}

type CreateGoalRequest struct {
	Name   string `json:"name" validate:"required,max=100" example:"New Phone"`
	Target string `json:"targetAmount" validate:"required" example:"450000"`
}

type ContributeRequest struct {
	Amount string `json:"amount" validate:"required" example:"10000"`
}
