package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/services"
)

// WalletHandler exposes direct ledger operations, savings goals, recurring
// payments and the lookups the app needs before starting a payment.
type WalletHandler struct {
	auth      *services.AuthService
	transfers *services.TransferService
	savings   *services.SavingsService
	recurring *services.RecurringService
	resolver  *services.AccountService
	catalog   *services.CatalogService
	validator *services.ValidationHelper
}

func NewWalletHandler(auth *services.AuthService, transfers *services.TransferService, savings *services.SavingsService, recurring *services.RecurringService, resolver *services.AccountService, catalog *services.CatalogService) *WalletHandler {
	return &WalletHandler{
		auth:      auth,
		transfers: transfers,
		savings:   savings,
		recurring: recurring,
		resolver:  resolver,
		catalog:   catalog,
		validator: services.NewValidationHelper(),
	}
}

// Transactions lists the wallet's entries, most recent first
// @Summary List transactions
// @Tags Wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{balance=int64,transactions=[]models.Entry}
// @Router /wallet/transactions [get]
func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	account, err := h.auth.Account(phone)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"balance": account.Balance, "transactions": account.Entries})
}

func (h *WalletHandler) moneyRequest(w http.ResponseWriter, r *http.Request) (string, models.MoneyRequest, int64, bool) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return "", models.MoneyRequest{}, 0, false
	}

	var req models.MoneyRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return "", req, 0, false
	}
	if !req.Service.Valid() && req.Service != models.ServiceSavings {
		sendServiceError(w, models.NewFieldError("service", "unknown service"))
		return "", req, 0, false
	}
	amount, err := models.ParseAmount(req.Amount)
	if err != nil {
		sendServiceError(w, err)
		return "", req, 0, false
	}
	return phone, req, amount, true
}

// Debit applies a completed debit
// @Summary Debit wallet
// @Tags Wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.MoneyRequest true "Debit"
// @Success 200 {object} object{account=models.Account}
// @Failure 422 {object} services.ErrorResponse
// @Router /wallet/debit [post]
func (h *WalletHandler) Debit(w http.ResponseWriter, r *http.Request) {
	phone, req, amount, valid := h.moneyRequest(w, r)
	if !valid {
		return
	}

	account, err := h.transfers.ApplyDebit(r.Context(), phone, amount, req.Description, req.Service)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"account": account})
}

// Credit applies a completed credit
// @Summary Credit wallet
// @Tags Wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.MoneyRequest true "Credit"
// @Success 200 {object} object{account=models.Account}
// @Router /wallet/credit [post]
func (h *WalletHandler) Credit(w http.ResponseWriter, r *http.Request) {
	phone, req, amount, valid := h.moneyRequest(w, r)
	if !valid {
		return
	}

	account, err := h.transfers.ApplyCredit(r.Context(), phone, amount, req.Description, req.Service)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"account": account})
}

// Transfer moves money to another J pay wallet
// @Summary Wallet to wallet transfer
// @Tags Wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TransferRequest true "Transfer"
// @Success 200 {object} models.TransferResult
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /wallet/transfer [post]
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	var req models.TransferRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	amount, err := models.ParseAmount(req.Amount)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	result, err := h.transfers.P2PTransfer(r.Context(), phone, req.AccountNumber, amount, req.Narration)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"account": result.Sender, "debit": result.Debit})
}

// CreateGoal adds a savings goal
// @Summary Create savings goal
// @Tags Savings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateGoalRequest true "Goal"
// @Success 201 {object} models.SavingsGoal
// @Router /savings/goals [post]
func (h *WalletHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	var req models.CreateGoalRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	target, err := models.ParseAmount(req.Target)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	goal, err := h.savings.CreateGoal(phone, req.Name, target)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "goal": goal})
}

// Contribute moves money from the balance into a goal
// @Summary Contribute to savings goal
// @Tags Savings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goalID path string true "Goal ID"
// @Param request body models.ContributeRequest true "Contribution"
// @Success 200 {object} object{account=models.Account}
// @Failure 404 {object} services.ErrorResponse
// @Router /savings/goals/{goalID}/contribute [post]
func (h *WalletHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	var req models.ContributeRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	amount, err := models.ParseAmount(req.Amount)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	account, err := h.savings.Contribute(r.Context(), phone, chi.URLParam(r, "goalID"), amount)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"account": account})
}

// ListRecurring returns the wallet's recurring payments
// @Summary List recurring payments
// @Tags Recurring
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{recurringPayments=[]models.RecurringInstruction}
// @Router /recurring [get]
func (h *WalletHandler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	list, err := h.recurring.List(phone)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"recurringPayments": list})
}

// CancelRecurring removes a recurring payment
// @Summary Cancel recurring payment
// @Tags Recurring
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instruction ID"
// @Success 200 {object} object{success=bool}
// @Failure 404 {object} services.ErrorResponse
// @Router /recurring/{id} [delete]
func (h *WalletHandler) CancelRecurring(w http.ResponseWriter, r *http.Request) {
	phone, authed := requirePhone(w, r)
	if !authed {
		return
	}

	if err := h.recurring.Cancel(phone, chi.URLParam(r, "id")); err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{})
}

// Catalog returns services, banks, plans, discos and gift-card vendors
// @Summary Reference catalog
// @Tags Catalog
// @Produce json
// @Success 200 {object} services.Catalog
// @Router /catalog [get]
func (h *WalletHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]any{"catalog": h.catalog.Catalog()})
}

// ResolveAccount looks up the holder of an account number
// @Summary Resolve account name
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param accountNumber query string true "Account number"
// @Param bank query string false "Bank id, or jpay for wallets"
// @Success 200 {object} object{name=string}
// @Failure 404 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /resolve/account [get]
func (h *WalletHandler) ResolveAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber := r.URL.Query().Get("accountNumber")
	if err := h.validator.ValidateVar(accountNumber, "required,digits10"); err != nil {
		sendServiceError(w, models.NewFieldError("accountNumber", "must be 10 digits"))
		return
	}
	bank := r.URL.Query().Get("bank")
	if bank == "" {
		bank = services.NetworkJPay
	}

	name, err := h.resolver.ResolveAccountNumber(r.Context(), accountNumber, bank)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"name": name})
}

// VerifyMeter confirms an electricity meter
// @Summary Verify meter
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param meterNumber query string true "Meter number"
// @Param state query string false "State"
// @Success 200 {object} services.MeterVerification
// @Failure 503 {object} services.ErrorResponse
// @Router /resolve/meter [get]
func (h *WalletHandler) VerifyMeter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mv, err := h.resolver.VerifyMeter(r.Context(), q.Get("meterNumber"), q.Get("state"))
	if err != nil {
		sendServiceError(w, err)
		return
	}
	respondOK(w, map[string]any{"meter": mv})
}
