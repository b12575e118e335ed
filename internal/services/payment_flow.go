package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jpay/wallet/internal/clock"
	"github.com/jpay/wallet/internal/metrics"
	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/pricing"
)

type FlowState string

const (
	StateForm            FlowState = "form"
	StateVerifying       FlowState = "verifying"
	StatePreview         FlowState = "preview"
	StateConfirmPassword FlowState = "confirm_password"
	StateCommitted       FlowState = "committed"
	StateCancelled       FlowState = "cancelled"
)

// flows untouched for this long are dropped
const flowRetention = 30 * time.Minute

func (s FlowState) Terminal() bool {
	return s == StateCommitted || s == StateCancelled
}

// Flow is a snapshot of one payment authorization in progress
type Flow struct {
	ID                string                       `json:"id"`
	Service           models.ServiceID             `json:"service"`
	State             FlowState                    `json:"state"`
	Form              models.FormData              `json:"form"`
	Amount            int64                        `json:"amount"`
	Description       string                       `json:"description,omitempty"`
	Note              string                       `json:"note,omitempty"`
	VerifiedName      string                       `json:"verifiedName,omitempty"`
	Disco             string                       `json:"disco,omitempty"`
	Quote             *pricing.SellQuote           `json:"quote,omitempty"`
	RecurrenceOffered bool                         `json:"recurrenceOffered"`
	Recurring         bool                         `json:"recurring"`
	Frequency         models.Frequency             `json:"frequency,omitempty"`
	EditingID         string                       `json:"editingId,omitempty"`
	Error             string                       `json:"error,omitempty"`
	Account           *models.Account              `json:"account,omitempty"`
	Instruction       *models.RecurringInstruction `json:"instruction,omitempty"`
	UpdatedAt         time.Time                    `json:"updatedAt"`
}

func (f *Flow) snapshot() *Flow {
	c := *f
	c.Form = f.Form.Clone()
	c.Account = f.Account.Clone()
	if f.Quote != nil {
		q := *f.Quote
		c.Quote = &q
	}
	if f.Instruction != nil {
		in := *f.Instruction
		in.FormData = in.FormData.Clone()
		c.Instruction = &in
	}
	return &c
}

type flowEntry struct {
	mu    sync.Mutex
	phone string
	flow  Flow
}

// PaymentService drives requests through
// Form -> (Verifying) -> Preview -> ConfirmPassword -> Committed.
// Each flow is serialised by its own lock, so a confirmed flow commits at most once.
type PaymentService struct {
	catalog       *CatalogService
	accounts      *AccountService
	auth          *AuthService
	transfers     *TransferService
	recurring     *RecurringService
	validator     *ValidationHelper
	metrics       *metrics.Metrics
	clock         clock.Clock
	commissionBps int64

	mu    sync.Mutex
	flows map[string]*flowEntry
}

func NewPaymentService(catalog *CatalogService, accounts *AccountService, auth *AuthService, transfers *TransferService, recurring *RecurringService, m *metrics.Metrics, clk clock.Clock, commissionBps int64) *PaymentService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &PaymentService{
		catalog:       catalog,
		accounts:      accounts,
		auth:          auth,
		transfers:     transfers,
		recurring:     recurring,
		validator:     NewValidationHelper(),
		metrics:       m,
		clock:         clk,
		commissionBps: commissionBps,
		flows:         make(map[string]*flowEntry),
	}
}

// Start opens a new flow in the Form state.
func (s *PaymentService) Start(phone string, service models.ServiceID) (*Flow, error) {
	if !service.Valid() {
		return nil, models.NewFieldError("service", "unknown service")
	}
	if _, err := s.auth.Account(phone); err != nil {
		return nil, err
	}

	return s.open(phone, Flow{
		Service:           service,
		Form:              models.FormData{},
		RecurrenceOffered: RecurrenceAllowed(service, nil),
	}), nil
}

// StartEdit opens a flow seeded from an existing recurring instruction.
// Confirming it re-times the instruction and never re-runs the payment.
func (s *PaymentService) StartEdit(phone, instructionID string) (*Flow, error) {
	in, err := s.recurring.Get(phone, instructionID)
	if err != nil {
		return nil, err
	}

	form := in.FormData.Clone()
	if form == nil {
		form = models.FormData{}
	}
	return s.open(phone, Flow{
		Service:           in.ServiceID,
		Form:              form,
		Amount:            in.Amount,
		Note:              NoteFrom(in.Description),
		VerifiedName:      form.Get(models.FieldVerifiedName),
		RecurrenceOffered: true,
		Recurring:         true,
		Frequency:         in.Frequency,
		EditingID:         in.ID,
	}), nil
}

func (s *PaymentService) open(phone string, f Flow) *Flow {
	now := s.clock.Now()
	f.ID = "pf-" + uuid.NewString()
	f.State = StateForm
	f.UpdatedAt = now

	e := &flowEntry{phone: phone, flow: f}

	s.mu.Lock()
	s.reapLocked(now)
	s.flows[f.ID] = e
	s.mu.Unlock()

	s.metrics.FlowOpened()
	s.metrics.ObserveTransition(string(StateForm))
	log.Printf("[PAYMENT] Flow %s opened for %s (%s)", f.ID, phone, f.Service)
	return f.snapshot()
}

func (s *PaymentService) reapLocked(now time.Time) {
	for id, e := range s.flows {
		if !e.mu.TryLock() {
			continue
		}
		if now.Sub(e.flow.UpdatedAt) > flowRetention {
			if !e.flow.State.Terminal() {
				s.metrics.FlowClosed()
			}
			delete(s.flows, id)
		}
		e.mu.Unlock()
	}
}

// with runs fn under the flow's lock and returns the resulting snapshot,
// also when fn fails, so callers can show the error state.
func (s *PaymentService) with(phone, id string, fn func(e *flowEntry) error) (*Flow, error) {
	s.mu.Lock()
	e, ok := s.flows[id]
	s.mu.Unlock()
	if !ok || e.phone != phone {
		return nil, models.ErrFlowNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	err := fn(e)
	e.flow.UpdatedAt = s.clock.Now()
	return e.flow.snapshot(), err
}

func (s *PaymentService) transition(f *Flow, to FlowState) {
	f.State = to
	s.metrics.ObserveTransition(string(to))
	if to.Terminal() {
		s.metrics.FlowClosed()
	}
}

func (s *PaymentService) Get(phone, id string) (*Flow, error) {
	return s.with(phone, id, func(*flowEntry) error { return nil })
}

// Submit merges fields into the form, derives the amount and, for services
// that name a recipient or meter, resolves it before moving to Preview.
// Any failure leaves the flow in Form with the error attached.
func (s *PaymentService) Submit(ctx context.Context, phone, id string, fields models.FormData) (*Flow, error) {
	return s.with(phone, id, func(e *flowEntry) error {
		f := &e.flow
		if f.State != StateForm {
			return models.ErrInvalidTransition
		}

		previous := f.Form
		form := f.Form.Clone()
		if form == nil {
			form = models.FormData{}
		}
		for k, v := range fields {
			form[k] = strings.TrimSpace(v)
		}

		amount, quote, err := s.derive(f.Service, form)
		if err != nil {
			if f.Service == models.ServiceAddFunds {
				dropCard(form)
			}
			if targetChanged(previous, form) {
				f.VerifiedName = ""
				delete(form, models.FieldVerifiedName)
			}
			f.Form = form
			f.Error = err.Error()
			return err
		}
		if f.Service == models.ServiceAddFunds {
			scrubCard(form)
		}
		form[models.FieldAmount] = models.FormatMinor(amount)

		f.Form = form
		f.Amount = amount
		f.Quote = quote
		f.Error = ""
		if note := form.Get(models.FieldNarration); note != "" {
			f.Note = note
		}

		// edit flows reuse the stored name unless the recipient or meter changed
		if f.Service.RequiresVerification() && (f.EditingID == "" || f.VerifiedName == "" || targetChanged(previous, form)) {
			s.transition(f, StateVerifying)
			if err := s.verify(ctx, f); err != nil {
				log.Printf("[PAYMENT] Flow %s verification failed: %v", f.ID, err)
				f.VerifiedName = ""
				delete(f.Form, models.FieldVerifiedName)
				f.Error = err.Error()
				s.transition(f, StateForm)
				return err
			}
		}

		f.Description = s.catalog.Describe(f.Service, f.Form, f.VerifiedName)
		s.transition(f, StatePreview)
		return nil
	})
}

var verifiedFields = []string{models.FieldAccountNumber, models.FieldBankName, models.FieldMeterNumber, models.FieldState}

func targetChanged(before, after models.FormData) bool {
	for _, k := range verifiedFields {
		if before.Get(k) != after.Get(k) {
			return true
		}
	}
	return false
}

func (s *PaymentService) verify(ctx context.Context, f *Flow) error {
	var name string
	var err error

	switch f.Service {
	case models.ServiceJPayTransfer:
		name, err = s.accounts.ResolveAccountNumber(ctx, f.Form.Get(models.FieldAccountNumber), NetworkJPay)
	case models.ServiceBankTransfer:
		name, err = s.accounts.ResolveAccountNumber(ctx, f.Form.Get(models.FieldAccountNumber), f.Form.Get(models.FieldBankName))
	case models.ServiceElectricity:
		var mv *MeterVerification
		mv, err = s.accounts.VerifyMeter(ctx, f.Form.Get(models.FieldMeterNumber), f.Form.Get(models.FieldState))
		if err == nil {
			name = mv.Name
			f.Disco = mv.Disco
		}
	}
	if err != nil {
		return err
	}

	f.VerifiedName = name
	f.Form[models.FieldVerifiedName] = name
	return nil
}

// derive validates the service fields and returns the amount in kobo. Gift
// cards are priced from the vendor rate; data and TV plans from the catalog.
func (s *PaymentService) derive(service models.ServiceID, form models.FormData) (int64, *pricing.SellQuote, error) {
	switch service {
	case models.ServiceGiftCard:
		return s.priceGiftCard(form)

	case models.ServiceData:
		if err := s.requireField(form, models.FieldPhoneNumber, "required,ng_phone"); err != nil {
			return 0, nil, err
		}
		network := form.Get(models.FieldNetwork)
		if network == "" {
			if n, ok := s.catalog.DetectNetwork(form.Get(models.FieldPhoneNumber)); ok {
				network = n.ID
				form[models.FieldNetwork] = network
			}
		}
		if planName := form.Get(models.FieldPlanName); planName != "" {
			plan, ok := s.catalog.DataPlan(network, planName)
			if !ok {
				return 0, nil, models.NewFieldError(models.FieldPlanName, "unknown plan for network")
			}
			return plan.Price, nil, nil
		}

	case models.ServiceTV:
		if err := s.requireField(form, models.FieldSmartCard, "required,numeric"); err != nil {
			return 0, nil, err
		}
		if planName := form.Get(models.FieldPlanName); planName != "" {
			plan, ok := s.catalog.TVPlan(form.Get(models.FieldProvider), planName)
			if !ok {
				return 0, nil, models.NewFieldError(models.FieldPlanName, "unknown plan for provider")
			}
			return plan.Price, nil, nil
		}

	case models.ServiceAirtime:
		if err := s.requireField(form, models.FieldPhoneNumber, "required,ng_phone"); err != nil {
			return 0, nil, err
		}

	case models.ServiceJPayTransfer:
		if err := s.requireField(form, models.FieldAccountNumber, "required,digits10"); err != nil {
			return 0, nil, err
		}

	case models.ServiceBankTransfer:
		if _, ok := s.catalog.Bank(form.Get(models.FieldBankName)); !ok {
			return 0, nil, models.NewFieldError(models.FieldBankName, "unknown bank")
		}
		if err := s.requireField(form, models.FieldAccountNumber, "required,digits10"); err != nil {
			return 0, nil, err
		}

	case models.ServiceElectricity:
		if err := s.requireField(form, models.FieldMeterNumber, "required"); err != nil {
			return 0, nil, err
		}
		if err := s.requireField(form, models.FieldState, "required"); err != nil {
			return 0, nil, err
		}

	case models.ServiceAddFunds:
		if form.Get(models.FieldCardLast4) == "" || form.Get(models.FieldCardNumber) != "" {
			if err := s.validateCard(form); err != nil {
				return 0, nil, err
			}
		}
	}

	amount, err := models.ParseAmount(form.Get(models.FieldAmount))
	if err != nil {
		return 0, nil, err
	}
	return amount, nil, nil
}

func (s *PaymentService) priceGiftCard(form models.FormData) (int64, *pricing.SellQuote, error) {
	vendor, ok := pricing.LookupVendor(form.Get(models.FieldVendor))
	if !ok {
		return 0, nil, models.NewFieldError(models.FieldVendor, "unknown vendor")
	}
	cents, err := models.ParseAmount(form.Get(models.FieldUSDAmount))
	if err != nil {
		return 0, nil, err
	}

	switch form.Get(models.FieldGiftAction) {
	case models.GiftCardBuy:
		cost, err := pricing.BuyCost(vendor.Rate, cents)
		return cost, nil, err
	case models.GiftCardSell:
		quote, err := pricing.SellPayout(vendor.Rate, cents, s.commissionBps)
		if err != nil {
			return 0, nil, err
		}
		if quote.Payout <= 0 {
			return 0, nil, models.ErrInvalidAmount
		}
		return quote.Payout, &quote, nil
	}
	return 0, nil, models.NewFieldError(models.FieldGiftAction, "must be buy or sell")
}

func (s *PaymentService) requireField(form models.FormData, field, tag string) error {
	if err := s.validator.ValidateVar(form.Get(field), tag); err != nil {
		return models.NewFieldError(field, "invalid value")
	}
	return nil
}

var cardFields = map[string]string{
	"Number": models.FieldCardNumber,
	"Expiry": models.FieldExpiryDate,
	"CVV":    models.FieldCVV,
}

func (s *PaymentService) validateCard(form models.FormData) error {
	card := models.FundingCard{
		Number: form.Get(models.FieldCardNumber),
		Expiry: form.Get(models.FieldExpiryDate),
		CVV:    form.Get(models.FieldCVV),
	}
	err := s.validator.ValidateStruct(&card)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return models.NewFieldError(cardFields[verrs[0].Field()], "invalid value")
	}
	return err
}

// scrubCard keeps only the last four digits of the funding card in the form
func scrubCard(form models.FormData) {
	if number := form.Get(models.FieldCardNumber); number != "" {
		form[models.FieldCardLast4] = models.FundingCard{Number: number}.Last4()
	}
	dropCard(form)
}

func dropCard(form models.FormData) {
	delete(form, models.FieldCardNumber)
	delete(form, models.FieldExpiryDate)
	delete(form, models.FieldCVV)
}

// Back returns Preview to Form and ConfirmPassword to Preview.
func (s *PaymentService) Back(phone, id string) (*Flow, error) {
	return s.with(phone, id, func(e *flowEntry) error {
		f := &e.flow
		switch f.State {
		case StatePreview:
			s.transition(f, StateForm)
		case StateConfirmPassword:
			s.transition(f, StatePreview)
		default:
			return models.ErrInvalidTransition
		}
		f.Error = ""
		return nil
	})
}

// Proceed records the recurrence choice and asks for the password. Edit
// flows are always recurring.
func (s *PaymentService) Proceed(phone, id string, recurring bool, freq models.Frequency) (*Flow, error) {
	return s.with(phone, id, func(e *flowEntry) error {
		f := &e.flow
		if f.State != StatePreview {
			return models.ErrInvalidTransition
		}

		if f.EditingID != "" {
			recurring = true
			if freq == "" {
				freq = f.Frequency
			}
		}
		if recurring {
			if !RecurrenceAllowed(f.Service, f.Form) {
				f.Error = models.ErrRecurrenceNotAllowed.Error()
				return models.ErrRecurrenceNotAllowed
			}
			if !freq.Valid() {
				err := models.NewFieldError("frequency", "must be daily, weekly or monthly")
				f.Error = err.Error()
				return err
			}
		} else {
			freq = ""
		}

		f.Recurring = recurring
		f.Frequency = freq
		f.Error = ""
		s.transition(f, StateConfirmPassword)
		return nil
	})
}

// Confirm checks the password and commits. A wrong password keeps the flow
// in ConfirmPassword; a failed commit returns it to Preview.
func (s *PaymentService) Confirm(ctx context.Context, phone, id, password string) (*Flow, error) {
	return s.with(phone, id, func(e *flowEntry) error {
		f := &e.flow
		if f.State != StateConfirmPassword {
			return models.ErrInvalidTransition
		}

		if !s.auth.VerifyCurrentPassword(e.phone, password) {
			log.Printf("[PAYMENT] Flow %s: incorrect password", f.ID)
			f.Error = models.ErrWrongPassword.Error()
			return models.ErrWrongPassword
		}

		description := WithNote(f.Description, f.Note)

		if f.EditingID != "" {
			in, err := s.recurring.Edit(e.phone, f.EditingID, f.Amount, description, f.Frequency, f.Form)
			if err != nil {
				f.Error = err.Error()
				s.transition(f, StatePreview)
				return err
			}
			f.Instruction = in
			f.Error = ""
			s.transition(f, StateCommitted)
			return nil
		}

		account, err := s.commit(ctx, e.phone, f, description)
		if err != nil {
			log.Printf("[PAYMENT] Flow %s commit failed: %v", f.ID, err)
			f.Error = err.Error()
			s.transition(f, StatePreview)
			return err
		}
		f.Account = account
		f.Error = ""

		if f.Recurring {
			in, err := s.recurring.Create(e.phone, f.Service, f.Amount, description, f.Frequency, f.Form)
			if err != nil {
				// the payment stands; only the schedule is missing
				log.Printf("[PAYMENT] Flow %s committed but scheduling failed: %v", f.ID, err)
				f.Error = "payment completed but recurring schedule failed: " + err.Error()
			} else {
				f.Instruction = in
			}
		}

		log.Printf("[PAYMENT] Flow %s committed: %s %d kobo", f.ID, f.Service, f.Amount)
		s.transition(f, StateCommitted)
		return nil
	})
}

// commit applies exactly one ledger operation: a transfer for J pay
// recipients, a credit for funding, a debit for everything else.
func (s *PaymentService) commit(ctx context.Context, phone string, f *Flow, description string) (*models.Account, error) {
	switch {
	case f.Service == models.ServiceJPayTransfer:
		res, err := s.transfers.P2PTransfer(ctx, phone, f.Form.Get(models.FieldAccountNumber), f.Amount, description)
		if err != nil {
			return nil, err
		}
		return res.Sender, nil
	case isCreditRequest(f.Service, f.Form):
		return s.transfers.ApplyCredit(ctx, phone, f.Amount, description, f.Service)
	default:
		return s.transfers.ApplyDebit(ctx, phone, f.Amount, description, f.Service)
	}
}

func isCreditRequest(service models.ServiceID, form models.FormData) bool {
	return service == models.ServiceAddFunds ||
		(service == models.ServiceGiftCard && form.Get(models.FieldGiftAction) == models.GiftCardSell)
}

// Cancel ends a flow without side effects.
func (s *PaymentService) Cancel(phone, id string) (*Flow, error) {
	return s.with(phone, id, func(e *flowEntry) error {
		f := &e.flow
		if f.State.Terminal() {
			return models.ErrInvalidTransition
		}
		f.Error = ""
		s.transition(f, StateCancelled)
		log.Printf("[PAYMENT] Flow %s cancelled", f.ID)
		return nil
	})
}
