package models

// ServiceID identifies a payable service; it doubles as the entry category tag
type ServiceID string

const (
	ServiceJPayTransfer ServiceID = "jpayTransfer"
	ServiceBankTransfer ServiceID = "bankTransfer"
	ServiceAirtime      ServiceID = "airtime"
	ServiceData         ServiceID = "data"
	ServiceElectricity  ServiceID = "electricity"
	ServiceTV           ServiceID = "tv"
	ServiceGiftCard     ServiceID = "giftCard"
	ServiceAddFunds     ServiceID = "addFunds"
	ServiceSavings      ServiceID = "savings"
)

func (s ServiceID) Valid() bool {
	switch s {
	case ServiceJPayTransfer, ServiceBankTransfer, ServiceAirtime, ServiceData,
		ServiceElectricity, ServiceTV, ServiceGiftCard, ServiceAddFunds:
		return true
	}
	return false
}

// RequiresVerification reports whether the service resolves a recipient or
// meter holder before preview.
func (s ServiceID) RequiresVerification() bool {
	switch s {
	case ServiceJPayTransfer, ServiceBankTransfer, ServiceElectricity:
		return true
	}
	return false
}

// Form field names shared by the payment flow, descriptions and snapshots
const (
	FieldAmount        = "amount"
	FieldAccountNumber = "accountNumber"
	FieldBankName      = "bankName"
	FieldNarration     = "narration"
	FieldPhoneNumber   = "phoneNumber"
	FieldNetwork       = "network"
	FieldPlanName      = "planName"
	FieldState         = "state"
	FieldMeterNumber   = "meterNumber"
	FieldProvider      = "provider"
	FieldSmartCard     = "smartCardNumber"
	FieldVendor        = "vendor"
	FieldUSDAmount     = "usdAmount"
	FieldGiftCardCode  = "giftCardCode"
	FieldGiftAction    = "giftCardAction"
	FieldCardNumber    = "cardNumber"
	FieldExpiryDate    = "expiryDate"
	FieldCVV           = "cvv"
	FieldCardLast4     = "cardLast4"

	// FieldVerifiedName holds the resolved recipient or meter holder so an
	// edited instruction can be described without a fresh lookup
	FieldVerifiedName = "verifiedName"
)

const (
	GiftCardBuy  = "buy"
	GiftCardSell = "sell"
)

// TransferResult carries both sides of a committed P2P transfer
type TransferResult struct {
	Sender    *Account `json:"sender"`
	Recipient *Account `json:"-"`
	Debit     Entry    `json:"debit"`
	Credit    Entry    `json:"-"`
}
