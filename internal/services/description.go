package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/pricing"
)

const noteSeparator = " - Note: "

var notePattern = regexp.MustCompile(` - Note: (.+)`)

// Describe renders the ledger description for a service request from its form
// snapshot. verifiedName is the resolved recipient or meter holder, if any.
func (cs *CatalogService) Describe(service models.ServiceID, form models.FormData, verifiedName string) string {
	switch service {
	case models.ServiceJPayTransfer, models.ServiceBankTransfer:
		bankName := "J pay"
		if service == models.ServiceBankTransfer {
			bankName = "Bank"
			if b, ok := cs.Bank(form.Get(models.FieldBankName)); ok {
				bankName = b.Name
			}
		}
		return fmt.Sprintf("Transfer to %s (%s - %s)", orDefault(verifiedName, "recipient"), bankName, form.Get(models.FieldAccountNumber))

	case models.ServiceData:
		return fmt.Sprintf("%s for %s", orDefault(form.Get(models.FieldPlanName), "Data"), form.Get(models.FieldPhoneNumber))

	case models.ServiceTV:
		return fmt.Sprintf("%s %s for %s", strings.ToUpper(form.Get(models.FieldProvider)), form.Get(models.FieldPlanName), form.Get(models.FieldSmartCard))

	case models.ServiceElectricity:
		return fmt.Sprintf("Electricity for %s (%s)", form.Get(models.FieldMeterNumber), orDefault(verifiedName, "user"))

	case models.ServiceAirtime:
		return fmt.Sprintf("Airtime for %s", form.Get(models.FieldPhoneNumber))

	case models.ServiceAddFunds:
		return fmt.Sprintf("Funds added via Card ending in %s", orDefault(form.Get(models.FieldCardLast4), "****"))

	case models.ServiceGiftCard:
		vendorName := "Gift Card"
		if v, ok := pricing.LookupVendor(form.Get(models.FieldVendor)); ok {
			vendorName = v.Name
		}
		usd := form.Get(models.FieldUSDAmount)
		if form.Get(models.FieldGiftAction) == models.GiftCardBuy {
			return fmt.Sprintf("Purchase of $%s %s Gift Card", usd, vendorName)
		}
		code := ""
		if c := form.Get(models.FieldGiftCardCode); c != "" {
			code = fmt.Sprintf(" (Code: ...%s)", lastN(c, 4))
		}
		return fmt.Sprintf("Sale of $%s %s Gift Card%s", usd, vendorName, code)
	}

	if s, ok := cs.Service(service); ok {
		return s.Name
	}
	return string(service)
}

// WithNote appends the user's narration to a description.
func WithNote(description, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return description
	}
	return description + noteSeparator + note
}

// NoteFrom recovers the narration previously appended by WithNote.
func NoteFrom(description string) string {
	m := notePattern.FindStringSubmatch(description)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
