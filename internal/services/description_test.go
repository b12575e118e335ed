package services

import (
	"testing"

	"github.com/jpay/wallet/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	cs := NewCatalogService()

	tests := []struct {
		name     string
		service  models.ServiceID
		form     models.FormData
		verified string
		want     string
	}{
		{"wallet transfer", models.ServiceJPayTransfer, models.FormData{"accountNumber": "3030303030"}, "Sarah Connor", "Transfer to Sarah Connor (J pay - 3030303030)"},
		{"bank transfer", models.ServiceBankTransfer, models.FormData{"accountNumber": "0123456789", "bankName": "gtb"}, "Musa Ibrahim", "Transfer to Musa Ibrahim (GTBank - 0123456789)"},
		{"bank transfer unverified", models.ServiceBankTransfer, models.FormData{"accountNumber": "0123456789", "bankName": "x"}, "", "Transfer to recipient (Bank - 0123456789)"},
		{"data plan", models.ServiceData, models.FormData{"planName": "1GB", "phoneNumber": "08031234567"}, "", "1GB for 08031234567"},
		{"data without plan", models.ServiceData, models.FormData{"phoneNumber": "08031234567"}, "", "Data for 08031234567"},
		{"tv", models.ServiceTV, models.FormData{"provider": "dstv", "planName": "Compact", "smartCardNumber": "7023456789"}, "", "DSTV Compact for 7023456789"},
		{"electricity", models.ServiceElectricity, models.FormData{"meterNumber": "45012345678"}, "John Doe", "Electricity for 45012345678 (John Doe)"},
		{"electricity unverified", models.ServiceElectricity, models.FormData{"meterNumber": "45012345678"}, "", "Electricity for 45012345678 (user)"},
		{"airtime", models.ServiceAirtime, models.FormData{"phoneNumber": "08031234567"}, "", "Airtime for 08031234567"},
		{"add funds", models.ServiceAddFunds, models.FormData{"cardLast4": "4242"}, "", "Funds added via Card ending in 4242"},
		{"add funds no card", models.ServiceAddFunds, models.FormData{}, "", "Funds added via Card ending in ****"},
		{"gift card buy", models.ServiceGiftCard, models.FormData{"giftCardAction": "buy", "vendor": "amazon", "usdAmount": "50"}, "", "Purchase of $50 Amazon Gift Card"},
		{"gift card sell", models.ServiceGiftCard, models.FormData{"giftCardAction": "sell", "vendor": "steam", "usdAmount": "25", "giftCardCode": "ABCD-EFGH-1234"}, "", "Sale of $25 Steam Gift Card (Code: ...1234)"},
		{"gift card sell without code", models.ServiceGiftCard, models.FormData{"giftCardAction": "sell", "vendor": "steam", "usdAmount": "25"}, "", "Sale of $25 Steam Gift Card"},
		{"savings falls back", models.ServiceSavings, nil, "", "savings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cs.Describe(tt.service, tt.form, tt.verified))
		})
	}
}

func TestNotes(t *testing.T) {
	assert.Equal(t, "Airtime for 08031234567", WithNote("Airtime for 08031234567", "  "))

	desc := WithNote("Airtime for 08031234567", "for mum")
	assert.Equal(t, "Airtime for 08031234567 - Note: for mum", desc)
	assert.Equal(t, "for mum", NoteFrom(desc))
	assert.Empty(t, NoteFrom("Airtime for 08031234567"))
}
