package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// FundingCard holds the card details captured by an add-funds request.
// Only the last four digits ever leave the payment flow.
type FundingCard struct {
	Number string `json:"cardNumber" validate:"required,card_number"`
	Expiry string `json:"expiryDate" validate:"required,card_expiry"`
	CVV    string `json:"cvv" validate:"required,cvv"`
}

func (c FundingCard) Last4() string {
	digits := strings.ReplaceAll(c.Number, " ", "")
	if len(digits) < 4 {
		return "****"
	}
	return digits[len(digits)-4:]
}

// FormData is the service-specific field snapshot kept with a recurring instruction
type FormData map[string]string

func (f FormData) Clone() FormData {
	if f == nil {
		return nil
	}
	c := make(FormData, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

func (f FormData) Get(key string) string {
	return strings.TrimSpace(f[key])
}

// Value implements driver.Valuer for FormData
func (f FormData) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner for FormData
func (f *FormData) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(b, f)
}
