package pricing

import (
	"math"

	"github.com/jpay/wallet/internal/models"
	"github.com/shopspring/decimal"
)

const bpsDenominator = 10_000

// SellQuote breaks a gift-card sale into its gross value, commission and payout, all in kobo.
type SellQuote struct {
	Value      int64 `json:"value"`
	Commission int64 `json:"commission"`
	Payout     int64 `json:"payout"`
}

// BuyCost is the naira cost, in kobo, of usdCents worth of gift card at rate naira per dollar.
func BuyCost(rate, usdCents int64) (int64, error) {
	if usdCents <= 0 || rate <= 0 {
		return 0, models.ErrInvalidAmount
	}
	if usdCents > math.MaxInt64/rate {
		return 0, models.ErrInvalidAmount
	}
	return usdCents * rate, nil
}

// SellPayout computes the value of usdCents at rate and withholds commissionBps
// basis points of it, rounding the commission half-up to the kobo.
func SellPayout(rate, usdCents, commissionBps int64) (SellQuote, error) {
	value, err := BuyCost(rate, usdCents)
	if err != nil {
		return SellQuote{}, err
	}
	if commissionBps < 0 || commissionBps >= bpsDenominator {
		return SellQuote{}, models.ErrInvalidAmount
	}

	commission := decimal.NewFromInt(value).
		Mul(decimal.NewFromInt(commissionBps)).
		Div(decimal.NewFromInt(bpsDenominator)).
		Round(0).
		IntPart()

	return SellQuote{
		Value:      value,
		Commission: commission,
		Payout:     value - commission,
	}, nil
}

// RateToBps converts a fractional rate string such as "0.02" into basis points.
func RateToBps(rate string) (int64, error) {
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return 0, err
	}
	bps := d.Mul(decimal.NewFromInt(bpsDenominator))
	if !bps.IsInteger() || bps.IsNegative() || bps.GreaterThanOrEqual(decimal.NewFromInt(bpsDenominator)) {
		return 0, models.ErrInvalidAmount
	}
	return bps.IntPart(), nil
}
