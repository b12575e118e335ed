package pricing

import (
	"testing"

	"github.com/jpay/wallet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSellPayout(t *testing.T) {
	t.Run("reference quote", func(t *testing.T) {
		// $100 at 1450 with 2% commission: 145000 / 2900 / 142100 naira
		q, err := SellPayout(1450, 100_00, 200)
		require.NoError(t, err)
		assert.Equal(t, models.MustNaira("145000"), q.Value)
		assert.Equal(t, models.MustNaira("2900"), q.Commission)
		assert.Equal(t, models.MustNaira("142100"), q.Payout)
	})

	t.Run("commission rounds half up to the kobo", func(t *testing.T) {
		// 1% of 1250 kobo is 12.5
		q, err := SellPayout(1250, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(13), q.Commission)
		assert.Equal(t, int64(1237), q.Payout)
	})

	t.Run("non-positive usd is not ready", func(t *testing.T) {
		for _, usd := range []int64{0, -100} {
			q, err := SellPayout(1450, usd, 200)
			assert.ErrorIs(t, err, models.ErrInvalidAmount)
			assert.Equal(t, SellQuote{}, q)
		}
	})
}

func TestBuyCost(t *testing.T) {
	cost, err := BuyCost(1400, 50_00)
	require.NoError(t, err)
	assert.Equal(t, models.MustNaira("70000"), cost)

	cost, err = BuyCost(1400, 0)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	assert.Zero(t, cost)

	cost, err = BuyCost(1450, 12721892464627277)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	assert.Zero(t, cost)

	_, err = SellPayout(1450, 12721892464627277, 200)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestRateToBps(t *testing.T) {
	bps, err := RateToBps("0.02")
	require.NoError(t, err)
	assert.Equal(t, int64(200), bps)

	_, err = RateToBps("1.5")
	assert.Error(t, err)
	_, err = RateToBps("abc")
	assert.Error(t, err)
}

func TestLookupVendor(t *testing.T) {
	v, ok := LookupVendor("amazon")
	require.True(t, ok)
	assert.Equal(t, int64(1450), v.Rate)

	_, ok = LookupVendor("unknown")
	assert.False(t, ok)
	assert.Len(t, Vendors(), 10)
}
