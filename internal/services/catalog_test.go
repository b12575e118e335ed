package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_Lookups(t *testing.T) {
	cs := NewCatalogService()

	t.Run("network detection", func(t *testing.T) {
		tests := map[string]string{
			"08031234567": "mtn",
			"08051234567": "glo",
			"09021234567": "airtel",
			"08091234567": "9mobile",
		}
		for phone, want := range tests {
			n, ok := cs.DetectNetwork(phone)
			require.True(t, ok, phone)
			assert.Equal(t, want, n.ID, phone)
		}

		_, ok := cs.DetectNetwork("0700")
		assert.False(t, ok)
		_, ok = cs.DetectNetwork("080")
		assert.False(t, ok)
	})

	t.Run("plans match case-insensitively", func(t *testing.T) {
		plan, ok := cs.DataPlan("mtn", "1gb")
		require.True(t, ok)
		assert.Equal(t, int64(30000), plan.Price)

		plan, ok = cs.TVPlan("dstv", "compact")
		require.True(t, ok)
		assert.Equal(t, int64(1250000), plan.Price)

		_, ok = cs.TVPlan("startimes", "Basic")
		assert.False(t, ok)
	})

	t.Run("discos", func(t *testing.T) {
		d, ok := cs.Disco("FCT")
		require.True(t, ok)
		assert.Contains(t, d, "AEDC")

		states := cs.States()
		assert.Len(t, states, 37)
		assert.Equal(t, "Abia", states[0])
	})

	t.Run("catalog is a copy", func(t *testing.T) {
		c := cs.Catalog()
		assert.Len(t, c.Services, 8)
		assert.NotEmpty(t, c.Vendors)

		c.Banks[0].Name = "changed"
		b, ok := cs.Bank("access")
		require.True(t, ok)
		assert.Equal(t, "Access Bank", b.Name)
	})
}
