package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	h := NewHasher(Params{Time: 1, Memory: 8 * 1024, Threads: 2, KeyLength: 32, SaltLength: 16})

	hashed, err := h.Hash("testpassword")
	require.NoError(t, err)
	assert.Len(t, strings.Split(hashed, "$"), 2)

	assert.True(t, h.Verify("testpassword", hashed))
	assert.False(t, h.Verify("wrongpassword", hashed))

	t.Run("salted per call", func(t *testing.T) {
		again, err := h.Hash("testpassword")
		require.NoError(t, err)
		assert.NotEqual(t, hashed, again)
		assert.True(t, h.Verify("testpassword", again))
	})

	t.Run("malformed hashes never verify", func(t *testing.T) {
		for _, bad := range []string{"", "nodollar", "!!!$!!!", "c2FsdA==$"} {
			assert.False(t, h.Verify("testpassword", bad), bad)
		}
	})

	t.Run("empty password rejected", func(t *testing.T) {
		_, err := h.Hash("")
		assert.Error(t, err)
	})
}
