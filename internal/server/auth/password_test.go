package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).Cost)
	assert.Equal(t, DefaultCost, NewHasher(-3).Cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(1).Cost)
	assert.Equal(t, bcrypt.MaxCost, NewHasher(99).Cost)
	assert.Equal(t, 10, NewHasher(10).Cost)
}

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, h.Verify("pw123", hash))
	assert.False(t, h.Verify("pw124", hash))
	assert.False(t, h.Verify("", hash))
}

func TestHasher_HashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, bad := range []string{"", "not-a-hash", "$2a$", "$2a$04$short"} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("pw", bad), bad)
		})
	}
}

func TestHasher_VerifyDummy(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	assert.NotPanics(t, func() {
		h.VerifyDummy("anything")
		h.VerifyDummy("again")
	})
	assert.NotEmpty(t, h.dummy)
}
