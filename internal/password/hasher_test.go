package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/userhub/internal/password"
)

func newHasher(t *testing.T) *password.BcryptHasher {
	t.Helper()
	h, err := password.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := newHasher(t)

	digest, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", digest)
	assert.True(t, strings.HasPrefix(digest, "$2a$"))

	ok, err := h.Verify("secret1", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("secret2", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher_SaltedPerHash(t *testing.T) {
	h := newHasher(t)

	first, err := h.Hash("secret1")
	require.NoError(t, err)
	second, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_EmptyPassword(t *testing.T) {
	h := newHasher(t)

	_, err := h.Hash("")
	assert.ErrorIs(t, err, password.ErrEmptyPassword)
}

func TestBcryptHasher_Length(t *testing.T) {
	h := newHasher(t)

	digest, err := h.Hash(strings.Repeat("a", password.MaxLength))
	require.NoError(t, err)
	assert.NotEmpty(t, digest)

	_, err = h.Hash(strings.Repeat("a", password.MaxLength+1))
	assert.ErrorIs(t, err, password.ErrPasswordTooLong)
}

func TestBcryptHasher_MalformedDigest(t *testing.T) {
	h := newHasher(t)

	ok, err := h.Verify("secret1", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	tests := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{name: "zero selects default", cost: 0},
		{name: "minimum", cost: bcrypt.MinCost},
		{name: "too low", cost: bcrypt.MinCost - 1, wantErr: true},
		{name: "too high", cost: bcrypt.MaxCost + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := password.NewBcryptHasher(tt.cost)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, h)
		})
	}
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	h, err := password.NewBcryptHasher(0)
	require.NoError(t, err)

	digest, err := h.Hash("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, password.DefaultCost, cost)
}
