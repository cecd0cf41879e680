package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func newTestCipher(t *testing.T) *UserIDCipher {
	t.Helper()
	c, err := NewUserIDCipher(testKey)
	require.NoError(t, err)
	return c
}

func TestNewUserIDCipher_InvalidKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "empty key", key: ""},
		{name: "not hex", key: "zz68616e676520746869732070617373776f726420746f206120736563726574"},
		{name: "too short", key: "deadbeef"},
		{name: "too long", key: testKey + "00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewUserIDCipher(tc.key)
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	ids := []int64{1, 42, 123456789, 5000000000, -1, 0, 9223372036854775807}
	for _, id := range ids {
		token, err := c.EncryptUserID(id)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		got, err := c.DecryptUserID(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	c := newTestCipher(t)

	t1, err := c.EncryptUserID(777)
	require.NoError(t, err)
	t2, err := c.EncryptUserID(777)
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2, "fresh nonce per call must produce distinct tokens")
}

func TestDecrypt_TamperRejection(t *testing.T) {
	c := newTestCipher(t)

	token, err := c.EncryptUserID(987654321)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)

	// Flipping any single byte must fail authentication, never yield a
	// different valid-looking id.
	for i := range raw {
		mutated := make([]byte, len(raw))
		copy(mutated, raw)
		mutated[i] ^= 0x01

		_, err := c.DecryptUserID(base64.RawURLEncoding.EncodeToString(mutated))
		assert.ErrorIs(t, err, ErrInvalidToken, "byte %d", i)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	c := newTestCipher(t)
	other, err := NewUserIDCipher(strings.Repeat("ab", 32))
	require.NoError(t, err)

	token, err := c.EncryptUserID(555)
	require.NoError(t, err)

	_, err = other.DecryptUserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecrypt_MalformedToken(t *testing.T) {
	c := newTestCipher(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not base64", token: "!!!not-base64!!!"},
		{name: "too short", token: base64.RawURLEncoding.EncodeToString([]byte("short"))},
		{name: "random garbage", token: base64.RawURLEncoding.EncodeToString(make([]byte, 64))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.DecryptUserID(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
