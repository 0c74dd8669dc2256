package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := NewCipher(key)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func TestNewCipherEmptyKeyIsPassthrough(t *testing.T) {
	c, err := NewCipher("")
	require.NoError(t, err)
	assert.Nil(t, c)

	out, err := c.Encrypt("token:abc")
	require.NoError(t, err)
	assert.Equal(t, "token:abc", out)

	out, err = c.Decrypt("token:abc")
	require.NoError(t, err)
	assert.Equal(t, "token:abc", out)
}

func TestNewCipherRejectsBadKeys(t *testing.T) {
	_, err := NewCipher("not base64!!")
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	// Valid base64 but not 32 bytes.
	_, err = NewCipher("c2hvcnQ=")
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestCipherRoundTrip(t *testing.T) {
	c := newTestCipher(t)

	sealed, err := c.Encrypt("123456:ABC-telegram-token")
	require.NoError(t, err)
	assert.NotEqual(t, "123456:ABC-telegram-token", sealed)

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "123456:ABC-telegram-token", plain)

	// Random nonce makes every sealing distinct.
	again, err := c.Encrypt("123456:ABC-telegram-token")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)
}

func TestCipherDecryptErrors(t *testing.T) {
	c := newTestCipher(t)

	_, err := c.Decrypt("%%% not base64 %%%")
	assert.Error(t, err)

	// Shorter than a GCM nonce.
	_, err = c.Decrypt("AAAA")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	sealed, err := c.Encrypt("secret")
	require.NoError(t, err)

	other := newTestCipher(t)
	_, err = other.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestGenerateKeyYieldsUsableKey(t *testing.T) {
	a, err := GenerateKey()
	require.NoError(t, err)
	b, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = NewCipher(a)
	require.NoError(t, err)
}
