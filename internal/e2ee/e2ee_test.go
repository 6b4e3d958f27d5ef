package e2ee

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livedraw/internal/geometry"
)

func newTestCipher(t *testing.T) (*Cipher, string) {
	t.Helper()
	secret, err := NewRoomSecret()
	require.NoError(t, err)
	c, err := NewCipher(secret)
	require.NoError(t, err)
	return c, secret
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, _ := newTestCipher(t)

	shape := &geometry.Rectangle{
		ShapeID: "s1",
		Box:     geometry.Box{StartX: 0, StartY: 0, EndX: 10, EndY: 10},
		Edge:    geometry.EdgeRound,
		Options: geometry.Options{Stroke: "#1e1e1e", StrokeWidth: 3},
	}

	encoded, err := c.Encrypt(shape)
	require.NoError(t, err)

	plaintext, err := c.Decrypt(encoded)
	require.NoError(t, err)

	got, err := geometry.UnmarshalShape(plaintext)
	require.NoError(t, err)
	assert.Equal(t, shape, got)
}

func TestEncryptProducesURLSafeEncoding(t *testing.T) {
	c, _ := newTestCipher(t)

	encoded, err := c.Encrypt(map[string]string{"payload": strings.Repeat("x", 512)})
	require.NoError(t, err)

	assert.NotContains(t, encoded, "+")
	assert.NotContains(t, encoded, "/")
	assert.NotContains(t, encoded, "=")
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	c, _ := newTestCipher(t)

	a, err := c.Encrypt("same payload")
	require.NoError(t, err)
	b, err := c.Encrypt("same payload")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDecryptWithDifferentKeyFails(t *testing.T) {
	alice, _ := newTestCipher(t)
	mallory, _ := newTestCipher(t)

	encoded, err := alice.Encrypt("room state")
	require.NoError(t, err)

	_, err = mallory.Decrypt(encoded)
	require.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptGarbageFails(t *testing.T) {
	c, _ := newTestCipher(t)

	for _, in := range []string{"", "abc", "not+base64url!", strings.Repeat("A", 11)} {
		_, err := c.Decrypt(in)
		assert.ErrorIs(t, err, ErrDecrypt, "input %q", in)
	}
}

func TestSameSecretSameKey(t *testing.T) {
	secret, err := NewRoomSecret()
	require.NoError(t, err)

	a, err := NewCipher(secret)
	require.NoError(t, err)
	b, err := NewCipher(secret)
	require.NoError(t, err)

	encoded, err := a.Encrypt("hello")
	require.NoError(t, err)

	var out string
	require.NoError(t, b.DecryptJSON(encoded, &out))
	assert.Equal(t, "hello", out)
}

func TestNewCipherRejectsBadSecret(t *testing.T) {
	_, err := NewCipher("not~base64url")
	require.Error(t, err)
}
