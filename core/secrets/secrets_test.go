package secrets

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

func TestNewCipher(t *testing.T) {
	_, err := NewCipher(testKey)
	assert.NoError(t, err)

	_, err = NewCipher("not hex")
	assert.Error(t, err)

	_, err = NewCipher("0011223344") // too short
	assert.Error(t, err)
}

func TestSealOpenRoundtrip(t *testing.T) {
	cipher, err := NewCipher(testKey)
	require.NoError(t, err)

	sealed, err := cipher.Seal("cloudflare-api-key-value")
	require.NoError(t, err)

	parts := strings.Split(sealed, ":")
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], ivSize*2)  // hex doubles the length
	assert.Len(t, parts[1], 16*2)      // GCM tag

	plaintext, err := cipher.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "cloudflare-api-key-value", plaintext)
}

func TestOpenSixteenByteIV(t *testing.T) {
	// Secrets written by the surrounding product may carry 16 byte IVs.
	cipher, err := NewCipher(testKey)
	require.NoError(t, err)

	gcm, err := cipher.gcm(16)
	require.NoError(t, err)

	iv := make([]byte, 16)
	sealed := gcm.Seal(nil, iv, []byte("legacy secret"), nil)
	tagStart := len(sealed) - gcm.Overhead()

	encoded := hexJoin(iv, sealed[tagStart:], sealed[:tagStart])
	plaintext, err := cipher.Open(encoded)
	require.NoError(t, err)
	assert.Equal(t, "legacy secret", plaintext)
}

func TestOpenWrongKey(t *testing.T) {
	cipher1, err := NewCipher(testKey)
	require.NoError(t, err)
	cipher2, err := NewCipher(strings.Repeat("ff", 32))
	require.NoError(t, err)

	sealed, err := cipher1.Seal("secret")
	require.NoError(t, err)

	_, err = cipher2.Open(sealed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestOpenMalformed(t *testing.T) {
	cipher, err := NewCipher(testKey)
	require.NoError(t, err)

	for _, encoded := range []string{
		"",
		"onlyonepart",
		"two:parts",
		"zz:aabb:ccdd",   // bad iv hex
		"aabb:zz:ccdd",   // bad tag hex
		"aabb:ccdd:zz",   // bad ciphertext hex
		"a:b:c:d",        // too many parts
	} {
		_, err := cipher.Open(encoded)
		assert.ErrorIs(t, err, ErrDecrypt, "input %q", encoded)
	}
}

func TestOpenTamperedCiphertext(t *testing.T) {
	cipher, err := NewCipher(testKey)
	require.NoError(t, err)

	sealed, err := cipher.Seal("secret")
	require.NoError(t, err)

	parts := strings.Split(sealed, ":")
	flipped := flipLastHexChar(parts[2])
	tampered := parts[0] + ":" + parts[1] + ":" + flipped

	_, err = cipher.Open(tampered)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func hexJoin(iv, tag, ciphertext []byte) string {
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ciphertext)
}

func flipLastHexChar(s string) string {
	last := s[len(s)-1]
	replacement := byte('0')
	if last == '0' {
		replacement = '1'
	}
	return s[:len(s)-1] + string(replacement)
}
