package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrDecrypt is returned for any secret that cannot be decrypted: bad format,
// bad hex, or an authentication failure from a wrong or rotated key.
var ErrDecrypt = errors.New("secret decryption failed")

// ivSize is the nonce length used when sealing new secrets. Open accepts any
// nonce length found in stored data, since secrets written by the surrounding
// product may use 12 or 16 byte IVs.
const ivSize = 12

// Cipher encrypts and decrypts credential secrets with AES-256-GCM.
// The key is passed in at construction; nothing here reads ambient state.
type Cipher struct {
	key []byte
}

// NewCipher builds a Cipher from a hex-encoded 256-bit key.
func NewCipher(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return &Cipher{key: key}, nil
}

// Open decrypts a secret stored as iv:authTag:ciphertext in hexadecimal.
func (c *Cipher) Open(encoded string) (string, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected iv:authTag:ciphertext", ErrDecrypt)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: bad iv hex: %v", ErrDecrypt, err)
	}
	authTag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: bad auth tag hex: %v", ErrDecrypt, err)
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext hex: %v", ErrDecrypt, err)
	}

	gcm, err := c.gcm(len(iv))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	// Go's GCM expects the tag appended to the ciphertext.
	plaintext, err := gcm.Open(nil, iv, append(ciphertext, authTag...), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plaintext), nil
}

// Seal encrypts a secret into the iv:authTag:ciphertext hex format.
func (c *Cipher) Seal(plaintext string) (string, error) {
	gcm, err := c.gcm(ivSize)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	tagStart := len(sealed) - gcm.Overhead()
	ciphertext, authTag := sealed[:tagStart], sealed[tagStart:]

	return fmt.Sprintf("%s:%s:%s",
		hex.EncodeToString(iv),
		hex.EncodeToString(authTag),
		hex.EncodeToString(ciphertext),
	), nil
}

func (c *Cipher) gcm(nonceSize int) (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, nonceSize)
}
