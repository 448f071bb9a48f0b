// Package secrets provides reversible protection for sensitive strings
// (provider credentials, sensitive settings) plus one-way hashing for
// comparison use. Tokens embed the IV so decryption is self-contained:
// hex(iv) + ":" + hex(aes-256-cbc ciphertext).
package secrets

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeySize is the operating key length in bytes (AES-256).
const KeySize = 32

// keyPadByte fills undersized keys during normalization.
const keyPadByte = '0'

// Cipher encrypts and decrypts strings with a process-wide symmetric key.
// It is safe for concurrent use; the normalized key is immutable.
type Cipher struct {
	key []byte
}

// New creates a Cipher from key material of any length. The key is
// normalized to exactly KeySize bytes: truncated if too long, padded with
// '0' if too short. This never rejects a key, which weakens key-strength
// enforcement in exchange for never failing to boot; use NewStrict where
// that tradeoff is unacceptable.
func New(key string) *Cipher {
	return &Cipher{key: NormalizeKey(key)}
}

// NewStrict creates a Cipher that refuses key material shorter than
// KeySize bytes instead of padding it.
func NewStrict(key string) (*Cipher, error) {
	if len(key) < KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrKeyTooShort, len(key), KeySize)
	}
	return New(key), nil
}

// NormalizeKey deterministically maps key material of any length to
// exactly KeySize bytes.
func NormalizeKey(key string) []byte {
	b := []byte(key)
	if len(b) >= KeySize {
		return b[:KeySize]
	}
	padded := make([]byte, KeySize)
	copy(padded, b)
	for i := len(b); i < KeySize; i++ {
		padded[i] = keyPadByte
	}
	return padded
}

// Encrypt protects plaintext with a fresh random IV per call. Empty input
// returns an empty token and no error: "no secret" is a legitimate state
// distinct from "corrupt secret".
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pad([]byte(plaintext))
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt reverses Encrypt. Empty tokens return empty plaintext and no
// error. Malformed tokens (wrong part count, bad hex, bad IV length,
// tampered or truncated ciphertext) return ErrDecrypt.
func (c *Cipher) Decrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: invalid token format", ErrDecrypt)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: invalid iv", ErrDecrypt)
	}

	ct, err := hex.DecodeString(parts[1])
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: invalid ciphertext", ErrDecrypt)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)

	unpadded, err := unpad(pt)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// Hash returns the lowercase hex SHA-256 digest of data. One-way, for
// non-reversible comparison only.
func Hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// GenerateKey returns n random bytes as a hex string, suitable as fresh
// key material.
func GenerateKey(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// pad applies PKCS#7 padding to a full block multiple.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

// unpad validates and strips PKCS#7 padding.
func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", ErrDecrypt)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("%w: invalid padding", ErrDecrypt)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrDecrypt)
		}
	}
	return b[:len(b)-n], nil
}
