package secrets_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/xenai/xenai-server/pkg/secrets"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := secrets.New("unit-test-key")

	tests := []struct {
		name      string
		plaintext string
	}{
		{"short", "sk-abc"},
		{"block aligned", strings.Repeat("a", 16)},
		{"multi block", strings.Repeat("secret", 20)},
		{"unicode", "пароль-鍵-🔑"},
		{"whitespace", "  spaced out  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := c.Encrypt(tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}

			got, err := c.Decrypt(token)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if got != tt.plaintext {
				t.Errorf("Decrypt(Encrypt(%q)) = %q", tt.plaintext, got)
			}
		})
	}
}

func TestEncrypt_EmptyInput(t *testing.T) {
	c := secrets.New("unit-test-key")

	token, err := c.Encrypt("")
	if err != nil {
		t.Fatalf("Encrypt(\"\") error = %v", err)
	}
	if token != "" {
		t.Errorf("Encrypt(\"\") = %q, want empty token", token)
	}

	pt, err := c.Decrypt("")
	if err != nil {
		t.Fatalf("Decrypt(\"\") error = %v", err)
	}
	if pt != "" {
		t.Errorf("Decrypt(\"\") = %q, want empty plaintext", pt)
	}
}

func TestEncrypt_TokenFormat(t *testing.T) {
	c := secrets.New("unit-test-key")

	token, err := c.Encrypt("sk-abc")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		t.Fatalf("token has %d parts, want 2", len(parts))
	}
	if len(parts[0]) != 32 {
		t.Errorf("iv segment length = %d hex chars, want 32", len(parts[0]))
	}
	if len(parts[1])%32 != 0 || len(parts[1]) == 0 {
		t.Errorf("ciphertext segment length = %d, want non-zero multiple of 32", len(parts[1]))
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	c := secrets.New("unit-test-key")

	first, err := c.Encrypt("sk-abc")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	second, err := c.Encrypt("sk-abc")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if first == second {
		t.Error("two encryptions of the same plaintext produced identical tokens")
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	c := secrets.New("unit-test-key")

	valid, err := c.Encrypt("sk-abc")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	parts := strings.Split(valid, ":")

	tests := []struct {
		name  string
		token string
	}{
		{"no separator", parts[0] + parts[1]},
		{"too many parts", valid + ":extra"},
		{"non-hex ciphertext", parts[0] + ":" + "zz" + parts[1][2:]},
		{"truncated ciphertext", parts[0] + ":" + parts[1][:len(parts[1])-2]},
		{"short iv", parts[0][:30] + ":" + parts[1]},
		{"empty ciphertext", parts[0] + ":"},
		{"garbage", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Decrypt(tt.token); !errors.Is(err, secrets.ErrDecrypt) {
				t.Errorf("Decrypt(%q) error = %v, want ErrDecrypt", tt.token, err)
			}
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	token, err := secrets.New("first-key").Encrypt("sk-abc")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	got, err := secrets.New("second-key").Decrypt(token)
	if err == nil && got == "sk-abc" {
		t.Error("Decrypt() with wrong key recovered original plaintext")
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{
			"exact length",
			strings.Repeat("k", 32),
			strings.Repeat("k", 32),
		},
		{
			"truncated",
			strings.Repeat("k", 40),
			strings.Repeat("k", 32),
		},
		{
			"padded",
			"short",
			"short" + strings.Repeat("0", 27),
		},
		{
			"empty",
			"",
			strings.Repeat("0", 32),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(secrets.NormalizeKey(tt.key))
			if got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestNormalizedKeys_Interoperate(t *testing.T) {
	// Padding is deterministic, so a short key and its padded form must
	// decrypt each other's tokens.
	short := secrets.New("short")
	padded := secrets.New("short" + strings.Repeat("0", 27))

	token, err := short.Encrypt("sk-abc")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	got, err := padded.Decrypt(token)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != "sk-abc" {
		t.Errorf("Decrypt() = %q, want %q", got, "sk-abc")
	}
}

func TestNewStrict(t *testing.T) {
	if _, err := secrets.NewStrict("too-short"); !errors.Is(err, secrets.ErrKeyTooShort) {
		t.Errorf("NewStrict(short) error = %v, want ErrKeyTooShort", err)
	}

	if _, err := secrets.NewStrict(strings.Repeat("k", 32)); err != nil {
		t.Errorf("NewStrict(32 bytes) error = %v", err)
	}
}

func TestHash(t *testing.T) {
	first := secrets.Hash("data")
	second := secrets.Hash("data")

	if first != second {
		t.Error("Hash() is not deterministic")
	}
	if len(first) != 64 {
		t.Errorf("Hash() length = %d, want 64 hex chars", len(first))
	}
	if first == secrets.Hash("other") {
		t.Error("Hash() collides on distinct inputs")
	}
}

func TestGenerateKey(t *testing.T) {
	key, err := secrets.GenerateKey(32)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if len(key) != 64 {
		t.Errorf("GenerateKey(32) length = %d, want 64 hex chars", len(key))
	}

	other, err := secrets.GenerateKey(32)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if key == other {
		t.Error("GenerateKey() returned identical keys")
	}
}
