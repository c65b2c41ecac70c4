package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength          = 16
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32

	defaultOpaqueTokenBytes = 32
)

// NewSalt returns a fresh per-credential salt encoded as lowercase hex.
func NewSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Digest computes the Argon2id digest of password under the provided salt,
// encoded as lowercase hex. Identical inputs always produce identical output.
func Digest(password, salt string) string {
	sum := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(sum)
}

// VerifyDigest recomputes the digest for the presented password and compares
// it against the stored value in constant time.
func VerifyDigest(password, salt, digest string) bool {
	if password == "" || salt == "" || digest == "" {
		return false
	}
	computed := Digest(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// NewVerificationCode returns a six-digit numeric code drawn uniformly from
// [100000, 999999]. The result is always six characters long.
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// NewOpaqueToken returns a random hex token using byteLength random bytes.
// A non-positive length falls back to the 32-byte default.
func NewOpaqueToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = defaultOpaqueTokenBytes
	}
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
