package common

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandURLSafeString generates size random bytes and returns them as
// unpadded base64url text, suitable for tokens placed in URLs and emails.
func MakeRandURLSafeString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
