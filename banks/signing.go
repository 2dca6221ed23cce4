package banks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// signHMAC computes a base64-encoded HMAC-SHA-256 of data under secret.
// Each provider defines its own canonical string layout for request signing;
// webhook signatures are always computed over the raw payload bytes.
func signHMAC(secret string, data []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// verifyHMAC reports whether signature matches the HMAC-SHA-256 of payload
// under secret. The comparison is constant-time and any decode error simply
// yields false; callers never see an error from verification.
func verifyHMAC(secret string, payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	supplied, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), supplied)
}
