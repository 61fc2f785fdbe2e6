// Package paystack talks to the Paystack gateway: it authenticates inbound
// webhook signatures and performs the outbound verification round-trip that
// confirms a charge against the processor's own record.
package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// SignatureHeader is the HTTP header Paystack signs webhook deliveries with.
const SignatureHeader = "X-Paystack-Signature"

// ValidateSignature checks that presented is the hex HMAC-SHA512 of rawBody
// keyed by secret. The comparison is constant-time; an absent or malformed
// signature is simply a mismatch, never an error.
func ValidateSignature(rawBody []byte, presented string, secret string) bool {
	if presented == "" || secret == "" {
		return false
	}

	presentedMAC, err := hex.DecodeString(presented)
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	expectedMAC := mac.Sum(nil)

	return hmac.Equal(expectedMAC, presentedMAC)
}

// Sign computes the hex HMAC-SHA512 signature for a body. Used by tests and
// by tooling that replays archived notifications.
func Sign(rawBody []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}
