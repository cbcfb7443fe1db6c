package wompi

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Signature computes the provider's integrity signature: sha256 over the
// concatenation of reference, amount in cents, currency and the merchant's
// integrity secret, hex encoded. The preimage contains the secret and must
// never be logged.
func Signature(reference string, amountInCents int64, currency, secret string) string {
	sum := sha256.Sum256([]byte(reference + strconv.FormatInt(amountInCents, 10) + currency + secret))
	return hex.EncodeToString(sum[:])
}
