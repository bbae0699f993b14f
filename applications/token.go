package applications

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// tokenRandomLen gives 36^6 combinations, about 31 bits of randomness on
// top of the millisecond timestamp.
const tokenRandomLen = 6

// NewRegistrationToken generates a registration token of the form
// KALI-<unix milliseconds>-<6 uppercase alphanumerics>. The random suffix
// comes from crypto/rand.
func NewRegistrationToken(now time.Time) (string, error) {
	suffix := make([]byte, tokenRandomLen)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating token suffix: %w", err)
		}
		suffix[i] = tokenAlphabet[n.Int64()]
	}
	return fmt.Sprintf("KALI-%d-%s", now.UnixMilli(), suffix), nil
}
