package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Alphabet is the 36-symbol space a one-time code is drawn from. The code is
// the sole authentication factor during the provisioning window, so draws
// must come from crypto/rand, never a seeded PRNG.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength is the provisioning-grant length. Eight symbols because the
// code stands in for a password until the child sets one.
const DefaultLength = 8

// New draws a uniform random code of the given length from Alphabet.
func New(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("code length must be positive, got %d", length)
	}
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(Alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("draw code symbol: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}
