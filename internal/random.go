package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// NewChallengeCode returns a uniformly random numeric code of the given
// length, suitable for out-of-band delivery to a subject.
func NewChallengeCode(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("invalid challenge code digits")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}
