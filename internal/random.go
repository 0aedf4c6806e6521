package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// NewOTP returns digits decimal characters, each drawn independently from
// crypto/rand. Repeated digits are allowed.
func NewOTP(digits int) (string, error) {
	if digits < 6 || digits > 10 {
		return "", errors.New("invalid otp digits")
	}

	var b strings.Builder
	b.Grow(digits)

	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}
