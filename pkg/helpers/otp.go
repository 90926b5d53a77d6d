package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
)

// GenOTPCode returns a zero-padded numeric code of the given length drawn
// from crypto/rand. Lengths outside 4..10 fall back to 6.
func GenOTPCode(length int) (string, error) {
	if length < 4 || length > 10 {
		length = 6
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	s := n.String()
	if len(s) < length {
		s = strings.Repeat("0", length-len(s)) + s
	}
	return s, nil
}

// GenToken returns a random hex token of n bytes.
func GenToken(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("token size must be positive")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
