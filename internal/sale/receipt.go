package sale

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	receiptAlphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	receiptLength      = 8
	receiptMaxAttempts = 10
)

// ErrReceiptExhausted is returned when no unique receipt code could be found
// within the attempt ceiling.
var ErrReceiptExhausted = errors.New("could not generate a unique receipt code")

// NewReceiptCode samples an 8-character code from digits and uppercase
// letters.
func NewReceiptCode() (string, error) {
	buf := make([]byte, receiptLength)
	max := big.NewInt(int64(len(receiptAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = receiptAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// GenerateReceiptCode produces a code that exists() does not know, retrying
// generation up to 10 times before giving up.
func GenerateReceiptCode(exists func(code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < receiptMaxAttempts; attempt++ {
		code, err := NewReceiptCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrReceiptExhausted
}
