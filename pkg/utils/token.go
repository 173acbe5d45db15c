package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomString(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(tokenAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// GenerateShortToken generates a 5-character alphanumeric token, used for
// registration confirmation, account setup and OTP codes.
func GenerateShortToken() (string, error) {
	return randomString(5)
}

// GenerateLongToken generates an opaque credential of five dash-joined
// 4-character groups (XXXX-XXXX-XXXX-XXXX-XXXX), used for device keys,
// device passes and MQTT topic names.
func GenerateLongToken() (string, error) {
	groups := make([]string, 5)
	for i := range groups {
		g, err := randomString(4)
		if err != nil {
			return "", err
		}
		groups[i] = g
	}
	return strings.Join(groups, "-"), nil
}
