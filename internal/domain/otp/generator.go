package otp

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const secretSize = 20

// Generator produces a numeric code with the given number of digits.
type Generator func(digits int) (string, error)

// HOTPGenerator derives each code from a fresh random secret and counter.
func HOTPGenerator(digits int) (string, error) {
	raw := make([]byte, secretSize+8)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw[:secretSize])
	counter := binary.BigEndian.Uint64(raw[secretSize:])

	code, err := hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    otp.Digits(digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("derive code: %w", err)
	}
	return code, nil
}
