package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"regexp"
	"strings"
)

const verificationCharset = "0123456789"

// VerificationCodeLength is fixed by the email template and the entry field.
const VerificationCodeLength = 6

var verificationCodePattern = regexp.MustCompile(`^\d{6}$`)

// GenerateVerificationCode returns a uniformly random 6-digit code, leading
// zeros included. Uses crypto/rand + math/big to avoid modulo bias.
func GenerateVerificationCode() (string, error) {
	var sb strings.Builder
	charsetLen := big.NewInt(int64(len(verificationCharset)))
	for i := 0; i < VerificationCodeLength; i++ {
		num, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(verificationCharset[num.Int64()])
	}
	code := sb.String()
	if !verificationCodePattern.MatchString(code) {
		return "", errors.New("generated code has invalid format")
	}
	return code, nil
}

// IsValidVerificationCodeFormat reports whether code is exactly six ASCII
// digits.
func IsValidVerificationCodeFormat(code string) bool {
	return verificationCodePattern.MatchString(code)
}

// EnvOrDefault returns the env value or fallback default.
func EnvOrDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
