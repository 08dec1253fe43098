package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 200; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("SHELTER_TEST_KEY", "from-env")
	assert.Equal(t, "from-env", EnvOrDefault("SHELTER_TEST_KEY", "fallback"))

	t.Setenv("SHELTER_TEST_KEY", "   ")
	assert.Equal(t, "fallback", EnvOrDefault("SHELTER_TEST_KEY", "fallback"))

	assert.Equal(t, "fallback", EnvOrDefault("SHELTER_TEST_UNSET", "fallback"))
}

func TestIsValidVerificationCodeFormat(t *testing.T) {
	assert.True(t, IsValidVerificationCodeFormat("000000"))
	assert.True(t, IsValidVerificationCodeFormat("123456"))
	assert.False(t, IsValidVerificationCodeFormat("12345"))
	assert.False(t, IsValidVerificationCodeFormat("1234567"))
	assert.False(t, IsValidVerificationCodeFormat("12345a"))
	assert.False(t, IsValidVerificationCodeFormat(" 123456"))
	assert.False(t, IsValidVerificationCodeFormat(""))
}
