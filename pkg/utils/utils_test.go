package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateNumericCode(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]{6}$`)

	for i := 0; i < 50; i++ {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		assert.Regexp(t, digits, code)
	}

	t.Run("defaults to six digits", func(t *testing.T) {
		code, err := GenerateNumericCode(0)
		require.NoError(t, err)
		assert.Len(t, code, 6)
	})
}

func TestGenerateHexToken(t *testing.T) {
	token, err := GenerateHexToken(32)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{64}$`, token)

	other, err := GenerateHexToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	number, err := GenerateOrderNumber(now)
	require.NoError(t, err)
	assert.Regexp(t, `^ARC-20260314-150926-[0-9A-F]{6}$`, number)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("Passw0rd1")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("Passw0rd1", hash))
	assert.False(t, CheckPasswordHash("Passw0rd2", hash))
}

func TestDummyPasswordHash(t *testing.T) {
	hash := DummyPasswordHash()
	assert.Equal(t, hash, DummyPasswordHash(), "computed once")
	assert.False(t, CheckPasswordHash("", hash))
	assert.False(t, CheckPasswordHash("Passw0rd1", hash))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestValidateStruct(t *testing.T) {
	type signup struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8,password"`
	}

	t.Run("valid", func(t *testing.T) {
		assert.Empty(t, ValidateStruct(signup{Email: "a@x.com", Password: "Passw0rd1"}))
	})

	t.Run("password without digit", func(t *testing.T) {
		errs := ValidateStruct(signup{Email: "a@x.com", Password: "Password"})
		assert.Equal(t, "Must contain at least one letter and one digit", errs["Password"])
	})

	t.Run("missing fields", func(t *testing.T) {
		errs := ValidateStruct(signup{})
		assert.Equal(t, "This field is required", errs["Email"])
		assert.Equal(t, "This field is required", errs["Password"])
		assert.Equal(t, "Email: This field is required; Password: This field is required", FormatValidationErrors(errs))
	})

	t.Run("uses json names when tagged", func(t *testing.T) {
		type purchase struct {
			OrderID string `json:"orderId" validate:"required"`
		}
		errs := ValidateStruct(purchase{})
		assert.Equal(t, map[string]string{"orderId": "This field is required"}, errs)
	})
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 3, ParseInt("3", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 10, ParseInt("abc", 10))
	assert.Equal(t, 10, ParseInt("-2", 10))
}

func TestInitLogger(t *testing.T) {
	dir := t.TempDir()

	logger, err := InitLogger(AppConfig{Name: "arc-web", LogPath: dir})
	require.NoError(t, err)

	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "arc-web.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"app":"arc-web"`)
}
