package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// ==================== RANDOM CODES ====================

// GenerateNumericCode returns length random decimal digits.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate numeric code: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}

	return sb.String(), nil
}

// GenerateHexToken returns n random bytes encoded as lowercase hex (2n chars).
func GenerateHexToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate hex token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ==================== ORDER NUMBER ====================

func GenerateOrderNumber(now time.Time) (string, error) {
	suffix, err := GenerateHexToken(3)
	if err != nil {
		return "", err
	}

	// Format: ARC-YYYYMMDD-HHMMSS-RANDOM
	return fmt.Sprintf("ARC-%s-%s-%s",
		now.Format("20060102"),
		now.Format("150405"),
		strings.ToUpper(suffix),
	), nil
}
