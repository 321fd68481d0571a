package utils

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var dummyHash = sync.OnceValue(func() string {
	secret, err := GenerateHexToken(16)
	if err != nil {
		secret = "arc-web-dummy-password"
	}
	hash, _ := HashPassword(secret)
	return hash
})

// DummyPasswordHash is a hash no password matches, at the same cost as real ones.
// Comparing against it keeps unknown-account logins as slow as known ones.
func DummyPasswordHash() string {
	return dummyHash()
}
