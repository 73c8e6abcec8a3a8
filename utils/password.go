package utils

import (
	"github.com/matthewhartstonge/argon2"
)

var argonConfig = argon2.DefaultConfig()

// HashPassword returns an argon2id encoded hash suitable for storage.
func HashPassword(password string) (string, error) {
	encoded, err := argonConfig.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// VerifyPassword checks a plaintext password against a stored encoded
// hash. A malformed hash is reported as an error, not a mismatch.
func VerifyPassword(encodedHash, password string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
