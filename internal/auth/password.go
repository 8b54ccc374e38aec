package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Memory is kept modest so the app runs comfortably
// on small VMs.
const (
	argonTime    = 2
	argonMemory  = 19 * 1024 // KiB
	argonThreads = 1
	argonKeyLen  = 32
	argonSaltLen = 16
)

// ErrInvalidHash is returned when a stored hash cannot be parsed.
var ErrInvalidHash = errors.New("invalid password hash format")

// HashPassword derives an argon2id hash from the password with a fresh
// random salt. The result is self-describing:
// $argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
	return encoded, nil
}

// VerifyPassword checks a candidate password against a stored hash using a
// constant-time comparison. The parameters embedded in the hash are used for
// the derivation, so older hashes keep verifying after a parameter change.
func VerifyPassword(password, encodedHash string) (bool, error) {
	salt, expected, timeCost, memory, threads, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

func decodeHash(encodedHash string) (salt, key []byte, timeCost, memory uint32, threads uint8, err error) {
	var version int
	var rawSalt, rawKey string
	n, err := fmt.Sscanf(encodedHash, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		&version, &memory, &timeCost, &threads, &rawSalt)
	if err != nil || n != 5 {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}

	// Sscanf's %s is greedy; the salt and key are still joined by '$'.
	for i := 0; i < len(rawSalt); i++ {
		if rawSalt[i] == '$' {
			rawSalt, rawKey = rawSalt[:i], rawSalt[i+1:]
			break
		}
	}
	if rawKey == "" {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}

	salt, err = base64.RawStdEncoding.DecodeString(rawSalt)
	if err != nil {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}
	key, err = base64.RawStdEncoding.DecodeString(rawKey)
	if err != nil {
		return nil, nil, 0, 0, 0, ErrInvalidHash
	}
	return salt, key, timeCost, memory, threads, nil
}
