package service

import (
	"crypto/subtle"
	"fmt"
	"strconv"
	"unicode/utf16"

	"golang.org/x/crypto/bcrypt"
)

// CredentialService handles password hashing and verification
type CredentialService struct {
	cost int
}

// NewCredentialService creates a CredentialService with the default bcrypt cost
func NewCredentialService() *CredentialService {
	return &CredentialService{cost: bcrypt.DefaultCost}
}

// NewCredentialServiceWithCost creates a CredentialService with an explicit
// bcrypt cost. Tests use bcrypt.MinCost to keep hashing fast.
func NewCredentialServiceWithCost(cost int) *CredentialService {
	return &CredentialService{cost: cost}
}

// Hash produces a salted bcrypt hash of the password
func (s *CredentialService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the password matches the stored hash.
// legacy is true when the stored hash uses the old rolling-checksum
// format and should be re-hashed with bcrypt after a successful check.
func (s *CredentialService) Verify(storedHash, password string) (ok, legacy bool) {
	if isLegacyHash(storedHash) {
		expected := LegacyChecksum(password)
		return subtle.ConstantTimeCompare([]byte(expected), []byte(storedHash)) == 1, true
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil, false
}

// isLegacyHash detects the old stored-hash format: up to eight
// lowercase hex digits. bcrypt hashes always start with "$".
func isLegacyHash(hash string) bool {
	if len(hash) == 0 || len(hash) > 8 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// LegacyChecksum computes the historical 32-bit rolling checksum over the
// password's UTF-16 code units, printed as unpadded lowercase hex. Kept
// only to verify hashes stored before the switch to bcrypt.
func LegacyChecksum(password string) string {
	var hash int32
	for _, unit := range utf16.Encode([]rune(password)) {
		hash = hash<<5 - hash + int32(unit)
	}
	return strconv.FormatUint(uint64(uint32(hash)), 16)
}
