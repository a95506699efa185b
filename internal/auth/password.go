package auth

import "golang.org/x/crypto/bcrypt"

// CredentialVerifier abstracts password hashing and comparison so the
// scheme can be swapped without touching callers.
type CredentialVerifier interface {
	Hash(plain string) (string, error)
	Verify(stored, supplied string) bool
}

// BcryptVerifier implements CredentialVerifier with bcrypt.
type BcryptVerifier struct{}

// Hash returns the bcrypt hash of plain at the default cost.
func (BcryptVerifier) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether supplied matches the stored hash.
func (BcryptVerifier) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}
