package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a login password at the default bcrypt cost. The
// result is what gets stored on the user record.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// ComparePassword checks a login attempt against the stored hash. Returns
// bcrypt.ErrMismatchedHashAndPassword when the password is wrong.
func ComparePassword(stored string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain))
}
