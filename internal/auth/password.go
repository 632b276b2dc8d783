package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is enforced before hashing.
	MinPasswordLength = 8

	// bcryptCost is the cost factor for bcrypt password hashing.
	bcryptCost = 12
)

var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// dummyHash is compared against when a login names an unknown user, so
// the work factor does not reveal whether the account exists.
var dummyHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("openmeet-dummy-password"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return hash
}()

func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPasswordCheck performs a bcrypt comparison against a throwaway hash.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
