package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// dummyHash is compared against when no user matches, so a login for an
// unknown username costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("imagehost-no-such-user"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return hash
})

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashed), err
}

func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// RejectPassword burns one bcrypt comparison and always reports false.
func RejectPassword(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
	return false
}
