package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives a salted bcrypt hash. The salt and cost are encoded in
// the hash itself, so nothing else needs storing. Passwords longer than 72
// bytes are rejected with common.ErrorValidation.
func HashPassword(password string, cost int) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: empty password", common.ErrorValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		return nil, err
	}
	return hash, nil
}

// maxPasswordLen is the longest input bcrypt reads; anything past it would be
// silently ignored.
const maxPasswordLen = 72

// VerifyPassword reports whether password matches hash. The comparison is
// constant time; a malformed hash is simply a mismatch. Passwords longer than
// bcrypt's input limit never match, since no stored hash was made from one.
func VerifyPassword(hash []byte, password string) bool {
	if len(password) > maxPasswordLen {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
