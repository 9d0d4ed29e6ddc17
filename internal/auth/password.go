package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// AdminAccount is the single back-office login, configured from the
// environment.
type AdminAccount struct {
	Email        string
	PasswordHash string
}

// NewAdminAccount prefers a precomputed bcrypt hash; a plain password is
// hashed once at start-up. Returns nil when neither is set, which disables
// admin login.
func NewAdminAccount(email, hash, plain string) (*AdminAccount, error) {
	if hash == "" && plain == "" {
		return nil, nil
	}
	if hash == "" {
		h, err := HashPassword(plain)
		if err != nil {
			return nil, err
		}
		hash = h
	}
	return &AdminAccount{Email: strings.ToLower(strings.TrimSpace(email)), PasswordHash: hash}, nil
}

func (a *AdminAccount) Check(email, password string) bool {
	if a == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), a.Email) && CheckPassword(a.PasswordHash, password)
}
