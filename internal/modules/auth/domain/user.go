package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// MaxLoginAttempts is how many wrong passwords in a row lock an account.
const MaxLoginAttempts = 5

type User struct {
	ID                        int64     `db:"id"`
	Username                  string    `db:"username"`
	Email                     string    `db:"email"`
	PasswordHash              string    `db:"password_hash"`
	Locked                    bool      `db:"locked"`
	UnsuccessfulLoginAttempts int       `db:"unsuccessful_login_attempts"`
	CreatedAt                 time.Time `db:"created_at"`
}

func RegisterUser(
	username string,
	email string,
	password string,
	passwordHasher *PasswordHasher,
) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 64 {
		return User{}, fmt.Errorf("invalid Username: '%s'", username)
	}

	address, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return User{}, fmt.Errorf("invalid Email: '%s'", email)
	}

	passwordHash, err := passwordHasher.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	return User{
		Username:     username,
		Email:        strings.ToLower(address.Address),
		PasswordHash: passwordHash,
	}, nil
}

// Authenticate checks password and keeps count of failed attempts. The
// caller persists the user whatever the outcome.
func (u *User) Authenticate(password string, passwordHasher *PasswordHasher) error {
	if u.Locked {
		return fmt.Errorf("authentication failed: account locked")
	}

	err := passwordHasher.Verify(u.PasswordHash, password)
	if err == nil {
		u.UnsuccessfulLoginAttempts = 0
		return nil
	}

	reason := err.Error()

	u.UnsuccessfulLoginAttempts++

	if u.UnsuccessfulLoginAttempts >= MaxLoginAttempts {
		u.Locked = true
		reason = "account locked"
	}

	return fmt.Errorf("authentication failed: %s", reason)
}
