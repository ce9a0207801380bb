package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const SessionCookieName = "scoresheets-session"

// LoginSession is an opaque token handed to the browser after login.
type LoginSession struct {
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
}

func NewLoginSession(userID int64, ttl time.Duration, now time.Time) LoginSession {
	return LoginSession{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.UTC().Add(ttl),
	}
}

func (s LoginSession) Validate(now time.Time) error {
	if s.UserID <= 0 {
		return fmt.Errorf("session has no user")
	}

	if !now.Before(s.ExpiresAt) {
		return fmt.Errorf("session expired at %s", s.ExpiresAt.Format(time.RFC3339))
	}

	return nil
}

// ValidToken reports whether token looks like one NewLoginSession produced.
func ValidToken(token string) bool {
	_, err := uuid.Parse(token)
	return err == nil
}
