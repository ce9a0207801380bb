package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func Test_RegisterUser_Normalizes_Email(t *testing.T) {
	// Arrange
	hasher := NewBcryptPasswordHasher(bcrypt.MinCost)

	// Act
	user, err := RegisterUser(" alice ", "Alice@Example.com", "correct horse", hasher)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotEqual(t, "correct horse", user.PasswordHash)
}

func Test_RegisterUser_Rejects_Invalid_Email(t *testing.T) {
	// Arrange
	hasher := NewBcryptPasswordHasher(bcrypt.MinCost)

	// Act
	_, err := RegisterUser("alice", "not-an-email", "correct horse", hasher)

	// Assert
	require.Error(t, err)
}

func Test_Authenticate_Locks_After_Max_Attempts(t *testing.T) {
	// Arrange
	hasher := NewBcryptPasswordHasher(bcrypt.MinCost)
	user, err := RegisterUser("alice", "alice@example.com", "correct horse", hasher)
	require.NoError(t, err)

	// Act
	for i := 0; i < MaxLoginAttempts; i++ {
		require.Error(t, user.Authenticate("wrong password", hasher))
	}

	// Assert
	require.True(t, user.Locked)
	require.Error(t, user.Authenticate("correct horse", hasher))
}

func Test_Authenticate_Resets_Attempts_On_Success(t *testing.T) {
	// Arrange
	hasher := NewBcryptPasswordHasher(bcrypt.MinCost)
	user, err := RegisterUser("alice", "alice@example.com", "correct horse", hasher)
	require.NoError(t, err)
	require.Error(t, user.Authenticate("wrong password", hasher))

	// Act
	err = user.Authenticate("correct horse", hasher)

	// Assert
	require.NoError(t, err)
	require.Zero(t, user.UnsuccessfulLoginAttempts)
}

func Test_LoginSession_Expires(t *testing.T) {
	// Arrange
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	session := NewLoginSession(7, time.Hour, now)

	// Act
	before := session.Validate(now.Add(59 * time.Minute))
	after := session.Validate(now.Add(time.Hour))

	// Assert
	require.NoError(t, before)
	require.Error(t, after)
	require.True(t, ValidToken(session.Token))
	require.False(t, ValidToken("nope"))
}
