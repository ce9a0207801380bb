package env

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_MustGetString_Panics_When_Missing(t *testing.T) {
	// Act & Assert
	require.PanicsWithError(t, errNotFound("SCORESHEETS_TEST_UNSET").Error(), func() {
		MustGetString("SCORESHEETS_TEST_UNSET")
	})
}

func Test_MustGetInt_Panics_With_Conversion_Error(t *testing.T) {
	// Arrange
	t.Setenv("SCORESHEETS_TEST_PORT", "eighty")

	// Act
	var recovered interface{}
	func() {
		defer func() { recovered = recover() }()
		MustGetInt("SCORESHEETS_TEST_PORT")
	}()

	// Assert
	err, ok := recovered.(error)
	require.True(t, ok)
	require.True(t, errors.Is(err, ErrConversionFailed))
}

func Test_OrDefault_Getters_Fall_Back_When_Unset_Or_Empty(t *testing.T) {
	// Arrange
	t.Setenv("SCORESHEETS_TEST_EMPTY", "")

	// Act & Assert
	require.Equal(t, "fallback", GetStringOrDefault("SCORESHEETS_TEST_EMPTY", "fallback"))
	require.Equal(t, 64, GetIntOrDefault("SCORESHEETS_TEST_EMPTY", 64))
	require.True(t, GetBoolOrDefault("SCORESHEETS_TEST_EMPTY", true))
	require.Equal(t, time.Minute, GetDurationOrDefault("SCORESHEETS_TEST_EMPTY", time.Minute))
}

func Test_GetDurationOrDefault_Parses_Set_Value(t *testing.T) {
	// Arrange
	t.Setenv("SCORESHEETS_TEST_TTL", "90s")

	// Act
	ttl := GetDurationOrDefault("SCORESHEETS_TEST_TTL", time.Minute)

	// Assert
	require.Equal(t, 90*time.Second, ttl)
}
