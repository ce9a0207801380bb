package commands

import (
	"testing"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/scoring/domain"

	"github.com/stretchr/testify/require"
)

func Test_AddRoundCommand_Validate_Rejects_Empty_Round(t *testing.T) {
	// Arrange
	command := AddRoundCommand{Scores: map[int64]domain.RawScore{
		1: domain.Score(0),
		2: domain.BlankScore(),
	}}

	// Act
	err := command.Validate()

	// Assert
	require.ErrorIs(t, err, ErrEmptyRound)
}

func Test_AddRoundCommand_Validate_Rejects_Out_Of_Range_Score(t *testing.T) {
	// Arrange
	command := AddRoundCommand{Scores: map[int64]domain.RawScore{
		1: domain.Score(1_000_000_000),
	}}

	// Act
	err := command.Validate()

	// Assert
	require.Error(t, err)
}

func Test_AddRoundCommand_Validate_Accepts_Partial_Round(t *testing.T) {
	// Arrange
	command := AddRoundCommand{Scores: map[int64]domain.RawScore{
		1: domain.Score(-4),
		2: domain.BlankScore(),
	}}

	// Act
	err := command.Validate()

	// Assert
	require.NoError(t, err)
}

func Test_AddTeamRoundCommand_Validate_Collects_Every_Problem(t *testing.T) {
	// Arrange
	taker := 5
	command := AddTeamRoundCommand{
		RoundNumber: 0,
		TeamScores:  map[int]domain.RawScore{0: domain.Score(80)},
		Details:     &domain.BeloteDetails{TakerTeam: &taker},
	}

	// Act
	err := command.Validate()

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "RoundNumber")
	require.Contains(t, err.Error(), "taker_team")
}

func Test_AddTeamRoundCommand_Validate_Accepts_Full_Round(t *testing.T) {
	// Arrange
	made := true
	command := AddTeamRoundCommand{
		RoundNumber: 3,
		TeamScores:  map[int]domain.RawScore{0: domain.Score(160), 1: domain.Score(2)},
		Details:     &domain.BeloteDetails{Trump: domain.TrumpSpades, ContractMade: &made},
	}

	// Act
	err := command.Validate()

	// Assert
	require.NoError(t, err)
}

func Test_SetCategoryScoreCommand_Validate_Unknown_Category(t *testing.T) {
	// Arrange
	command := SetCategoryScoreCommand{Category: "sevens", Value: 7}

	// Act
	err := command.Validate()

	// Assert
	require.Error(t, err)
}

func Test_SetCategoryScoreCommand_Validate_Zero_Scratches_Category(t *testing.T) {
	// Arrange
	command := SetCategoryScoreCommand{Category: domain.Yams, Value: 0}

	// Act
	err := command.Validate()

	// Assert
	require.NoError(t, err)
}

func Test_SetRoundScoreCommand_Validate_Requires_Round(t *testing.T) {
	// Arrange
	command := SetRoundScoreCommand{RoundNumber: 0, Score: domain.Score(3)}

	// Act
	err := command.Validate()

	// Assert
	require.Error(t, err)
}
