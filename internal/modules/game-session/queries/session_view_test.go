package queries

import (
	"testing"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"
	gamesdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"
	scoringdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/scoring/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func roundEntry(playerID int64, round int, value int64) scoringdomain.Entry {
	return scoringdomain.Entry{
		PlayerID:    playerID,
		RoundNumber: round,
		ScoreType:   scoringdomain.RoundScoreType,
		Value:       decimal.NewFromInt(value),
	}
}

func Test_BuildRoundsView_Lower_Is_Better_Ranks_Smallest_First(t *testing.T) {
	// Arrange
	players := []domain.Player{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bob", Position: 1}}
	rules := domain.GenericRules{Direction: gamesdomain.LowerIsBetter}
	entries := []scoringdomain.Entry{
		roundEntry(1, 1, 30),
		roundEntry(2, 1, 10),
		roundEntry(1, 2, 5),
	}

	// Act
	view, finished := buildRoundsView(rules, players, entries)

	// Assert
	require.False(t, finished)
	require.Len(t, view.Rounds, 2)
	require.Equal(t, map[int64]float64{1: 30, 2: 10}, view.Rounds[0].Scores)
	require.Equal(t, 3, view.NextRound)
	require.Equal(t, int64(2), view.Standings[0].PlayerID)
	require.Equal(t, float64(10), view.Standings[0].Total)
	require.Equal(t, 1, view.Standings[0].Rank)
	require.Nil(t, view.FinishedAtRound)
}

func Test_BuildRoundsView_Reports_Round_Target_Was_Reached(t *testing.T) {
	// Arrange
	players := []domain.Player{{ID: 1}, {ID: 2, Position: 1}}
	rules := domain.GenericRules{
		Direction: gamesdomain.HigherIsBetter,
		Target:    domain.Target{HasScoreTarget: true, ScoreTarget: 50},
	}
	entries := []scoringdomain.Entry{
		roundEntry(1, 1, 20),
		roundEntry(2, 1, 20),
		roundEntry(1, 2, 40),
	}

	// Act
	view, finished := buildRoundsView(rules, players, entries)

	// Assert
	require.True(t, finished)
	require.NotNil(t, view.FinishedAtRound)
	require.Equal(t, 2, *view.FinishedAtRound)
}

func Test_BuildCategoriesView_Finishes_When_Every_Sheet_Is_Complete(t *testing.T) {
	// Arrange
	players := []domain.Player{{ID: 1}}
	rules := domain.CategoryRules{Direction: gamesdomain.HigherIsBetter}

	entries := make([]scoringdomain.Entry, 0, len(scoringdomain.Categories))
	for _, def := range scoringdomain.Categories {
		entries = append(entries, scoringdomain.Entry{
			PlayerID:  1,
			ScoreType: string(def.ID),
			Value:     decimal.Zero,
		})
	}

	// Act
	complete, finished := buildCategoriesView(rules, players, entries)
	partial, partialFinished := buildCategoriesView(rules, players, entries[1:])

	// Assert
	require.True(t, finished)
	require.True(t, complete.Sheets[0].Complete)
	require.False(t, partialFinished)
	require.False(t, partial.Sheets[0].Complete)
}

func Test_BuildTeamRoundsView_Has_Winner_Once_Target_Reached(t *testing.T) {
	// Arrange
	rules := domain.TeamRoundRules{
		Target:    domain.Target{HasScoreTarget: true, ScoreTarget: 200},
		TeamCount: 2,
	}
	members := [][]int64{{1, 3}, {2, 4}}
	totals := []scoringdomain.TeamRoundTotal{
		{RoundNumber: 1, TeamIndex: 0, Total: decimal.NewFromInt(100)},
		{RoundNumber: 1, TeamIndex: 1, Total: decimal.NewFromInt(62)},
		{RoundNumber: 2, TeamIndex: 0, Total: decimal.NewFromInt(120)},
		{RoundNumber: 2, TeamIndex: 1, Total: decimal.NewFromInt(42)},
	}
	trump := scoringdomain.TrumpHearts
	details := map[int]*scoringdomain.BeloteDetails{2: {Trump: trump}}

	// Act
	view, won := buildTeamRoundsView(rules, members, totals, details)

	// Assert
	require.True(t, won)
	require.Equal(t, []float64{220, 104}, view.Totals)
	require.Equal(t, 3, view.NextRound)
	require.Equal(t, &WinnerView{Team: 0, Round: 2}, view.Winner)
	require.Nil(t, view.Rounds[0].Details)
	require.Equal(t, trump, view.Rounds[1].Details.Trump)
	require.Equal(t, []int64{2, 4}, view.Teams[1].PlayerIDs)
}

func Test_BuildTeamRoundsView_Without_Rounds_Starts_At_Zero(t *testing.T) {
	// Arrange
	rules := domain.TeamRoundRules{TeamCount: 2}

	// Act
	view, won := buildTeamRoundsView(rules, [][]int64{{1, 3}, {2, 4}}, nil, nil)

	// Assert
	require.False(t, won)
	require.Equal(t, []float64{0, 0}, view.Totals)
	require.Equal(t, 1, view.NextRound)
	require.Nil(t, view.Winner)
}
