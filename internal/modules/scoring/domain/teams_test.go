package domain

import (
	"testing"

	sessiondomain "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func beloteTable() []sessiondomain.Player {
	teamA, teamB := 0, 1
	return []sessiondomain.Player{
		{ID: 11, Name: "Alice", Position: 0, TeamIndex: &teamA},
		{ID: 12, Name: "Chloé", Position: 1, TeamIndex: &teamB},
		{ID: 13, Name: "Bob", Position: 2, TeamIndex: &teamA},
		{ID: 14, Name: "David", Position: 3, TeamIndex: &teamB},
	}
}

func Test_SplitTeamScore_Reconstructs_Every_Belote_Score(t *testing.T) {
	for score := int64(0); score <= 162; score++ {
		// Arrange
		total := decimal.NewFromInt(score)

		// Act
		shares := SplitTeamScore(total, 2)

		// Assert
		require.Len(t, shares, 2)
		require.True(t, total.Equal(shares[0].Add(shares[1])), "score %d", score)
		require.True(t, shares[0].Equal(shares[1]), "score %d", score)
	}
}

func Test_SplitTeamScore_Keeps_Halves(t *testing.T) {
	// Act
	odd := SplitTeamScore(decimal.NewFromInt(161), 2)
	small := SplitTeamScore(decimal.NewFromInt(2), 2)

	// Assert
	require.Equal(t, "80.5", odd[0].String())
	require.Equal(t, "80.5", odd[1].String())
	require.Equal(t, "1", small[0].String())
	require.Equal(t, "1", small[1].String())
}

func Test_SplitTeamScore_Puts_Remainder_On_Last_Member(t *testing.T) {
	// Act
	shares := SplitTeamScore(decimal.NewFromInt(100), 3)

	// Assert
	require.Equal(t, "33.33", shares[0].String())
	require.Equal(t, "33.34", shares[2].String())
	require.True(t, decimal.NewFromInt(100).Equal(shares[0].Add(shares[1]).Add(shares[2])))
}

func Test_TeamMembers_Groups_By_Stored_Team(t *testing.T) {
	// Act
	members, err := TeamMembers(beloteTable(), 2)

	// Assert
	require.NoError(t, err)
	require.Equal(t, [][]int64{{11, 13}, {12, 14}}, members)
}

func Test_TeamMembers_Falls_Back_To_Seat_Parity(t *testing.T) {
	// Arrange
	players := beloteTable()
	for i := range players {
		players[i].TeamIndex = nil
	}

	// Act
	members, err := TeamMembers(players, 2)

	// Assert
	require.NoError(t, err)
	require.Equal(t, [][]int64{{11, 13}, {12, 14}}, members)
}

func Test_TeamMembers_Rejects_Wrong_Player_Count(t *testing.T) {
	// Act
	_, err := TeamMembers(beloteTable()[:3], 2)

	// Assert
	require.Error(t, err)
}

func Test_TeamMembers_Rejects_Unbalanced_Teams(t *testing.T) {
	// Arrange
	players := beloteTable()
	teamA := 0
	players[1].TeamIndex = &teamA

	// Act
	_, err := TeamMembers(players, 2)

	// Assert
	require.Error(t, err)
}

func Test_TeamRoundDrafts_Stores_Halves_That_Sum_Back(t *testing.T) {
	// Arrange
	members, err := TeamMembers(beloteTable(), 2)
	require.NoError(t, err)

	scores := map[int]RawScore{0: Score(160), 1: Score(2)}

	// Act
	details := `{"trump":"hearts"}`
	drafts := TeamRoundDrafts(5, 1, members, scores, &details)
	totals := SumTeamShares(drafts, members)

	// Assert
	require.Len(t, drafts, 4)
	for _, d := range drafts {
		require.Equal(t, TeamRoundScoreType, d.ScoreType)
		require.JSONEq(t, details, *d.Details)
	}
	require.Equal(t, "80", drafts[0].Value.String())
	require.Equal(t, "1", drafts[2].Value.String())
	require.True(t, decimal.NewFromInt(160).Equal(totals[0]))
	require.True(t, decimal.NewFromInt(2).Equal(totals[1]))
}

func Test_VerifyTeamSplit_Detects_Lost_Points(t *testing.T) {
	// Arrange
	members, err := TeamMembers(beloteTable(), 2)
	require.NoError(t, err)

	scores := map[int]RawScore{0: Score(161), 1: Score(1)}
	drafts := TeamRoundDrafts(5, 1, members, scores, nil)

	// Act
	conserved := VerifyTeamSplit(drafts, members, scores)

	drafts[0].Value = drafts[0].Value.Truncate(0)
	truncated := VerifyTeamSplit(drafts, members, scores)

	// Assert
	require.NoError(t, conserved)
	require.Error(t, truncated)
}

func Test_ValidateTeamScores(t *testing.T) {
	// Act & Assert
	require.NoError(t, ValidateTeamScores(map[int]RawScore{0: Score(81), 1: Score(81)}, 2))
	require.Error(t, ValidateTeamScores(map[int]RawScore{0: Score(81)}, 2))
	require.Error(t, ValidateTeamScores(map[int]RawScore{0: Score(81), 2: Score(81)}, 2))
	require.Error(t, ValidateTeamScores(map[int]RawScore{0: Score(-1), 1: Score(163)}, 2))
	require.Error(t, ValidateTeamScores(map[int]RawScore{0: ParseRawScore("80.5"), 1: Score(81)}, 2))
	require.Error(t, ValidateTeamScores(map[int]RawScore{0: BlankScore(), 1: Score(81)}, 2))
	require.Error(t, ValidateTeamScores(map[int]RawScore{0: ParseRawScore("1e400000000"), 1: Score(81)}, 2))
}

func Test_AssembleTeamRounds_Builds_Running_Totals(t *testing.T) {
	// Arrange
	totals := []TeamRoundTotal{
		{RoundNumber: 2, TeamIndex: 0, Total: decimal.NewFromInt(90)},
		{RoundNumber: 1, TeamIndex: 0, Total: decimal.NewFromInt(160)},
		{RoundNumber: 1, TeamIndex: 1, Total: decimal.NewFromInt(2)},
		{RoundNumber: 2, TeamIndex: 1, Total: decimal.NewFromInt(72)},
	}
	trump := TrumpSpades
	details := map[int]*BeloteDetails{2: {Trump: trump}}

	// Act
	rounds := AssembleTeamRounds(2, totals, details)

	// Assert
	require.Len(t, rounds, 2)
	require.Equal(t, 1, rounds[0].Number)
	require.Nil(t, rounds[0].Details)
	require.Equal(t, TrumpSpades, rounds[1].Details.Trump)
	require.True(t, decimal.NewFromInt(250).Equal(rounds[1].Cumulative[0]))
	require.True(t, decimal.NewFromInt(74).Equal(rounds[1].Cumulative[1]))

	teamTotals := TeamTotals(rounds, 2)
	require.True(t, decimal.NewFromInt(250).Equal(teamTotals[0]))
}

func Test_TeamTotalUpto_Reads_Running_Total_Of_Players_Team(t *testing.T) {
	// Arrange
	members, err := TeamMembers(beloteTable(), 2)
	require.NoError(t, err)

	rounds := AssembleTeamRounds(2, []TeamRoundTotal{
		{RoundNumber: 1, TeamIndex: 0, Total: decimal.NewFromInt(161)},
		{RoundNumber: 1, TeamIndex: 1, Total: decimal.NewFromInt(1)},
		{RoundNumber: 2, TeamIndex: 0, Total: decimal.NewFromInt(40)},
		{RoundNumber: 2, TeamIndex: 1, Total: decimal.NewFromInt(122)},
	}, nil)

	// Act
	team, found := TeamOf(members, 14)
	_, missing := TeamOf(members, 99)

	// Assert
	require.True(t, found)
	require.False(t, missing)
	require.Equal(t, 1, team)
	require.True(t, decimal.NewFromInt(123).Equal(TeamTotalUpto(rounds, team, 0)))
	require.True(t, decimal.NewFromInt(1).Equal(TeamTotalUpto(rounds, team, 1)))
	require.True(t, decimal.NewFromInt(161).Equal(TeamTotalUpto(rounds, 0, 1)))
	require.True(t, TeamTotalUpto(nil, 0, 0).IsZero())
}

func Test_Winner_Is_First_Team_To_Reach_Target(t *testing.T) {
	// Arrange
	totals := []TeamRoundTotal{
		{RoundNumber: 1, TeamIndex: 0, Total: decimal.NewFromInt(300)},
		{RoundNumber: 1, TeamIndex: 1, Total: decimal.NewFromInt(200)},
		{RoundNumber: 2, TeamIndex: 0, Total: decimal.NewFromInt(100)},
		{RoundNumber: 2, TeamIndex: 1, Total: decimal.NewFromInt(310)},
		{RoundNumber: 3, TeamIndex: 0, Total: decimal.NewFromInt(200)},
		{RoundNumber: 3, TeamIndex: 1, Total: decimal.NewFromInt(0)},
	}
	rounds := AssembleTeamRounds(2, totals, nil)

	// Act
	team, round, ok := Winner(rounds, 501)

	// Assert
	require.True(t, ok)
	require.Equal(t, 1, team)
	require.Equal(t, 2, round)
}

func Test_Winner_Waits_When_Teams_Tie_Above_Target(t *testing.T) {
	// Arrange
	totals := []TeamRoundTotal{
		{RoundNumber: 1, TeamIndex: 0, Total: decimal.NewFromInt(510)},
		{RoundNumber: 1, TeamIndex: 1, Total: decimal.NewFromInt(510)},
	}
	rounds := AssembleTeamRounds(2, totals, nil)

	// Act
	_, _, ok := Winner(rounds, 501)

	// Assert
	require.False(t, ok)
}

func Test_BeloteDetails_Round_Trip_And_Validation(t *testing.T) {
	// Arrange
	taker, made := 1, true
	details := &BeloteDetails{Trump: TrumpHearts, TakerTeam: &taker, ContractMade: &made}

	// Act
	raw, err := EncodeDetails(details)
	require.NoError(t, err)
	decoded, err := DecodeDetails([]byte(*raw))

	// Assert
	require.NoError(t, err)
	require.Equal(t, details, decoded)
	require.NoError(t, decoded.Validate(2))

	badTeam := 2
	require.Error(t, BeloteDetails{TakerTeam: &badTeam}.Validate(2))
	require.Error(t, BeloteDetails{Trump: "jokers"}.Validate(2))

	empty, err := DecodeDetails(nil)
	require.NoError(t, err)
	require.Nil(t, empty)

	_, err = DecodeDetails([]byte("{broken"))
	require.Error(t, err)
}
