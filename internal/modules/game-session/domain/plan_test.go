package domain

import (
	"testing"

	gamesdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"

	"github.com/stretchr/testify/require"
)

func belote() *gamesdomain.Game {
	target := 501
	return &gamesdomain.Game{
		ID:                 2,
		Slug:               "belote",
		Name:               "Belote",
		MinPlayers:         4,
		MaxPlayers:         4,
		TeamBased:          true,
		ScoreType:          gamesdomain.ScoreTypeRounds,
		ScoreDirection:     gamesdomain.HigherIsBetter,
		IsImplemented:      true,
		DefaultScoreTarget: &target,
	}
}

func yams() *gamesdomain.Game {
	return &gamesdomain.Game{
		ID:             1,
		Slug:           "yams",
		Name:           "Yams",
		MinPlayers:     1,
		MaxPlayers:     8,
		ScoreType:      gamesdomain.ScoreTypeCategories,
		ScoreDirection: gamesdomain.HigherIsBetter,
		IsImplemented:  true,
	}
}

func Test_PlanSession_Assigns_Alternating_Seats_To_Teams(t *testing.T) {
	// Arrange
	draft := SessionDraft{
		Teams: [][]string{{"Alice", "Bob"}, {"Chloé", "David"}},
	}

	// Act
	session, players, err := PlanSession(7, belote(), draft)

	// Assert
	require.NoError(t, err)
	require.Equal(t, EngineTeamRounds, session.Engine)
	require.Equal(t, "Belote", session.Name)
	require.True(t, session.HasScoreTarget)
	require.Equal(t, 501, session.ScoreTarget)

	positions := map[string]int{}
	teams := map[string]int{}
	for _, p := range players {
		positions[p.Name] = p.Position
		teams[p.Name] = *p.TeamIndex
	}

	require.Equal(t, map[string]int{"Alice": 0, "Chloé": 1, "Bob": 2, "David": 3}, positions)
	require.Equal(t, map[string]int{"Alice": 0, "Bob": 0, "Chloé": 1, "David": 1}, teams)

	for _, p := range players {
		require.Equal(t, p.Position%2, p.Team(2))
	}
}

func Test_PlanSession_Rejects_Incomplete_Team(t *testing.T) {
	// Arrange
	draft := SessionDraft{
		Teams: [][]string{{"Alice", "  "}, {"Chloé", "David"}},
	}

	// Act
	_, _, err := PlanSession(7, belote(), draft)

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "team 1 needs exactly 2 named players")
}

func Test_PlanSession_Rejects_Wrong_Team_Count(t *testing.T) {
	// Arrange
	draft := SessionDraft{
		Teams: [][]string{{"Alice", "Bob"}},
	}

	// Act
	_, _, err := PlanSession(7, belote(), draft)

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected 2 teams")
}

func Test_PlanSession_Ignores_Blank_Names_And_Counts_Distinct_Players(t *testing.T) {
	// Arrange
	draft := SessionDraft{
		Name:    "  Friday   night ",
		Players: []string{"Alice", "", "  Bob  ", "   "},
	}

	// Act
	session, players, err := PlanSession(7, yams(), draft)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "Friday night", session.Name)
	require.Equal(t, EngineCategories, session.Engine)
	require.False(t, session.HasScoreTarget)
	require.Len(t, players, 2)
	require.Equal(t, "Bob", players[1].Name)
	require.Equal(t, 1, players[1].Position)
	require.Nil(t, players[1].TeamIndex)
}

func Test_PlanSession_Rejects_Duplicate_Player_Names(t *testing.T) {
	// Arrange
	draft := SessionDraft{Players: []string{"Alice", "alice"}}

	// Act
	_, _, err := PlanSession(7, yams(), draft)

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "used twice")
}

func Test_PlanSession_Rejects_Too_Many_Players(t *testing.T) {
	// Arrange
	draft := SessionDraft{Players: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}}

	// Act
	_, _, err := PlanSession(7, yams(), draft)

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected between 1 and 8 players, got 9")
}

func Test_PlanSession_Rejects_Game_Not_Implemented(t *testing.T) {
	// Arrange
	game := yams()
	game.IsImplemented = false

	// Act
	_, _, err := PlanSession(7, game, SessionDraft{Players: []string{"Alice"}})

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "not available")
}

func Test_PlanSession_Generic_Sheet_Keeps_Requested_Target_And_Direction(t *testing.T) {
	// Arrange
	draft := SessionDraft{
		Players:        []string{"Alice", "Bob"},
		Target:         Target{HasScoreTarget: true, ScoreTarget: 100, FinishCurrentRound: true},
		ScoreDirection: gamesdomain.LowerIsBetter,
	}

	// Act
	session, _, err := PlanSession(7, nil, draft)

	// Assert
	require.NoError(t, err)
	require.Equal(t, EngineGeneric, session.Engine)
	require.Equal(t, "Score sheet", session.Name)
	require.Nil(t, session.GameID)
	require.Equal(t, gamesdomain.LowerIsBetter, session.ScoreDirection)
	require.True(t, session.Target().Active())
	require.True(t, session.FinishCurrentRound)
	require.IsType(t, GenericRules{}, session.Rules())
}

func Test_PlanSession_Rejects_Malformed_Target(t *testing.T) {
	// Arrange
	draft := SessionDraft{
		Players: []string{"Alice"},
		Target:  Target{HasScoreTarget: true, ScoreTarget: 0},
	}

	// Act
	_, _, err := PlanSession(7, nil, draft)

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "score target must be a positive number")
}

func Test_PlanSession_Rejects_Unknown_Direction(t *testing.T) {
	// Arrange
	draft := SessionDraft{
		Players:        []string{"Alice"},
		ScoreDirection: "sideways",
	}

	// Act
	_, _, err := PlanSession(7, nil, draft)

	// Assert
	require.Error(t, err)
}

func Test_SelectEngine_Covers_Every_Variant(t *testing.T) {
	// Arrange
	rami := &gamesdomain.Game{ScoreType: gamesdomain.ScoreTypeRounds}

	// Act & Assert
	require.Equal(t, EngineGeneric, SelectEngine(nil))
	require.Equal(t, EngineGeneric, SelectEngine(rami))
	require.Equal(t, EngineCategories, SelectEngine(yams()))
	require.Equal(t, EngineTeamRounds, SelectEngine(belote()))
}

func Test_Session_Rules_Matches_Engine(t *testing.T) {
	// Arrange
	session := Session{Engine: EngineTeamRounds, HasScoreTarget: true, ScoreTarget: 1000}

	// Act
	rules := session.Rules()

	// Assert
	teamRules, ok := rules.(TeamRoundRules)
	require.True(t, ok)
	require.Equal(t, EngineTeamRounds, teamRules.Kind())
	require.Equal(t, 1000, teamRules.Target.ScoreTarget)
}
