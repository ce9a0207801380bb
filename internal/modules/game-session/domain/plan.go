package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	gamesdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"
)

const (
	MaxNameLength          = 100
	GenericMinPlayers      = 1
	GenericMaxPlayers      = 20
	defaultGenericTitle    = "Score sheet"
	playersPerTeam         = 2
	errTemplatePlayerCount = "expected between %d and %d players, got %d"
)

type SessionDraft struct {
	Name           string                     `json:"name"`
	Players        []string                   `json:"players"`
	Teams          [][]string                 `json:"teams"`
	Target         Target                     `json:"target"`
	ScoreDirection gamesdomain.ScoreDirection `json:"score_direction"`
}

// PlanSession validates a draft against the game it is played with and lays
// the players out on positions. A nil game means a generic score sheet.
func PlanSession(ownerID int64, game *gamesdomain.Game, draft SessionDraft) (Session, []Player, error) {
	if game != nil && !game.IsImplemented {
		return Session{}, nil, fmt.Errorf("game '%s' is not available yet", game.Slug)
	}

	engine := SelectEngine(game)

	var validationErr core.ValidationError

	name := NormalizeName(draft.Name)
	if name == "" {
		name = defaultGenericTitle
		if game != nil {
			name = game.Name
		}
	}
	if len([]rune(name)) > MaxNameLength {
		validationErr.Add(fmt.Errorf("session name is longer than %d characters", MaxNameLength))
	}

	var (
		players []Player
		err     error
	)
	if engine == EngineTeamRounds {
		players, err = planTeams(game, draft.Teams)
	} else {
		players, err = planPlayers(game, draft.Players)
	}
	validationErr.Add(err)

	target, err := planTarget(game, engine, draft.Target)
	validationErr.Add(err)

	direction, err := planDirection(game, draft.ScoreDirection)
	validationErr.Add(err)

	if err := validationErr.Collect(); err != nil {
		return Session{}, nil, err
	}

	session := Session{
		OwnerID:            ownerID,
		Name:               name,
		Engine:             engine,
		ScoreDirection:     direction,
		HasScoreTarget:     target.HasScoreTarget,
		ScoreTarget:        target.ScoreTarget,
		FinishCurrentRound: target.FinishCurrentRound,
	}
	if game != nil {
		session.GameID = &game.ID
		session.GameSlug = &game.Slug
	}

	return session, players, nil
}

func planPlayers(game *gamesdomain.Game, names []string) ([]Player, error) {
	minPlayers, maxPlayers := GenericMinPlayers, GenericMaxPlayers
	if game != nil {
		minPlayers, maxPlayers = game.MinPlayers, game.MaxPlayers
	}

	seen := make(map[string]struct{}, len(names))
	players := make([]Player, 0, len(names))

	for _, raw := range names {
		name := NormalizeName(raw)
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		if _, found := seen[key]; found {
			return nil, fmt.Errorf("player name '%s' is used twice", name)
		}
		seen[key] = struct{}{}

		if err := validatePlayerName(name); err != nil {
			return nil, err
		}

		players = append(players, Player{Name: name, Position: len(players)})
	}

	if len(players) < minPlayers || len(players) > maxPlayers {
		return nil, fmt.Errorf(errTemplatePlayerCount, minPlayers, maxPlayers, len(players))
	}

	return players, nil
}

// planTeams puts member j of team i on position i + j*teamCount, so seats
// alternate between teams around the table.
func planTeams(game *gamesdomain.Game, teams [][]string) ([]Player, error) {
	teamCount := game.TeamCount()
	if len(teams) != teamCount {
		return nil, fmt.Errorf("expected %d teams, got %d", teamCount, len(teams))
	}

	seen := make(map[string]struct{}, teamCount*playersPerTeam)
	players := make([]Player, 0, teamCount*playersPerTeam)

	for teamIndex, members := range teams {
		names := make([]string, 0, len(members))
		for _, raw := range members {
			if name := NormalizeName(raw); name != "" {
				names = append(names, name)
			}
		}

		if len(names) != playersPerTeam {
			return nil, fmt.Errorf("team %d needs exactly %d named players, got %d", teamIndex+1, playersPerTeam, len(names))
		}

		for memberIndex, name := range names {
			key := strings.ToLower(name)
			if _, found := seen[key]; found {
				return nil, fmt.Errorf("player name '%s' is used twice", name)
			}
			seen[key] = struct{}{}

			if err := validatePlayerName(name); err != nil {
				return nil, err
			}

			team := teamIndex
			players = append(players, Player{
				Name:      name,
				Position:  teamIndex + memberIndex*teamCount,
				TeamIndex: &team,
			})
		}
	}

	return players, nil
}

func planTarget(game *gamesdomain.Game, engine EngineKind, requested Target) (Target, error) {
	if engine == EngineCategories {
		return Target{}, nil
	}

	if requested.HasScoreTarget && requested.ScoreTarget <= 0 {
		return Target{}, fmt.Errorf("score target must be a positive number, got %d", requested.ScoreTarget)
	}

	if requested.HasScoreTarget {
		return requested, nil
	}

	if game != nil && game.DefaultScoreTarget != nil {
		return Target{
			HasScoreTarget:     true,
			ScoreTarget:        *game.DefaultScoreTarget,
			FinishCurrentRound: requested.FinishCurrentRound,
		}, nil
	}

	if engine == EngineTeamRounds {
		return Target{HasScoreTarget: true, ScoreTarget: DefaultTeamTarget}, nil
	}

	return Target{FinishCurrentRound: requested.FinishCurrentRound}, nil
}

func planDirection(game *gamesdomain.Game, requested gamesdomain.ScoreDirection) (gamesdomain.ScoreDirection, error) {
	if game != nil {
		return game.ScoreDirection, nil
	}

	if requested == "" {
		return gamesdomain.HigherIsBetter, nil
	}

	if !requested.Valid() {
		return "", fmt.Errorf("unknown score direction '%s'", requested)
	}

	return requested, nil
}

func validatePlayerName(name string) error {
	if len([]rune(name)) > MaxNameLength {
		return fmt.Errorf("player name '%s' is longer than %d characters", name, MaxNameLength)
	}
	return nil
}

// NormalizeName trims a name and collapses inner whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func ValidateSessionName(name string) error {
	normalized := NormalizeName(name)
	if normalized == "" {
		return errors.New("session name is required")
	}
	if len([]rune(normalized)) > MaxNameLength {
		return fmt.Errorf("session name is longer than %d characters", MaxNameLength)
	}
	return nil
}
