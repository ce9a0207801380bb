package domain

import (
	gamesdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"
)

type EngineKind string

const (
	EngineGeneric    EngineKind = "generic"
	EngineCategories EngineKind = "categories"
	EngineTeamRounds EngineKind = "team_rounds"
)

const (
	DefaultTeamCount  = 2
	DefaultTeamTarget = 501
)

// Rules is the closed set of scoring engines. Each variant carries only
// what its engine needs.
type Rules interface {
	Kind() EngineKind
	sealed()
}

type GenericRules struct {
	Target    Target
	Direction gamesdomain.ScoreDirection
}

func (GenericRules) Kind() EngineKind { return EngineGeneric }
func (GenericRules) sealed()          {}

type CategoryRules struct {
	Direction gamesdomain.ScoreDirection
}

func (CategoryRules) Kind() EngineKind { return EngineCategories }
func (CategoryRules) sealed()          {}

type TeamRoundRules struct {
	Target    Target
	TeamCount int
}

func (TeamRoundRules) Kind() EngineKind { return EngineTeamRounds }
func (TeamRoundRules) sealed()          {}

// WinningScore is the total a team needs to win.
func (r TeamRoundRules) WinningScore() int {
	if r.Target.ScoreTarget > 0 {
		return r.Target.ScoreTarget
	}
	return DefaultTeamTarget
}

// SelectEngine picks the engine for a catalog game. Sessions without a game
// use the generic round engine.
func SelectEngine(game *gamesdomain.Game) EngineKind {
	if game == nil {
		return EngineGeneric
	}

	switch {
	case game.ScoreType == gamesdomain.ScoreTypeCategories:
		return EngineCategories
	case game.TeamBased:
		return EngineTeamRounds
	default:
		return EngineGeneric
	}
}
