package domain

import (
	"time"

	gamesdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"
)

type Session struct {
	ID                 int64                      `db:"id" json:"id"`
	OwnerID            int64                      `db:"owner_id" json:"-"`
	GameID             *int64                     `db:"game_id" json:"-"`
	GameSlug           *string                    `db:"game_slug" json:"game_slug,omitempty"`
	Name               string                     `db:"name" json:"name"`
	Engine             EngineKind                 `db:"engine" json:"engine"`
	ScoreDirection     gamesdomain.ScoreDirection `db:"score_direction" json:"score_direction"`
	HasScoreTarget     bool                       `db:"has_score_target" json:"has_score_target"`
	ScoreTarget        int                        `db:"score_target" json:"score_target"`
	FinishCurrentRound bool                       `db:"finish_current_round" json:"finish_current_round"`
	CreatedAt          time.Time                  `db:"created_at" json:"created_at"`
}

func (s Session) Target() Target {
	return Target{
		HasScoreTarget:     s.HasScoreTarget,
		ScoreTarget:        s.ScoreTarget,
		FinishCurrentRound: s.FinishCurrentRound,
	}
}

// Rules returns the engine variant the session was created with.
func (s Session) Rules() Rules {
	switch s.Engine {
	case EngineCategories:
		return CategoryRules{Direction: s.ScoreDirection}
	case EngineTeamRounds:
		return TeamRoundRules{Target: s.Target(), TeamCount: DefaultTeamCount}
	default:
		return GenericRules{Target: s.Target(), Direction: s.ScoreDirection}
	}
}

type Target struct {
	HasScoreTarget     bool `json:"has_score_target"`
	ScoreTarget        int  `json:"score_target"`
	FinishCurrentRound bool `json:"finish_current_round"`
}

// Active reports whether reaching the target ends the session.
func (t Target) Active() bool {
	return t.HasScoreTarget && t.ScoreTarget > 0
}

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

type Player struct {
	ID        int64  `db:"id" json:"id"`
	SessionID int64  `db:"session_id" json:"-"`
	Name      string `db:"name" json:"name"`
	Position  int    `db:"position" json:"position"`
	TeamIndex *int   `db:"team_index" json:"team_index,omitempty"`
}

// Team returns the player's team, falling back to position parity when no
// team was stored.
func (p Player) Team(teamCount int) int {
	if p.TeamIndex != nil {
		return *p.TeamIndex
	}
	if teamCount <= 0 {
		return 0
	}
	return p.Position % teamCount
}

func PlayerIDs(players []Player) []int64 {
	ids := make([]int64, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	return ids
}

func FindPlayer(players []Player, id int64) (Player, bool) {
	for _, p := range players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}
