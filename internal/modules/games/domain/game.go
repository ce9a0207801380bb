package domain

type ScoreType string

const (
	ScoreTypeCategories ScoreType = "categories"
	ScoreTypeRounds     ScoreType = "rounds"
)

type ScoreDirection string

const (
	HigherIsBetter ScoreDirection = "higher"
	LowerIsBetter  ScoreDirection = "lower"
)

func (d ScoreDirection) Valid() bool {
	return d == HigherIsBetter || d == LowerIsBetter
}

// Game is a catalog entry. Catalog rows are seeded by migrations and never
// written by the application.
type Game struct {
	ID                 int64          `db:"id" json:"id"`
	Slug               string         `db:"slug" json:"slug"`
	Name               string         `db:"name" json:"name"`
	MinPlayers         int            `db:"min_players" json:"min_players"`
	MaxPlayers         int            `db:"max_players" json:"max_players"`
	TeamBased          bool           `db:"team_based" json:"team_based"`
	ScoreType          ScoreType      `db:"score_type" json:"score_type"`
	ScoreDirection     ScoreDirection `db:"score_direction" json:"score_direction"`
	IsImplemented      bool           `db:"is_implemented" json:"is_implemented"`
	DefaultScoreTarget *int           `db:"default_score_target" json:"default_score_target,omitempty"`
}

// TeamCount is the number of two-player teams a team game is played with.
func (g Game) TeamCount() int {
	if !g.TeamBased {
		return 0
	}
	return g.MaxPlayers / 2
}

func (g Game) AcceptsPlayerCount(count int) bool {
	return count >= g.MinPlayers && count <= g.MaxPlayers
}
