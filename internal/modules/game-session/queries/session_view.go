package queries

import (
	"time"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"
	gamesdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"
	scoringdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/scoring/domain"

	"github.com/shopspring/decimal"
)

// SessionView is the presentation neutral read model of a session. Exactly
// one of Rounds, Categories and TeamRounds is set, matching Engine.
type SessionView struct {
	ID             int64                      `json:"id"`
	Name           string                     `json:"name"`
	GameSlug       *string                    `json:"game_slug,omitempty"`
	Engine         domain.EngineKind          `json:"engine"`
	ScoreDirection gamesdomain.ScoreDirection `json:"score_direction"`
	Target         domain.Target              `json:"target"`
	Status         domain.Status              `json:"status"`
	CreatedAt      time.Time                  `json:"created_at"`
	Players        []domain.Player            `json:"players"`

	Rounds     *RoundsView     `json:"rounds,omitempty"`
	Categories *CategoriesView `json:"categories,omitempty"`
	TeamRounds *TeamRoundsView `json:"team_rounds,omitempty"`
}

type StandingView struct {
	PlayerID int64   `json:"player_id"`
	Total    float64 `json:"total"`
	Rank     int     `json:"rank"`
}

type RoundRow struct {
	Number int               `json:"number"`
	Scores map[int64]float64 `json:"scores"`
}

type RoundsView struct {
	Rounds          []RoundRow     `json:"rounds"`
	Standings       []StandingView `json:"standings"`
	NextRound       int            `json:"next_round"`
	FinishedAtRound *int           `json:"finished_at_round,omitempty"`
}

type PlayerSheetView struct {
	PlayerID int64 `json:"player_id"`
	scoringdomain.SheetBreakdown
}

type CategoriesView struct {
	Categories []scoringdomain.CategoryDef `json:"categories"`
	Sheets     []PlayerSheetView           `json:"sheets"`
	Standings  []StandingView              `json:"standings"`
}

type TeamView struct {
	Index     int     `json:"index"`
	PlayerIDs []int64 `json:"player_ids"`
}

type TeamRoundRow struct {
	Number     int                          `json:"number"`
	Scores     []float64                    `json:"scores"`
	Cumulative []float64                    `json:"cumulative"`
	Details    *scoringdomain.BeloteDetails `json:"details,omitempty"`
}

type WinnerView struct {
	Team  int `json:"team"`
	Round int `json:"round"`
}

type TeamRoundsView struct {
	Teams     []TeamView     `json:"teams"`
	Rounds    []TeamRoundRow `json:"rounds"`
	Totals    []float64      `json:"totals"`
	NextRound int            `json:"next_round"`
	Winner    *WinnerView    `json:"winner,omitempty"`
}

func newSessionView(session domain.Session, players []domain.Player) SessionView {
	if players == nil {
		players = []domain.Player{}
	}

	return SessionView{
		ID:             session.ID,
		Name:           session.Name,
		GameSlug:       session.GameSlug,
		Engine:         session.Engine,
		ScoreDirection: session.ScoreDirection,
		Target:         session.Target(),
		Status:         domain.StatusInProgress,
		CreatedAt:      session.CreatedAt,
		Players:        players,
	}
}

func buildRoundsView(rules domain.GenericRules, players []domain.Player, entries []scoringdomain.Entry) (*RoundsView, bool) {
	playerIDs := domain.PlayerIDs(players)

	rows := make([]RoundRow, 0)
	for _, number := range scoringdomain.RoundNumbers(entries) {
		row := RoundRow{Number: number, Scores: make(map[int64]float64)}
		for _, e := range entries {
			if e.RoundNumber == number {
				row.Scores[e.PlayerID] = e.Value.InexactFloat64()
			}
		}
		rows = append(rows, row)
	}

	view := &RoundsView{
		Rounds:    rows,
		Standings: standingViews(scoringdomain.Rank(scoringdomain.Standings(playerIDs, entries, 0), rules.Direction)),
		NextRound: scoringdomain.NextRoundNumber(entries),
	}

	round, finished := scoringdomain.FinishedAtRound(rules.Target, playerIDs, entries)
	if finished {
		view.FinishedAtRound = &round
	}

	return view, finished
}

func buildCategoriesView(rules domain.CategoryRules, players []domain.Player, entries []scoringdomain.Entry) (*CategoriesView, bool) {
	sheets := make([]PlayerSheetView, 0, len(players))
	standings := make([]scoringdomain.Standing, 0, len(players))
	complete := len(players) > 0

	for _, p := range players {
		sheet := scoringdomain.SheetFromEntries(entries, p.ID)
		breakdown := sheet.Breakdown()

		sheets = append(sheets, PlayerSheetView{PlayerID: p.ID, SheetBreakdown: breakdown})
		standings = append(standings, scoringdomain.Standing{
			PlayerID: p.ID,
			Total:    decimal.NewFromInt(int64(breakdown.GrandTotal)),
		})

		complete = complete && breakdown.Complete
	}

	return &CategoriesView{
		Categories: scoringdomain.Categories,
		Sheets:     sheets,
		Standings:  standingViews(scoringdomain.Rank(standings, rules.Direction)),
	}, complete
}

func buildTeamRoundsView(
	rules domain.TeamRoundRules,
	members [][]int64,
	totals []scoringdomain.TeamRoundTotal,
	details map[int]*scoringdomain.BeloteDetails,
) (*TeamRoundsView, bool) {
	rounds := scoringdomain.AssembleTeamRounds(rules.TeamCount, totals, details)

	teams := make([]TeamView, 0, len(members))
	for index, ids := range members {
		teams = append(teams, TeamView{Index: index, PlayerIDs: ids})
	}

	rows := make([]TeamRoundRow, 0, len(rounds))
	for _, r := range rounds {
		rows = append(rows, TeamRoundRow{
			Number:     r.Number,
			Scores:     floats(r.Scores),
			Cumulative: floats(r.Cumulative),
			Details:    r.Details,
		})
	}

	nextRound := 1
	if len(rounds) > 0 {
		nextRound = rounds[len(rounds)-1].Number + 1
	}

	view := &TeamRoundsView{
		Teams:     teams,
		Rounds:    rows,
		Totals:    floats(scoringdomain.TeamTotals(rounds, rules.TeamCount)),
		NextRound: nextRound,
	}

	team, round, won := scoringdomain.Winner(rounds, rules.WinningScore())
	if won {
		view.Winner = &WinnerView{Team: team, Round: round}
	}

	return view, won
}

func standingViews(standings []scoringdomain.Standing) []StandingView {
	views := make([]StandingView, 0, len(standings))
	for _, s := range standings {
		views = append(views, StandingView{
			PlayerID: s.PlayerID,
			Total:    s.Total.InexactFloat64(),
			Rank:     s.Rank,
		})
	}
	return views
}

func floats(values []decimal.Decimal) []float64 {
	result := make([]float64, 0, len(values))
	for _, v := range values {
		result = append(result, v.InexactFloat64())
	}
	return result
}
