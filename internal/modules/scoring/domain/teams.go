package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	sessiondomain "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"

	"github.com/shopspring/decimal"
)

const (
	TeamRoundScoreType = "team_round"
	MaxTeamRoundScore  = 1000
	maxNoteLength      = 200
	teamSize           = 2
)

// SplitTeamScore divides a team score between its members. Shares are cut to
// two decimals and the last member takes the remainder, so the shares always
// add back up to score exactly.
func SplitTeamScore(score decimal.Decimal, members int) []decimal.Decimal {
	if members <= 0 {
		return nil
	}

	share := score.Div(decimal.NewFromInt(int64(members))).Truncate(2)

	shares := make([]decimal.Decimal, members)
	distributed := decimal.Zero
	for i := 0; i < members-1; i++ {
		shares[i] = share
		distributed = distributed.Add(share)
	}
	shares[members-1] = score.Sub(distributed)

	return shares
}

// TeamMembers groups player ids by team, members ordered by seat. Every team
// must have exactly two members.
func TeamMembers(players []sessiondomain.Player, teamCount int) ([][]int64, error) {
	if len(players) != teamCount*teamSize {
		return nil, fmt.Errorf("team rounds need %d players, session has %d", teamCount*teamSize, len(players))
	}

	seated := make([]sessiondomain.Player, len(players))
	copy(seated, players)
	sort.Slice(seated, func(i, j int) bool { return seated[i].Position < seated[j].Position })

	members := make([][]int64, teamCount)
	for _, p := range seated {
		team := p.Team(teamCount)
		if team < 0 || team >= teamCount {
			return nil, fmt.Errorf("player %d has team %d outside of 0..%d", p.ID, team, teamCount-1)
		}
		members[team] = append(members[team], p.ID)
	}

	for team, ids := range members {
		if len(ids) != teamSize {
			return nil, fmt.Errorf("team %d has %d players, expected %d", team, len(ids), teamSize)
		}
	}

	return members, nil
}

// ValidateTeamScores expects one whole, non-negative score per team.
func ValidateTeamScores(scores map[int]RawScore, teamCount int) error {
	if len(scores) != teamCount {
		return fmt.Errorf("expected a score for each of the %d teams, got %d", teamCount, len(scores))
	}

	limit := decimal.NewFromInt(MaxTeamRoundScore)

	for team := 0; team < teamCount; team++ {
		score, found := scores[team]
		if !found {
			return fmt.Errorf("missing score for team %d", team)
		}
		if score.Blank {
			return fmt.Errorf("score for team %d is blank", team)
		}
		if err := score.Validate(); err != nil {
			return fmt.Errorf("team %d: %w", team, err)
		}
		if score.Value.IsNegative() || score.Value.GreaterThan(limit) {
			return fmt.Errorf("score for team %d must be between 0 and %d", team, MaxTeamRoundScore)
		}
		if !score.Value.Equal(score.Value.Truncate(0)) {
			return fmt.Errorf("score for team %d must be a whole number", team)
		}
	}

	return nil
}

// TeamRoundDrafts splits every team score between its members. All drafts of
// a round carry the same details blob.
func TeamRoundDrafts(sessionID int64, round int, members [][]int64, scores map[int]RawScore, details *string) []EntryDraft {
	drafts := make([]EntryDraft, 0, len(members)*teamSize)
	for team, ids := range members {
		shares := SplitTeamScore(scores[team].Value, len(ids))
		for i, playerID := range ids {
			drafts = append(drafts, EntryDraft{
				SessionID:   sessionID,
				PlayerID:    playerID,
				RoundNumber: round,
				ScoreType:   TeamRoundScoreType,
				Value:       shares[i],
				Details:     details,
			})
		}
	}
	return drafts
}

// TeamRoundTotal is one team's summed score in one round.
type TeamRoundTotal struct {
	RoundNumber int             `db:"round_number"`
	TeamIndex   int             `db:"team_index"`
	Total       decimal.Decimal `db:"total"`
}

type RoundDetails struct {
	RoundNumber int    `db:"round_number"`
	Details     []byte `db:"details"`
}

type TeamRound struct {
	Number     int
	Scores     []decimal.Decimal
	Cumulative []decimal.Decimal
	Details    *BeloteDetails
}

// SumTeamShares adds stored shares back up per team.
func SumTeamShares(drafts []EntryDraft, members [][]int64) []decimal.Decimal {
	teamOf := make(map[int64]int)
	for team, ids := range members {
		for _, id := range ids {
			teamOf[id] = team
		}
	}

	totals := make([]decimal.Decimal, len(members))
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for _, d := range drafts {
		team := teamOf[d.PlayerID]
		totals[team] = totals[team].Add(d.Value)
	}
	return totals
}

// VerifyTeamSplit checks that the stored shares add back up to every
// submitted team score.
func VerifyTeamSplit(drafts []EntryDraft, members [][]int64, scores map[int]RawScore) error {
	for team, total := range SumTeamShares(drafts, members) {
		if !total.Equal(scores[team].Value) {
			return fmt.Errorf("team %d shares add up to %s instead of %s", team, total, scores[team].Value)
		}
	}
	return nil
}

// AssembleTeamRounds builds the per round breakdown with running totals.
func AssembleTeamRounds(teamCount int, totals []TeamRoundTotal, details map[int]*BeloteDetails) []TeamRound {
	byRound := make(map[int][]decimal.Decimal)
	for _, t := range totals {
		if t.TeamIndex < 0 || t.TeamIndex >= teamCount {
			continue
		}
		scores, found := byRound[t.RoundNumber]
		if !found {
			scores = zeros(teamCount)
			byRound[t.RoundNumber] = scores
		}
		scores[t.TeamIndex] = scores[t.TeamIndex].Add(t.Total)
	}

	numbers := make([]int, 0, len(byRound))
	for number := range byRound {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	running := zeros(teamCount)
	rounds := make([]TeamRound, 0, len(numbers))
	for _, number := range numbers {
		scores := byRound[number]

		cumulative := make([]decimal.Decimal, teamCount)
		for team := range scores {
			running[team] = running[team].Add(scores[team])
			cumulative[team] = running[team]
		}

		rounds = append(rounds, TeamRound{
			Number:     number,
			Scores:     scores,
			Cumulative: cumulative,
			Details:    details[number],
		})
	}

	return rounds
}

// TeamTotalUpto is a team's running total through round upto. Zero means
// every round.
func TeamTotalUpto(rounds []TeamRound, team int, upto int) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rounds {
		if upto > 0 && r.Number > upto {
			break
		}
		if team >= 0 && team < len(r.Cumulative) {
			total = r.Cumulative[team]
		}
	}
	return total
}

// TeamOf returns the team a player is seated in.
func TeamOf(members [][]int64, playerID int64) (int, bool) {
	for team, ids := range members {
		for _, id := range ids {
			if id == playerID {
				return team, true
			}
		}
	}
	return 0, false
}

func TeamTotals(rounds []TeamRound, teamCount int) []decimal.Decimal {
	if len(rounds) == 0 {
		return zeros(teamCount)
	}
	return rounds[len(rounds)-1].Cumulative
}

// Winner returns the first team whose running total reaches target. When
// several teams cross in the same round the highest total wins, and an exact
// tie means nobody has won yet.
func Winner(rounds []TeamRound, target int) (team int, round int, ok bool) {
	if target <= 0 {
		return 0, 0, false
	}

	threshold := decimal.NewFromInt(int64(target))

	for _, r := range rounds {
		best := -1
		tied := false
		for t, total := range r.Cumulative {
			if total.LessThan(threshold) {
				continue
			}
			switch {
			case best < 0 || total.GreaterThan(r.Cumulative[best]):
				best = t
				tied = false
			case total.Equal(r.Cumulative[best]):
				tied = true
			}
		}

		if best >= 0 && !tied {
			return best, r.Number, true
		}
	}

	return 0, 0, false
}

func zeros(n int) []decimal.Decimal {
	values := make([]decimal.Decimal, n)
	for i := range values {
		values[i] = decimal.Zero
	}
	return values
}

type Trump string

const (
	TrumpHearts   Trump = "hearts"
	TrumpDiamonds Trump = "diamonds"
	TrumpClubs    Trump = "clubs"
	TrumpSpades   Trump = "spades"
	TrumpNone     Trump = "no_trump"
	TrumpAll      Trump = "all_trump"
)

func (t Trump) Valid() bool {
	switch t {
	case TrumpHearts, TrumpDiamonds, TrumpClubs, TrumpSpades, TrumpNone, TrumpAll:
		return true
	}
	return false
}

// BeloteDetails describes how a round was played. Every field is optional.
type BeloteDetails struct {
	Trump        Trump  `json:"trump,omitempty"`
	TakerTeam    *int   `json:"taker_team,omitempty"`
	Contract     *int   `json:"contract,omitempty"`
	ContractMade *bool  `json:"contract_made,omitempty"`
	BeloteTeam   *int   `json:"belote_team,omitempty"`
	Note         string `json:"note,omitempty"`
}

func (d BeloteDetails) Validate(teamCount int) error {
	var errs []error

	if d.Trump != "" && !d.Trump.Valid() {
		errs = append(errs, fmt.Errorf("unknown trump '%s'", d.Trump))
	}

	for name, team := range map[string]*int{"taker_team": d.TakerTeam, "belote_team": d.BeloteTeam} {
		if team != nil && (*team < 0 || *team >= teamCount) {
			errs = append(errs, fmt.Errorf("%s must be between 0 and %d", name, teamCount-1))
		}
	}

	if d.Contract != nil && (*d.Contract <= 0 || *d.Contract > MaxTeamRoundScore) {
		errs = append(errs, fmt.Errorf("contract must be between 1 and %d", MaxTeamRoundScore))
	}

	if len([]rune(d.Note)) > maxNoteLength {
		errs = append(errs, fmt.Errorf("note is longer than %d characters", maxNoteLength))
	}

	return errors.Join(errs...)
}

func EncodeDetails(d *BeloteDetails) (*string, error) {
	if d == nil {
		return nil, nil
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}

	encoded := string(raw)
	return &encoded, nil
}

// DecodeDetails returns nil for rounds stored without details.
func DecodeDetails(raw []byte) (*BeloteDetails, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var d BeloteDetails
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}

	return &d, nil
}
