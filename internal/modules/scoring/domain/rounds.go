package domain

import (
	"sort"

	gamesdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"
	sessiondomain "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"

	"github.com/shopspring/decimal"
)

// NextRoundNumber is one past the highest stored round.
func NextRoundNumber(entries []Entry) int {
	return MaxRoundNumber(entries) + 1
}

func MaxRoundNumber(entries []Entry) int {
	highest := 0
	for _, e := range entries {
		if e.RoundNumber > highest {
			highest = e.RoundNumber
		}
	}
	return highest
}

// RoundNumbers returns the distinct stored round numbers in ascending order.
func RoundNumbers(entries []Entry) []int {
	seen := make(map[int]struct{})
	rounds := make([]int, 0)
	for _, e := range entries {
		if e.RoundNumber <= CategoryRound {
			continue
		}
		if _, found := seen[e.RoundNumber]; !found {
			seen[e.RoundNumber] = struct{}{}
			rounds = append(rounds, e.RoundNumber)
		}
	}
	sort.Ints(rounds)
	return rounds
}

// IsEmptyRound reports whether every submitted score is blank or zero.
func IsEmptyRound(scores map[int64]RawScore) bool {
	for _, score := range scores {
		if !score.IsZero() {
			return false
		}
	}
	return true
}

// RoundDrafts turns submitted scores into entries for round. Blank scores are
// not stored so the player can fill them in later.
func RoundDrafts(sessionID int64, round int, scores map[int64]RawScore) []EntryDraft {
	drafts := make([]EntryDraft, 0, len(scores))
	for playerID, score := range scores {
		if score.Blank {
			continue
		}
		drafts = append(drafts, EntryDraft{
			SessionID:   sessionID,
			PlayerID:    playerID,
			RoundNumber: round,
			ScoreType:   RoundScoreType,
			Value:       score.Value,
		})
	}

	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].PlayerID < drafts[j].PlayerID
	})

	return drafts
}

// Total sums a player's round entries up to and including uptoRound.
// A uptoRound of zero or less means every round.
func Total(entries []Entry, playerID int64, uptoRound int) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.PlayerID != playerID || e.RoundNumber <= CategoryRound {
			continue
		}
		if uptoRound > 0 && e.RoundNumber > uptoRound {
			continue
		}
		total = total.Add(e.Value)
	}
	return total
}

func HasRoundEntry(entries []Entry, playerID int64, round int) bool {
	for _, e := range entries {
		if e.PlayerID == playerID && e.RoundNumber == round {
			return true
		}
	}
	return false
}

// EvaluateTermination reports whether the session is over after uptoRound.
// It is over once any player reaches the target. With FinishCurrentRound set,
// every player must also have a score for uptoRound.
func EvaluateTermination(target sessiondomain.Target, playerIDs []int64, entries []Entry, uptoRound int) bool {
	if !target.Active() {
		return false
	}

	threshold := decimal.NewFromInt(int64(target.ScoreTarget))

	reached := false
	for _, playerID := range playerIDs {
		if Total(entries, playerID, uptoRound).GreaterThanOrEqual(threshold) {
			reached = true
			break
		}
	}

	if !reached {
		return false
	}

	if !target.FinishCurrentRound {
		return true
	}

	for _, playerID := range playerIDs {
		if !HasRoundEntry(entries, playerID, uptoRound) {
			return false
		}
	}

	return true
}

// FinishedAtRound returns the first round after which the session is over.
func FinishedAtRound(target sessiondomain.Target, playerIDs []int64, entries []Entry) (int, bool) {
	for _, round := range RoundNumbers(entries) {
		if EvaluateTermination(target, playerIDs, entries, round) {
			return round, true
		}
	}
	return 0, false
}

type Standing struct {
	PlayerID int64           `json:"player_id"`
	Total    decimal.Decimal `json:"-"`
	Rank     int             `json:"rank"`
}

// Rank orders standings best first. Equal totals keep their input order and
// share a rank.
func Rank(standings []Standing, direction gamesdomain.ScoreDirection) []Standing {
	ranked := make([]Standing, len(standings))
	copy(ranked, standings)

	sort.SliceStable(ranked, func(i, j int) bool {
		if direction == gamesdomain.LowerIsBetter {
			return ranked[i].Total.LessThan(ranked[j].Total)
		}
		return ranked[i].Total.GreaterThan(ranked[j].Total)
	})

	for i := range ranked {
		if i > 0 && ranked[i].Total.Equal(ranked[i-1].Total) {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		ranked[i].Rank = i + 1
	}

	return ranked
}

// Standings computes every player's total in position order.
func Standings(playerIDs []int64, entries []Entry, uptoRound int) []Standing {
	standings := make([]Standing, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		standings = append(standings, Standing{
			PlayerID: playerID,
			Total:    Total(entries, playerID, uptoRound),
		})
	}
	return standings
}
