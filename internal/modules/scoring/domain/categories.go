package domain

import (
	"fmt"
)

type Category string

const (
	Ones          Category = "ones"
	Twos          Category = "twos"
	Threes        Category = "threes"
	Fours         Category = "fours"
	Fives         Category = "fives"
	Sixes         Category = "sixes"
	ThreeOfAKind  Category = "three_of_a_kind"
	FourOfAKind   Category = "four_of_a_kind"
	FullHouse     Category = "full_house"
	SmallStraight Category = "small_straight"
	LargeStraight Category = "large_straight"
	Yams          Category = "yams"
	Chance        Category = "chance"
)

type Section string

const (
	UpperSection Section = "upper"
	LowerSection Section = "lower"
)

const (
	UpperBonusThreshold = 63
	UpperBonus          = 35

	dice      = 5
	diceFaces = 6
)

type CategoryDef struct {
	ID      Category `json:"id"`
	Label   string   `json:"label"`
	Section Section  `json:"section"`
	// Face is set for upper categories, the die value being counted.
	Face int `json:"face,omitempty"`
	// FixedValue is set for categories worth a fixed amount or nothing.
	FixedValue int `json:"fixed_value,omitempty"`
}

var Categories = []CategoryDef{
	{ID: Ones, Label: "Ones", Section: UpperSection, Face: 1},
	{ID: Twos, Label: "Twos", Section: UpperSection, Face: 2},
	{ID: Threes, Label: "Threes", Section: UpperSection, Face: 3},
	{ID: Fours, Label: "Fours", Section: UpperSection, Face: 4},
	{ID: Fives, Label: "Fives", Section: UpperSection, Face: 5},
	{ID: Sixes, Label: "Sixes", Section: UpperSection, Face: 6},
	{ID: ThreeOfAKind, Label: "Three of a kind", Section: LowerSection},
	{ID: FourOfAKind, Label: "Four of a kind", Section: LowerSection},
	{ID: FullHouse, Label: "Full house", Section: LowerSection, FixedValue: 25},
	{ID: SmallStraight, Label: "Small straight", Section: LowerSection, FixedValue: 30},
	{ID: LargeStraight, Label: "Large straight", Section: LowerSection, FixedValue: 40},
	{ID: Yams, Label: "Yams", Section: LowerSection, FixedValue: 50},
	{ID: Chance, Label: "Chance", Section: LowerSection},
}

func LookupCategory(id Category) (CategoryDef, bool) {
	for _, def := range Categories {
		if def.ID == id {
			return def, true
		}
	}
	return CategoryDef{}, false
}

// ValidateValue checks that value can be scored in the category. Zero is
// always allowed and means the category was scratched.
func (d CategoryDef) ValidateValue(value int) error {
	if value == 0 {
		return nil
	}

	switch {
	case d.Face > 0:
		if value < 0 || value%d.Face != 0 || value > dice*d.Face {
			return fmt.Errorf("%s accepts multiples of %d up to %d, got %d", d.ID, d.Face, dice*d.Face, value)
		}
	case d.FixedValue > 0:
		if value != d.FixedValue {
			return fmt.Errorf("%s is worth %d or 0, got %d", d.ID, d.FixedValue, value)
		}
	default:
		if value < dice || value > dice*diceFaces {
			return fmt.Errorf("%s accepts a dice sum between %d and %d, got %d", d.ID, dice, dice*diceFaces, value)
		}
	}

	return nil
}

// Sheet holds the scored categories of a single player.
type Sheet map[Category]int

func SheetFromEntries(entries []Entry, playerID int64) Sheet {
	sheet := make(Sheet)
	for _, e := range entries {
		if e.PlayerID != playerID || e.RoundNumber != CategoryRound {
			continue
		}
		if _, known := LookupCategory(Category(e.ScoreType)); !known {
			continue
		}
		sheet[Category(e.ScoreType)] = int(e.Value.IntPart())
	}
	return sheet
}

func (s Sheet) HasScore(category Category) bool {
	_, found := s[category]
	return found
}

func (s Sheet) sectionTotal(section Section) int {
	total := 0
	for _, def := range Categories {
		if def.Section == section {
			total += s[def.ID]
		}
	}
	return total
}

func (s Sheet) UpperTotal() int {
	return s.sectionTotal(UpperSection)
}

func (s Sheet) LowerTotal() int {
	return s.sectionTotal(LowerSection)
}

// Bonus is awarded once the upper section reaches the threshold.
func (s Sheet) Bonus() int {
	if s.UpperTotal() >= UpperBonusThreshold {
		return UpperBonus
	}
	return 0
}

func (s Sheet) GrandTotal() int {
	return s.UpperTotal() + s.Bonus() + s.LowerTotal()
}

func (s Sheet) Complete() bool {
	for _, def := range Categories {
		if !s.HasScore(def.ID) {
			return false
		}
	}
	return true
}

type SheetBreakdown struct {
	Scores     map[Category]int `json:"scores"`
	UpperTotal int              `json:"upper_total"`
	Bonus      int              `json:"bonus"`
	// BonusRemaining is how many upper points are still missing for the bonus.
	BonusRemaining int  `json:"bonus_remaining"`
	LowerTotal     int  `json:"lower_total"`
	GrandTotal     int  `json:"grand_total"`
	Filled         int  `json:"filled"`
	Complete       bool `json:"complete"`
}

func (s Sheet) Breakdown() SheetBreakdown {
	upper := s.UpperTotal()

	remaining := UpperBonusThreshold - upper
	if remaining < 0 {
		remaining = 0
	}

	scores := make(map[Category]int, len(s))
	for category, value := range s {
		scores[category] = value
	}

	return SheetBreakdown{
		Scores:         scores,
		UpperTotal:     upper,
		Bonus:          s.Bonus(),
		BonusRemaining: remaining,
		LowerTotal:     s.LowerTotal(),
		GrandTotal:     s.GrandTotal(),
		Filled:         len(scores),
		Complete:       s.Complete(),
	}
}
