package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func categoryEntry(playerID int64, category Category, value int64) Entry {
	return Entry{
		PlayerID:    playerID,
		RoundNumber: CategoryRound,
		ScoreType:   string(category),
		Value:       decimal.NewFromInt(value),
	}
}

func Test_Sheet_Totals_Small_Game(t *testing.T) {
	// Arrange
	entries := []Entry{
		categoryEntry(1, Ones, 5),
		categoryEntry(1, Twos, 10),
		categoryEntry(1, FullHouse, 25),
	}

	// Act
	sheet := SheetFromEntries(entries, 1)

	// Assert
	require.Equal(t, 15, sheet.UpperTotal())
	require.Equal(t, 0, sheet.Bonus())
	require.Equal(t, 25, sheet.LowerTotal())
	require.Equal(t, 40, sheet.GrandTotal())
	require.False(t, sheet.Complete())
}

func Test_Sheet_Bonus_Applies_At_Threshold(t *testing.T) {
	// Arrange
	exactly := Sheet{Ones: 3, Twos: 6, Threes: 9, Fours: 12, Fives: 15, Sixes: 18}
	justBelow := Sheet{Ones: 2, Twos: 6, Threes: 9, Fours: 12, Fives: 15, Sixes: 18}

	// Act & Assert
	require.Equal(t, 63, exactly.UpperTotal())
	require.Equal(t, UpperBonus, exactly.Bonus())
	require.Equal(t, 98, exactly.GrandTotal())

	require.Equal(t, 62, justBelow.UpperTotal())
	require.Equal(t, 0, justBelow.Bonus())
	require.Equal(t, 1, justBelow.Breakdown().BonusRemaining)
}

func Test_Sheet_Complete_Breakdown(t *testing.T) {
	// Arrange
	sheet := Sheet{
		Ones: 3, Twos: 6, Threes: 9, Fours: 12, Fives: 20, Sixes: 24,
		ThreeOfAKind: 22, FourOfAKind: 0, FullHouse: 25, SmallStraight: 30,
		LargeStraight: 40, Yams: 50, Chance: 17,
	}

	// Act
	breakdown := sheet.Breakdown()

	// Assert
	require.True(t, breakdown.Complete)
	require.Equal(t, 13, breakdown.Filled)
	require.Equal(t, 74, breakdown.UpperTotal)
	require.Equal(t, 35, breakdown.Bonus)
	require.Equal(t, 0, breakdown.BonusRemaining)
	require.Equal(t, 184, breakdown.LowerTotal)
	require.Equal(t, 293, breakdown.GrandTotal)
}

func Test_SheetFromEntries_Ignores_Other_Players_And_Rounds(t *testing.T) {
	// Arrange
	entries := []Entry{
		categoryEntry(1, Chance, 20),
		categoryEntry(2, Chance, 25),
		roundEntry(1, 1, 100),
		{PlayerID: 1, RoundNumber: CategoryRound, ScoreType: "bogus", Value: decimal.NewFromInt(99)},
	}

	// Act
	sheet := SheetFromEntries(entries, 1)

	// Assert
	require.Equal(t, Sheet{Chance: 20}, sheet)
	require.True(t, sheet.HasScore(Chance))
	require.False(t, sheet.HasScore(Yams))
}

func Test_CategoryDef_ValidateValue(t *testing.T) {
	cases := []struct {
		category Category
		value    int
		valid    bool
	}{
		{Ones, 5, true},
		{Twos, 10, true},
		{Threes, 4, false},
		{Sixes, 36, false},
		{FullHouse, 25, true},
		{FullHouse, 20, false},
		{SmallStraight, 30, true},
		{LargeStraight, 40, true},
		{Yams, 50, true},
		{Yams, 0, true},
		{Chance, 30, true},
		{Chance, 31, false},
		{ThreeOfAKind, 4, false},
		{FourOfAKind, -5, false},
	}

	for _, c := range cases {
		// Arrange
		def, found := LookupCategory(c.category)
		require.True(t, found)

		// Act
		err := def.ValidateValue(c.value)

		// Assert
		if c.valid {
			require.NoError(t, err, "%s=%d", c.category, c.value)
		} else {
			require.Error(t, err, "%s=%d", c.category, c.value)
		}
	}
}

func Test_Categories_Has_Thirteen_Entries(t *testing.T) {
	// Act & Assert
	require.Len(t, Categories, 13)

	_, found := LookupCategory("seven")
	require.False(t, found)
}
