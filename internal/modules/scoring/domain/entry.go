package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryRound is the round number category entries are stored under.
const CategoryRound = 0

const RoundScoreType = "round"

// maxAbsScore keeps values inside NUMERIC(12,2).
var maxAbsScore = decimal.NewFromInt(1_000_000_000)

const (
	scoreDecimals = 2

	// maxScoreMagnitude is the digit count of maxAbsScore. Parsed values
	// with more integer digits are rejected before any rescaling.
	maxScoreMagnitude = 10
)

type Entry struct {
	ID          int64           `db:"id"`
	SessionID   int64           `db:"session_id"`
	PlayerID    int64           `db:"player_id"`
	RoundNumber int             `db:"round_number"`
	ScoreType   string          `db:"score_type"`
	Value       decimal.Decimal `db:"value"`
	Details     []byte          `db:"details"`
	CreatedAt   time.Time       `db:"created_at"`
}

// EntryDraft is an entry that has not been stored yet. Details is a JSON
// document, nil stores NULL.
type EntryDraft struct {
	SessionID   int64           `db:"session_id"`
	PlayerID    int64           `db:"player_id"`
	RoundNumber int             `db:"round_number"`
	ScoreType   string          `db:"score_type"`
	Value       decimal.Decimal `db:"value"`
	Details     *string         `db:"details"`
}

// RawScore is a score as typed by a user. It accepts JSON numbers, numeric
// strings (with a decimal comma or point), blanks and null. Anything else
// reads as zero.
type RawScore struct {
	Value decimal.Decimal
	Blank bool

	overflow bool
}

func Score(value int64) RawScore {
	return RawScore{Value: decimal.NewFromInt(value)}
}

func BlankScore() RawScore {
	return RawScore{Blank: true}
}

func ParseRawScore(raw string) RawScore {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return BlankScore()
	}

	value, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil || value.IsZero() {
		return RawScore{Value: decimal.Zero}
	}

	// Rounding rescales the coefficient to the exponent, so the magnitude is
	// bounded first. "1e400000000" must never reach Round.
	magnitude := int64(value.NumDigits()) + int64(value.Exponent())
	switch {
	case magnitude > maxScoreMagnitude:
		return RawScore{Value: decimal.Zero, overflow: true}
	case magnitude < -scoreDecimals:
		return RawScore{Value: decimal.Zero}
	}

	return RawScore{Value: value.Round(scoreDecimals)}
}

func (s *RawScore) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)

	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*s = BlankScore()
	case trimmed[0] == '"':
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		*s = ParseRawScore(raw)
	default:
		*s = ParseRawScore(string(trimmed))
	}

	return nil
}

func (s RawScore) MarshalJSON() ([]byte, error) {
	if s.Blank {
		return []byte("null"), nil
	}
	return []byte(s.Value.String()), nil
}

// IsZero reports whether the score is blank or exactly zero.
func (s RawScore) IsZero() bool {
	return s.Blank || (!s.overflow && s.Value.IsZero())
}

func (s RawScore) Validate() error {
	if s.overflow {
		return fmt.Errorf("score is out of range")
	}
	if !s.Blank && s.Value.Abs().GreaterThanOrEqual(maxAbsScore) {
		return fmt.Errorf("score %s is out of range", s.Value.String())
	}
	return nil
}

// AsEntry is the entry the draft becomes once stored, without its id.
func (d EntryDraft) AsEntry() Entry {
	var details []byte
	if d.Details != nil {
		details = []byte(*d.Details)
	}

	return Entry{
		SessionID:   d.SessionID,
		PlayerID:    d.PlayerID,
		RoundNumber: d.RoundNumber,
		ScoreType:   d.ScoreType,
		Value:       d.Value,
		Details:     details,
	}
}
