package scoring

import (
	"context"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/scoring/domain"

	"github.com/eskrenkovic/tql"
)

// The functions in this file are the only place score_entry is read or
// written. They take a core.DBTX so callers decide the transaction.

func LoadEntries(ctx context.Context, q core.DBTX, sessionID int64) ([]domain.Entry, error) {
	const query = `
		SELECT
			id,
			session_id,
			player_id,
			round_number,
			score_type,
			value,
			details,
			created_at
		FROM
			score_entry
		WHERE
			session_id = $1
		ORDER BY
			round_number, player_id;`

	entries, err := tql.Query[domain.Entry](ctx, q, query, sessionID)
	if err != nil {
		return nil, core.Storage(err, "failed to load score entries")
	}

	return entries, nil
}

func MaxRoundNumber(ctx context.Context, q core.DBTX, sessionID int64) (int, error) {
	const query = `
		SELECT
			COALESCE(MAX(round_number), 0)
		FROM
			score_entry
		WHERE
			session_id = $1;`

	var highest int
	if err := q.QueryRowContext(ctx, query, sessionID).Scan(&highest); err != nil {
		return 0, core.Storage(err, "failed to read highest round")
	}

	return highest, nil
}

func InsertEntries(ctx context.Context, q core.DBTX, drafts []domain.EntryDraft) error {
	const stmt = `
		INSERT INTO
			score_entry (session_id, player_id, round_number, score_type, value, details)
		VALUES
			(:session_id, :player_id, :round_number, :score_type, :value, :details);`

	for _, draft := range drafts {
		if _, err := tql.Exec(ctx, q, stmt, draft); err != nil {
			if core.IsUniqueViolation(err) {
				return core.Validationf("round %d already has a score for player %d", draft.RoundNumber, draft.PlayerID)
			}
			return core.Storage(err, "failed to insert score entry")
		}
	}

	return nil
}

// UpsertRoundEntry writes a single player's score for an existing round.
func UpsertRoundEntry(ctx context.Context, q core.DBTX, draft domain.EntryDraft) error {
	const stmt = `
		INSERT INTO
			score_entry (session_id, player_id, round_number, score_type, value, details)
		VALUES
			(:session_id, :player_id, :round_number, :score_type, :value, :details)
		ON CONFLICT (session_id, player_id, round_number) WHERE round_number > 0
		DO UPDATE SET
			value = EXCLUDED.value,
			details = EXCLUDED.details;`

	if _, err := tql.Exec(ctx, q, stmt, draft); err != nil {
		return core.Storage(err, "failed to write round score")
	}

	return nil
}

func DeleteRoundEntries(ctx context.Context, q core.DBTX, sessionID int64, round int) (int64, error) {
	const stmt = `
		DELETE FROM
			score_entry
		WHERE
			session_id = $1 AND round_number = $2;`

	result, err := q.ExecContext(ctx, stmt, sessionID, round)
	if err != nil {
		return 0, core.Storage(err, "failed to delete round")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, core.Storage(err, "failed to delete round")
	}

	return deleted, nil
}

func DeletePlayerRoundEntry(ctx context.Context, q core.DBTX, sessionID, playerID int64, round int) error {
	const stmt = `
		DELETE FROM
			score_entry
		WHERE
			session_id = $1 AND player_id = $2 AND round_number = $3;`

	if _, err := q.ExecContext(ctx, stmt, sessionID, playerID, round); err != nil {
		return core.Storage(err, "failed to clear round score")
	}

	return nil
}

func UpsertCategoryEntry(ctx context.Context, q core.DBTX, draft domain.EntryDraft) error {
	const stmt = `
		INSERT INTO
			score_entry (session_id, player_id, round_number, score_type, value, details)
		VALUES
			(:session_id, :player_id, :round_number, :score_type, :value, :details)
		ON CONFLICT (session_id, player_id, score_type) WHERE round_number = 0
		DO UPDATE SET
			value = EXCLUDED.value;`

	if _, err := tql.Exec(ctx, q, stmt, draft); err != nil {
		return core.Storage(err, "failed to write category score")
	}

	return nil
}

func HasCategoryScore(ctx context.Context, q core.DBTX, sessionID, playerID int64, category domain.Category) (bool, error) {
	const query = `
		SELECT
			EXISTS (
				SELECT 1
				FROM score_entry
				WHERE session_id = $1 AND player_id = $2 AND round_number = 0 AND score_type = $3
			);`

	var exists bool
	if err := q.QueryRowContext(ctx, query, sessionID, playerID, string(category)).Scan(&exists); err != nil {
		return false, core.Storage(err, "failed to check category score")
	}

	return exists, nil
}

// TeamRoundTotals sums stored shares back up per round and team.
func TeamRoundTotals(ctx context.Context, q core.DBTX, sessionID int64) ([]domain.TeamRoundTotal, error) {
	const query = `
		SELECT
			e.round_number,
			p.team_index,
			SUM(e.value) AS total
		FROM
			score_entry e
			JOIN session_player p ON p.id = e.player_id
		WHERE
			e.session_id = $1 AND e.round_number > 0 AND p.team_index IS NOT NULL
		GROUP BY
			e.round_number, p.team_index
		ORDER BY
			e.round_number, p.team_index;`

	totals, err := tql.Query[domain.TeamRoundTotal](ctx, q, query, sessionID)
	if err != nil {
		return nil, core.Storage(err, "failed to sum team rounds")
	}

	return totals, nil
}

// RoundDetails returns the details blob of every round that has one.
func RoundDetails(ctx context.Context, q core.DBTX, sessionID int64) (map[int]*domain.BeloteDetails, error) {
	const query = `
		SELECT DISTINCT ON (round_number)
			round_number,
			details
		FROM
			score_entry
		WHERE
			session_id = $1 AND round_number > 0 AND details IS NOT NULL
		ORDER BY
			round_number, id;`

	rows, err := tql.Query[domain.RoundDetails](ctx, q, query, sessionID)
	if err != nil {
		return nil, core.Storage(err, "failed to load round details")
	}

	details := make(map[int]*domain.BeloteDetails, len(rows))
	for _, row := range rows {
		decoded, err := domain.DecodeDetails(row.Details)
		if err != nil {
			return nil, core.Parse(err, "stored round details are unreadable")
		}
		details[row.RoundNumber] = decoded
	}

	return details, nil
}
